package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parishdesk/backend/internal/models"
)

func TestContactForPicksChannelAddress(t *testing.T) {
	m := &models.Member{Email: "kim@example.com", Phone: "+15551230000"}

	assert.Equal(t, "kim@example.com", contactFor(m, models.ChannelEmail))
	assert.Equal(t, "+15551230000", contactFor(m, models.ChannelSMS))
	assert.Equal(t, "+15551230000", contactFor(m, models.ChannelVoice))
}

func TestContactForMissingDetails(t *testing.T) {
	assert.Empty(t, contactFor(&models.Member{Phone: "+15551230000"}, models.ChannelEmail))
	assert.Empty(t, contactFor(&models.Member{Email: "kim@example.com"}, models.ChannelSMS))
	assert.Empty(t, contactFor(&models.Member{}, models.MessageChannel("fax")))
}

func TestEscapeTwiml(t *testing.T) {
	assert.Equal(t, "Choir &amp; band, doors &lt;open&gt;", escapeTwiml("Choir & band, doors <open>"))
	assert.Equal(t, "plain", escapeTwiml("plain"))
}
