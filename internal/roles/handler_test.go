package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parishdesk/backend/internal/authz"
)

func TestValidatePermissionsAcceptsCatalog(t *testing.T) {
	assert.Empty(t, validatePermissions(authz.AllStrings()))
}

func TestValidatePermissionsReportsUnknown(t *testing.T) {
	bad := validatePermissions([]string{
		"members.view",
		"members.*",
		"Members.View",
		"childcare.checkin",
		"finance.view",
	})
	assert.Equal(t, []string{"members.*", "Members.View", "finance.view"}, bad)
}

func TestValidatePermissionsEmpty(t *testing.T) {
	assert.Empty(t, validatePermissions(nil))
	assert.Empty(t, validatePermissions([]string{}))
}
