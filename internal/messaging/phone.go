package messaging

import (
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// PhoneSender delivers SMS and voice calls through Twilio.
type PhoneSender struct {
	client *twilio.RestClient
	from   string
}

// NewPhoneSender creates a Twilio-backed SMS/voice sender.
func NewPhoneSender(accountSID, authToken, fromNumber string) *PhoneSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &PhoneSender{client: client, from: fromNumber}
}

// SendSMS delivers one text message.
func (s *PhoneSender) SendSMS(to, body string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)
	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio sms: %w", err)
	}
	return nil
}

// PlaceCall places a voice call that reads the body aloud.
func (s *PhoneSender) PlaceCall(to, body string) error {
	params := &twilioapi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetTwiml(fmt.Sprintf("<Response><Say>%s</Say></Response>", escapeTwiml(body)))
	if _, err := s.client.Api.CreateCall(params); err != nil {
		return fmt.Errorf("twilio call: %w", err)
	}
	return nil
}

var twimlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeTwiml(s string) string {
	return twimlEscaper.Replace(s)
}
