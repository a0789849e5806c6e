package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageChannel identifies the delivery channel for an outbound message.
type MessageChannel string

const (
	ChannelEmail MessageChannel = "email"
	ChannelSMS   MessageChannel = "sms"
	ChannelVoice MessageChannel = "voice"
)

// Message delivery statuses.
const (
	MessageStatusQueued = "queued"
	MessageStatusSent   = "sent"
	MessageStatusFailed = "failed"
)

// MessageLog tracks one outbound message to one recipient on one channel.
type MessageLog struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organization_id"`
	MemberID       *uuid.UUID     `json:"member_id,omitempty"`
	Channel        MessageChannel `json:"channel"`
	Recipient      string         `json:"recipient"`
	Subject        string         `json:"subject,omitempty"`
	Body           string         `json:"body"`
	Status         string         `json:"status"`
	Error          string         `json:"error,omitempty"`
	SentBy         uuid.UUID      `json:"sent_by"`
	CreatedAt      time.Time      `json:"created_at"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
}
