package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parishdesk/backend/internal/messaging"
	"github.com/parishdesk/backend/internal/models"
	"github.com/parishdesk/backend/pkg/queue"
)

// MessageProcessor delivers queued outbound messages: load the log row,
// dispatch on its channel, record the outcome.
type MessageProcessor struct {
	msgRepo *messaging.Repository
	email   *messaging.EmailSender
	phone   *messaging.PhoneSender
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewMessageProcessor creates a message delivery processor. Either sender may
// be nil when the provider is not configured; jobs for that channel fail with
// a clear reason instead of panicking.
func NewMessageProcessor(msgRepo *messaging.Repository, email *messaging.EmailSender, phone *messaging.PhoneSender, q *queue.Queue, logger *zap.Logger) *MessageProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageProcessor{msgRepo: msgRepo, email: email, phone: phone, queue: q, logger: logger}
}

// Process executes one message delivery job.
func (p *MessageProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeMessage {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.MessagePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	msg, err := p.msgRepo.GetByID(ctx, payload.OrganizationID, payload.MessageID)
	if err != nil {
		return fmt.Errorf("message not found: %s", payload.MessageID)
	}
	if msg.Status == models.MessageStatusSent {
		p.logger.Info("message already sent", zap.String("message_id", msg.ID.String()))
		return nil
	}

	if err := p.dispatch(msg); err != nil {
		if markErr := p.msgRepo.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
			p.logger.Error("mark failed errored", zap.Error(markErr), zap.String("message_id", msg.ID.String()))
		}
		return fmt.Errorf("deliver: %w", err)
	}

	if err := p.msgRepo.MarkSent(ctx, msg.ID); err != nil {
		p.logger.Error("mark sent failed", zap.Error(err), zap.String("message_id", msg.ID.String()))
		return fmt.Errorf("update db: %w", err)
	}

	p.logger.Info("message delivered",
		zap.String("message_id", msg.ID.String()),
		zap.String("channel", string(msg.Channel)))
	return nil
}

func (p *MessageProcessor) dispatch(msg *models.MessageLog) error {
	switch msg.Channel {
	case models.ChannelEmail:
		if p.email == nil {
			return fmt.Errorf("email provider not configured")
		}
		return p.email.Send(msg.Recipient, msg.Subject, msg.Body)
	case models.ChannelSMS:
		if p.phone == nil {
			return fmt.Errorf("sms provider not configured")
		}
		return p.phone.SendSMS(msg.Recipient, msg.Body)
	case models.ChannelVoice:
		if p.phone == nil {
			return fmt.Errorf("voice provider not configured")
		}
		return p.phone.PlaceCall(msg.Recipient, msg.Body)
	default:
		return fmt.Errorf("unknown channel: %s", msg.Channel)
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *MessageProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("message worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
