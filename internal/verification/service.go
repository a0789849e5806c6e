package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Phone verification errors surfaced to the handler.
var (
	ErrCodeExpired     = errors.New("verification code expired or not requested")
	ErrCodeMismatch    = errors.New("verification code does not match")
	ErrTooManyAttempts = errors.New("too many verification attempts")
)

// SMSSender delivers verification texts. Satisfied by messaging.PhoneSender.
type SMSSender interface {
	SendSMS(to, body string) error
}

// Service issues and checks one-time phone verification codes.
type Service struct {
	store       CodeStore
	sms         SMSSender
	ttl         time.Duration
	maxAttempts int
	logger      *zap.Logger
}

// NewService creates a verification service. maxAttempts bounds how many
// wrong codes are accepted before the code is invalidated.
func NewService(store CodeStore, sms SMSSender, ttl time.Duration, maxAttempts int, logger *zap.Logger) *Service {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &Service{store: store, sms: sms, ttl: ttl, maxAttempts: maxAttempts, logger: logger}
}

func codeKey(userID uuid.UUID) string {
	return "verify:phone:" + userID.String()
}

// Start generates a six-digit code, stores it with the configured TTL, and
// texts it to the given number. A new code replaces any outstanding one.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, phone string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.store.Put(ctx, codeKey(userID), code, s.ttl); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.ttl.Minutes()))
	if err := s.sms.SendSMS(phone, body); err != nil {
		// Drop the stored code so a delivery failure cannot be brute-forced.
		if delErr := s.store.Delete(ctx, codeKey(userID)); delErr != nil {
			s.logger.Warn("cleanup after send failure", zap.Error(delErr))
		}
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

// Confirm checks a submitted code. On success the code is consumed. After
// maxAttempts wrong submissions the code is invalidated.
func (s *Service) Confirm(ctx context.Context, userID uuid.UUID, code string) error {
	key := codeKey(userID)
	stored, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}
	if stored == "" {
		return ErrCodeExpired
	}
	attempts, err := s.store.IncrAttempts(ctx, key, s.ttl)
	if err != nil {
		return fmt.Errorf("count attempt: %w", err)
	}
	if attempts > s.maxAttempts {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("invalidate after max attempts", zap.Error(delErr))
		}
		return ErrTooManyAttempts
	}
	if stored != code {
		return ErrCodeMismatch
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("consume code", zap.Error(err))
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
