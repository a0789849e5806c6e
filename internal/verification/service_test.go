package verification

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSMS struct {
	to   string
	body string
	err  error
}

func (f *fakeSMS) SendSMS(to, body string) error {
	f.to = to
	f.body = body
	return f.err
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func sentCode(t *testing.T, f *fakeSMS) string {
	t.Helper()
	m := codePattern.FindStringSubmatch(f.body)
	require.Len(t, m, 2, "sms body should contain a six-digit code: %q", f.body)
	return m[1]
}

func newTestService(sms *fakeSMS) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, sms, 10*time.Minute, 3, zap.NewNop()), store
}

func TestStartSendsCodeToNumber(t *testing.T) {
	sms := &fakeSMS{}
	svc, _ := newTestService(sms)
	userID := uuid.New()

	require.NoError(t, svc.Start(context.Background(), userID, "+15551230000"))
	assert.Equal(t, "+15551230000", sms.to)
	assert.Len(t, sentCode(t, sms), 6)
}

func TestConfirmAcceptsCorrectCode(t *testing.T) {
	sms := &fakeSMS{}
	svc, _ := newTestService(sms)
	userID := uuid.New()

	require.NoError(t, svc.Start(context.Background(), userID, "+15551230000"))
	code := sentCode(t, sms)

	assert.NoError(t, svc.Confirm(context.Background(), userID, code))
}

func TestConfirmConsumesCode(t *testing.T) {
	sms := &fakeSMS{}
	svc, _ := newTestService(sms)
	userID := uuid.New()

	require.NoError(t, svc.Start(context.Background(), userID, "+15551230000"))
	code := sentCode(t, sms)

	require.NoError(t, svc.Confirm(context.Background(), userID, code))
	err := svc.Confirm(context.Background(), userID, code)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestConfirmRejectsWrongCode(t *testing.T) {
	sms := &fakeSMS{}
	svc, _ := newTestService(sms)
	userID := uuid.New()

	require.NoError(t, svc.Start(context.Background(), userID, "+15551230000"))
	code := sentCode(t, sms)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	err := svc.Confirm(context.Background(), userID, wrong)
	assert.ErrorIs(t, err, ErrCodeMismatch)

	// The right code still works while attempts remain.
	assert.NoError(t, svc.Confirm(context.Background(), userID, code))
}

func TestConfirmLocksOutAfterMaxAttempts(t *testing.T) {
	sms := &fakeSMS{}
	svc, _ := newTestService(sms)
	userID := uuid.New()

	require.NoError(t, svc.Start(context.Background(), userID, "+15551230000"))
	code := sentCode(t, sms)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, svc.Confirm(context.Background(), userID, wrong), ErrCodeMismatch)
	}
	assert.ErrorIs(t, svc.Confirm(context.Background(), userID, wrong), ErrTooManyAttempts)

	// The code is gone even when the right one is finally submitted.
	assert.ErrorIs(t, svc.Confirm(context.Background(), userID, code), ErrCodeExpired)
}

func TestConfirmWithoutStart(t *testing.T) {
	svc, _ := newTestService(&fakeSMS{})
	err := svc.Confirm(context.Background(), uuid.New(), "123456")
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestStartCleansUpWhenSendFails(t *testing.T) {
	sms := &fakeSMS{err: errors.New("carrier rejected")}
	svc, store := newTestService(sms)
	userID := uuid.New()

	require.Error(t, svc.Start(context.Background(), userID, "+15551230000"))
	stored, err := store.Get(context.Background(), codeKey(userID))
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()
	store.now = func() time.Time { return base }

	require.NoError(t, store.Put(context.Background(), "k", "123456", time.Minute))

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	got, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewCodeResetsAttempts(t *testing.T) {
	sms := &fakeSMS{}
	svc, _ := newTestService(sms)
	userID := uuid.New()

	require.NoError(t, svc.Start(context.Background(), userID, "+15551230000"))
	wrong := "000000"
	if wrong == sentCode(t, sms) {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		_ = svc.Confirm(context.Background(), userID, wrong)
	}

	require.NoError(t, svc.Start(context.Background(), userID, "+15551230000"))
	code := sentCode(t, sms)
	assert.NoError(t, svc.Confirm(context.Background(), userID, code))
}
