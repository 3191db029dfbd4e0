package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"thread_broadcast_bot/internal/domain/platform"
	"thread_broadcast_bot/internal/infra/logger"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolicy(client *fakeClient, rec *recordingSleep) *DeliveryPolicy {
	p := NewDeliveryPolicy(client, DeliveryConfig{
		MaxRetries:         3,
		RateLimitBackoff:   120 * time.Second,
		ClientErrorBackoff: 10 * time.Second,
	}, logger.Nop())
	p.sleep = rec.sleep
	return p
}

func repeatErr(err error, n int) []error {
	out := make([]error, n)
	for i := range out {
		out[i] = err
	}
	return out
}

func TestSend_SucceedsFirstAttempt(t *testing.T) {
	client := &fakeClient{}
	rec := &recordingSleep{}
	ok := newTestPolicy(client, rec).Send(context.Background(), "hi", "t1")

	assert.True(t, ok)
	assert.Equal(t, []string{"t1"}, client.sendCalls)
	assert.Empty(t, rec.calls)
}

func TestSend_RateLimitedEveryAttempt(t *testing.T) {
	limit := platform.NewError(platform.ErrFeedbackRequired, 400, "feedback_required", nil)
	client := &fakeClient{sendErrs: repeatErr(limit, 10)}
	rec := &recordingSleep{}

	ok := newTestPolicy(client, rec).Send(context.Background(), "hi", "t1")

	assert.False(t, ok)
	assert.Len(t, client.sendCalls, 4)
	assert.Equal(t, []time.Duration{120 * time.Second, 240 * time.Second, 360 * time.Second}, rec.calls)
}

func TestSend_ClientErrorEveryAttempt(t *testing.T) {
	clientErr := platform.NewError(platform.ErrClient, 500, "", nil)
	client := &fakeClient{sendErrs: repeatErr(clientErr, 10)}
	rec := &recordingSleep{}

	ok := newTestPolicy(client, rec).Send(context.Background(), "hi", "t1")

	assert.False(t, ok)
	assert.Len(t, client.sendCalls, 4)
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second, 10 * time.Second}, rec.calls)
}

func TestSend_LoginRequiredUsesShortBackoff(t *testing.T) {
	login := platform.NewError(platform.ErrLoginRequired, 403, "login_required", nil)
	client := &fakeClient{sendErrs: []error{login}}
	rec := &recordingSleep{}

	ok := newTestPolicy(client, rec).Send(context.Background(), "hi", "t1")

	assert.True(t, ok)
	assert.Equal(t, []time.Duration{10 * time.Second}, rec.calls)
}

func TestSend_RecoversAfterRateLimit(t *testing.T) {
	wait := platform.NewError(platform.ErrPleaseWait, 429, "", nil)
	client := &fakeClient{sendErrs: []error{wait, wait}}
	rec := &recordingSleep{}

	ok := newTestPolicy(client, rec).Send(context.Background(), "hi", "t1")

	assert.True(t, ok)
	assert.Len(t, client.sendCalls, 3)
	assert.Equal(t, []time.Duration{120 * time.Second, 240 * time.Second}, rec.calls)
}

func TestSend_UnknownErrorNoRetry(t *testing.T) {
	client := &fakeClient{sendErrs: []error{errors.New("decode response: unexpected EOF")}}
	rec := &recordingSleep{}

	ok := newTestPolicy(client, rec).Send(context.Background(), "hi", "t1")

	assert.False(t, ok)
	assert.Len(t, client.sendCalls, 1)
	assert.Empty(t, rec.calls)
}

func TestSend_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	limit := platform.NewError(platform.ErrSentryBlock, 400, "", nil)
	client := &fakeClient{sendErrs: repeatErr(limit, 10)}
	rec := &recordingSleep{cancelAfter: 1, cancel: cancel}

	ok := newTestPolicy(client, rec).Send(ctx, "hi", "t1")

	assert.False(t, ok)
	assert.Len(t, client.sendCalls, 1)
	assert.Len(t, rec.calls, 1)
}

func TestSend_CancelledWhileSending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &fakeClient{sendErrs: []error{context.Canceled}, onSend: cancel}
	rec := &recordingSleep{}

	p := newTestPolicy(client, rec)
	l, hook := logtest.NewNullLogger()
	p.logger = logrus.NewEntry(l)

	ok := p.Send(ctx, "hi", "t1")

	assert.False(t, ok)
	assert.Len(t, client.sendCalls, 1)
	assert.Empty(t, rec.calls)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestSend_ZeroRetriesMeansSingleAttempt(t *testing.T) {
	limit := platform.NewError(platform.ErrRateLimited, 429, "", nil)
	client := &fakeClient{sendErrs: repeatErr(limit, 4)}
	rec := &recordingSleep{}

	p := newTestPolicy(client, rec)
	p.cfg.MaxRetries = 0

	assert.False(t, p.Send(context.Background(), "hi", "t1"))
	assert.Len(t, client.sendCalls, 1)
	assert.Empty(t, rec.calls)
}
