package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachintaksande/cowin-notifier/internal/observability/metrics"
	"github.com/sachintaksande/cowin-notifier/pkg/logging"
)

type fakeMessenger struct {
	name string
	sent []string
	err  error
}

func (f *fakeMessenger) Name() string { return f.name }

func (f *fakeMessenger) Send(_ context.Context, text string) error {
	f.sent = append(f.sent, text)
	return f.err
}

type fakeSpeaker struct {
	said []string
	err  error
}

func (f *fakeSpeaker) Say(_ context.Context, text string) error {
	f.said = append(f.said, text)
	return f.err
}

func TestDispatcherFansOutAndSwallowsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info")
	failing := &fakeMessenger{name: "telegram", err: errors.New("502")}
	healthy := &fakeMessenger{name: "email"}
	speaker := &fakeSpeaker{err: errors.New("espeak missing")}

	d := NewDispatcher([]Messenger{failing, healthy}, speaker, logger, metrics.NewPollMetrics(prometheus.NewRegistry()))
	d.Notify(context.Background(), "report")
	d.Announce(context.Background(), "announcement")

	assert.Equal(t, []string{"report"}, failing.sent)
	assert.Equal(t, []string{"report"}, healthy.sent)
	assert.Equal(t, []string{"announcement"}, speaker.said)
	assert.Contains(t, buf.String(), "delivery failed")
	assert.Contains(t, buf.String(), "announcement failed")
}

func TestDispatcherWithoutSpeaker(t *testing.T) {
	d := NewDispatcher(nil, nil, nil, nil)
	require.NotPanics(t, func() {
		d.Announce(context.Background(), "hello")
		d.Notify(context.Background(), "hello")
	})
}
