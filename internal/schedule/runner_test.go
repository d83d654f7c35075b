package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerTickWaitsForSleep(t *testing.T) {
	cfg := testConfig(t, false)
	lookup := &fakeLookup{}
	h := newHarness(t, cfg, at(10, 0), Target{Lookup: lookup, ID: 140})
	r := NewRunner(h.controller)
	ctx := context.Background()

	r.tick(ctx)
	require.Len(t, lookup.calls, 2)

	h.clock.Advance(30 * time.Second)
	r.tick(ctx)
	assert.Len(t, lookup.calls, 2, "pass must wait for the day interval")

	h.clock.Advance(30 * time.Second)
	r.tick(ctx)
	assert.Len(t, lookup.calls, 4)
}

func TestRunnerTickSkipsAfterCancel(t *testing.T) {
	cfg := testConfig(t, false)
	lookup := &fakeLookup{}
	h := newHarness(t, cfg, at(10, 0), Target{Lookup: lookup, ID: 140})
	r := NewRunner(h.controller)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.tick(ctx)
	assert.Empty(t, lookup.calls)
}

func TestRunnerRunStops(t *testing.T) {
	cfg := testConfig(t, false)
	h := newHarness(t, cfg, at(10, 0))
	r := NewRunner(h.controller)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := r.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, h.sink.events, "announce:Initiating CoWin monitoring.")
}
