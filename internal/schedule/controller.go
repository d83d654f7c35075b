// Package schedule drives the fetch, filter and notify passes over every
// configured target and decides how long to wait between passes.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sachintaksande/cowin-notifier/internal/config"
	"github.com/sachintaksande/cowin-notifier/internal/cowin"
	"github.com/sachintaksande/cowin-notifier/internal/observability/metrics"
	"github.com/sachintaksande/cowin-notifier/internal/slots"
	"github.com/sachintaksande/cowin-notifier/pkg/logging"
)

const (
	startAnnouncement = "Initiating CoWin monitoring."
	recoveryFormat    = "Something went wrong. Going into sleep mode for %s seconds. Please ensure you are connected to the internet"
)

// Sink receives match reports and spoken announcements. Implementations
// must not block the loop on delivery failures.
type Sink interface {
	Notify(ctx context.Context, text string)
	Announce(ctx context.Context, text string)
}

// Clock reads wall-clock time.
type Clock interface {
	Now() time.Time
}

// Sleeper pauses the loop; it returns early with ctx.Err() on cancellation.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Target is one polled district or PIN code.
type Target struct {
	Lookup cowin.Lookup
	ID     int
	// Nearest targets keep today's date after the cutoff.
	Nearest bool
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Lookup.Strategy(), t.ID)
}

// TargetsFor lists districts then PIN codes in configured order.
func TargetsFor(prefs config.Preferences, client *cowin.Client) ([]Target, error) {
	byDistrict, err := cowin.NewLookup(client, cowin.ByDistrict)
	if err != nil {
		return nil, err
	}
	byPin, err := cowin.NewLookup(client, cowin.ByPin)
	if err != nil {
		return nil, err
	}
	targets := make([]Target, 0, len(prefs.DistrictIDs)+len(prefs.PinCodes))
	for _, id := range prefs.DistrictIDs {
		targets = append(targets, Target{Lookup: byDistrict, ID: id, Nearest: id == prefs.NearestDistrict})
	}
	for _, pin := range prefs.PinCodes {
		targets = append(targets, Target{Lookup: byPin, ID: pin})
	}
	return targets, nil
}

// Controller runs passes over the configured targets.
type Controller struct {
	targets       []Target
	criteria      slots.Criteria
	daySleep      time.Duration
	nightSleep    time.Duration
	weekPause     time.Duration
	recoveryDelay time.Duration
	greetings     bool
	loc           *time.Location

	sink    Sink
	clock   Clock
	sleeper Sleeper
	logger  *logging.Logger
	metrics *metrics.PollMetrics

	lastPhase *Phase
}

// NewController copies everything it needs out of cfg.
func NewController(cfg *config.Config, targets []Target, sink Sink, logger *logging.Logger, m *metrics.PollMetrics) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{
		targets:       append([]Target(nil), targets...),
		criteria:      cfg.Preferences.Criteria(),
		daySleep:      cfg.Schedule.DaySleep(),
		nightSleep:    cfg.Schedule.NightSleep(),
		weekPause:     cfg.Schedule.WeekPause(),
		recoveryDelay: cfg.Schedule.RecoveryDelay(),
		greetings:     cfg.Greetings,
		loc:           cfg.Location(),
		sink:          sink,
		clock:         systemClock{},
		sleeper:       timerSleeper{},
		logger:        logger,
		metrics:       m,
	}
}

func (c *Controller) WithClock(clock Clock) *Controller {
	if clock != nil {
		c.clock = clock
	}
	return c
}

func (c *Controller) WithSleeper(s Sleeper) *Controller {
	if s != nil {
		c.sleeper = s
	}
	return c
}

func (c *Controller) now() time.Time {
	return c.clock.Now().In(c.loc)
}

// SleepFor returns the pause after a pass that started at t.
func (c *Controller) SleepFor(t time.Time) time.Duration {
	if PhaseAt(t.In(c.loc)) == PhaseNight {
		return c.nightSleep
	}
	return c.daySleep
}

// AnnounceStart speaks the startup message.
func (c *Controller) AnnounceStart(ctx context.Context) {
	c.sink.Announce(ctx, startAnnouncement)
}

// RunOnce processes every target once and returns how long to sleep before
// the next pass. It only fails when ctx is cancelled; per-target failures
// are announced, followed by the recovery pause, and the pass moves on.
func (c *Controller) RunOnce(ctx context.Context) (time.Duration, error) {
	start := c.now()
	phase := PhaseAt(start)
	sleep := c.SleepFor(start)
	logger := c.logger.With("pass_id", uuid.NewString())

	c.greet(ctx, start, phase, sleep)

	for _, target := range c.targets {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		err := c.processTarget(ctx, logger, target)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		logger.Warn("schedule: target failed, pausing", "target", target.String(), "error", err, "pause", c.recoveryDelay.String())
		c.sink.Announce(ctx, c.recoveryAnnouncement())
		if err := c.sleeper.Sleep(ctx, c.recoveryDelay); err != nil {
			return 0, err
		}
	}

	c.metrics.ObservePass(c.now().Sub(start).Seconds(), phase == PhaseNight)
	logger.Info("schedule: pass finished", "phase", phase.String(), "sleep", sleep.String())
	return sleep, nil
}

func (c *Controller) recoveryAnnouncement() string {
	return fmt.Sprintf(recoveryFormat, strconv.FormatFloat(c.recoveryDelay.Seconds(), 'f', -1, 64))
}

func (c *Controller) greet(ctx context.Context, now time.Time, phase Phase, sleep time.Duration) {
	if !c.greetings {
		return
	}
	if c.lastPhase != nil && *c.lastPhase == phase {
		return
	}
	c.lastPhase = &phase
	c.sink.Notify(ctx, Greeting(now, sleep))
}

func (c *Controller) processTarget(ctx context.Context, logger *logging.Logger, target Target) error {
	dates := DatesFor(c.now(), target.Nearest)
	logger.Debug("schedule: query dates", "target", target.String(),
		"this_week", dates.ThisWeek.Format(cowin.DateLayout), "next_week", dates.NextWeek.Format(cowin.DateLayout))

	if err := c.check(ctx, logger, target, dates.ThisWeek); err != nil {
		return err
	}
	if err := c.sleeper.Sleep(ctx, c.weekPause); err != nil {
		return err
	}
	return c.check(ctx, logger, target, dates.NextWeek)
}

func (c *Controller) check(ctx context.Context, logger *logging.Logger, target Target, date time.Time) error {
	strategy := string(target.Lookup.Strategy())
	centers, err := target.Lookup.Sessions(ctx, target.ID, date)
	c.metrics.ObserveFetch(strategy, err)
	if err != nil {
		return fmt.Errorf("schedule: fetch %s from %s: %w", target, date.Format(cowin.DateLayout), err)
	}

	matches := slots.Scan(centers, c.criteria)
	c.metrics.ObserveMatches(strategy, len(matches))
	if len(matches) == 0 {
		logger.Debug("schedule: no slots", "target", target.String(), "date", date.Format(cowin.DateLayout), "centers", len(centers))
		return nil
	}
	for _, m := range matches {
		logger.Info("schedule: slots found", "target", target.String(), "center", m.Center.Name,
			"date", m.Session.Date, "capacity", m.Session.Capacity(), "min_age_limit", m.Session.MinAgeLimit)
		c.sink.Notify(ctx, m.Report)
		c.sink.Announce(ctx, m.Announcement)
	}
	return nil
}
