// Package clock keeps locally ticking per-side thinking time counters that
// are seeded from server-reported totals.
package clock

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"ayu/internal/game"
)

// TickInterval is how often the session advances the clock.
const TickInterval = time.Second

// Tracker accrues elapsed wall time to the active side. It is not safe for
// concurrent use; the session loop owns it.
type Tracker struct {
	clk      clock.Clock
	active   game.Player
	white    time.Duration
	black    time.Duration
	lastTick time.Time
}

// NewTracker returns a tracker with nobody active.
func NewTracker(clk clock.Clock) *Tracker {
	if clk == nil {
		clk = clock.New()
	}
	return &Tracker{clk: clk, lastTick: clk.Now()}
}

// Tick adds the time since the previous tick to the active side.
func (t *Tracker) Tick() {
	now := t.clk.Now()
	d := now.Sub(t.lastTick)
	t.lastTick = now
	if d < 0 {
		return
	}
	switch t.active {
	case game.White:
		t.white += d
	case game.Black:
		t.black += d
	}
}

// SetActivePlayer settles the running interval with the previous side and
// then switches. game.Empty stops both counters.
func (t *Tracker) SetActivePlayer(p game.Player) {
	t.Tick()
	t.active = p
}

// Reseed overwrites both counters with server totals in seconds.
func (t *Tracker) Reseed(whiteSeconds, blackSeconds float64) {
	t.white = seconds(whiteSeconds)
	t.black = seconds(blackSeconds)
	t.lastTick = t.clk.Now()
}

// Apply reseeds from timeUsed (when present) and sets the active side in
// one step, so no tick can observe one change without the other.
func (t *Tracker) Apply(active game.Player, timeUsed *[2]float64) {
	t.SetActivePlayer(active)
	if timeUsed != nil {
		t.Reseed(timeUsed[0], timeUsed[1])
	}
}

// Active returns the side currently accruing time.
func (t *Tracker) Active() game.Player { return t.active }

// Elapsed returns the accumulated time of a side.
func (t *Tracker) Elapsed(p game.Player) time.Duration {
	switch p {
	case game.White:
		return t.white
	case game.Black:
		return t.black
	}
	return 0
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Truncate(time.Millisecond)
}

// Format renders a duration as m:ss.
func Format(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
