// Package cooldown tracks client-side rate limits for posting and commenting.
//
// A Tracker holds one expiry instant per action kind. It is not safe for
// concurrent use: callers drive it from a single event loop.
package cooldown

import (
	"fmt"
	"math"
	"time"
)

// Kind is a rate-limited action.
type Kind int

const (
	Post Kind = iota
	Comment
)

func (k Kind) String() string {
	switch k {
	case Post:
		return "post"
	case Comment:
		return "comment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Default is the cooldown applied after a successful action, or after a
// rate-limit response that carried no retry hint.
func (k Kind) Default() time.Duration {
	if k == Post {
		return 30 * time.Minute
	}
	return 20 * time.Second
}

// Interval is the refresh cadence while the kind is blocked.
func (k Kind) Interval() time.Duration {
	if k == Post {
		return time.Minute
	}
	return time.Second
}

// Unit is the granularity used for countdown labels and retry hints.
func (k Kind) Unit() time.Duration {
	if k == Post {
		return time.Minute
	}
	return time.Second
}

// Signal tells the UI what to do after a Poll.
type Signal int

const (
	// SignalIdle: not blocked and re-enable was already signalled.
	SignalIdle Signal = iota
	// SignalRefresh: still blocked; redraw the countdown, keep submit disabled.
	SignalRefresh
	// SignalReady: the cooldown just ended; re-enable submit.
	SignalReady
)

// Tick is the outcome of a Poll.
type Tick struct {
	Signal    Signal
	Remaining time.Duration
	// Next is the delay until the following Poll; zero unless Signal is
	// SignalRefresh.
	Next time.Duration
	// Gen identifies the record call this tick chain belongs to.
	Gen uint64
}

// Clock returns the current time.
type Clock func() time.Time

type state struct {
	expiry time.Time
	gen    uint64
	armed  bool
}

// Tracker holds cooldown state for every Kind.
type Tracker struct {
	clock  Clock
	last   time.Time
	states map[Kind]*state
}

// New returns a Tracker reading time from clock, or time.Now when nil.
func New(clock Clock) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{clock: clock, states: make(map[Kind]*state, 2)}
}

// now never goes backwards, so Remaining is non-increasing between records.
func (t *Tracker) now() time.Time {
	n := t.clock()
	if n.Before(t.last) {
		return t.last
	}
	t.last = n
	return n
}

func (t *Tracker) state(k Kind) *state {
	s, ok := t.states[k]
	if !ok {
		s = &state{}
		t.states[k] = s
	}
	return s
}

// RecordSuccess starts the default cooldown for k, replacing any existing one.
func (t *Tracker) RecordSuccess(k Kind) Tick {
	return t.set(k, k.Default())
}

// RecordRateLimited starts a cooldown of retry for k, replacing any existing
// one. A non-positive retry means the server sent no hint.
func (t *Tracker) RecordRateLimited(k Kind, retry time.Duration) Tick {
	if retry <= 0 {
		retry = k.Default()
	}
	return t.set(k, retry)
}

func (t *Tracker) set(k Kind, d time.Duration) Tick {
	s := t.state(k)
	s.expiry = t.now().Add(d)
	s.gen++
	s.armed = true
	return t.Poll(k)
}

// Remaining is the time left before k is permitted again, never negative.
func (t *Tracker) Remaining(k Kind) time.Duration {
	s, ok := t.states[k]
	if !ok || s.expiry.IsZero() {
		return 0
	}
	return max(s.expiry.Sub(t.now()), 0)
}

// IsBlocked reports whether k is still cooling down.
func (t *Tracker) IsBlocked(k Kind) bool {
	return t.Remaining(k) > 0
}

// Expiry returns the instant k becomes permitted, or the zero time.
func (t *Tracker) Expiry(k Kind) time.Time {
	if s, ok := t.states[k]; ok {
		return s.expiry
	}
	return time.Time{}
}

// Gen returns the generation of the latest record call for k.
func (t *Tracker) Gen(k Kind) uint64 {
	if s, ok := t.states[k]; ok {
		return s.gen
	}
	return 0
}

// Poll advances the refresh chain for k. While blocked it returns
// SignalRefresh with the delay to the next poll; the delay is shortened so
// the final poll lands on the expiry. The first poll after expiry returns
// SignalReady and every later one SignalIdle.
func (t *Tracker) Poll(k Kind) Tick {
	s := t.state(k)
	rem := t.Remaining(k)
	if rem > 0 {
		return Tick{Signal: SignalRefresh, Remaining: rem, Next: min(k.Interval(), rem), Gen: s.gen}
	}
	if s.armed {
		s.armed = false
		return Tick{Signal: SignalReady, Gen: s.gen}
	}
	return Tick{Signal: SignalIdle, Gen: s.gen}
}

// Label renders the countdown shown next to the disabled submit control, or
// "" when k is not blocked.
func (t *Tracker) Label(k Kind) string {
	rem := t.Remaining(k)
	if rem <= 0 {
		return ""
	}
	return fmt.Sprintf("⏳ Cooldown: %s remaining", FormatRemaining(k, rem))
}

// FormatRemaining rounds d up to the kind's unit, e.g. "3 minutes".
func FormatRemaining(k Kind, d time.Duration) string {
	unit := k.Unit()
	n := int(math.Ceil(float64(d) / float64(unit)))
	name := "seconds"
	if unit == time.Minute {
		name = "minutes"
	}
	return fmt.Sprintf("%d %s", n, name)
}

// Reset forgets every cooldown. Generations keep increasing so ticks from
// before the reset are recognised as stale.
func (t *Tracker) Reset() {
	for _, s := range t.states {
		s.expiry = time.Time{}
		s.armed = false
		s.gen++
	}
}
