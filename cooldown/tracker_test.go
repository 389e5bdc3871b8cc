package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker() (*Tracker, *fakeClock) {
	clk := &fakeClock{now: time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)}
	return New(clk.Now), clk
}

func TestTracker_UnusedKindIsPermitted(t *testing.T) {
	tr, _ := newTestTracker()
	assert.False(t, tr.IsBlocked(Post))
	assert.Zero(t, tr.Remaining(Comment))
	assert.Empty(t, tr.Label(Post))
	assert.Equal(t, SignalIdle, tr.Poll(Comment).Signal)
}

func TestTracker_RecordSuccessPost(t *testing.T) {
	tr, _ := newTestTracker()
	tr.RecordSuccess(Post)

	require.True(t, tr.IsBlocked(Post))
	assert.InDelta(t, float64(30*time.Minute), float64(tr.Remaining(Post)), float64(time.Second))
	assert.False(t, tr.IsBlocked(Comment), "kinds are independent")
}

func TestTracker_RecordRateLimitedUsesServerHint(t *testing.T) {
	tr, _ := newTestTracker()
	tr.RecordRateLimited(Comment, 45*time.Second)
	assert.InDelta(t, float64(45*time.Second), float64(tr.Remaining(Comment)), float64(time.Second))
}

func TestTracker_RecordRateLimitedWithoutHintUsesDefault(t *testing.T) {
	tr, _ := newTestTracker()
	tr.RecordRateLimited(Comment, 0)
	assert.Equal(t, 20*time.Second, tr.Remaining(Comment))
	tr.RecordRateLimited(Post, -time.Second)
	assert.Equal(t, 30*time.Minute, tr.Remaining(Post))
}

func TestTracker_LastWriteWins(t *testing.T) {
	tr, _ := newTestTracker()
	tr.RecordSuccess(Post)
	tr.RecordRateLimited(Post, 5*time.Second)
	assert.Equal(t, 5*time.Second, tr.Remaining(Post))

	tr.RecordRateLimited(Comment, 10*time.Second)
	tr.RecordRateLimited(Comment, 10*time.Second)
	assert.Equal(t, 10*time.Second, tr.Remaining(Comment), "repeated failures must not stack")
}

func TestTracker_UnblocksWhenClockPassesExpiry(t *testing.T) {
	tr, clk := newTestTracker()
	tr.RecordSuccess(Comment)

	clk.Advance(19 * time.Second)
	require.True(t, tr.IsBlocked(Comment))

	clk.Advance(time.Second)
	assert.False(t, tr.IsBlocked(Comment), "exactly at expiry the action is permitted")
	assert.Zero(t, tr.Remaining(Comment))
}

func TestTracker_ClockNeverRunsBackwards(t *testing.T) {
	tr, clk := newTestTracker()
	tr.RecordSuccess(Comment)
	clk.Advance(5 * time.Second)
	before := tr.Remaining(Comment)

	clk.Advance(-3 * time.Second)
	assert.LessOrEqual(t, tr.Remaining(Comment), before)
}

func TestTracker_CommentTickChain(t *testing.T) {
	tr, clk := newTestTracker()
	tick := tr.RecordRateLimited(Comment, 2500*time.Millisecond)
	require.Equal(t, SignalRefresh, tick.Signal)
	assert.Equal(t, time.Second, tick.Next)

	var refreshes int
	for tick.Signal == SignalRefresh {
		refreshes++
		clk.Advance(tick.Next)
		tick = tr.Poll(Comment)
	}
	assert.Equal(t, 3, refreshes, "1s, 1s, then the 500ms remainder")
	assert.Equal(t, SignalReady, tick.Signal)
	assert.Equal(t, SignalIdle, tr.Poll(Comment).Signal, "re-enable is signalled once")
}

func TestTracker_PostTickCadence(t *testing.T) {
	tr, clk := newTestTracker()
	tick := tr.RecordRateLimited(Post, 90*time.Second)
	assert.Equal(t, time.Minute, tick.Next)

	clk.Advance(tick.Next)
	tick = tr.Poll(Post)
	require.Equal(t, SignalRefresh, tick.Signal)
	assert.Equal(t, 30*time.Second, tick.Next, "last tick lands on the expiry")

	clk.Advance(tick.Next)
	assert.Equal(t, SignalReady, tr.Poll(Post).Signal)
}

func TestTracker_GenerationChangesOnEveryRecord(t *testing.T) {
	tr, _ := newTestTracker()
	first := tr.RecordSuccess(Comment).Gen
	second := tr.RecordRateLimited(Comment, time.Second).Gen
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, tr.Gen(Comment))
}

func TestTracker_Labels(t *testing.T) {
	tr, clk := newTestTracker()
	tr.RecordSuccess(Post)
	clk.Advance(30 * time.Second)
	assert.Equal(t, "⏳ Cooldown: 30 minutes remaining", tr.Label(Post))

	tr.RecordRateLimited(Comment, 1500*time.Millisecond)
	assert.Equal(t, "⏳ Cooldown: 2 seconds remaining", tr.Label(Comment))
}

func TestTracker_Reset(t *testing.T) {
	tr, _ := newTestTracker()
	gen := tr.RecordSuccess(Post).Gen
	tr.Reset()
	assert.False(t, tr.IsBlocked(Post))
	assert.Greater(t, tr.Gen(Post), gen)
	assert.Equal(t, SignalIdle, tr.Poll(Post).Signal)
}
