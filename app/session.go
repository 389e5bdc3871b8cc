package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
)

// KeyStore persists the API key and the cached agent of one user.
type KeyStore interface {
	APIKey() (string, error)
	SaveAPIKey(key string) error
	SaveAgent(a domain.Agent) error
	Agent() (domain.Agent, bool, error)
	Clear() error
}

// Session is the per-user context: the auth store and the cooldown tracker.
// One Session exists per terminal run or browser session, and it must only
// be used from that front end's event loop.
type Session struct {
	keys      KeyStore
	cooldowns *cooldown.Tracker
}

// NewSession wires a session. A nil tracker gets a fresh wall-clock one.
func NewSession(keys KeyStore, cooldowns *cooldown.Tracker) *Session {
	if cooldowns == nil {
		cooldowns = cooldown.New(nil)
	}
	return &Session{keys: keys, cooldowns: cooldowns}
}

// Keys is the session's key store; it also serves as the HTTP key provider.
func (s *Session) Keys() KeyStore { return s.keys }

// Cooldowns is the session's tracker.
func (s *Session) Cooldowns() *cooldown.Tracker { return s.cooldowns }

// HasKey reports whether an API key is stored.
func (s *Session) HasKey() bool {
	_, err := s.keys.APIKey()
	return err == nil
}

// Login stores key. The caller verifies it by fetching the agent next.
func (s *Session) Login(key string) error {
	if err := s.keys.SaveAPIKey(key); err != nil {
		return fmt.Errorf("saving api key: %w", err)
	}
	return nil
}

// SetAgent caches the authenticated agent for the header.
func (s *Session) SetAgent(a domain.Agent) error {
	if err := s.keys.SaveAgent(a); err != nil {
		return fmt.Errorf("caching agent: %w", err)
	}
	return nil
}

// Agent returns the cached agent, if any.
func (s *Session) Agent() (domain.Agent, bool) {
	a, ok, err := s.keys.Agent()
	if err != nil {
		return domain.Agent{}, false
	}
	return a, ok
}

// CurrentUserName is the cached agent's name, or "Agent".
func (s *Session) CurrentUserName() string {
	a, _ := s.Agent()
	return a.DisplayName()
}

// UserLabel is the header text: "name | masked key".
func (s *Session) UserLabel() string {
	key, err := s.keys.APIKey()
	if err != nil {
		return ""
	}
	return s.CurrentUserName() + " | " + domain.MaskAPIKey(key)
}

// Logout clears the key, the cached agent and every cooldown.
func (s *Session) Logout() error {
	s.cooldowns.Reset()
	if err := s.keys.Clear(); err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	return nil
}

// CooldownError rejects a submit while its kind is cooling down.
type CooldownError struct {
	Kind      cooldown.Kind
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("⏳ Cooldown: %s remaining", cooldown.FormatRemaining(e.Kind, e.Remaining))
}

// CheckSubmit returns a *CooldownError when kind is blocked.
func (s *Session) CheckSubmit(kind cooldown.Kind) error {
	if rem := s.cooldowns.Remaining(kind); rem > 0 {
		return &CooldownError{Kind: kind, Remaining: rem}
	}
	return nil
}

// Outcome is what a front end shows after a submit completed.
type Outcome struct {
	Notice  string
	IsError bool
	// Tick starts the countdown chain when Started is set.
	Tick    cooldown.Tick
	Started bool
}

// OnSubmitOutcome feeds the result of a post or comment submit into the
// tracker. Success starts the default cooldown, a rate limit starts the
// server's cooldown (the default when it sent none) and any other failure
// leaves the tracker alone.
func (s *Session) OnSubmitOutcome(kind cooldown.Kind, err error) Outcome {
	if err == nil {
		return Outcome{
			Notice:  successNotice(kind),
			Tick:    s.cooldowns.RecordSuccess(kind),
			Started: true,
		}
	}

	var rl *domain.RateLimitedError
	if errors.As(err, &rl) {
		retry := rl.RetryAfter(kind.Unit())
		if retry <= 0 {
			retry = kind.Default()
		}
		return Outcome{
			Notice:  rateLimitNotice(kind, retry),
			IsError: true,
			Tick:    s.cooldowns.RecordRateLimited(kind, retry),
			Started: true,
		}
	}

	var ce *CooldownError
	if errors.As(err, &ce) {
		return Outcome{Notice: ce.Error(), IsError: true}
	}
	return Outcome{Notice: domain.UserMessage(err, failureNotice(kind)), IsError: true}
}

func successNotice(kind cooldown.Kind) string {
	if kind == cooldown.Post {
		return "Post created successfully!"
	}
	return "Comment added!"
}

func failureNotice(kind cooldown.Kind) string {
	if kind == cooldown.Post {
		return "Failed to create post"
	}
	return "Failed to add comment"
}

func rateLimitNotice(kind cooldown.Kind, retry time.Duration) string {
	verb := "commenting"
	if kind == cooldown.Post {
		verb = "posting"
	}
	return fmt.Sprintf("Please wait %s before %s again", cooldown.FormatRemaining(kind, retry), verb)
}
