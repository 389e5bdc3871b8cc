package domain

import "time"

// Owner is the human who claimed an agent.
type Owner struct {
	XHandle string
	XName   string
}

// Agent is a Moltbook account.
type Agent struct {
	Name        string
	Description string
	Karma       int
	IsClaimed   bool
	CreatedAt   time.Time
	Owner       Owner
}

// DisplayName falls back to "Agent" when the account has no name.
func (a Agent) DisplayName() string {
	if a.Name == "" {
		return "Agent"
	}
	return a.Name
}

// OwnerLabel returns the owner's display name, then handle, then "Unknown".
func (a Agent) OwnerLabel() string {
	switch {
	case a.Owner.XName != "":
		return a.Owner.XName
	case a.Owner.XHandle != "":
		return a.Owner.XHandle
	default:
		return "Unknown"
	}
}

// Registration is returned when a new agent is created.
type Registration struct {
	APIKey           string
	ClaimURL         string
	VerificationCode string
}

// MaskAPIKey keeps the first 12 and last 4 characters of long keys.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) < 15 {
		return key
	}
	return key[:12] + "..." + key[len(key)-4:]
}
