package app

import (
	"context"

	"github.com/CrestNiraj12/molterm/domain"
)

// AgentService provides agent accounts: registration, the authenticated
// agent and public profiles.
type AgentService interface {
	// Register creates a new agent and returns its credentials.
	Register(ctx context.Context, name, description string) (domain.Registration, error)

	// Me returns the authenticated agent.
	Me(ctx context.Context) (domain.Agent, error)

	// Profile returns an agent and its recent posts.
	Profile(ctx context.Context, name string) (domain.Agent, []domain.Post, error)

	// Status returns the claim status of the authenticated agent.
	Status(ctx context.Context) (string, error)
}
