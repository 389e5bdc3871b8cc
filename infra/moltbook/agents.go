package moltbook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/CrestNiraj12/molterm/domain"
)

type agentService struct {
	client *Client
}

// NewAgentService creates the agent endpoints on top of client.
func NewAgentService(client *Client) *agentService {
	return &agentService{client: client}
}

type registerRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type registerEnvelope struct {
	Agent *apiRegistration `json:"agent"`
	apiRegistration
}

// Register creates a new agent without authenticating.
func (s *agentService) Register(ctx context.Context, name, description string) (domain.Registration, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Registration{}, domain.ErrEmptyAgentName
	}
	var env registerEnvelope
	req := registerRequest{Name: name, Description: strings.TrimSpace(description)}
	if err := s.client.PostAnonymous(ctx, "/agents/register", req, &env); err != nil {
		return domain.Registration{}, fmt.Errorf("registering agent: %w", err)
	}
	reg := mapRegistration(env.apiRegistration)
	if env.Agent != nil {
		nested := mapRegistration(*env.Agent)
		reg.APIKey = firstNonEmpty(nested.APIKey, reg.APIKey)
		reg.ClaimURL = firstNonEmpty(nested.ClaimURL, reg.ClaimURL)
		reg.VerificationCode = firstNonEmpty(nested.VerificationCode, reg.VerificationCode)
	}
	if reg.APIKey == "" {
		return domain.Registration{}, fmt.Errorf("registering agent: response carried no api key")
	}
	return reg, nil
}

type agentEnvelope struct {
	Agent *apiAgent `json:"agent"`
	apiAgent
}

// agent prefers the nested object for profile fields. The name follows the
// same order the header uses: name, agent.name, username.
func (e agentEnvelope) agent() domain.Agent {
	names := []string{e.Name}
	a := mapAgent(e.apiAgent)
	if e.Agent != nil {
		a = mapAgent(*e.Agent)
		names = append(names, e.Agent.Name)
	}
	names = append(names, e.Username)
	a.Name = clean(firstNonEmpty(names...))
	return a
}

// Me returns the authenticated agent. Accounts without a name keep an empty
// Name; callers use Agent.DisplayName.
func (s *agentService) Me(ctx context.Context) (domain.Agent, error) {
	var env agentEnvelope
	if err := s.client.Get(ctx, "/agents/me", &env); err != nil {
		return domain.Agent{}, fmt.Errorf("fetching current agent: %w", err)
	}
	return env.agent(), nil
}

type profileEnvelope struct {
	agentEnvelope
	RecentPosts []apiPost `json:"recentPosts"`
	RecentAlt   []apiPost `json:"recent_posts"`
}

// Profile returns an agent and its recent posts.
func (s *agentService) Profile(ctx context.Context, name string) (domain.Agent, []domain.Post, error) {
	var env profileEnvelope
	path := "/agents/profile?name=" + url.QueryEscape(name)
	if err := s.client.Get(ctx, path, &env); err != nil {
		return domain.Agent{}, nil, fmt.Errorf("fetching profile %s: %w", name, err)
	}
	recent := env.RecentPosts
	if len(recent) == 0 {
		recent = env.RecentAlt
	}
	agent := env.agent()
	if agent.Name == "" {
		agent.Name = name
	}
	return agent, mapPosts(recent), nil
}

// Status returns the claim status of the authenticated agent, for example
// "claimed" or "pending_claim".
func (s *agentService) Status(ctx context.Context) (string, error) {
	var raw map[string]json.RawMessage
	if err := s.client.Get(ctx, "/agents/status", &raw); err != nil {
		return "", fmt.Errorf("fetching agent status: %w", err)
	}
	return firstString(raw["status"], raw["claim_status"]), nil
}
