package auth

import (
	"strings"
	"sync"

	"github.com/CrestNiraj12/molterm/domain"
)

// MemoryKeyStore keeps the key and agent in memory. It backs browser
// sessions in serve mode, where the key lives in the session cookie.
type MemoryKeyStore struct {
	mu       sync.RWMutex
	key      string
	agent    domain.Agent
	hasAgent bool
}

// NewMemoryKeyStore returns a store seeded with key, which may be empty.
func NewMemoryKeyStore(key string) *MemoryKeyStore {
	return &MemoryKeyStore{key: strings.TrimSpace(key)}
}

func (s *MemoryKeyStore) APIKey() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == "" {
		return "", domain.ErrNoAPIKey
	}
	return s.key, nil
}

func (s *MemoryKeyStore) SaveAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrEmptyAPIKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if key != s.key {
		s.agent, s.hasAgent = domain.Agent{}, false
	}
	s.key = key
	return nil
}

func (s *MemoryKeyStore) SaveAgent(a domain.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agent, s.hasAgent = a, true
	return nil
}

func (s *MemoryKeyStore) Agent() (domain.Agent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agent, s.hasAgent, nil
}

func (s *MemoryKeyStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
	s.agent, s.hasAgent = domain.Agent{}, false
	return nil
}
