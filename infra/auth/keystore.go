package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CrestNiraj12/molterm/domain"
)

const (
	apiKeyFile = "api_key"
	agentFile  = "agent.json"
)

// KeyProvider supplies the API key for authenticated requests.
type KeyProvider interface {
	APIKey() (string, error)
}

// StaticKey is a KeyProvider for a key held in memory.
type StaticKey string

// APIKey returns the key or domain.ErrNoAPIKey when it is blank.
func (k StaticKey) APIKey() (string, error) {
	key := strings.TrimSpace(string(k))
	if key == "" {
		return "", domain.ErrNoAPIKey
	}
	return key, nil
}

// FileKeyStore persists the API key and the cached agent profile under a
// directory, one file each.
type FileKeyStore struct {
	dir string
}

// NewFileKeyStore creates a key store rooted at dir.
func NewFileKeyStore(dir string) *FileKeyStore {
	return &FileKeyStore{dir: dir}
}

// Dir is the directory holding the key files.
func (s *FileKeyStore) Dir() string { return s.dir }

// APIKey reads and returns the key, trimming whitespace.
func (s *FileKeyStore) APIKey() (string, error) {
	path := filepath.Join(s.dir, apiKeyFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", domain.ErrNoAPIKey
	}
	if err != nil {
		return "", fmt.Errorf("reading api key from %s: %w", path, err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", domain.ErrNoAPIKey
	}
	return key, nil
}

// HasKey reports whether a non-empty key is stored.
func (s *FileKeyStore) HasKey() bool {
	_, err := s.APIKey()
	return err == nil
}

// SaveAPIKey stores key, replacing any previous one.
func (s *FileKeyStore) SaveAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrEmptyAPIKey
	}
	return s.write(apiKeyFile, []byte(key))
}

// MaskedKey returns the stored key masked for display, or "".
func (s *FileKeyStore) MaskedKey() string {
	key, err := s.APIKey()
	if err != nil {
		return ""
	}
	return domain.MaskAPIKey(key)
}

type agentRecord struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Karma       int       `json:"karma"`
	IsClaimed   bool      `json:"is_claimed"`
	CreatedAt   time.Time `json:"created_at"`
	XHandle     string    `json:"x_handle,omitempty"`
	XName       string    `json:"x_name,omitempty"`
}

// SaveAgent caches the logged-in agent.
func (s *FileKeyStore) SaveAgent(a domain.Agent) error {
	data, err := json.MarshalIndent(agentRecord{
		Name:        a.Name,
		Description: a.Description,
		Karma:       a.Karma,
		IsClaimed:   a.IsClaimed,
		CreatedAt:   a.CreatedAt,
		XHandle:     a.Owner.XHandle,
		XName:       a.Owner.XName,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding agent: %w", err)
	}
	return s.write(agentFile, data)
}

// Agent returns the cached agent. A missing cache is not an error.
func (s *FileKeyStore) Agent() (domain.Agent, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, agentFile))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Agent{}, false, nil
	}
	if err != nil {
		return domain.Agent{}, false, fmt.Errorf("reading cached agent: %w", err)
	}
	var rec agentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Agent{}, false, fmt.Errorf("parsing cached agent: %w", err)
	}
	return domain.Agent{
		Name:        rec.Name,
		Description: rec.Description,
		Karma:       rec.Karma,
		IsClaimed:   rec.IsClaimed,
		CreatedAt:   rec.CreatedAt,
		Owner:       domain.Owner{XHandle: rec.XHandle, XName: rec.XName},
	}, true, nil
}

// Clear removes the key and the cached agent.
func (s *FileKeyStore) Clear() error {
	for _, name := range []string{apiKeyFile, agentFile} {
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}

func (s *FileKeyStore) write(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
