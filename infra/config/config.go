package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the public Moltbook API.
const DefaultAPIURL = "https://www.moltbook.com/api/v1"

// FeedSorts lists the accepted feed orderings, in cycling order.
var FeedSorts = []string{"hot", "new", "top", "rising"}

// Config holds application-level configuration.
type Config struct {
	APIURL        string // e.g. "https://www.moltbook.com/api/v1"
	AuthDir       string // Directory holding the API key and cached agent
	UIStatePath   string // JSON file with persisted view preferences
	LogPath       string // Log file used by the terminal UI
	LogLevel      string
	LogFormat     string // "json" or "pretty"
	FeedSort      string
	FeedLimit     int
	ListenAddr    string // Address for `molterm serve`
	SessionSecret string // Cookie signing secret for `molterm serve`
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory when one exists. Variables already set in the
// environment win over .env entries.
//
//	MOLTBOOK_API_URL       : API base URL (default: https://www.moltbook.com/api/v1)
//	MOLTBOOK_AUTH_DIR      : Key storage (default: ~/.config/molterm)
//	MOLTBOOK_FEED_SORT     : hot | new | top | rising (default: hot)
//	MOLTBOOK_FEED_LIMIT    : Posts per feed load (default: 25)
//	MOLTBOOK_LISTEN        : serve address (default: 127.0.0.1:8787)
//	MOLTBOOK_SESSION_SECRET: serve cookie secret (default: random per process)
//	LOG_LEVEL, LOG_FORMAT  : debug|info|warn|error, json|pretty
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	apiURL := getEnv("MOLTBOOK_API_URL", DefaultAPIURL)
	parsed, err := url.Parse(apiURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, fmt.Errorf("invalid MOLTBOOK_API_URL: must be an absolute URL")
	}
	if parsed.Scheme != "https" {
		return Config{}, fmt.Errorf("invalid MOLTBOOK_API_URL: only https is allowed")
	}
	apiURL = strings.TrimRight(parsed.String(), "/")

	authDir := os.Getenv("MOLTBOOK_AUTH_DIR")
	if authDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		authDir = filepath.Join(home, ".config", "molterm")
	}

	sort := strings.ToLower(getEnv("MOLTBOOK_FEED_SORT", "hot"))
	if !ValidSort(sort) {
		return Config{}, fmt.Errorf("invalid MOLTBOOK_FEED_SORT %q: want one of %s", sort, strings.Join(FeedSorts, ", "))
	}

	limit := 25
	if v := os.Getenv("MOLTBOOK_FEED_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return Config{}, fmt.Errorf("invalid MOLTBOOK_FEED_LIMIT %q: want 1-100", v)
		}
		limit = n
	}

	secret := os.Getenv("MOLTBOOK_SESSION_SECRET")
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return Config{}, err
		}
	}

	return Config{
		APIURL:        apiURL,
		AuthDir:       authDir,
		UIStatePath:   filepath.Join(authDir, "ui_state.json"),
		LogPath:       filepath.Join(authDir, "molterm.log"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		FeedSort:      sort,
		FeedLimit:     limit,
		ListenAddr:    getEnv("MOLTBOOK_LISTEN", "127.0.0.1:8787"),
		SessionSecret: secret,
	}, nil
}

// ValidSort reports whether s is a known feed ordering.
func ValidSort(s string) bool {
	for _, v := range FeedSorts {
		if v == s {
			return true
		}
	}
	return false
}

// NextSort returns the ordering after s, wrapping around.
func NextSort(s string) string {
	for i, v := range FeedSorts {
		if v == s {
			return FeedSorts[(i+1)%len(FeedSorts)]
		}
	}
	return FeedSorts[0]
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// UIState is persisted between runs of the terminal UI.
type UIState struct {
	FeedSort string `json:"feed_sort,omitempty"`
}

// LoadUIState reads path. A missing file yields the zero state.
func LoadUIState(path string) (UIState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return UIState{}, nil
	}
	if err != nil {
		return UIState{}, fmt.Errorf("reading ui state: %w", err)
	}
	var st UIState
	if err := json.Unmarshal(data, &st); err != nil {
		return UIState{}, fmt.Errorf("parsing ui state: %w", err)
	}
	return st, nil
}

// SaveUIState writes st to path, creating its directory.
func SaveUIState(path string, st UIState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding ui state: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
