package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Region selects which TickTick deployment requests target.
type Region string

const (
	// RegionGlobal targets ticktick.com (default).
	RegionGlobal Region = "global"

	// RegionChina targets dida365.com.
	RegionChina Region = "china"
)

// DefaultRequestTimeout is the per-request deadline for API calls.
const DefaultRequestTimeout = 30 * time.Second

// DefaultTokenFileName is the name of the token file inside the config dir.
const DefaultTokenFileName = "token.json"

// OAuth holds the OAuth client credentials and flow settings. Built once
// from the environment at process start; treat as immutable afterwards.
type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Region       Region

	// TokenPath is the token file location. Defaults to
	// ~/.config/ticktick-mcp/token.json.
	TokenPath string
}

// ParseRegion validates a region string from flags or environment.
// An empty value maps to RegionGlobal.
func ParseRegion(s string) (Region, error) {
	switch Region(s) {
	case "", RegionGlobal:
		return RegionGlobal, nil
	case RegionChina:
		return RegionChina, nil
	default:
		return "", fmt.Errorf("unknown region %q (supported: global, china)", s)
	}
}

// FromEnv reads the OAuth configuration from the environment.
//
// Recognized variables: TICKTICK_CLIENT_ID, TICKTICK_CLIENT_SECRET,
// TICKTICK_REDIRECT_URI, TICKTICK_REGION and TICKTICK_TOKEN_FILE.
// ClientID and ClientSecret are required; the rest have defaults.
func FromEnv() (OAuth, error) {
	region, err := ParseRegion(os.Getenv("TICKTICK_REGION"))
	if err != nil {
		return OAuth{}, err
	}

	cfg := OAuth{
		ClientID:     os.Getenv("TICKTICK_CLIENT_ID"),
		ClientSecret: os.Getenv("TICKTICK_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("TICKTICK_REDIRECT_URI"),
		Region:       region,
		TokenPath:    os.Getenv("TICKTICK_TOKEN_FILE"),
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return OAuth{}, fmt.Errorf("TICKTICK_CLIENT_ID and TICKTICK_CLIENT_SECRET must be set")
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = "http://localhost:8000/callback"
	}
	if cfg.TokenPath == "" {
		cfg.TokenPath = DefaultTokenPath()
	}

	return cfg, nil
}

// DefaultTokenPath returns the default token file location under the
// user's config directory.
func DefaultTokenPath() string {
	return filepath.Join(userConfigDir(), "ticktick-mcp", DefaultTokenFileName)
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return filepath.Join(homeDir(), ".config")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}
