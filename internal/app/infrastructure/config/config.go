package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const TokenEnv = "TWITCH_TOKEN"

type Manager struct {
	cfg  *Config
	path string
}

// New reads the configuration at path. The OAuth token comes from the
// environment; a .env file next to the working directory is loaded first
// when present.
func New(path string) (*Manager, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	m := &Manager{path: path}

	cfg, err := m.readParseValidate(path, os.Getenv(TokenEnv))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	m.cfg = cfg

	return m, nil
}

// NewFromBytes parses an in-memory configuration.
func NewFromBytes(raw []byte, token string) (*Manager, error) {
	m := &Manager{}

	cfg, err := m.parseValidate(raw, token)
	if err != nil {
		return nil, err
	}
	m.cfg = cfg

	return m, nil
}

func (m *Manager) Get() *Config {
	return m.cfg
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) readParseValidate(path, token string) (*Config, error) {
	if path == "" {
		return nil, errors.New("no config path provided")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open/read config: %w", err)
	}

	return m.parseValidate(raw, token)
}

func (m *Manager) parseValidate(raw []byte, token string) (*Config, error) {
	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	cfg.Channel = strings.TrimPrefix(strings.TrimSpace(cfg.Channel), "#")
	cfg.Token = strings.TrimPrefix(strings.TrimSpace(token), "oauth:")

	if err := m.validate(cfg); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return cfg, nil
}
