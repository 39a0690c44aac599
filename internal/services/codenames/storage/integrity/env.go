package integrity

import (
	"fmt"
	"strings"

	"github.com/mikeczech/codenames/internal/platform/config"
)

// Env holds the signing key configuration. Keys is a comma separated list of
// id=secret pairs; Key is a single secret registered under KeyID.
type Env struct {
	Keys  string `env:"CODENAMES_EVENT_HMAC_KEYS"`
	Key   string `env:"CODENAMES_EVENT_HMAC_KEY"`
	KeyID string `env:"CODENAMES_EVENT_HMAC_KEY_ID" envDefault:"v1"`
}

// KeyringFromEnv loads the keyring from the environment. It returns a nil
// keyring when no key is configured; events are then stored unsigned.
func KeyringFromEnv() (*Keyring, error) {
	var cfg Env
	if err := config.ParseEnv(&cfg); err != nil {
		return nil, fmt.Errorf("parse integrity env: %w", err)
	}
	return cfg.Keyring()
}

// Keyring builds the keyring described by e.
func (e Env) Keyring() (*Keyring, error) {
	keyID := strings.TrimSpace(e.KeyID)
	if keyID == "" {
		keyID = "v1"
	}
	keySpec := strings.TrimSpace(e.Keys)
	if keySpec == "" {
		raw := strings.TrimSpace(e.Key)
		if raw == "" {
			return nil, nil
		}
		return NewKeyring(map[string][]byte{keyID: []byte(raw)}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(keySpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, value, ok := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		value = strings.TrimSpace(value)
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("invalid CODENAMES_EVENT_HMAC_KEYS entry %q", entry)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}
