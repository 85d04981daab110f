package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/janekbaraniewski/tokentrack/internal/core"
)

// Credentials maps credential slots to secret values. API-key providers use
// their provider ID as the slot; qwen uses a key/secret pair.
type Credentials struct {
	Keys map[string]string `json:"keys"`
}

const (
	qwenAccessKeySlot    = "qwen.access_key"
	qwenAccessSecretSlot = "qwen.access_secret"
)

// credMu guards read-modify-write cycles on the credentials file.
var credMu sync.Mutex

func (c Credentials) APIKey(id core.ProviderID) string {
	return c.Keys[string(id)]
}

func (c Credentials) QwenAccessKey() string {
	return c.Keys[qwenAccessKeySlot]
}

func (c Credentials) QwenAccessSecret() string {
	return c.Keys[qwenAccessSecretSlot]
}

// HasCredentials reports whether the provider's required secrets are all
// present. Providers failing this check are excluded from refresh entirely.
func (c Credentials) HasCredentials(id core.ProviderID) bool {
	if id == core.ProviderQwen {
		return c.QwenAccessKey() != "" && c.QwenAccessSecret() != ""
	}
	return c.APIKey(id) != ""
}

func CredentialsPath() string {
	return filepath.Join(ConfigDir(), "credentials.json")
}

func LoadCredentials() (Credentials, error) {
	return LoadCredentialsFrom(CredentialsPath())
}

func LoadCredentialsFrom(path string) (Credentials, error) {
	creds := Credentials{Keys: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return creds, fmt.Errorf("reading credentials: %w", err)
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{Keys: make(map[string]string)}, fmt.Errorf("parsing credentials %s: %w", path, err)
	}

	if creds.Keys == nil {
		creds.Keys = make(map[string]string)
	}

	return creds, nil
}

func SaveCredential(slot, value string) error {
	return SaveCredentialTo(CredentialsPath(), slot, value)
}

func SaveCredentialTo(path, slot, value string) error {
	credMu.Lock()
	defer credMu.Unlock()

	creds, err := LoadCredentialsFrom(path)
	if err != nil {
		creds = Credentials{Keys: make(map[string]string)}
	}

	if value == "" {
		delete(creds.Keys, slot)
	} else {
		creds.Keys[slot] = value
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}
