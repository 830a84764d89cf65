// Package keys handles Gemini API key storage, lookup, and the
// credential gate that blocks generation until a usable key exists.
package keys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// EnvVar is the environment variable consulted as the last-resort key
// source.
const EnvVar = "GEMINI_API_KEY"

const keysFile = "keys.json"

// Store persists the API key in the platform config directory.
type Store struct {
	configDir string
}

type keyEntry struct {
	Key string `json:"key"`
}

// keyring maps a provider name to its stored key.
type keyring map[string]keyEntry

const providerName = "gemini"

func NewStore() (*Store, error) {
	configDir, err := configDir()
	if err != nil {
		return nil, err
	}
	return &Store{configDir: configDir}, nil
}

// NewStoreAt is used by tests and by explicit --config overrides.
func NewStoreAt(dir string) *Store {
	return &Store{configDir: dir}
}

func configDir() (string, error) {
	// Allow override for testing
	if testDir := os.Getenv("SPACEAI_CONFIG_DIR"); testDir != "" {
		return testDir, nil
	}

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "spaceai"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "spaceai"), nil
	default:
		// XDG Base Directory Specification
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, "spaceai"), nil
	}
}

// Path returns the path to the keys.json file.
func (s *Store) Path() string {
	return filepath.Join(s.configDir, keysFile)
}

func (s *Store) load() (keyring, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return make(keyring), nil
		}
		return nil, err
	}

	var keys keyring
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to parse keys.json: %w", err)
	}
	return keys, nil
}

func (s *Store) save(keys keyring) error {
	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return err
	}

	// Owner read/write only
	if err := os.WriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write keys.json: %w", err)
	}
	return nil
}

// Set stores the API key.
func (s *Store) Set(key string) error {
	keys, err := s.load()
	if err != nil {
		return err
	}
	keys[providerName] = keyEntry{Key: key}
	return s.save(keys)
}

// Get retrieves the stored API key. A missing key is not an error.
func (s *Store) Get() (string, error) {
	keys, err := s.load()
	if err != nil {
		return "", err
	}
	return keys[providerName].Key, nil
}

// Delete removes the stored API key.
func (s *Store) Delete() error {
	keys, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := keys[providerName]; !ok {
		return fmt.Errorf("no stored key for %s", providerName)
	}
	delete(keys, providerName)
	return s.save(keys)
}

// Exists reports whether a key is stored.
func (s *Store) Exists() (bool, error) {
	key, err := s.Get()
	return key != "", err
}

// MaskKey returns a masked version of the key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// Resolve returns the API key using the priority order: explicit flag,
// stored key, environment variable. The second return names the source
// for display.
func Resolve(explicitKey string, store *Store) (string, string, error) {
	if explicitKey != "" {
		return explicitKey, "command-line flag", nil
	}

	if store != nil {
		storedKey, err := store.Get()
		if err == nil && storedKey != "" {
			return storedKey, "stored key (" + store.Path() + ")", nil
		}
	}

	if envKey := os.Getenv(EnvVar); envKey != "" {
		return envKey, fmt.Sprintf("environment variable (%s)", EnvVar), nil
	}

	return "", "", fmt.Errorf("API key required: run the 'key' command or set %s", EnvVar)
}
