package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"cocoacalm/internal/models"
)

// Fixed keys of the durable key-value store.
const (
	KeyProgress         = "user_meditation_progress"
	KeyStatusCache      = "subscription_status"
	KeyTrialStart       = "trial_start_date"
	KeyLifetimePurchase = "lifetime_purchase"
	KeyTransactions     = "storekit_transactions"
)

var allKeys = []string{
	KeyProgress,
	KeyStatusCache,
	KeyTrialStart,
	KeyLifetimePurchase,
	KeyTransactions,
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Storage struct {
	dataDir string
	kv      KV
}

// Open creates the data directory and the requested key-value backend.
func Open(dataDir, backend string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	var (
		kv  KV
		err error
	)
	switch backend {
	case "", BackendFile:
		kv, err = NewFileKV(filepath.Join(dataDir, "store"))
	case BackendSQLite:
		kv, err = NewSQLiteKV(filepath.Join(dataDir, "cocoacalm.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return New(dataDir, kv), nil
}

// New wraps an existing key-value store.
func New(dataDir string, kv KV) *Storage {
	return &Storage{dataDir: dataDir, kv: kv}
}

func (s *Storage) DataDir() string {
	return s.dataDir
}

func (s *Storage) Close() error {
	return s.kv.Close()
}

func (s *Storage) configFile() string {
	return filepath.Join(s.dataDir, "config.yaml")
}

// GetJSON decodes the value stored under key into v. A missing key yields
// ErrNotFound, an undecodable value ErrCorrupt.
func (s *Storage) GetJSON(key string, v any) error {
	data, err := s.kv.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

func (s *Storage) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(key, data)
}

// GetProgress loads the saved progress. On a missing key it returns an empty
// value and no error; on a decode failure it returns an empty value and the
// error.
func (s *Storage) GetProgress() (models.UserProgress, error) {
	var progress models.UserProgress
	if err := s.GetJSON(KeyProgress, &progress); err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.UserProgress{}, nil
		}
		return models.UserProgress{}, err
	}
	return progress, nil
}

func (s *Storage) SaveProgress(progress models.UserProgress) error {
	return s.SetJSON(KeyProgress, progress)
}

func (s *Storage) GetStatusCache() (models.StatusCache, error) {
	var cache models.StatusCache
	if err := s.GetJSON(KeyStatusCache, &cache); err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.StatusCache{Tier: models.TierFree}, nil
		}
		return models.StatusCache{Tier: models.TierFree}, err
	}
	return cache, nil
}

func (s *Storage) SaveStatusCache(cache models.StatusCache) error {
	return s.SetJSON(KeyStatusCache, cache)
}

// GetTrialStart returns the stored trial start, or nil if no trial was ever
// started.
func (s *Storage) GetTrialStart() (*time.Time, error) {
	var start time.Time
	if err := s.GetJSON(KeyTrialStart, &start); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &start, nil
}

func (s *Storage) SetTrialStart(start time.Time) error {
	return s.SetJSON(KeyTrialStart, start)
}

func (s *Storage) HasLifetimePurchase() (bool, error) {
	var lifetime bool
	if err := s.GetJSON(KeyLifetimePurchase, &lifetime); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return lifetime, nil
}

func (s *Storage) SetLifetimePurchase() error {
	return s.SetJSON(KeyLifetimePurchase, true)
}

func (s *Storage) GetConfig() (models.Config, error) {
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		if os.IsNotExist(err) {
			config := models.DefaultConfig()
			if err := s.SaveConfig(config); err != nil {
				return config, err
			}
			return config, nil
		}
		return models.Config{}, err
	}

	config := models.DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return models.DefaultConfig(), fmt.Errorf("%w: config: %v", ErrCorrupt, err)
	}

	return config, nil
}

func (s *Storage) SaveConfig(config models.Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(s.configFile(), data, 0644)
}

// ResetAllData removes every stored key and the preferences file.
func (s *Storage) ResetAllData() error {
	for _, key := range allKeys {
		if err := s.kv.Delete(key); err != nil {
			return err
		}
	}

	if err := os.Remove(s.configFile()); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

func (s *Storage) IsFirstTime() bool {
	// Check if config file exists
	if _, err := os.Stat(s.configFile()); os.IsNotExist(err) {
		return true
	}
	return false
}
