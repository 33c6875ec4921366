package env

import (
	"sync"

	"github.com/rs/zerolog"
)

// KeyResolver maps an external station identifier (canonical PascalCase
// key) back to a zone display name.
type KeyResolver func(key string) (string, bool)

// StoreConfig holds configuration for the environment store.
type StoreConfig struct {
	// ZoneNames is the full set of known zone display names. Fixed at
	// startup.
	ZoneNames []string

	// Resolver maps inbound external keys to zone display names.
	Resolver KeyResolver

	// Overrides is an optional direct external-key -> display-name map
	// consulted before the resolver.
	Overrides map[string]string

	// Logger for store operations.
	Logger zerolog.Logger
}

// Store holds the latest reading table. The table pointer is the only
// mutable state; each refresh swaps in a complete replacement under the
// lock, so readers always see one self-consistent table.
type Store struct {
	zoneNames []string
	resolver  KeyResolver
	overrides map[string]string
	logger    zerolog.Logger

	mu    sync.RWMutex
	table *Table
}

// NewStore creates an environment store with no table yet.
func NewStore(cfg StoreConfig) *Store {
	return &Store{
		zoneNames: cfg.ZoneNames,
		resolver:  cfg.Resolver,
		overrides: cfg.Overrides,
		logger:    cfg.Logger,
	}
}

// Resolve maps a raw inbound payload, keyed by external identifier, to
// zone display names. Unresolvable keys are logged and dropped; they
// never fail the refresh.
func (s *Store) Resolve(raw map[string]Reading) map[string]Reading {
	out := make(map[string]Reading, len(raw))
	for key, reading := range raw {
		name, ok := s.overrides[key]
		if !ok && s.resolver != nil {
			name, ok = s.resolver(key)
		}
		if !ok {
			s.logger.Warn().Str("key", key).Msg("no zone mapping for inbound key, dropping")
			continue
		}
		out[name] = reading
	}
	return out
}

// Replace builds a complete table from inbound data (already resolved
// to display names) and swaps it in. Returns the new table.
func (s *Store) Replace(data map[string]Reading) *Table {
	table := BuildTable(s.zoneNames, data)

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()

	s.logger.Info().
		Int("zones", len(table.Zones)).
		Int("observed", table.DataPoints()).
		Msg("environment table replaced")
	return table
}

// Snapshot returns the current table, or nil before the first refresh.
// The returned table is immutable; callers may hold it across a
// concurrent Replace.
func (s *Store) Snapshot() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}
