// Package storage persists profiles and the high-score ranking.
//
// Data is serialized as YAML. The gdata-backed stores write to the platform
// data directory; the memory stores are the degraded mode used when no data
// directory is available, and double as test fakes.
package storage

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/quasilyte/gdata/v2"
	"github.com/tomz197/soulstaff/internal/progression"
)

// DefaultProfileKey is the profile property used by single-player frontends.
const DefaultProfileKey = "soulstaff-save"

// ErrMalformedSave is returned when stored data exists but cannot be decoded.
var ErrMalformedSave = errors.New("malformed save")

// ProfileStore loads and saves one profile.
type ProfileStore interface {
	// Load returns the stored profile, or a fresh one if none was saved.
	// A malformed save returns a fresh profile together with ErrMalformedSave.
	Load() (*progression.Profile, error)
	Save(p *progression.Profile) error
}

// RankingStore keeps the best runs.
type RankingStore interface {
	// Submit records a run and returns the updated ranking.
	Submit(run RunSummary) ([]RunSummary, error)
	Top() ([]RunSummary, error)
}

// RunSummary describes one finished run.
type RunSummary struct {
	Name         string        `yaml:"name" json:"name"`
	Score        int           `yaml:"score" json:"score"`
	Level        int           `yaml:"level" json:"level"`
	SurvivalTime time.Duration `yaml:"survivalTime" json:"survivalTime"`
	Kills        int           `yaml:"kills" json:"kills"`
	SoulOrbs     int           `yaml:"soulOrbs" json:"soulOrbs"`
	Build        []string      `yaml:"build" json:"build"`
	Seq          int64         `yaml:"seq" json:"-"`
	FinishedAt   time.Time     `yaml:"finishedAt" json:"finishedAt"`
}

// OpenManager opens the gdata data directory for appName.
func OpenManager(appName string) (*gdata.Manager, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open data dir %q: %w", appName, err)
	}
	return m, nil
}

// ProfileKey turns a user name into a property key. Names made only of
// [a-z0-9_-] map to themselves; any other name keeps its allowed characters
// and gets a hash suffix so distinct names never share a key. An empty name
// maps to DefaultProfileKey.
func ProfileKey(name string) string {
	if name == "" {
		return DefaultProfileKey
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.String() == name {
		return "user-" + name
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("user-%s.%08x", b.String(), h.Sum32())
}

// ProfileLocks tracks the profile keys held by live sessions. A profile is
// loaded once per session and saved whole, so only one session may play a
// key at a time.
type ProfileLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewProfileLocks creates an empty lock table.
func NewProfileLocks() *ProfileLocks {
	return &ProfileLocks{held: make(map[string]bool)}
}

// Acquire claims key. It returns false if another session holds it; otherwise
// the returned func releases the key and may be called more than once.
func (l *ProfileLocks) Acquire(key string) (release func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false
	}
	l.held[key] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true
}
