package storage

import (
	"fmt"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"github.com/tomz197/soulstaff/internal/progression"
	"gopkg.in/yaml.v3"
)

const profileObject = "profile"

func decodeProfile(data []byte) (*progression.Profile, error) {
	p := progression.NewProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return progression.NewProfile(), fmt.Errorf("%w: %w", ErrMalformedSave, err)
	}
	if p.Owned == nil {
		p.Owned = []string{}
	}
	if p.Unlocked == nil {
		p.Unlocked = []string{}
	}
	return p, nil
}

// GDataProfiles stores a profile as one gdata property.
type GDataProfiles struct {
	manager *gdata.Manager
	key     string
}

// NewGDataProfiles creates a store for the profile named key.
func NewGDataProfiles(m *gdata.Manager, key string) *GDataProfiles {
	return &GDataProfiles{manager: m, key: key}
}

// Load implements ProfileStore.
func (s *GDataProfiles) Load() (*progression.Profile, error) {
	if !s.manager.ObjectPropExists(profileObject, s.key) {
		return progression.NewProfile(), nil
	}
	data, err := s.manager.LoadObjectProp(profileObject, s.key)
	if err != nil {
		return progression.NewProfile(), fmt.Errorf("failed to load profile %q: %w", s.key, err)
	}
	return decodeProfile(data)
}

// Save implements ProfileStore.
func (s *GDataProfiles) Save(p *progression.Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := s.manager.SaveObjectProp(profileObject, s.key, data); err != nil {
		return fmt.Errorf("failed to save profile %q: %w", s.key, err)
	}
	return nil
}

// MemoryProfiles keeps a serialized profile in memory.
type MemoryProfiles struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryProfiles creates an empty in-memory store.
func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{}
}

// Load implements ProfileStore.
func (s *MemoryProfiles) Load() (*progression.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return progression.NewProfile(), nil
	}
	return decodeProfile(s.data)
}

// Save implements ProfileStore.
func (s *MemoryProfiles) Save(p *progression.Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// OpenProfiles returns a gdata store for key, or a memory store when m is nil.
func OpenProfiles(m *gdata.Manager, key string) ProfileStore {
	if m == nil {
		return NewMemoryProfiles()
	}
	return NewGDataProfiles(m, key)
}
