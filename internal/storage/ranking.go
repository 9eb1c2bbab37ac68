package storage

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"github.com/tomz197/soulstaff/internal/config"
	"gopkg.in/yaml.v3"
)

const (
	rankingObject   = "ranking"
	rankingProperty = "top"
)

// rank inserts run into entries, sorted by score descending with earlier
// submissions first on ties, and trims to the ranking size.
func rank(entries []RunSummary, run RunSummary) []RunSummary {
	entries = append(entries, run)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Seq < entries[j].Seq
	})
	if len(entries) > config.RankingSize {
		entries = entries[:config.RankingSize]
	}
	return entries
}

func nextSeq(entries []RunSummary) int64 {
	var seq int64
	for _, e := range entries {
		seq = max(seq, e.Seq)
	}
	return seq + 1
}

// MemoryRanking keeps the ranking in memory.
type MemoryRanking struct {
	mu      sync.Mutex
	entries []RunSummary
}

// NewMemoryRanking creates an empty ranking.
func NewMemoryRanking() *MemoryRanking {
	return &MemoryRanking{}
}

// Submit implements RankingStore.
func (r *MemoryRanking) Submit(run RunSummary) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.Seq = nextSeq(r.entries)
	r.entries = rank(r.entries, run)
	return slices.Clone(r.entries), nil
}

// Top implements RankingStore.
func (r *MemoryRanking) Top() ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries), nil
}

// GDataRanking persists the ranking as one gdata property. It is safe for
// concurrent use by several sessions of one process.
type GDataRanking struct {
	mu      sync.Mutex
	manager *gdata.Manager
}

// NewGDataRanking creates a ranking stored through m.
func NewGDataRanking(m *gdata.Manager) *GDataRanking {
	return &GDataRanking{manager: m}
}

func (r *GDataRanking) load() ([]RunSummary, error) {
	if !r.manager.ObjectPropExists(rankingObject, rankingProperty) {
		return nil, nil
	}
	data, err := r.manager.LoadObjectProp(rankingObject, rankingProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}
	var entries []RunSummary
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: ranking: %w", ErrMalformedSave, err)
	}
	return entries, nil
}

// Submit implements RankingStore. A malformed stored ranking is replaced.
func (r *GDataRanking) Submit(run RunSummary) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil && !errors.Is(err, ErrMalformedSave) {
		return nil, err
	}
	run.Seq = nextSeq(entries)
	entries = rank(entries, run)

	data, err := yaml.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ranking: %w", err)
	}
	if err := r.manager.SaveObjectProp(rankingObject, rankingProperty, data); err != nil {
		return nil, fmt.Errorf("failed to save ranking: %w", err)
	}
	return entries, nil
}

// Top implements RankingStore.
func (r *GDataRanking) Top() ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// OpenRanking returns a gdata ranking, or a memory ranking when m is nil.
func OpenRanking(m *gdata.Manager) RankingStore {
	if m == nil {
		return NewMemoryRanking()
	}
	return NewGDataRanking(m)
}
