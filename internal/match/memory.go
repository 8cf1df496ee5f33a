package match

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepository is a seedable in-process profile store. It backs tests and
// the demo wiring; the postgres repository is the production implementation.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryRepository creates an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[string]Profile)}
}

// Seed inserts or replaces profiles.
func (r *MemoryRepository) Seed(profiles ...Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
}

// GetProfile fetches one profile by id, (nil, nil) when absent.
func (r *MemoryRepository) GetProfile(_ context.Context, id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// QueryCandidates returns unsuspended profiles matching the filter, in
// ascending id order so scoring sees a fixed candidate ordering.
func (r *MemoryRepository) QueryCandidates(_ context.Context, f Filter) ([]Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Profile, 0, len(ids))
	for _, id := range ids {
		p := r.profiles[id]
		if p.Suspended || p.Role != f.Role {
			continue
		}
		if f.MentorshipOnly != nil && p.MentorshipAvailable != *f.MentorshipOnly {
			continue
		}
		if len(f.Industries) > 0 && !containsFold(f.Industries, p.Industry) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func containsFold(haystack []string, needle string) bool {
	for _, v := range haystack {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}
