// Package memstore is an in-memory ports.DataStore used by tests and the
// CLI's --demo mode, analogous to the teacher's internal/testkit in-memory
// adapters.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/ports"
)

// Store is a goroutine-safe in-memory implementation of ports.DataStore.
type Store struct {
	mu         sync.RWMutex
	points     map[core.ID]*manifold.ManifoldPoint
	couplings  []manifold.RecursiveCoupling
	wisdom     map[core.ID]*manifold.WisdomField
	signatures []manifold.SignatureRecord
}

// New returns an empty store.
func New() *Store {
	return &Store{
		points: make(map[core.ID]*manifold.ManifoldPoint),
		wisdom: make(map[core.ID]*manifold.WisdomField),
	}
}

// PutPoint inserts or replaces a point. Test and demo-seeding helper, not
// part of ports.DataStore.
func (s *Store) PutPoint(p *manifold.ManifoldPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[p.ID] = p
}

// PutCoupling appends a coupling record.
func (s *Store) PutCoupling(c manifold.RecursiveCoupling) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.couplings = append(s.couplings, c)
}

// PutWisdom sets the active wisdom record for a point.
func (s *Store) PutWisdom(w manifold.WisdomField) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wisdom[w.PointID] = &w
}

func (s *Store) GetPoint(_ context.Context, id core.ID) (*manifold.ManifoldPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points[id], nil
}

func (s *Store) ListConversationPoints(_ context.Context, conv core.ConversationID, since core.Timestamp) ([]*manifold.ManifoldPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*manifold.ManifoldPoint
	for _, p := range s.points {
		if p.ConversationID != conv {
			continue
		}
		if !since.IsZero() && p.CreatedAt.Before(since) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListUserPoints(_ context.Context, fingerprint core.SourceFingerprint, since core.Timestamp, limit int) ([]*manifold.ManifoldPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*manifold.ManifoldPoint
	for _, p := range s.points {
		if p.SourceFingerprint != fingerprint {
			continue
		}
		if !since.IsZero() && p.CreatedAt.Before(since) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListCouplings(_ context.Context, pointID core.ID, since core.Timestamp, order ports.SortOrder, limit int) ([]manifold.RecursiveCoupling, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []manifold.RecursiveCoupling
	for _, c := range s.couplings {
		if pointID != "" && c.PointP != pointID && c.PointQ != pointID {
			continue
		}
		if !since.IsZero() && c.ComputedAt.Before(since) {
			continue
		}
		out = append(out, c)
	}
	if order == ports.Descending {
		sort.Slice(out, func(i, j int) bool { return out[i].ComputedAt.After(out[j].ComputedAt) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ComputedAt.Before(out[j].ComputedAt) })
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) LatestWisdom(_ context.Context, pointID core.ID) (*manifold.WisdomField, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wisdom[pointID], nil
}

func (s *Store) LatestCrossSourcePoint(_ context.Context, excluding core.SourceFingerprint) (*manifold.ManifoldPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *manifold.ManifoldPoint
	for _, p := range s.points {
		if p.SourceFingerprint == excluding {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	return latest, nil
}

func (s *Store) AppendSignature(_ context.Context, rec manifold.SignatureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.signatures {
		if existing.PointID == rec.PointID && existing.SignatureType == rec.SignatureType &&
			existing.ComputedAt.Time().Equal(rec.ComputedAt.Time()) {
			return nil
		}
	}
	s.signatures = append(s.signatures, rec)
	return nil
}

// Signatures returns a snapshot of every appended signature record. Test
// helper, not part of ports.DataStore.
func (s *Store) Signatures() []manifold.SignatureRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]manifold.SignatureRecord(nil), s.signatures...)
}

func (s *Store) AppendEvolutionSnapshot(_ context.Context, pointID core.ID, newCoherenceField []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.points[pointID]
	if !ok || p == nil {
		return nil
	}
	p.CoherenceField = newCoherenceField
	return nil
}

var _ ports.DataStore = (*Store)(nil)
