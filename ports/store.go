// Package ports declares the interfaces adapters implement and the core
// consumes. DataStore is the only interface the engine's domain logic
// depends on (spec §6).
package ports

import (
	"context"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
)

// SortOrder selects ascending or descending timestamp order for a range scan.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// DataStore is the only interface the detector, analytics, and evolution
// packages consume. It is read-mostly; the two append methods are the
// engine's only writes, and they are idempotent per (point_id, kind).
type DataStore interface {
	// GetPoint returns the point, or (nil, nil) if it does not exist.
	GetPoint(ctx context.Context, id core.ID) (*manifold.ManifoldPoint, error)

	// ListConversationPoints returns points in the given conversation,
	// created at or after since, in ascending timestamp order.
	ListConversationPoints(ctx context.Context, conv core.ConversationID, since core.Timestamp) ([]*manifold.ManifoldPoint, error)

	// ListUserPoints returns up to limit points from fingerprint, created
	// at or after since, in descending timestamp order.
	ListUserPoints(ctx context.Context, fingerprint core.SourceFingerprint, since core.Timestamp, limit int) ([]*manifold.ManifoldPoint, error)

	// ListCouplings returns couplings touching pointID (or all couplings
	// if pointID is empty), created at or after since, in the given order,
	// capped at limit.
	ListCouplings(ctx context.Context, pointID core.ID, since core.Timestamp, order SortOrder, limit int) ([]manifold.RecursiveCoupling, error)

	// LatestWisdom returns the active wisdom record for pointID, or nil.
	LatestWisdom(ctx context.Context, pointID core.ID) (*manifold.WisdomField, error)

	// LatestCrossSourcePoint returns the most recent point from a source
	// other than excluding, or nil if none exists.
	LatestCrossSourcePoint(ctx context.Context, excluding core.SourceFingerprint) (*manifold.ManifoldPoint, error)

	// AppendSignature persists a detector output. Idempotent for a fixed
	// (point_id, signature_type, store snapshot).
	AppendSignature(ctx context.Context, rec manifold.SignatureRecord) error

	// AppendEvolutionSnapshot overwrites or versions a point's coherence
	// field per caller policy.
	AppendEvolutionSnapshot(ctx context.Context, pointID core.ID, newCoherenceField []float64) error
}
