// Package postgres implements ports.DataStore against PostgreSQL, modeled
// on the teacher's adapters/postgres repositories: a *sqlx.DB field,
// explicit $n-placeholder SQL, context-scoped Query/Exec, and manual Scan
// into typed structs rather than struct-tag reflection for the hot paths.
package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/ports"
)

// Store implements ports.DataStore against PostgreSQL. Field vectors are
// stored as float8[] columns (lib/pq.Array); n^3-shaped tensors (Christoffel
// symbols, coupling tensors) are stored as gob-encoded bytea since Postgres
// has no native rank-3 array type (SPEC_FULL §3.11).
type Store struct {
	db *sqlx.DB
}

// New wraps an already-open *sqlx.DB.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func encodeTensor(v []float64) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode tensor: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeTensor(b []byte) ([]float64, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v []float64
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode tensor: %w", err)
	}
	return v, nil
}

// GetPoint returns the point, or (nil, nil) if it does not exist.
func (s *Store) GetPoint(ctx context.Context, id core.ID) (*manifold.ManifoldPoint, error) {
	const query = `
		SELECT id, source_fingerprint, conversation_id, created_at,
		       semantic_field, coherence_field, coherence_magnitude,
		       metric_tensor, metric_determinant, christoffel_symbols,
		       ricci_curvature, scalar_curvature,
		       recursive_depth, constraint_density, attractor_stability, semantic_mass
		FROM manifold_points
		WHERE id = $1`

	row := s.db.QueryRowContext(ctx, query, string(id))
	p, err := scanPoint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get point: %w", err)
	}
	return p, nil
}

// ListConversationPoints returns points in conv, created at or after since,
// in ascending timestamp order.
func (s *Store) ListConversationPoints(ctx context.Context, conv core.ConversationID, since core.Timestamp) ([]*manifold.ManifoldPoint, error) {
	const query = `
		SELECT id, source_fingerprint, conversation_id, created_at,
		       semantic_field, coherence_field, coherence_magnitude,
		       metric_tensor, metric_determinant, christoffel_symbols,
		       ricci_curvature, scalar_curvature,
		       recursive_depth, constraint_density, attractor_stability, semantic_mass
		FROM manifold_points
		WHERE conversation_id = $1 AND created_at >= $2
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, string(conv), since.Time())
	if err != nil {
		return nil, fmt.Errorf("list conversation points: %w", err)
	}
	defer rows.Close()
	return scanPoints(rows)
}

// ListUserPoints returns up to limit points from fingerprint, created at or
// after since, in descending timestamp order.
func (s *Store) ListUserPoints(ctx context.Context, fingerprint core.SourceFingerprint, since core.Timestamp, limit int) ([]*manifold.ManifoldPoint, error) {
	query := `
		SELECT id, source_fingerprint, conversation_id, created_at,
		       semantic_field, coherence_field, coherence_magnitude,
		       metric_tensor, metric_determinant, christoffel_symbols,
		       ricci_curvature, scalar_curvature,
		       recursive_depth, constraint_density, attractor_stability, semantic_mass
		FROM manifold_points
		WHERE source_fingerprint = $1 AND created_at >= $2
		ORDER BY created_at DESC`
	args := []interface{}{string(fingerprint), since.Time()}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list user points: %w", err)
	}
	defer rows.Close()
	return scanPoints(rows)
}

// ListCouplings returns couplings touching pointID (or all couplings if
// pointID is empty), created at or after since, ordered and capped per
// order/limit.
func (s *Store) ListCouplings(ctx context.Context, pointID core.ID, since core.Timestamp, order ports.SortOrder, limit int) ([]manifold.RecursiveCoupling, error) {
	direction := "ASC"
	if order == ports.Descending {
		direction = "DESC"
	}

	query := `
		SELECT point_p, point_q, coupling_tensor, coupling_magnitude,
		       self_coupling, hetero_coupling, evolution_rate, latent_channels, computed_at
		FROM recursive_couplings
		WHERE computed_at >= $1`
	args := []interface{}{since.Time()}
	if !pointID.IsEmpty() {
		query += " AND (point_p = $2 OR point_q = $2)"
		args = append(args, string(pointID))
	}
	query += fmt.Sprintf(" ORDER BY computed_at %s", direction)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list couplings: %w", err)
	}
	defer rows.Close()

	var out []manifold.RecursiveCoupling
	for rows.Next() {
		var c manifold.RecursiveCoupling
		var pointP, pointQ string
		var tensorBytes []byte
		var selfCoupling, heteroCoupling pq.Float64Array
		var computedAt time.Time

		if err := rows.Scan(&pointP, &pointQ, &tensorBytes, &c.CouplingMagnitude,
			&selfCoupling, &heteroCoupling, &c.EvolutionRate, &c.LatentChannels, &computedAt); err != nil {
			return nil, fmt.Errorf("scan coupling: %w", err)
		}
		c.PointP, c.PointQ = core.ID(pointP), core.ID(pointQ)
		c.SelfCoupling = []float64(selfCoupling)
		c.HeteroCoupling = []float64(heteroCoupling)
		c.ComputedAt = core.NewTimestamp(computedAt)
		tensor, err := decodeTensor(tensorBytes)
		if err != nil {
			return nil, err
		}
		c.CouplingTensor = tensor
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate couplings: %w", err)
	}
	return out, nil
}

// LatestWisdom returns the active wisdom record for pointID, or nil.
func (s *Store) LatestWisdom(ctx context.Context, pointID core.ID) (*manifold.WisdomField, error) {
	const query = `
		SELECT point_id, wisdom_value, forecast_sensitivity, gradient_response,
		       humility_factor, recursion_regulation, computed_at
		FROM wisdom_fields
		WHERE point_id = $1
		ORDER BY computed_at DESC
		LIMIT 1`

	var w manifold.WisdomField
	var id string
	var computedAt time.Time
	err := s.db.QueryRowContext(ctx, query, string(pointID)).Scan(
		&id, &w.WisdomValue, &w.ForecastSensitivity, &w.GradientResponse,
		&w.HumilityFactor, &w.RecursionRegulation, &computedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest wisdom: %w", err)
	}
	w.PointID = core.ID(id)
	w.ComputedAt = core.NewTimestamp(computedAt)
	return &w, nil
}

// LatestCrossSourcePoint returns the most recent point from a source other
// than excluding, or nil if none exists.
func (s *Store) LatestCrossSourcePoint(ctx context.Context, excluding core.SourceFingerprint) (*manifold.ManifoldPoint, error) {
	const query = `
		SELECT id, source_fingerprint, conversation_id, created_at,
		       semantic_field, coherence_field, coherence_magnitude,
		       metric_tensor, metric_determinant, christoffel_symbols,
		       ricci_curvature, scalar_curvature,
		       recursive_depth, constraint_density, attractor_stability, semantic_mass
		FROM manifold_points
		WHERE source_fingerprint != $1
		ORDER BY created_at DESC
		LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, string(excluding))
	p, err := scanPoint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest cross-source point: %w", err)
	}
	return p, nil
}

// AppendSignature persists a detector output.
func (s *Store) AppendSignature(ctx context.Context, rec manifold.SignatureRecord) error {
	const query = `
		INSERT INTO signature_records
			(point_id, signature_type, severity, geometric_signature, mathematical_evidence, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (point_id, signature_type, computed_at) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		string(rec.PointID), string(rec.SignatureType), rec.Severity,
		pq.Array(rec.GeometricSignature), rec.MathematicalEvidence, rec.ComputedAt.Time())
	if err != nil {
		return fmt.Errorf("append signature: %w", err)
	}
	return nil
}

// AppendEvolutionSnapshot overwrites the point's coherence field.
func (s *Store) AppendEvolutionSnapshot(ctx context.Context, pointID core.ID, newCoherenceField []float64) error {
	const query = `UPDATE manifold_points SET coherence_field = $2 WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, string(pointID), pq.Array(newCoherenceField))
	if err != nil {
		return fmt.Errorf("append evolution snapshot: %w", err)
	}
	return nil
}

var _ ports.DataStore = (*Store)(nil)
