package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
)

// rowScanner abstracts over *sql.Row and *sql.Rows, both of which expose
// Scan with this signature.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPoint scans the sixteen-column manifold_points projection shared by
// every point query in store.go. metric_tensor is stored flattened upper-
// triangular (float8[]); christoffel_symbols is gob-encoded bytea since
// Postgres has no native n^3 array type.
func scanPoint(rs rowScanner) (*manifold.ManifoldPoint, error) {
	var id, sourceFP, convID string
	var createdAt time.Time
	var semanticField, coherenceField, metricTensor, ricci pq.Float64Array
	var christoffelBytes []byte
	var p manifold.ManifoldPoint

	err := rs.Scan(
		&id, &sourceFP, &convID, &createdAt,
		&semanticField, &coherenceField, &p.CoherenceMagnitude,
		&metricTensor, &p.MetricDeterminant, &christoffelBytes,
		&ricci, &p.ScalarCurvature,
		&p.RecursiveDepth, &p.ConstraintDensity, &p.AttractorStability, &p.SemanticMass,
	)
	if err != nil {
		return nil, err
	}

	christoffel, err := decodeTensor(christoffelBytes)
	if err != nil {
		return nil, err
	}

	p.ID = core.ID(id)
	p.SourceFingerprint = core.SourceFingerprint(sourceFP)
	p.ConversationID = core.ConversationID(convID)
	p.CreatedAt = core.NewTimestamp(createdAt)
	p.SemanticField = []float64(semanticField)
	p.CoherenceField = []float64(coherenceField)
	p.MetricTensor = []float64(metricTensor)
	p.ChristoffelSymbols = christoffel
	p.RicciCurvature = []float64(ricci)
	return &p, nil
}

func scanPoints(rows *sql.Rows) ([]*manifold.ManifoldPoint, error) {
	var out []*manifold.ManifoldPoint
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}
	return out, nil
}
