package characters

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// DefaultTable is the document table holding character records
const DefaultTable = "characters"

// SurrealSource loads character records from the site's SurrealDB
// backend. Each lookup is a single point select by record id; the
// source never scans and never writes.
type SurrealSource struct {
	db    *surrealdb.DB
	table string
}

// NewSurrealSource creates a source backed by the given connection.
// An empty table name selects DefaultTable.
func NewSurrealSource(db *surrealdb.DB, table string) *SurrealSource {
	if table == "" {
		table = DefaultTable
	}
	return &SurrealSource{
		db:    db,
		table: table,
	}
}

// characterRecord mirrors the document schema used by the site
type characterRecord struct {
	ID         *models.RecordID `json:"id,omitempty"`
	Name       string           `json:"name"`
	Clearance  interface{}      `json:"clearance"`
	Department string           `json:"department"`
	LinkedUID  string           `json:"linkedUID"`
}

// LoadCharacter implements Source
func (s *SurrealSource) LoadCharacter(ctx context.Context, id string) (*Character, error) {
	rec, err := surrealdb.Select[characterRecord](ctx, s.db, models.NewRecordID(s.table, id))
	if err != nil {
		return nil, fmt.Errorf("selecting character %q: %w", id, err)
	}
	if rec == nil || rec.ID == nil {
		return nil, ErrCharacterNotFound
	}

	return &Character{
		ID:         id,
		Name:       rec.Name,
		Clearance:  rec.Clearance,
		Department: rec.Department,
		LinkedUID:  rec.LinkedUID,
	}, nil
}
