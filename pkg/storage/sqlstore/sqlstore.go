// Package sqlstore implements storage.Driver on ent's SQL dialect layer. The
// sqlite and postgres packages open the database and hand it over as an ent
// driver.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/storage"
)

const transcriptsTable = "transcripts"

var (
	transcriptColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "request_id", Type: field.TypeString, Default: ""},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString, Default: ""},
		{Name: "stop_reason", Type: field.TypeString, Default: ""},
		{Name: "body", Type: field.TypeString, Size: 2147483647},
		{Name: "started_at", Type: field.TypeInt64},
	}

	// Tables is the schema migrated by New.
	Tables = []*schema.Table{
		{
			Name:       transcriptsTable,
			Columns:    transcriptColumns,
			PrimaryKey: []*schema.Column{transcriptColumns[0]},
			Indexes: []*schema.Index{
				{
					Name:    "transcript_provider_started_at",
					Columns: []*schema.Column{transcriptColumns[2], transcriptColumns[6]},
				},
				{
					Name:    "transcript_started_at",
					Columns: []*schema.Column{transcriptColumns[6]},
				},
			},
		},
	}
)

// Store implements storage.Driver.
type Store struct {
	drv     *entsql.Driver
	dialect string
}

// New wraps drv and runs the schema migration.
func New(ctx context.Context, drv *entsql.Driver) (*Store, error) {
	migrate, err := schema.NewMigrate(drv)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{drv: drv, dialect: drv.Dialect()}, nil
}

// Put upserts t.
func (s *Store) Put(ctx context.Context, t *llm.Transcript) error {
	if t == nil {
		return errors.New("cannot store nil transcript")
	}
	if t.ID == "" {
		return errors.New("transcript id is required")
	}

	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}

	query, args := s.putQuery(t, string(body))
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("storing transcript %s: %w", t.ID, err)
	}
	return nil
}

// Get retrieves a transcript by ID.
func (s *Store) Get(ctx context.Context, id string) (*llm.Transcript, error) {
	query, args := s.getQuery(id)

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("loading transcript %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("loading transcript %s: %w", id, err)
		}
		return nil, storage.NotFoundError{ID: id}
	}

	var body string
	if err := rows.Scan(&body); err != nil {
		return nil, fmt.Errorf("scanning transcript %s: %w", id, err)
	}
	return decode(body)
}

// List returns transcripts, most recent first.
func (s *Store) List(ctx context.Context, opts storage.ListOptions) ([]*llm.Transcript, error) {
	query, args := s.listQuery(opts)

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("listing transcripts: %w", err)
	}
	defer rows.Close()

	var result []*llm.Transcript
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning transcript: %w", err)
		}
		t, err := decode(body)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.drv.Close()
}

func (s *Store) putQuery(t *llm.Transcript, body string) (string, []any) {
	return entsql.Dialect(s.dialect).
		Insert(transcriptsTable).
		Columns("id", "request_id", "provider", "model", "stop_reason", "body", "started_at").
		Values(t.ID, t.RequestID, t.Provider, t.Model, t.StopReason, body, t.StartedAt.UnixNano()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
}

func (s *Store) getQuery(id string) (string, []any) {
	b := entsql.Dialect(s.dialect)
	return b.Select("body").
		From(b.Table(transcriptsTable)).
		Where(entsql.EQ("id", id)).
		Query()
}

func (s *Store) listQuery(opts storage.ListOptions) (string, []any) {
	b := entsql.Dialect(s.dialect)
	sel := b.Select("body").From(b.Table(transcriptsTable))
	if opts.Provider != "" {
		sel.Where(entsql.EQ("provider", opts.Provider))
	}
	return sel.
		OrderBy(entsql.Desc("started_at")).
		Limit(opts.EffectiveLimit()).
		Query()
}

func decode(body string) (*llm.Transcript, error) {
	var t llm.Transcript
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}
	return &t, nil
}

var _ storage.Driver = (*Store)(nil)
