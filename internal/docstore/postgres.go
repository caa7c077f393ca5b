package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const documentsTable = "documents"

// Querier is the subset of pgxpool.Pool used by the Postgres store.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps documents as JSONB rows in a single table.
type PostgresStore struct {
	db      Querier
	builder sq.StatementBuilderType
}

// NewPostgresStore builds a store on top of a pool or connection.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()
	query, args, err := s.builder.Insert(documentsTable).
		Columns("collection", "id", "data").
		Values(collection, id, string(payload)).
		ToSql()
	if err != nil {
		return "", err
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert %s document: %w", collection, err)
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	query, args, err := s.builder.Select("id", "data").
		From(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var (
		docID string
		raw   []byte
	)
	if err := s.db.QueryRow(ctx, query, args...).Scan(&docID, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decodeDocument(docID, raw), nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	query, args, err := s.builder.Update(documentsTable).
		Set("data", sq.Expr("data || ?::jsonb", string(payload))).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return err
	}
	return s.execOne(ctx, query, args, collection, id)
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	query, args, err := s.builder.Delete(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return err
	}
	return s.execOne(ctx, query, args, collection, id)
}

func (s *PostgresStore) ArrayAppend(ctx context.Context, collection, id, field string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode array value: %w", err)
	}
	query, args, err := s.builder.Update(documentsTable).
		Set("data", sq.Expr(
			"jsonb_set(data, ARRAY[?::text], COALESCE(data->(?::text), '[]'::jsonb) || jsonb_build_array(?::jsonb))",
			field, field, string(payload),
		)).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return err
	}
	return s.execOne(ctx, query, args, collection, id)
}

func (s *PostgresStore) Query(ctx context.Context, q Query) ([]Document, error) {
	builder := s.builder.Select("id", "data").
		From(documentsTable).
		Where(sq.Eq{"collection": q.Collection})
	for _, f := range q.Filters {
		builder = builder.Where(sq.Expr("data->>(?::text) = ?", f.Field, f.Value))
	}
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Direction == Descending {
			dir = "DESC"
		}
		builder = builder.OrderByClause("data->>(?::text) "+dir, q.OrderBy)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		result = append(result, *decodeDocument(id, raw))
	}
	return result, rows.Err()
}

func (s *PostgresStore) execOne(ctx context.Context, query string, args []any, collection, id string) error {
	cmd, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// decodeDocument never fails: a body that is not a JSON object decodes
// to an empty map and is left to the caller's defaulting.
func decodeDocument(id string, raw []byte) *Document {
	data := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil || data == nil {
			data = map[string]any{}
		}
	}
	return &Document{ID: id, Data: data}
}
