package docstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock), mock
}

func TestPostgresStore_Add(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents (collection,id,data) VALUES ($1,$2,$3)")).
		WithArgs("tickets", pgxmock.AnyArg(), `{"title":"printer jam"}`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := store.Add(context.Background(), "tickets", map[string]any{"title": "printer jam"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
		check   func(t *testing.T, doc *Document)
	}{
		{
			name: "found",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "data"}).
					AddRow("t1", []byte(`{"title":"vpn down","status":"RESOLVED"}`))
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data FROM documents WHERE collection = $1 AND id = $2")).
					WithArgs("tickets", "t1").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, doc *Document) {
				assert.Equal(t, "t1", doc.ID)
				assert.Equal(t, "vpn down", doc.Data["title"])
				assert.Equal(t, "RESOLVED", doc.Data["status"])
			},
		},
		{
			name: "not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT id, data FROM documents").
					WithArgs("tickets", "t1").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "body that is not an object decodes empty",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "data"}).AddRow("t1", []byte(`[1,2,3]`))
				mock.ExpectQuery("SELECT id, data FROM documents").
					WithArgs("tickets", "t1").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, doc *Document) {
				assert.Equal(t, "t1", doc.ID)
				assert.Empty(t, doc.Data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setup(mock)

			doc, err := store.Get(context.Background(), "tickets", "t1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				tt.check(t, doc)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_Update(t *testing.T) {
	t.Run("merges fields", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET data = data || $1::jsonb WHERE collection = $2 AND id = $3")).
			WithArgs(`{"status":"CLOSED"}`, "tickets", "t1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := store.Update(context.Background(), "tickets", "t1", map[string]any{"status": "CLOSED"})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("UPDATE documents").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := store.Update(context.Background(), "tickets", "t1", map[string]any{"status": "CLOSED"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		store, mock := newMockStore(t)
		boom := errors.New("connection reset")
		mock.ExpectExec("UPDATE documents").WillReturnError(boom)

		err := store.Update(context.Background(), "tickets", "t1", map[string]any{"status": "CLOSED"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestPostgresStore_ArrayAppend(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET data = jsonb_set(data, ARRAY[$1::text]")).
		WithArgs("comments", "comments", `{"text":"hello"}`, "tickets", "t1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.ArrayAppend(context.Background(), "tickets", "t1", "comments", map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE collection = $1 AND id = $2")).
		WithArgs("tickets", "t1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, store.Delete(context.Background(), "tickets", "t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Query(t *testing.T) {
	store, mock := newMockStore(t)
	rows := pgxmock.NewRows([]string{"id", "data"}).
		AddRow("t2", []byte(`{"title":"vpn down"}`)).
		AddRow("t1", []byte(`{"title":"printer jam"}`))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, data FROM documents WHERE collection = $1 AND data->>($2::text) = $3 AND data->>($4::text) = $5 ORDER BY data->>($6::text) DESC",
	)).
		WithArgs("tickets", "createdBy", "u1", "priority", "CRITICAL", "createdAt").
		WillReturnRows(rows)

	q := Query{Collection: "tickets"}.
		Where("createdBy", "u1").
		Where("priority", "CRITICAL").
		Order("createdAt", Descending)
	docs, err := store.Query(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "t2", docs[0].ID)
	assert.Equal(t, "printer jam", docs[1].Data["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
