package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, "tickets", map[string]any{"title": "printer jam", "count": 1})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "tickets", id)
	require.NoError(t, err)
	assert.Equal(t, "printer jam", doc.Data["title"])
	assert.Equal(t, float64(1), doc.Data["count"], "values round-trip through JSON")

	require.NoError(t, store.Update(ctx, "tickets", id, map[string]any{"status": "CLOSED"}))
	doc, err = store.Get(ctx, "tickets", id)
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", doc.Data["status"])
	assert.Equal(t, "printer jam", doc.Data["title"], "update merges")

	require.NoError(t, store.Delete(ctx, "tickets", id))
	_, err = store.Get(ctx, "tickets", id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "tickets", id), ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, "tickets", id, map[string]any{}), ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id, err := store.Add(ctx, "tickets", map[string]any{"title": "a"})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "tickets", id)
	require.NoError(t, err)
	doc.Data["title"] = "mutated"

	again, err := store.Get(ctx, "tickets", id)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Data["title"])
}

func TestMemoryStore_ArrayAppend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id, err := store.Add(ctx, "tickets", map[string]any{"title": "a"})
	require.NoError(t, err)

	require.NoError(t, store.ArrayAppend(ctx, "tickets", id, "comments", map[string]any{"text": "one"}))
	require.NoError(t, store.ArrayAppend(ctx, "tickets", id, "comments", map[string]any{"text": "two"}))

	doc, err := store.Get(ctx, "tickets", id)
	require.NoError(t, err)
	comments, ok := doc.Data["comments"].([]any)
	require.True(t, ok)
	require.Len(t, comments, 2)
	assert.Equal(t, "two", comments[1].(map[string]any)["text"])

	assert.ErrorIs(t, store.ArrayAppend(ctx, "tickets", "missing", "comments", "x"), ErrNotFound)
}

func TestMemoryStore_Query(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	add := func(owner, priority string, at time.Time) string {
		id, err := store.Add(ctx, "tickets", map[string]any{
			"createdBy": owner,
			"priority":  priority,
			"createdAt": FormatTime(at),
		})
		require.NoError(t, err)
		return id
	}
	first := add("u1", "CRITICAL", base)
	second := add("u1", "LOW", base.Add(time.Hour))
	third := add("u1", "CRITICAL", base.Add(2*time.Hour))
	add("u2", "CRITICAL", base.Add(3*time.Hour))

	docs, err := store.Query(ctx, Query{Collection: "tickets"}.Where("createdBy", "u1").Order("createdAt", Descending))
	require.NoError(t, err)
	assert.Equal(t, []string{third, second, first}, ids(docs))

	docs, err = store.Query(ctx, Query{Collection: "tickets"}.
		Where("createdBy", "u1").
		Where("priority", "CRITICAL").
		Order("createdAt", Ascending))
	require.NoError(t, err)
	assert.Equal(t, []string{first, third}, ids(docs))

	docs, err = store.Query(ctx, Query{Collection: "unknown"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFormatTime_OrdersLexically(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(1500 * time.Millisecond)
	assert.Less(t, FormatTime(early), FormatTime(late))
	assert.Len(t, FormatTime(early), len(FormatTime(late)))

	parsed, ok := ParseTime(FormatTime(late))
	require.True(t, ok)
	assert.True(t, parsed.Equal(late))

	parsed, ok = ParseTime("2024-01-01T10:00:00+02:00")
	require.True(t, ok)
	assert.Equal(t, 8, parsed.Hour())

	_, ok = ParseTime(42.0)
	assert.False(t, ok)
	_, ok = ParseTime("yesterday")
	assert.False(t, ok)
}

func ids(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
