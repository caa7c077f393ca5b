package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/ticket-tracker/internal/docstore"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/view"
)

var (
	owner    = &domain.Identity{UID: "owner", Email: "owner@example.com", DisplayName: "Owner"}
	assignee = &domain.Identity{UID: "helper", Email: "helper@example.com"}
	stranger = &domain.Identity{UID: "stranger", Email: "stranger@example.com"}
)

// brokenWrites fails every write after it is switched on.
type brokenWrites struct {
	docstore.Store
	broken bool
}

var errStoreDown = errors.New("store unavailable")

func (b *brokenWrites) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if b.broken {
		return "", errStoreDown
	}
	return b.Store.Add(ctx, collection, data)
}

func (b *brokenWrites) Update(ctx context.Context, collection, id string, data map[string]any) error {
	if b.broken {
		return errStoreDown
	}
	return b.Store.Update(ctx, collection, id, data)
}

func (b *brokenWrites) Delete(ctx context.Context, collection, id string) error {
	if b.broken {
		return errStoreDown
	}
	return b.Store.Delete(ctx, collection, id)
}

func (b *brokenWrites) ArrayAppend(ctx context.Context, collection, id, field string, value any) error {
	if b.broken {
		return errStoreDown
	}
	return b.Store.ArrayAppend(ctx, collection, id, field, value)
}

func newTicketFixture(t *testing.T) (*TicketService, *brokenWrites) {
	t.Helper()
	store := &brokenWrites{Store: docstore.NewMemoryStore()}
	return NewTicketService(repository.NewTicketRepository(store, zaptest.NewLogger(t))), store
}

func TestTicketService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTicketFixture(t)

	ticket, err := svc.Create(ctx, TicketInput{Title: " Printer jam ", Description: "Floor 2", Category: "PRINTER", Priority: "high"}, owner)
	require.NoError(t, err)
	assert.Equal(t, "Printer jam", ticket.Title)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, owner.UID, ticket.CreatedBy)

	_, err = svc.Get(ctx, ticket.ID, stranger)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Get(ctx, ticket.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = svc.Create(ctx, TicketInput{Title: "  ", Description: "x"}, owner)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Create(ctx, TicketInput{Title: "x", Description: "x", Priority: "URGENT"}, owner)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Create(ctx, TicketInput{Title: "x", Description: "x"}, nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestTicketService_CreateStoreFailure(t *testing.T) {
	svc, store := newTicketFixture(t)
	store.broken = true

	_, err := svc.Create(context.Background(), TicketInput{Title: "x", Description: "y"}, owner)
	assert.ErrorIs(t, err, domain.ErrOperationFailed)
}

func TestTicketService_BrowseAndStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTicketFixture(t)
	for _, in := range []TicketInput{
		{Title: "VPN", Description: "down", Category: "NETWORK", Priority: "CRITICAL"},
		{Title: "Mouse", Description: "broken", Category: "HARDWARE"},
		{Title: "Wifi", Description: "slow", Category: "NETWORK"},
	} {
		_, err := svc.Create(ctx, in, owner)
		require.NoError(t, err)
	}

	res, err := svc.Browse(ctx, owner, view.Params{Query: "network", Sort: view.SortTitleAsc})
	require.NoError(t, err)
	require.Len(t, res.Tickets, 2)
	assert.Equal(t, "VPN", res.Tickets[0].Title)
	assert.Equal(t, "Wifi", res.Tickets[1].Title)
	assert.Equal(t, view.Counters{Total: 3, Unresolved: 3}, res.Counters)

	critical, err := svc.BrowseCritical(ctx, owner, view.Params{})
	require.NoError(t, err)
	require.Len(t, critical.Tickets, 1)
	assert.Equal(t, "VPN", critical.Tickets[0].Title)

	stats, err := svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Len(t, stats.ByCategory, 2)

	_, err = svc.Browse(ctx, nil, view.Params{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	_, err = svc.Stats(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	empty, err := svc.Browse(ctx, stranger, view.Params{})
	require.NoError(t, err)
	assert.Empty(t, empty.Tickets)
}

func TestTicketService_UpdateAssignAndStatus(t *testing.T) {
	ctx := context.Background()
	svc, store := newTicketFixture(t)
	created, err := svc.Create(ctx, TicketInput{Title: "Mail", Description: "bounces", Category: "EMAIL"}, owner)
	require.NoError(t, err)

	helper := assignee.UID
	updated, err := svc.Update(ctx, created.ID, TicketInput{Status: "in_progress", AssignedTo: &helper}, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Equal(t, "Mail", updated.Title)

	require.NoError(t, svc.UpdateStatus(ctx, created.ID, domain.TicketStatusResolved, assignee))
	got, err := svc.Get(ctx, created.ID, assignee)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, got.Status)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, created.ID, domain.TicketStatusClosed, stranger), domain.ErrPermissionDenied)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, created.ID, domain.TicketStatusClosed, nil), domain.ErrNotAuthenticated)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, "missing", domain.TicketStatusClosed, owner), domain.ErrNotFound)

	_, err = svc.Update(ctx, created.ID, TicketInput{Status: "DONE"}, owner)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Update(ctx, created.ID, TicketInput{Title: "x"}, stranger)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	store.broken = true
	assert.ErrorIs(t, svc.UpdateStatus(ctx, created.ID, domain.TicketStatusClosed, owner), domain.ErrOperationFailed)
	_, err = svc.Update(ctx, created.ID, TicketInput{Title: "x"}, owner)
	assert.ErrorIs(t, err, domain.ErrOperationFailed)
}

func TestTicketService_AddComment(t *testing.T) {
	ctx := context.Background()
	svc, store := newTicketFixture(t)
	created, err := svc.Create(ctx, TicketInput{Title: "Mail", Description: "bounces"}, owner)
	require.NoError(t, err)

	ticket, err := svc.AddComment(ctx, created.ID, " restarted the relay ", owner)
	require.NoError(t, err)
	require.Len(t, ticket.Comments, 1)
	assert.Equal(t, "restarted the relay", ticket.Comments[0].Content)
	assert.Equal(t, "Owner", ticket.Comments[0].AuthorName)

	_, err = svc.AddComment(ctx, created.ID, "   ", owner)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.AddComment(ctx, created.ID, "hi", stranger)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	store.broken = true
	_, err = svc.AddComment(ctx, created.ID, "again", owner)
	assert.ErrorIs(t, err, domain.ErrOperationFailed)
}

func TestTicketService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, store := newTicketFixture(t)
	helper := assignee.UID
	created, err := svc.Create(ctx, TicketInput{Title: "Mail", Description: "bounces"}, owner)
	require.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, TicketInput{AssignedTo: &helper}, owner)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID, assignee), domain.ErrPermissionDenied)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID, nil), domain.ErrNotAuthenticated)

	store.broken = true
	assert.ErrorIs(t, svc.Delete(ctx, created.ID, owner), domain.ErrOperationFailed)
	store.broken = false

	require.NoError(t, svc.Delete(ctx, created.ID, owner))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID, owner), domain.ErrNotFound)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" closed ")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, s)
	_, err = ParseStatus("")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
