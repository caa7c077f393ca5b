// Package board holds the ticket list state of one screen: the latest
// snapshot, the view parameters and the optimistic delete/undo flow.
// A Board is not safe for concurrent use; each screen owns its own.
package board

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/view"
)

// FetchFunc loads the caller's full ticket list. It never fails: an
// empty list stands for both "no tickets" and "fetch failed".
type FetchFunc func(ctx context.Context, caller *domain.Identity) []domain.Ticket

// Deleter removes a ticket remotely.
type Deleter interface {
	DeleteTicket(ctx context.Context, id string, caller *domain.Identity) (bool, error)
}

type removal struct {
	ticket domain.Ticket
	index  int
}

// Board is the list model behind a ticket screen.
type Board struct {
	fetch   FetchFunc
	deleter Deleter
	caller  *domain.Identity
	logger  *zap.Logger

	snapshot []domain.Ticket
	loaded   bool
	params   view.Params
	last     *removal
}

// New creates an empty, not yet loaded board.
func New(fetch FetchFunc, deleter Deleter, caller *domain.Identity, logger *zap.Logger) *Board {
	return &Board{
		fetch:   fetch,
		deleter: deleter,
		caller:  caller,
		logger:  logger,
		params:  view.Params{Sort: view.DefaultSort},
	}
}

// Load replaces the snapshot with a fresh fetch. If ctx is done by the
// time the fetch returns, the result is dropped and ctx.Err() returned.
func (b *Board) Load(ctx context.Context) error {
	tickets := b.fetch(ctx, b.caller)
	if err := ctx.Err(); err != nil {
		b.logger.Debug("discarding ticket fetch for cancelled screen", zap.Error(err))
		return err
	}
	b.snapshot = slices.Clip(tickets)
	b.loaded = true
	b.last = nil
	return nil
}

// Loaded distinguishes "nothing fetched yet" from an empty view.
func (b *Board) Loaded() bool {
	return b.loaded
}

// SetStatus sets the status filter; "" shows every status.
func (b *Board) SetStatus(status domain.TicketStatus) {
	b.params.Status = status
}

// SetQuery sets the free-text search.
func (b *Board) SetQuery(query string) {
	b.params.Query = query
}

// SetSort sets the sort order.
func (b *Board) SetSort(order view.SortOrder) {
	b.params.Sort = order
}

// Params returns the active view parameters.
func (b *Board) Params() view.Params {
	return b.params
}

// Visible is the derived view for the current parameters.
func (b *Board) Visible() []domain.Ticket {
	return view.Apply(b.snapshot, b.params)
}

// Counters are computed on the unfiltered snapshot.
func (b *Board) Counters() view.Counters {
	return view.Count(b.snapshot)
}

// Snapshot returns a copy of the fetched list.
func (b *Board) Snapshot() []domain.Ticket {
	return slices.Clone(b.snapshot)
}

// Delete removes the ticket from the snapshot before asking the store to
// delete it. When the remote delete does not succeed the whole list is
// fetched again; the removed row is never put back by hand.
func (b *Board) Delete(ctx context.Context, id string) (bool, error) {
	index := slices.IndexFunc(b.snapshot, func(t domain.Ticket) bool { return t.ID == id })
	if index < 0 {
		return false, fmt.Errorf("ticket %s: %w", id, domain.ErrNotFound)
	}
	removed := b.snapshot[index]
	b.snapshot = slices.Delete(slices.Clone(b.snapshot), index, index+1)

	ok, err := b.deleter.DeleteTicket(ctx, id, b.caller)
	if err != nil || !ok {
		b.logger.Warn("delete failed, reloading tickets", zap.String("ticket_id", id), zap.Error(err))
		if loadErr := b.Load(ctx); loadErr != nil {
			b.logger.Warn("reload after failed delete abandoned", zap.Error(loadErr))
		}
		return false, err
	}
	b.last = &removal{ticket: removed, index: index}
	return true, nil
}

// Undo puts the last deleted ticket back into the local list. The remote
// record stays deleted; the row disappears again on the next Load.
func (b *Board) Undo() bool {
	if b.last == nil {
		return false
	}
	index := min(b.last.index, len(b.snapshot))
	b.snapshot = slices.Insert(slices.Clone(b.snapshot), index, b.last.ticket)
	b.last = nil
	return true
}
