// Package view derives the displayed ticket list from a fetched snapshot.
// Everything here is pure: the snapshot is never modified and the same
// inputs always produce the same output.
package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// SortOrder selects the comparator applied last.
type SortOrder string

const (
	SortDateDesc  SortOrder = "date_desc"
	SortDateAsc   SortOrder = "date_asc"
	SortTitleAsc  SortOrder = "title_asc"
	SortTitleDesc SortOrder = "title_desc"
)

// DefaultSort is used when no order is chosen.
const DefaultSort = SortDateDesc

// ParseSortOrder accepts the four order names; "" selects DefaultSort.
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return DefaultSort, nil
	case SortDateDesc:
		return SortDateDesc, nil
	case SortDateAsc:
		return SortDateAsc, nil
	case SortTitleAsc:
		return SortTitleAsc, nil
	case SortTitleDesc:
		return SortTitleDesc, nil
	default:
		return "", fmt.Errorf("%w: unknown sort order %q", domain.ErrValidation, value)
	}
}

// Params are the three independent view parameters. A zero Status means
// "All"; a zero Sort means DefaultSort.
type Params struct {
	Status domain.TicketStatus
	Query  string
	Sort   SortOrder
}

// Counters summarise the whole snapshot regardless of Params.
type Counters struct {
	Total      int
	Unresolved int
}

// Result is a derived view plus snapshot counters.
type Result struct {
	Tickets  []domain.Ticket
	Counters Counters
}

// Derive runs Apply and Count together.
func Derive(snapshot []domain.Ticket, p Params) Result {
	return Result{Tickets: Apply(snapshot, p), Counters: Count(snapshot)}
}

// Apply filters by status, then by text, then sorts. The order of the
// three steps is fixed.
func Apply(snapshot []domain.Ticket, p Params) []domain.Ticket {
	out := FilterStatus(snapshot, p.Status)
	out = Search(out, p.Query)
	SortTickets(out, p.Sort)
	return out
}

// FilterStatus keeps tickets with the given status. It always returns a
// new slice.
func FilterStatus(tickets []domain.Ticket, status domain.TicketStatus) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Search keeps tickets whose title, description or category contains the
// query, ignoring case. A blank query keeps everything.
func Search(tickets []domain.Ticket, query string) []domain.Ticket {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return tickets
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if Matches(t, needle) {
			out = append(out, t)
		}
	}
	return out
}

// Matches expects needle to be lower-cased already.
func Matches(t domain.Ticket, needle string) bool {
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(strings.ToLower(t.Category), needle)
}

// SortTickets sorts in place and keeps the input order of equal keys.
func SortTickets(tickets []domain.Ticket, order SortOrder) {
	slices.SortStableFunc(tickets, comparator(order))
}

func comparator(order SortOrder) func(a, b domain.Ticket) int {
	switch order {
	case SortDateAsc:
		return func(a, b domain.Ticket) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortTitleAsc:
		return func(a, b domain.Ticket) int { return strings.Compare(a.Title, b.Title) }
	case SortTitleDesc:
		return func(a, b domain.Ticket) int { return strings.Compare(b.Title, a.Title) }
	default:
		return func(a, b domain.Ticket) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

// Count computes Total and Unresolved (OPEN or IN_PROGRESS).
func Count(snapshot []domain.Ticket) Counters {
	c := Counters{Total: len(snapshot)}
	for _, t := range snapshot {
		if t.Status.IsUnresolved() {
			c.Unresolved++
		}
	}
	return c
}
