package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/view"
)

// TicketService adapts the repository's false/empty results to errors
// for request/response callers and derives list views.
type TicketService struct {
	tickets repository.TicketRepository
}

// TicketInput describes the editable fields of a ticket. Empty priority
// and status keep their defaults on create and their value on update.
type TicketInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Status      string
	AssignedTo  *string
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository) *TicketService {
	return &TicketService{tickets: tickets}
}

// Repository exposes the underlying repository for list models that
// fetch on their own.
func (s *TicketService) Repository() repository.TicketRepository {
	return s.tickets
}

// Browse returns the caller's tickets through the status/search/sort pipeline.
func (s *TicketService) Browse(ctx context.Context, caller *domain.Identity, params view.Params) (view.Result, error) {
	if caller == nil {
		return view.Result{}, domain.ErrNotAuthenticated
	}
	return view.Derive(s.tickets.ListTickets(ctx, caller), params), nil
}

// BrowseCritical is Browse restricted to CRITICAL priority by the store.
func (s *TicketService) BrowseCritical(ctx context.Context, caller *domain.Identity, params view.Params) (view.Result, error) {
	if caller == nil {
		return view.Result{}, domain.ErrNotAuthenticated
	}
	return view.Derive(s.tickets.ListCriticalTickets(ctx, caller), params), nil
}

// Stats summarises the caller's whole ticket list.
func (s *TicketService) Stats(ctx context.Context, caller *domain.Identity) (view.Stats, error) {
	if caller == nil {
		return view.Stats{}, domain.ErrNotAuthenticated
	}
	return view.ComputeStats(s.tickets.ListTickets(ctx, caller)), nil
}

// Get returns a ticket visible to caller.
func (s *TicketService) Get(ctx context.Context, id string, caller *domain.Identity) (*domain.Ticket, error) {
	if caller == nil {
		return nil, domain.ErrNotAuthenticated
	}
	ticket := s.tickets.GetTicket(ctx, id, caller)
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, domain.ErrNotFound)
	}
	return ticket, nil
}

// Create validates input and stores a new OPEN ticket owned by caller.
func (s *TicketService) Create(ctx context.Context, input TicketInput, caller *domain.Identity) (*domain.Ticket, error) {
	if caller == nil {
		return nil, domain.ErrNotAuthenticated
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: title and description required", domain.ErrValidation)
	}
	priority, err := parsePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	id, ok := s.tickets.CreateTicket(ctx, repository.TicketCreateInput{
		Title:       title,
		Description: description,
		Category:    strings.TrimSpace(input.Category),
		Priority:    priority,
	}, caller)
	if !ok {
		return nil, fmt.Errorf("create ticket: %w", domain.ErrOperationFailed)
	}
	return s.Get(ctx, id, caller)
}

// Update loads the ticket as the caller sees it, applies the edited
// fields and writes the whole ticket back.
func (s *TicketService) Update(ctx context.Context, id string, input TicketInput, caller *domain.Identity) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(input.Title); title != "" {
		ticket.Title = title
	}
	if description := strings.TrimSpace(input.Description); description != "" {
		ticket.Description = description
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		ticket.Category = category
	}
	if input.Priority != "" {
		if ticket.Priority, err = parsePriority(input.Priority); err != nil {
			return nil, err
		}
	}
	if input.Status != "" {
		if ticket.Status, err = ParseStatus(input.Status); err != nil {
			return nil, err
		}
	}
	if input.AssignedTo != nil {
		ticket.AssignedTo = strings.TrimSpace(*input.AssignedTo)
	}

	if !s.tickets.UpdateTicket(ctx, *ticket) {
		return nil, fmt.Errorf("update ticket %s: %w", id, domain.ErrOperationFailed)
	}
	return ticket, nil
}

// UpdateStatus changes only the status.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, caller *domain.Identity) error {
	ok, err := s.tickets.UpdateTicketStatus(ctx, id, status, caller)
	if err != nil {
		return err
	}
	if !ok {
		return s.explainFailure(ctx, "update status of", id, caller)
	}
	return nil
}

// AddComment appends a comment and returns the refreshed ticket.
func (s *TicketService) AddComment(ctx context.Context, id, text string, caller *domain.Identity) (*domain.Ticket, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text required", domain.ErrValidation)
	}
	if _, err := s.Get(ctx, id, caller); err != nil {
		return nil, err
	}
	if !s.tickets.AddComment(ctx, id, text, caller) {
		return nil, fmt.Errorf("comment on ticket %s: %w", id, domain.ErrOperationFailed)
	}
	return s.Get(ctx, id, caller)
}

// Delete removes a ticket the caller created.
func (s *TicketService) Delete(ctx context.Context, id string, caller *domain.Identity) error {
	if caller == nil {
		return domain.ErrNotAuthenticated
	}
	ok, err := s.tickets.DeleteTicket(ctx, id, caller)
	if err != nil {
		return err
	}
	if !ok {
		return s.explainFailure(ctx, "delete", id, caller)
	}
	return nil
}

// explainFailure tells a missing ticket apart from a failed write after
// the repository answered false.
func (s *TicketService) explainFailure(ctx context.Context, op, id string, caller *domain.Identity) error {
	if caller != nil && s.tickets.GetTicket(ctx, id, caller) == nil {
		return fmt.Errorf("%s ticket %s: %w", op, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s ticket %s: %w", op, id, domain.ErrOperationFailed)
}

// ParseStatus accepts a status name in any case.
func ParseStatus(value string) (domain.TicketStatus, error) {
	status, ok := domain.LookupTicketStatus(strings.ToUpper(strings.TrimSpace(value)))
	if !ok {
		return "", fmt.Errorf("%w: unknown status %q", domain.ErrValidation, value)
	}
	return status, nil
}

func parsePriority(value string) (domain.TicketPriority, error) {
	if strings.TrimSpace(value) == "" {
		return domain.TicketPriorityMedium, nil
	}
	priority, ok := domain.LookupTicketPriority(strings.ToUpper(strings.TrimSpace(value)))
	if !ok {
		return "", fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, value)
	}
	return priority, nil
}
