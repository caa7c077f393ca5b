package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/docstore"
	"github.com/spec-kit/ticket-tracker/internal/domain"
)

const ticketsCollection = "tickets"

// TicketCreateInput carries the caller-provided fields of a new ticket.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    domain.TicketPriority
}

// TicketRepository is the only path from ticket operations to the store.
//
// Store failures are logged and reduced to an empty or false result.
// Only UpdateTicketStatus and DeleteTicket return errors, and only
// domain.ErrNotAuthenticated or domain.ErrPermissionDenied.
type TicketRepository interface {
	ListTickets(ctx context.Context, caller *domain.Identity) []domain.Ticket
	ListCriticalTickets(ctx context.Context, caller *domain.Identity) []domain.Ticket
	GetTicket(ctx context.Context, id string, caller *domain.Identity) *domain.Ticket
	CreateTicket(ctx context.Context, input TicketCreateInput, caller *domain.Identity) (string, bool)
	UpdateTicket(ctx context.Context, ticket domain.Ticket) bool
	UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus, caller *domain.Identity) (bool, error)
	AddComment(ctx context.Context, ticketID, text string, caller *domain.Identity) bool
	DeleteTicket(ctx context.Context, id string, caller *domain.Identity) (bool, error)
}

type ticketRepository struct {
	store  docstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewTicketRepository builds the repository on top of a document store.
func NewTicketRepository(store docstore.Store, logger *zap.Logger) TicketRepository {
	return &ticketRepository{store: store, logger: logger, now: time.Now}
}

func (r *ticketRepository) ListTickets(ctx context.Context, caller *domain.Identity) []domain.Ticket {
	if caller == nil {
		r.logger.Warn("list tickets without authenticated user")
		return []domain.Ticket{}
	}
	q := docstore.Query{Collection: ticketsCollection}.
		Where(fieldCreatedBy, caller.UID).
		Order(fieldCreatedAt, docstore.Descending)
	return r.query(ctx, q, caller)
}

func (r *ticketRepository) ListCriticalTickets(ctx context.Context, caller *domain.Identity) []domain.Ticket {
	if caller == nil {
		r.logger.Warn("list critical tickets without authenticated user")
		return []domain.Ticket{}
	}
	q := docstore.Query{Collection: ticketsCollection}.
		Where(fieldCreatedBy, caller.UID).
		Where(fieldPriority, string(domain.TicketPriorityCritical)).
		Order(fieldCreatedAt, docstore.Descending)
	return r.query(ctx, q, caller)
}

func (r *ticketRepository) query(ctx context.Context, q docstore.Query, caller *domain.Identity) []domain.Ticket {
	docs, err := r.store.Query(ctx, q)
	if err != nil {
		r.logger.Error("query tickets failed", zap.String("uid", caller.UID), zap.Error(err))
		return []domain.Ticket{}
	}
	tickets := make([]domain.Ticket, 0, len(docs))
	for _, doc := range docs {
		tickets = append(tickets, ticketFromDocument(doc))
	}
	r.logger.Debug("tickets loaded", zap.String("uid", caller.UID), zap.Int("count", len(tickets)))
	return tickets
}

func (r *ticketRepository) GetTicket(ctx context.Context, id string, caller *domain.Identity) *domain.Ticket {
	if caller == nil {
		r.logger.Warn("get ticket without authenticated user", zap.String("ticket_id", id))
		return nil
	}
	ticket, err := r.load(ctx, id)
	if err != nil {
		return nil
	}
	if !ticket.VisibleTo(caller.UID) {
		r.logger.Warn("ticket not visible to caller", zap.String("ticket_id", id), zap.String("uid", caller.UID))
		return nil
	}
	return ticket
}

func (r *ticketRepository) CreateTicket(ctx context.Context, input TicketCreateInput, caller *domain.Identity) (string, bool) {
	if caller == nil {
		r.logger.Warn("create ticket without authenticated user")
		return "", false
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	now := docstore.FormatTime(r.now())
	data := map[string]any{
		fieldTitle:       input.Title,
		fieldDescription: input.Description,
		fieldCategory:    input.Category,
		fieldPriority:    string(priority),
		fieldStatus:      string(domain.TicketStatusOpen),
		fieldCreatedBy:   caller.UID,
		fieldAssignedTo:  "",
		fieldCreatedAt:   now,
		fieldUpdatedAt:   now,
		fieldComments:    []any{},
	}
	id, err := r.store.Add(ctx, ticketsCollection, data)
	if err != nil {
		r.logger.Error("create ticket failed", zap.String("uid", caller.UID), zap.Error(err))
		return "", false
	}
	r.logger.Info("ticket created", zap.String("ticket_id", id), zap.String("uid", caller.UID))
	return id, true
}

// UpdateTicket overwrites the editable fields of ticket.ID.
//
// Known gap: no ownership check is made and updatedAt is left unchanged.
// Assigned users rely on being able to edit tickets they do not own.
func (r *ticketRepository) UpdateTicket(ctx context.Context, ticket domain.Ticket) bool {
	if !ticket.IsSaved() {
		return false
	}
	if err := r.store.Update(ctx, ticketsCollection, ticket.ID, ticketFields(ticket)); err != nil {
		r.logger.Error("update ticket failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return false
	}
	return true
}

func (r *ticketRepository) UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus, caller *domain.Identity) (bool, error) {
	if caller == nil {
		return false, fmt.Errorf("update status of ticket %s: %w", id, domain.ErrNotAuthenticated)
	}
	ticket, err := r.load(ctx, id)
	if err != nil {
		return false, nil
	}
	if !ticket.VisibleTo(caller.UID) {
		return false, fmt.Errorf("update status of ticket %s: %w", id, domain.ErrPermissionDenied)
	}

	fields := map[string]any{
		fieldStatus:    string(status),
		fieldUpdatedAt: docstore.FormatTime(r.now()),
	}
	if err := r.store.Update(ctx, ticketsCollection, id, fields); err != nil {
		r.logger.Error("update ticket status failed", zap.String("ticket_id", id), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (r *ticketRepository) AddComment(ctx context.Context, ticketID, text string, caller *domain.Identity) bool {
	if caller == nil {
		r.logger.Warn("add comment without authenticated user", zap.String("ticket_id", ticketID))
		return false
	}
	comment := domain.Comment{
		Content:    text,
		AuthorID:   caller.UID,
		AuthorName: caller.AuthorName(),
		CreatedAt:  r.now(),
	}
	if err := r.store.ArrayAppend(ctx, ticketsCollection, ticketID, fieldComments, commentMap(comment)); err != nil {
		r.logger.Error("add comment failed", zap.String("ticket_id", ticketID), zap.Error(err))
		return false
	}
	return true
}

// DeleteTicket removes a ticket. Only the creator may delete; an assignee
// gets ErrPermissionDenied even though it can read and update.
func (r *ticketRepository) DeleteTicket(ctx context.Context, id string, caller *domain.Identity) (bool, error) {
	if caller == nil {
		r.logger.Warn("delete ticket without authenticated user", zap.String("ticket_id", id))
		return false, nil
	}
	ticket, err := r.load(ctx, id)
	if err != nil {
		return false, nil
	}
	if ticket.CreatedBy != caller.UID {
		return false, fmt.Errorf("delete ticket %s: %w", id, domain.ErrPermissionDenied)
	}
	if err := r.store.Delete(ctx, ticketsCollection, id); err != nil {
		r.logger.Error("delete ticket failed", zap.String("ticket_id", id), zap.Error(err))
		return false, nil
	}
	r.logger.Info("ticket deleted", zap.String("ticket_id", id), zap.String("uid", caller.UID))
	return true, nil
}

func (r *ticketRepository) load(ctx context.Context, id string) (*domain.Ticket, error) {
	if id == "" {
		return nil, docstore.ErrNotFound
	}
	doc, err := r.store.Get(ctx, ticketsCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			r.logger.Warn("ticket not found", zap.String("ticket_id", id))
		} else {
			r.logger.Error("get ticket failed", zap.String("ticket_id", id), zap.Error(err))
		}
		return nil, err
	}
	ticket := ticketFromDocument(*doc)
	return &ticket, nil
}
