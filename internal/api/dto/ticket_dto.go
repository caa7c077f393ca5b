package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// UpdateTicketRequest payload. Omitted fields keep their value.
type UpdateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	AssignedTo  *string `json:"assigned_to"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// TicketSummary is one row of a ticket list.
type TicketSummary struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Category     string                `json:"category"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	AssignedTo   string                `json:"assigned_to"`
	CommentCount int                   `json:"comment_count"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedBy   string                `json:"created_by"`
	AssignedTo  string                `json:"assigned_to"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Comments    []CommentResponse     `json:"comments"`
}

// CommentResponse represents one comment in a thread.
type CommentResponse struct {
	ID         string    `json:"id,omitempty"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// CountersResponse summarises the unfiltered list.
type CountersResponse struct {
	Total      int `json:"total"`
	Unresolved int `json:"unresolved"`
}

// TicketListResponse is a derived view plus counters.
type TicketListResponse struct {
	Items    []TicketSummary  `json:"items"`
	Counters CountersResponse `json:"counters"`
	Status   string           `json:"status"`
	Query    string           `json:"query"`
	Sort     string           `json:"sort"`
}

// BucketResponse is one labelled count.
type BucketResponse struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatsResponse breaks the ticket list down by status and category.
type StatsResponse struct {
	Total      int              `json:"total"`
	ByStatus   []BucketResponse `json:"by_status"`
	ByCategory []BucketResponse `json:"by_category"`
}

// NewTicketSummary maps a ticket to its list row.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:           t.ID,
		Title:        t.Title,
		Category:     t.Category,
		Status:       t.Status,
		Priority:     t.Priority,
		AssignedTo:   t.AssignedTo,
		CommentCount: len(t.Comments),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// NewTicketDetail maps a ticket with its comments.
func NewTicketDetail(t *domain.Ticket) TicketDetailResponse {
	comments := make([]CommentResponse, 0, len(t.Comments))
	for _, c := range t.Comments {
		comments = append(comments, CommentResponse{
			ID:         c.ID,
			Text:       c.Content,
			AuthorID:   c.AuthorID,
			AuthorName: c.AuthorName,
			CreatedAt:  c.CreatedAt,
		})
	}
	return TicketDetailResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Comments:    comments,
	}
}
