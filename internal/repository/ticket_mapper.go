package repository

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/docstore"
	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// Document field names for the tickets collection.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldStatus      = "status"
	fieldPriority    = "priority"
	fieldCreatedBy   = "createdBy"
	fieldAssignedTo  = "assignedTo"
	fieldCreatedAt   = "createdAt"
	fieldUpdatedAt   = "updatedAt"
	fieldComments    = "comments"

	commentID         = "id"
	commentText       = "text"
	commentAuthorID   = "authorId"
	commentAuthorName = "authorName"
	commentLegacyBy   = "createdBy"
	commentCreatedAt  = "createdAt"
)

// ticketFromDocument coerces a stored document into a Ticket. Missing or
// mistyped fields fall back to their zero value, unknown status to OPEN
// and unknown priority to MEDIUM.
func ticketFromDocument(doc docstore.Document) domain.Ticket {
	data := doc.Data
	return domain.Ticket{
		ID:          doc.ID,
		Title:       stringField(data, fieldTitle),
		Description: stringField(data, fieldDescription),
		Category:    stringField(data, fieldCategory),
		Status:      domain.ParseTicketStatus(stringField(data, fieldStatus)),
		Priority:    domain.ParseTicketPriority(stringField(data, fieldPriority)),
		CreatedBy:   stringField(data, fieldCreatedBy),
		AssignedTo:  stringField(data, fieldAssignedTo),
		CreatedAt:   timeField(data, fieldCreatedAt),
		UpdatedAt:   timeField(data, fieldUpdatedAt),
		Comments:    commentsField(data, fieldComments),
	}
}

func commentsField(data map[string]any, key string) []domain.Comment {
	raw, ok := data[key].([]any)
	if !ok {
		return []domain.Comment{}
	}
	comments := make([]domain.Comment, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		authorID := stringField(m, commentAuthorID)
		if authorID == "" {
			authorID = stringField(m, commentLegacyBy)
		}
		comments = append(comments, domain.Comment{
			ID:         stringField(m, commentID),
			Content:    stringField(m, commentText),
			AuthorID:   authorID,
			AuthorName: stringField(m, commentAuthorName),
			CreatedAt:  timeField(m, commentCreatedAt),
		})
	}
	return comments
}

// ticketFields is the full overwrite written by UpdateTicket. Id and
// timestamps are not part of it.
func ticketFields(t domain.Ticket) map[string]any {
	return map[string]any{
		fieldTitle:       t.Title,
		fieldDescription: t.Description,
		fieldCategory:    t.Category,
		fieldPriority:    string(t.Priority),
		fieldStatus:      string(t.Status),
		fieldCreatedBy:   t.CreatedBy,
		fieldAssignedTo:  t.AssignedTo,
		fieldComments:    commentMaps(t.Comments),
	}
}

func commentMaps(comments []domain.Comment) []map[string]any {
	out := make([]map[string]any, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentMap(c))
	}
	return out
}

func commentMap(c domain.Comment) map[string]any {
	m := map[string]any{
		commentText:       c.Content,
		commentAuthorID:   c.AuthorID,
		commentAuthorName: c.AuthorName,
		commentCreatedAt:  docstore.FormatTime(c.CreatedAt),
	}
	if c.ID != "" {
		m[commentID] = c.ID
	}
	return m
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func timeField(data map[string]any, key string) time.Time {
	t, _ := docstore.ParseTime(data[key])
	return t
}

func boolField(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func stringsField(data map[string]any, key string) []string {
	raw, ok := data[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
