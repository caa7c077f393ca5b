package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketStatuses lists every status in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// ParseTicketStatus maps a stored value to a status, falling back to OPEN.
func ParseTicketStatus(value string) TicketStatus {
	status, ok := LookupTicketStatus(value)
	if !ok {
		return TicketStatusOpen
	}
	return status
}

// LookupTicketStatus reports whether value names a known status.
func LookupTicketStatus(value string) (TicketStatus, bool) {
	for _, s := range TicketStatuses {
		if string(s) == value {
			return s, true
		}
	}
	return "", false
}

// IsUnresolved is true for tickets still waiting on work.
func (s TicketStatus) IsUnresolved() bool {
	return s == TicketStatusOpen || s == TicketStatusInProgress
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketPriorities lists every priority from lowest to highest.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// ParseTicketPriority maps a stored value to a priority, falling back to MEDIUM.
func ParseTicketPriority(value string) TicketPriority {
	priority, ok := LookupTicketPriority(value)
	if !ok {
		return TicketPriorityMedium
	}
	return priority
}

// LookupTicketPriority reports whether value names a known priority.
func LookupTicketPriority(value string) (TicketPriority, bool) {
	for _, p := range TicketPriorities {
		if string(p) == value {
			return p, true
		}
	}
	return "", false
}

// TicketCategory is a suggested category label. Tickets store free text.
type TicketCategory string

const (
	CategoryHardware TicketCategory = "HARDWARE"
	CategorySoftware TicketCategory = "SOFTWARE"
	CategoryNetwork  TicketCategory = "NETWORK"
	CategoryPrinter  TicketCategory = "PRINTER"
	CategoryEmail    TicketCategory = "EMAIL"
	CategoryAccess   TicketCategory = "ACCESS"
	CategoryOther    TicketCategory = "OTHER"
)

// TicketCategories lists the suggested categories.
var TicketCategories = []TicketCategory{
	CategoryHardware,
	CategorySoftware,
	CategoryNetwork,
	CategoryPrinter,
	CategoryEmail,
	CategoryAccess,
	CategoryOther,
}

// Ticket is a tracked support request.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Category    string
	Status      TicketStatus
	Priority    TicketPriority
	CreatedBy   string
	AssignedTo  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Comments    []Comment
}

// IsSaved is false until the store has assigned an id.
func (t *Ticket) IsSaved() bool {
	return t.ID != ""
}

// VisibleTo reports whether uid owns or is assigned the ticket.
func (t *Ticket) VisibleTo(uid string) bool {
	if uid == "" {
		return false
	}
	return t.CreatedBy == uid || t.AssignedTo == uid
}

// Comment is an append-only remark on a ticket.
type Comment struct {
	ID         string
	Content    string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
}
