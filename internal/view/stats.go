package view

import "github.com/spec-kit/ticket-tracker/internal/domain"

// Bucket is one labelled count.
type Bucket struct {
	Label string
	Count int
}

// Stats breaks a ticket list down by status and category.
type Stats struct {
	Total      int
	ByStatus   []Bucket
	ByCategory []Bucket
}

// ComputeStats lists every status (zero counts included) and every
// category in order of first appearance.
func ComputeStats(tickets []domain.Ticket) Stats {
	stats := Stats{Total: len(tickets)}

	byStatus := make(map[domain.TicketStatus]int, len(domain.TicketStatuses))
	byCategory := map[string]int{}
	var categories []string
	for _, t := range tickets {
		byStatus[t.Status]++
		if _, seen := byCategory[t.Category]; !seen {
			categories = append(categories, t.Category)
		}
		byCategory[t.Category]++
	}

	stats.ByStatus = make([]Bucket, 0, len(domain.TicketStatuses))
	for _, s := range domain.TicketStatuses {
		stats.ByStatus = append(stats.ByStatus, Bucket{Label: string(s), Count: byStatus[s]})
	}
	stats.ByCategory = make([]Bucket, 0, len(categories))
	for _, c := range categories {
		stats.ByCategory = append(stats.ByCategory, Bucket{Label: c, Count: byCategory[c]})
	}
	return stats
}
