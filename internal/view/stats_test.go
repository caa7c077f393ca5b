package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

func TestComputeStats(t *testing.T) {
	tickets := []domain.Ticket{
		{Status: domain.TicketStatusOpen, Category: "NETWORK"},
		{Status: domain.TicketStatusOpen, Category: "HARDWARE"},
		{Status: domain.TicketStatusClosed, Category: "NETWORK"},
		{Status: domain.TicketStatusInProgress, Category: ""},
	}
	stats := ComputeStats(tickets)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, []Bucket{
		{Label: "OPEN", Count: 2},
		{Label: "IN_PROGRESS", Count: 1},
		{Label: "RESOLVED", Count: 0},
		{Label: "CLOSED", Count: 1},
	}, stats.ByStatus)
	assert.Equal(t, []Bucket{
		{Label: "NETWORK", Count: 2},
		{Label: "HARDWARE", Count: 1},
		{Label: "", Count: 1},
	}, stats.ByCategory)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Zero(t, stats.Total)
	assert.Len(t, stats.ByStatus, len(domain.TicketStatuses))
	assert.Empty(t, stats.ByCategory)
}
