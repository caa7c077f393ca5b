package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	"github.com/spec-kit/ticket-tracker/internal/view"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

type browseFunc func(ctx context.Context, caller *domain.Identity, params view.Params) (view.Result, error)

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	return h.list(c, h.service.Browse)
}

// ListCritical GET /tickets/critical.
func (h *TicketsHandler) ListCritical(c *fiber.Ctx) error {
	return h.list(c, h.service.BrowseCritical)
}

func (h *TicketsHandler) list(c *fiber.Ctx, browse browseFunc) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	params, err := parseViewParams(c)
	if err != nil {
		return err
	}
	result, err := browse(c.UserContext(), caller, params)
	if err != nil {
		return err
	}

	items := make([]dto.TicketSummary, 0, len(result.Tickets))
	for i := range result.Tickets {
		items = append(items, dto.NewTicketSummary(&result.Tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items: items,
		Counters: dto.CountersResponse{
			Total:      result.Counters.Total,
			Unresolved: result.Counters.Unresolved,
		},
		Status: string(params.Status),
		Query:  params.Query,
		Sort:   string(params.Sort),
	}})
}

// Stats GET /tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Total:      stats.Total,
		ByStatus:   buckets(stats.ByStatus),
		ByCategory: buckets(stats.ByCategory),
	}})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), service.TicketInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	}, caller)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), c.Params("id"), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Update(c.UserContext(), c.Params("id"), service.TicketInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	}, caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, err := service.ParseStatus(req.Status)
	if err != nil {
		return apperrors.NewValidationError("unknown status", map[string]any{"allowed": domain.TicketStatuses})
	}

	if err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), status, caller); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.AddComment(c.UserContext(), c.Params("id"), req.Text, caller)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), c.Params("id"), caller); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func callerFrom(c *fiber.Ctx) (*domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return identity, nil
}

func parseViewParams(c *fiber.Ctx) (view.Params, error) {
	params := view.Params{Query: c.Query("q")}
	if raw := c.Query("status"); raw != "" && raw != "ALL" && raw != "all" {
		status, err := service.ParseStatus(raw)
		if err != nil {
			return view.Params{}, apperrors.NewValidationError("unknown status", map[string]any{"allowed": domain.TicketStatuses})
		}
		params.Status = status
	}
	order, err := view.ParseSortOrder(c.Query("sort"))
	if err != nil {
		return view.Params{}, apperrors.NewValidationError("unknown sort order", map[string]any{
			"allowed": []view.SortOrder{view.SortDateDesc, view.SortDateAsc, view.SortTitleAsc, view.SortTitleDesc},
		})
	}
	params.Sort = order
	return params, nil
}

func buckets(in []view.Bucket) []dto.BucketResponse {
	out := make([]dto.BucketResponse, 0, len(in))
	for _, b := range in {
		out = append(out, dto.BucketResponse{Label: b.Label, Count: b.Count})
	}
	return out
}
