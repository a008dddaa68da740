package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pyconid/pyconid25-be-sub000/internal/api/handler/v1/request"
	"github.com/pyconid/pyconid25-be-sub000/internal/api/handler/v1/response"
	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
	"github.com/pyconid/pyconid25-be-sub000/internal/service"
)

type TicketService interface {
	GetTickets(ctx context.Context) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, id uint) (domain.Ticket, error)
	CreateTicket(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	UpdateTicket(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
}

type TicketHandler struct {
	svc TicketService
}

func NewTicketHandler(svc TicketService) *TicketHandler {
	return &TicketHandler{
		svc: svc,
	}
}

// HandleGetTickets godoc
// @Summary      List active tickets
// @Tags         tickets
// @Produce      json
// @Success      200  {array}   response.Ticket
// @Failure      500  {object}  response.Err
// @Router       /tickets [get]
// @Security     BearerAuth
func (h *TicketHandler) HandleGetTickets(ctx *gin.Context) {
	tickets, err := h.svc.GetTickets(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleGetTickets -> h.svc.GetTickets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewTickets(tickets))
}

// HandleGetTicket godoc
// @Summary      Get one ticket
// @Tags         tickets
// @Produce      json
// @Param        ticketID  path      int  true  "Ticket ID"
// @Success      200  {object}  response.Ticket
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticketID} [get]
// @Security     BearerAuth
func (h *TicketHandler) HandleGetTicket(ctx *gin.Context) {
	ticketID, err := strconv.ParseUint(ctx.Param("ticketID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid ticket ID: %w", err)))
		return
	}

	ticket, err := h.svc.GetTicket(ctx.Request.Context(), uint(ticketID))
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", ticketID))
			return
		}

		err = fmt.Errorf("HandleGetTicket -> h.svc.GetTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewTicket(ticket))
}

// HandleCreateTicket godoc
// @Summary      Create a ticket
// @Description  Staff only.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateTicketRequest  true  "Ticket details"
// @Success      201    {object}  response.Ticket
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /tickets [post]
// @Security     BearerAuth
func (h *TicketHandler) HandleCreateTicket(ctx *gin.Context) {
	var req request.CreateTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	created, err := h.svc.CreateTicket(ctx.Request.Context(), domain.Ticket{
		Name:            req.Name,
		Price:           req.Price,
		ParticipantType: req.ParticipantType,
		SoldOut:         req.SoldOut,
		Active:          active,
		Description:     req.Description,
	})
	if err != nil {
		err = fmt.Errorf("HandleCreateTicket -> h.svc.CreateTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.NewTicket(created))
}

// HandleUpdateTicket godoc
// @Summary      Update a ticket
// @Description  Staff only.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        ticketID  path      int                          true  "Ticket ID"
// @Param        input     body      request.CreateTicketRequest  true  "Ticket details"
// @Success      200  {object}  response.Ticket
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticketID} [patch]
// @Security     BearerAuth
func (h *TicketHandler) HandleUpdateTicket(ctx *gin.Context) {
	ticketID, err := strconv.ParseUint(ctx.Param("ticketID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid ticket ID: %w", err)))
		return
	}

	var req request.CreateTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	updated, err := h.svc.UpdateTicket(ctx.Request.Context(), domain.Ticket{
		ID:              uint(ticketID),
		Name:            req.Name,
		Price:           req.Price,
		ParticipantType: req.ParticipantType,
		SoldOut:         req.SoldOut,
		Active:          active,
		Description:     req.Description,
	})
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", ticketID))
			return
		}

		err = fmt.Errorf("HandleUpdateTicket -> h.svc.UpdateTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewTicket(updated))
}
