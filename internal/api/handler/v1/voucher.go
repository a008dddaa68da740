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
	"github.com/pyconid/pyconid25-be-sub000/internal/repository"
	"github.com/pyconid/pyconid25-be-sub000/internal/service"
)

type VoucherService interface {
	GetVoucher(ctx context.Context, id uint) (domain.Voucher, error)
	CreateVoucher(ctx context.Context, voucher domain.Voucher) (domain.Voucher, error)
	UpdateVoucher(ctx context.Context, voucher domain.Voucher) (domain.Voucher, error)
}

// VoucherHandler covers the staff-only voucher administration routes.
type VoucherHandler struct {
	svc VoucherService
}

func NewVoucherHandler(svc VoucherService) *VoucherHandler {
	return &VoucherHandler{
		svc: svc,
	}
}

// HandleGetVoucher godoc
// @Summary      Get one voucher
// @Description  Staff only.
// @Tags         vouchers
// @Produce      json
// @Param        voucherID  path      int  true  "Voucher ID"
// @Success      200  {object}  response.AdminVoucher
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /vouchers/{voucherID} [get]
// @Security     BearerAuth
func (h *VoucherHandler) HandleGetVoucher(ctx *gin.Context) {
	voucherID, err := strconv.ParseUint(ctx.Param("voucherID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid voucher ID: %w", err)))
		return
	}

	voucher, err := h.svc.GetVoucher(ctx.Request.Context(), uint(voucherID))
	if err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("voucher", "ID", voucherID))
			return
		}

		err = fmt.Errorf("HandleGetVoucher -> h.svc.GetVoucher -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewAdminVoucher(voucher))
}

// HandleCreateVoucher godoc
// @Summary      Create a voucher
// @Description  Staff only.
// @Tags         vouchers
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateVoucherRequest  true  "Voucher details"
// @Success      201    {object}  response.AdminVoucher
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /vouchers [post]
// @Security     BearerAuth
func (h *VoucherHandler) HandleCreateVoucher(ctx *gin.Context) {
	var req request.CreateVoucherRequest
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

	created, err := h.svc.CreateVoucher(ctx.Request.Context(), domain.Voucher{
		Code:            req.Code,
		Value:           req.Value,
		Quota:           req.Quota,
		ParticipantType: req.ParticipantType,
		Active:          active,
		EmailWhitelist:  req.EmailWhitelist,
	})
	if err != nil {
		if errors.Is(err, repository.ErrVoucherCodeExists) {
			response.RenderErr(ctx, response.ErrBusiness("voucher code already exists"))
			return
		}

		err = fmt.Errorf("HandleCreateVoucher -> h.svc.CreateVoucher -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.NewAdminVoucher(created))
}

// HandleUpdateVoucher godoc
// @Summary      Update a voucher
// @Description  Staff only. Replaces value, quota, active flag, participant-type override and whitelist.
// @Tags         vouchers
// @Accept       json
// @Produce      json
// @Param        voucherID  path      int                           true  "Voucher ID"
// @Param        input      body      request.CreateVoucherRequest  true  "Voucher details"
// @Success      200  {object}  response.AdminVoucher
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /vouchers/{voucherID} [patch]
// @Security     BearerAuth
func (h *VoucherHandler) HandleUpdateVoucher(ctx *gin.Context) {
	voucherID, err := strconv.ParseUint(ctx.Param("voucherID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid voucher ID: %w", err)))
		return
	}

	var req request.CreateVoucherRequest
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

	updated, err := h.svc.UpdateVoucher(ctx.Request.Context(), domain.Voucher{
		ID:              uint(voucherID),
		Code:            req.Code,
		Value:           req.Value,
		Quota:           req.Quota,
		ParticipantType: req.ParticipantType,
		Active:          active,
		EmailWhitelist:  req.EmailWhitelist,
	})
	if err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("voucher", "ID", voucherID))
			return
		}

		err = fmt.Errorf("HandleUpdateVoucher -> h.svc.UpdateVoucher -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewAdminVoucher(updated))
}
