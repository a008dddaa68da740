package v1

import (
	"context"
	"crypto/subtle"
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

type PaymentService interface {
	CreatePayment(ctx context.Context, userID, ticketID uint, voucherCode string) (domain.Payment, error)
	GetPayment(ctx context.Context, userID, paymentID uint, isStaff bool) (domain.Payment, error)
	ListPayments(ctx context.Context, userID uint) ([]domain.Payment, error)
	ValidateVoucher(ctx context.Context, code, email string) (domain.Voucher, error)
	HandleWebhook(ctx context.Context, event, gatewayID, transactionID, status string) error
}

type PaymentHandler struct {
	svc           PaymentService
	uSvc          UserService
	callbackToken string
}

func NewPaymentHandler(svc PaymentService, uSvc UserService, callbackToken string) *PaymentHandler {
	return &PaymentHandler{
		svc:           svc,
		uSvc:          uSvc,
		callbackToken: callbackToken,
	}
}

// checkoutRejection maps a business-rule failure onto the rejection
// code surfaced to the client.
func checkoutRejection(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrTicketNotFound):
		return "TICKET_NOT_FOUND", true
	case errors.Is(err, service.ErrTicketSoldOut):
		return "TICKET_SOLD_OUT", true
	case errors.Is(err, service.ErrMissingEmail):
		return "MISSING_EMAIL", true
	case errors.Is(err, service.ErrMissingPhone):
		return "MISSING_PHONE", true
	case errors.Is(err, service.ErrAlreadyPaid):
		return "ALREADY_PAID", true
	case errors.Is(err, service.ErrVoucherNotFound):
		return "VOUCHER_NOT_FOUND", true
	case errors.Is(err, service.ErrVoucherInactive):
		return "VOUCHER_INACTIVE", true
	case errors.Is(err, service.ErrVoucherQuotaExhausted):
		return "VOUCHER_QUOTA_EXHAUSTED", true
	case errors.Is(err, service.ErrVoucherEmailNotWhitelisted):
		return "VOUCHER_EMAIL_NOT_WHITELISTED", true
	default:
		return "", false
	}
}

// HandleCreatePayment godoc
// @Summary      Create a payment
// @Description  Starts one checkout attempt for a ticket, optionally redeeming a voucher code.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreatePaymentRequest  true  "Checkout details"
// @Success      201    {object}  response.Payment
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /payment [post]
// @Security     BearerAuth
func (h *PaymentHandler) HandleCreatePayment(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	payment, err := h.svc.CreatePayment(ctx.Request.Context(), user.ID, req.TicketID, req.VoucherCode)
	if err != nil {
		if msg, ok := checkoutRejection(err); ok {
			response.RenderErr(ctx, response.ErrBusiness(msg))
			return
		}
		if errors.Is(err, service.ErrGatewayError) {
			response.RenderErr(ctx, &response.Err{StatusCode: http.StatusInternalServerError, Msg: "GATEWAY_ERROR"})
			return
		}

		err = fmt.Errorf("HandleCreatePayment -> h.svc.CreatePayment -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.NewPayment(payment))
}

// HandleGetPayment godoc
// @Summary      Get payment detail
// @Description  Returns the payment. Reading an UNPAID payment with a gateway reference also polls the gateway and reconciles the stored status.
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      int  true  "Payment ID"
// @Success      200  {object}  response.Payment
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /payment/{paymentID} [get]
// @Security     BearerAuth
func (h *PaymentHandler) HandleGetPayment(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	paymentID, err := strconv.ParseUint(ctx.Param("paymentID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid payment ID: %w", err)))
		return
	}

	payment, err := h.svc.GetPayment(ctx.Request.Context(), user.ID, uint(paymentID), user.IsStaff)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("payment", "ID", paymentID))
			return
		}

		err = fmt.Errorf("HandleGetPayment -> h.svc.GetPayment -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewPayment(payment))
}

// HandleListPayments godoc
// @Summary      List own payments
// @Tags         payments
// @Produce      json
// @Success      200  {array}   response.Payment
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /payment [get]
// @Security     BearerAuth
func (h *PaymentHandler) HandleListPayments(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	payments, err := h.svc.ListPayments(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("HandleListPayments -> h.svc.ListPayments -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewPayments(payments))
}

// HandleValidateVoucher godoc
// @Summary      Validate a voucher code
// @Description  Dry-run of the redemption checks; reserves no quota.
// @Tags         payments,vouchers
// @Produce      json
// @Param        code  query     string  true  "Voucher code"
// @Success      200   {object}  response.Voucher
// @Failure      400   {object}  response.Err
// @Failure      401   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /payment/voucher/validate [get]
// @Security     BearerAuth
func (h *PaymentHandler) HandleValidateVoucher(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	code := ctx.Query("code")
	if code == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("code is required")))
		return
	}

	voucher, err := h.svc.ValidateVoucher(ctx.Request.Context(), code, user.Email)
	if err != nil {
		if msg, ok := checkoutRejection(err); ok {
			response.RenderErr(ctx, response.ErrBusiness(msg))
			return
		}

		err = fmt.Errorf("HandleValidateVoucher -> h.svc.ValidateVoucher -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewVoucher(voucher))
}

// HandleWebhook godoc
// @Summary      Gateway payment callback
// @Description  Authenticated by the x-callback-token header. Safe to replay; only the payment.received event is acted upon.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        x-callback-token  header    string                  true  "Shared callback secret"
// @Param        input             body      request.WebhookRequest  true  "Callback payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /payment/webhook [post]
func (h *PaymentHandler) HandleWebhook(ctx *gin.Context) {
	token := ctx.GetHeader("x-callback-token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.callbackToken)) != 1 {
		response.RenderErr(ctx, response.ErrBusiness("WEBHOOK_AUTH_FAILED"))
		return
	}

	var req request.WebhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := h.svc.HandleWebhook(ctx.Request.Context(), req.Event, req.Data.ID, req.Data.TransactionID, req.Data.Status)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			response.RenderErr(ctx, response.ErrBusiness("WEBHOOK_PAYMENT_NOT_FOUND"))
			return
		}

		err = fmt.Errorf("HandleWebhook -> h.svc.HandleWebhook -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
