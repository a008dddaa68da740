package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
	"github.com/pyconid/pyconid25-be-sub000/internal/gateway"
	"github.com/pyconid/pyconid25-be-sub000/internal/repository"
)

var (
	ErrTicketNotFound             = repository.ErrTicketNotFound
	ErrTicketSoldOut              = errors.New("ticket sold out")
	ErrMissingEmail               = errors.New("verified email required")
	ErrMissingPhone               = errors.New("phone number required")
	ErrAlreadyPaid                = errors.New("user already holds a paid ticket")
	ErrVoucherNotFound            = repository.ErrVoucherNotFound
	ErrVoucherInactive            = errors.New("voucher inactive")
	ErrVoucherQuotaExhausted      = repository.ErrVoucherQuotaExhausted
	ErrVoucherEmailNotWhitelisted = errors.New("voucher email not whitelisted")
	ErrGatewayError               = errors.New("payment gateway error")
	ErrPaymentNotFound            = repository.ErrPaymentNotFound
)

// WebhookEventPaymentReceived is the only gateway event acted upon.
const WebhookEventPaymentReceived = "payment.received"

type PaymentRepository interface {
	CreateCheckout(ctx context.Context, payment domain.Payment, participantType string, issue func(domain.Payment) (repository.CheckoutRef, error)) (domain.Payment, error)
	FindByID(ctx context.Context, id uint) (domain.Payment, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Payment, error)
	FindByGatewayRef(ctx context.Context, transactionID, gatewayID string) (domain.Payment, error)
	HasPaid(ctx context.Context, userID uint) (bool, error)
	SettlePaid(ctx context.Context, id, userID uint, participantType string, now time.Time) (bool, []domain.Payment, error)
	SettleClosed(ctx context.Context, id uint, now time.Time) (bool, error)
}

type PaymentTicketRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Ticket, error)
}

type PaymentVoucherRepository interface {
	FindByCode(ctx context.Context, code string) (domain.Voucher, error)
}

type PaymentUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type PaymentService struct {
	repo        PaymentRepository
	ticketRepo  PaymentTicketRepository
	voucherRepo PaymentVoucherRepository
	userRepo    PaymentUserRepository
	gw          gateway.Client
	redirectURL string
}

func NewPaymentService(repo PaymentRepository, ticketRepo PaymentTicketRepository, voucherRepo PaymentVoucherRepository, userRepo PaymentUserRepository, gw gateway.Client, redirectURL string) *PaymentService {
	return &PaymentService{
		repo:        repo,
		ticketRepo:  ticketRepo,
		voucherRepo: voucherRepo,
		userRepo:    userRepo,
		gw:          gw,
		redirectURL: redirectURL,
	}
}

// CreatePayment runs one checkout attempt. The voucher quota
// reservation, the payment insert and the gateway invoice creation all
// happen inside one database transaction, so a gateway failure leaves
// no orphaned UNPAID row and no lost quota unit.
func (s *PaymentService) CreatePayment(ctx context.Context, userID, ticketID uint, voucherCode string) (domain.Payment, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}
	if !user.EmailVerified {
		return domain.Payment{}, ErrMissingEmail
	}
	if user.Phone == "" {
		return domain.Payment{}, ErrMissingPhone
	}

	paid, err := s.repo.HasPaid(ctx, userID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("s.repo.HasPaid -> %w", err)
	}
	if paid {
		return domain.Payment{}, ErrAlreadyPaid
	}

	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return domain.Payment{}, ErrTicketNotFound
		}

		return domain.Payment{}, fmt.Errorf("s.ticketRepo.FindByID -> %w", err)
	}
	if !ticket.Active {
		return domain.Payment{}, ErrTicketNotFound
	}
	if ticket.SoldOut {
		return domain.Payment{}, ErrTicketSoldOut
	}

	discount := 0
	var voucher *domain.Voucher
	if voucherCode != "" {
		found, err := s.ValidateVoucher(ctx, voucherCode, user.Email)
		if err != nil {
			return domain.Payment{}, err
		}

		voucher = &found
		discount = found.Value
	}

	payment := domain.Payment{
		UserID:   userID,
		TicketID: ticket.ID,
		Amount:   domain.ChargeAmount(ticket.Price, discount),
		Status:   domain.PaymentStatusUnpaid,
	}
	if voucher != nil {
		payment.VoucherID = &voucher.ID
	}

	var (
		participantType string
		issue           func(domain.Payment) (repository.CheckoutRef, error)
	)

	if payment.Amount == 0 {
		// Fully discounted: settle immediately, never touch the gateway.
		now := time.Now()
		payment.Status = domain.PaymentStatusPaid
		payment.PaidAt = &now
		participantType = settlementParticipantType(ticket, voucher)
	} else {
		issue = func(p domain.Payment) (repository.CheckoutRef, error) {
			invoice, err := s.gw.CreateInvoice(ctx, gateway.CreateInvoiceRequest{
				ExternalID:  fmt.Sprintf("pycon-payment-%v", p.ID),
				Amount:      p.Amount,
				Description: ticket.Name,
				PayerEmail:  user.Email,
				RedirectURL: s.redirectURL,
			})
			if err != nil {
				zap.L().Error("gateway invoice creation failed", zap.Uint("payment_id", p.ID), zap.Error(err))
				return repository.CheckoutRef{}, ErrGatewayError
			}

			return repository.CheckoutRef{
				GatewayID:            invoice.ID,
				GatewayTransactionID: invoice.TransactionID,
				PaymentLink:          invoice.PaymentURL,
			}, nil
		}
	}

	created, err := s.repo.CreateCheckout(ctx, payment, participantType, issue)
	if err != nil {
		if errors.Is(err, repository.ErrVoucherQuotaExhausted) {
			return domain.Payment{}, ErrVoucherQuotaExhausted
		}
		if errors.Is(err, ErrGatewayError) {
			return domain.Payment{}, ErrGatewayError
		}

		return domain.Payment{}, fmt.Errorf("s.repo.CreateCheckout -> %w", err)
	}

	return s.repo.FindByID(ctx, created.ID)
}

// ValidateVoucher runs the redemption checks without reserving quota.
// Check order is fixed: existence, active flag, quota, whitelist; the
// first failing check wins.
func (s *PaymentService) ValidateVoucher(ctx context.Context, code, email string) (domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrVoucherNotFound) {
			return domain.Voucher{}, ErrVoucherNotFound
		}

		return domain.Voucher{}, fmt.Errorf("s.voucherRepo.FindByCode -> %w", err)
	}

	if !voucher.Active {
		return domain.Voucher{}, ErrVoucherInactive
	}
	if voucher.Quota <= 0 {
		return domain.Voucher{}, ErrVoucherQuotaExhausted
	}
	if !voucher.AllowsEmail(email) {
		return domain.Voucher{}, ErrVoucherEmailNotWhitelisted
	}

	return voucher, nil
}

// GetPayment returns the payment detail and, for UNPAID payments with a
// gateway reference, polls the gateway and reconciles. A failed poll is
// logged and the stored state returned; viewing a payment never fails
// because the provider is down.
func (s *PaymentService) GetPayment(ctx context.Context, userID, paymentID uint, isStaff bool) (domain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return domain.Payment{}, ErrPaymentNotFound
		}

		return domain.Payment{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if payment.UserID != userID && !isStaff {
		return domain.Payment{}, ErrPaymentNotFound
	}

	if payment.Status != domain.PaymentStatusUnpaid || payment.GatewayID == "" {
		return payment, nil
	}

	invoice, err := s.gw.GetInvoice(ctx, payment.GatewayID)
	if err != nil {
		zap.L().Warn("payment status poll failed",
			zap.Uint("payment_id", payment.ID),
			zap.Error(err))
		return payment, nil
	}

	return s.applyGatewayStatus(ctx, payment, invoice.Status)
}

func (s *PaymentService) ListPayments(ctx context.Context, userID uint) ([]domain.Payment, error) {
	payments, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return payments, nil
}

// HandleWebhook applies a gateway-initiated status push. Delivery is
// at-least-once; replays converge on the same terminal state because
// the settlement writes are conditional on the UNPAID status.
func (s *PaymentService) HandleWebhook(ctx context.Context, event, gatewayID, transactionID, status string) error {
	if event != WebhookEventPaymentReceived {
		return nil
	}

	ref, err := s.repo.FindByGatewayRef(ctx, transactionID, gatewayID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return ErrPaymentNotFound
		}

		return fmt.Errorf("s.repo.FindByGatewayRef -> %w", err)
	}

	// Reload with ticket and voucher for the participant-type decision.
	payment, err := s.repo.FindByID(ctx, ref.ID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if _, err = s.applyGatewayStatus(ctx, payment, status); err != nil {
		return err
	}

	return nil
}

// applyGatewayStatus is the single convergence point shared by the poll
// and webhook paths. Unrecognized gateway statuses map to UNPAID and
// change nothing.
func (s *PaymentService) applyGatewayStatus(ctx context.Context, payment domain.Payment, raw string) (domain.Payment, error) {
	mapped := domain.PaymentStatusFromGateway(raw)
	if mapped == domain.PaymentStatusUnpaid || mapped == payment.Status {
		return payment, nil
	}

	now := time.Now()

	switch mapped {
	case domain.PaymentStatusPaid:
		participantType := settlementParticipantType(payment.Ticket, payment.Voucher)
		settled, siblings, err := s.repo.SettlePaid(ctx, payment.ID, payment.UserID, participantType, now)
		if err != nil {
			return domain.Payment{}, fmt.Errorf("s.repo.SettlePaid -> %w", err)
		}
		if settled {
			s.expireSiblings(ctx, siblings)
		}

	case domain.PaymentStatusClosed:
		if _, err := s.repo.SettleClosed(ctx, payment.ID, now); err != nil {
			return domain.Payment{}, fmt.Errorf("s.repo.SettleClosed -> %w", err)
		}
	}

	return s.repo.FindByID(ctx, payment.ID)
}

// expireSiblings asks the gateway to expire invoices of payments that
// were just closed. Best effort: an individual failure is logged and
// does not abort the settlement.
func (s *PaymentService) expireSiblings(ctx context.Context, siblings []domain.Payment) {
	for _, sibling := range siblings {
		if sibling.GatewayID == "" {
			continue
		}

		if err := s.gw.ExpireInvoice(ctx, sibling.GatewayID); err != nil {
			zap.L().Warn("failed to expire sibling invoice",
				zap.Uint("payment_id", sibling.ID),
				zap.String("gateway_id", sibling.GatewayID),
				zap.Error(err))
		}
	}
}

func settlementParticipantType(ticket domain.Ticket, voucher *domain.Voucher) string {
	if voucher != nil && voucher.ParticipantType != "" {
		return voucher.ParticipantType
	}

	return ticket.ParticipantType
}
