package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
	"github.com/pyconid/pyconid25-be-sub000/internal/repository/dao"
)

var (
	ErrPaymentNotFound       = dao.ErrPaymentNotFound
	ErrVoucherQuotaExhausted = dao.ErrVoucherQuotaExhausted
)

// CheckoutRef mirrors dao.CheckoutRef for callers outside the dao layer.
type CheckoutRef struct {
	GatewayID            string
	GatewayTransactionID string
	PaymentLink          string
}

type PaymentDAO interface {
	CreateCheckout(ctx context.Context, payment dao.Payment, participantType string, issue func(dao.Payment) (dao.CheckoutRef, error)) (dao.Payment, error)
	FindByID(ctx context.Context, id uint) (dao.Payment, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.Payment, error)
	FindByGatewayRef(ctx context.Context, transactionID, gatewayID string) (dao.Payment, error)
	HasPaid(ctx context.Context, userID uint) (bool, error)
	SettlePaid(ctx context.Context, id, userID uint, participantType string, now time.Time) (bool, []dao.Payment, error)
	SettleClosed(ctx context.Context, id uint, now time.Time) (bool, error)
}

type PaymentRepository struct {
	dao PaymentDAO
}

func NewPaymentRepository(dao PaymentDAO) *PaymentRepository {
	return &PaymentRepository{
		dao: dao,
	}
}

func (r *PaymentRepository) CreateCheckout(ctx context.Context, payment domain.Payment, participantType string, issue func(domain.Payment) (CheckoutRef, error)) (domain.Payment, error) {
	var daoIssue func(dao.Payment) (dao.CheckoutRef, error)
	if issue != nil {
		daoIssue = func(p dao.Payment) (dao.CheckoutRef, error) {
			ref, err := issue(r.daoToDomain(p))
			if err != nil {
				return dao.CheckoutRef{}, err
			}

			return dao.CheckoutRef{
				GatewayID:            ref.GatewayID,
				GatewayTransactionID: ref.GatewayTransactionID,
				PaymentLink:          ref.PaymentLink,
			}, nil
		}
	}

	created, err := r.dao.CreateCheckout(ctx, r.domainToDao(payment), participantType, daoIssue)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("r.dao.CreateCheckout -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uint) (domain.Payment, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *PaymentRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Payment, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	payments := make([]domain.Payment, len(found))
	for i, p := range found {
		payments[i] = r.daoToDomain(p)
	}

	return payments, nil
}

func (r *PaymentRepository) FindByGatewayRef(ctx context.Context, transactionID, gatewayID string) (domain.Payment, error) {
	found, err := r.dao.FindByGatewayRef(ctx, transactionID, gatewayID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("r.dao.FindByGatewayRef -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *PaymentRepository) HasPaid(ctx context.Context, userID uint) (bool, error) {
	paid, err := r.dao.HasPaid(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasPaid -> %w", err)
	}

	return paid, nil
}

func (r *PaymentRepository) SettlePaid(ctx context.Context, id, userID uint, participantType string, now time.Time) (bool, []domain.Payment, error) {
	settled, closed, err := r.dao.SettlePaid(ctx, id, userID, participantType, now)
	if err != nil {
		return false, nil, fmt.Errorf("r.dao.SettlePaid -> %w", err)
	}

	siblings := make([]domain.Payment, len(closed))
	for i, p := range closed {
		siblings[i] = r.daoToDomain(p)
	}

	return settled, siblings, nil
}

func (r *PaymentRepository) SettleClosed(ctx context.Context, id uint, now time.Time) (bool, error) {
	closed, err := r.dao.SettleClosed(ctx, id, now)
	if err != nil {
		return false, fmt.Errorf("r.dao.SettleClosed -> %w", err)
	}

	return closed, nil
}

func (r *PaymentRepository) domainToDao(p domain.Payment) dao.Payment {
	return dao.Payment{
		ID:                   p.ID,
		UserID:               p.UserID,
		TicketID:             p.TicketID,
		VoucherID:            p.VoucherID,
		Amount:               p.Amount,
		Status:               string(p.Status),
		GatewayID:            p.GatewayID,
		GatewayTransactionID: p.GatewayTransactionID,
		PaymentLink:          p.PaymentLink,
		CreatedAt:            p.CreatedAt,
		PaidAt:               p.PaidAt,
		ClosedAt:             p.ClosedAt,
	}
}

func (r *PaymentRepository) daoToDomain(p dao.Payment) domain.Payment {
	payment := domain.Payment{
		ID:                   p.ID,
		UserID:               p.UserID,
		TicketID:             p.TicketID,
		VoucherID:            p.VoucherID,
		Amount:               p.Amount,
		Status:               domain.PaymentStatus(p.Status),
		GatewayID:            p.GatewayID,
		GatewayTransactionID: p.GatewayTransactionID,
		PaymentLink:          p.PaymentLink,
		CreatedAt:            p.CreatedAt,
		PaidAt:               p.PaidAt,
		ClosedAt:             p.ClosedAt,
	}

	if p.Ticket.ID != 0 {
		payment.Ticket = domain.Ticket{
			ID:              p.Ticket.ID,
			Name:            p.Ticket.Name,
			Price:           p.Ticket.Price,
			ParticipantType: p.Ticket.ParticipantType,
			SoldOut:         p.Ticket.SoldOut,
			Active:          p.Ticket.Active,
			Description:     p.Ticket.Description,
			CreatedAt:       p.Ticket.CreatedAt,
			UpdatedAt:       p.Ticket.UpdatedAt,
		}
	}

	if p.Voucher != nil {
		var whitelist []string
		for _, e := range p.Voucher.Emails {
			whitelist = append(whitelist, e.Email)
		}

		payment.Voucher = &domain.Voucher{
			ID:              p.Voucher.ID,
			Code:            p.Voucher.Code,
			Value:           p.Voucher.Value,
			Quota:           p.Voucher.Quota,
			ParticipantType: p.Voucher.ParticipantType,
			Active:          p.Voucher.Active,
			EmailWhitelist:  whitelist,
			CreatedAt:       p.Voucher.CreatedAt,
			UpdatedAt:       p.Voucher.UpdatedAt,
		}
	}

	return payment
}
