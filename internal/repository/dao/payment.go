package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
	PaymentStatusClosed = "CLOSED"
)

type Payment struct {
	ID uint `gorm:"primaryKey"`

	UserID    uint `gorm:"not null;index"`
	TicketID  uint `gorm:"not null"`
	VoucherID *uint

	Amount int    `gorm:"not null"`
	Status string `gorm:"not null;default:UNPAID"`

	GatewayID            string `gorm:"index"`
	GatewayTransactionID string `gorm:"index"`
	PaymentLink          string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	PaidAt    *time.Time
	ClosedAt  *time.Time

	Ticket  Ticket `gorm:"foreignKey:TicketID"`
	Voucher *Voucher
}

// CheckoutRef carries the gateway identifiers produced while the
// checkout transaction is still open.
type CheckoutRef struct {
	GatewayID            string
	GatewayTransactionID string
	PaymentLink          string
}

type PaymentDAO struct {
	db *gorm.DB
}

func NewPaymentDAO(db *gorm.DB) *PaymentDAO {
	return &PaymentDAO{
		db: db,
	}
}

// CreateCheckout inserts the payment inside one transaction together
// with the voucher quota reservation. The quota decrement is a
// conditional update guarded by active AND quota > 0, so concurrent redemptions of
// a quota-N code admit at most N checkouts; losers get
// ErrVoucherQuotaExhausted and nothing is written.
//
// When issue is non-nil it runs inside the same transaction (an
// outbound gateway call); any error it returns rolls back the payment
// row and the quota decrement together. participantType, when set, is
// applied to the owning user in the same transaction (free checkouts
// are settled at creation).
func (d *PaymentDAO) CreateCheckout(ctx context.Context, payment Payment, participantType string, issue func(Payment) (CheckoutRef, error)) (Payment, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if payment.VoucherID != nil {
			// Guarding active here closes the window between the dry-run
			// validation and the checkout transaction.
			result := tx.Model(&Voucher{}).
				Where("id = ? AND active AND quota > 0", *payment.VoucherID).
				Updates(map[string]interface{}{"quota": gorm.Expr("quota - 1")})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrVoucherQuotaExhausted
			}
		}

		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if participantType != "" {
			err := tx.Model(&User{}).
				Where("id = ?", payment.UserID).
				Updates(map[string]interface{}{"participant_type": participantType}).Error
			if err != nil {
				return err
			}
		}

		if issue != nil {
			ref, err := issue(payment)
			if err != nil {
				return err
			}

			err = tx.Model(&Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
				"gateway_id":             ref.GatewayID,
				"gateway_transaction_id": ref.GatewayTransactionID,
				"payment_link":           ref.PaymentLink,
			}).Error
			if err != nil {
				return err
			}

			payment.GatewayID = ref.GatewayID
			payment.GatewayTransactionID = ref.GatewayTransactionID
			payment.PaymentLink = ref.PaymentLink
		}

		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	return payment, nil
}

func (d *PaymentDAO) FindByID(ctx context.Context, id uint) (Payment, error) {
	var payment Payment

	result := d.db.WithContext(ctx).
		Preload("Ticket").
		Preload("Voucher").
		Preload("Voucher.Emails").
		First(&payment, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Payment{}, ErrPaymentNotFound
		}

		return Payment{}, result.Error
	}

	return payment, nil
}

func (d *PaymentDAO) FindByUserID(ctx context.Context, userID uint) ([]Payment, error) {
	var payments []Payment

	result := d.db.WithContext(ctx).
		Preload("Ticket").
		Preload("Voucher").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments)
	if result.Error != nil {
		return nil, result.Error
	}

	return payments, nil
}

// FindByGatewayRef looks a payment up by gateway transaction id first,
// falling back to the gateway invoice id.
func (d *PaymentDAO) FindByGatewayRef(ctx context.Context, transactionID, gatewayID string) (Payment, error) {
	var payment Payment

	if transactionID != "" {
		result := d.db.WithContext(ctx).First(&payment, "gateway_transaction_id = ?", transactionID)
		if result.Error == nil {
			return payment, nil
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Payment{}, result.Error
		}
	}

	if gatewayID == "" {
		return Payment{}, ErrPaymentNotFound
	}

	result := d.db.WithContext(ctx).First(&payment, "gateway_id = ?", gatewayID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Payment{}, ErrPaymentNotFound
		}

		return Payment{}, result.Error
	}

	return payment, nil
}

func (d *PaymentDAO) HasPaid(ctx context.Context, userID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Payment{}).
		Where("user_id = ? AND status = ?", userID, PaymentStatusPaid).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// SettlePaid drives the payment from UNPAID to PAID. The status write
// is a conditional update, so a replayed webhook or a poll racing a
// webhook finds a terminal status, settles nothing and re-applies no
// side effects. On the winning call the user's participant type is set
// and every other UNPAID payment of the user is closed, all in one
// transaction. Closed siblings are returned so callers can expire their
// gateway invoices.
func (d *PaymentDAO) SettlePaid(ctx context.Context, id, userID uint, participantType string, now time.Time) (bool, []Payment, error) {
	var (
		settled  bool
		siblings []Payment
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Payment{}).
			Where("id = ? AND status = ?", id, PaymentStatusUnpaid).
			Updates(map[string]interface{}{
				"status":  PaymentStatusPaid,
				"paid_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		settled = true

		if participantType != "" {
			err := tx.Model(&User{}).
				Where("id = ?", userID).
				Updates(map[string]interface{}{"participant_type": participantType}).Error
			if err != nil {
				return err
			}
		}

		err := tx.
			Where("user_id = ? AND id <> ? AND status = ?", userID, id, PaymentStatusUnpaid).
			Find(&siblings).Error
		if err != nil {
			return err
		}
		if len(siblings) == 0 {
			return nil
		}

		return tx.Model(&Payment{}).
			Where("user_id = ? AND id <> ? AND status = ?", userID, id, PaymentStatusUnpaid).
			Updates(map[string]interface{}{
				"status":       PaymentStatusClosed,
				"closed_at":    now,
				"payment_link": "",
			}).Error
	})
	if err != nil {
		return false, nil, err
	}

	return settled, siblings, nil
}

// SettleClosed drives the payment from UNPAID to CLOSED. Closing an
// already-closed payment is a no-op.
func (d *PaymentDAO) SettleClosed(ctx context.Context, id uint, now time.Time) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status = ?", id, PaymentStatusUnpaid).
		Updates(map[string]interface{}{
			"status":       PaymentStatusClosed,
			"closed_at":    now,
			"payment_link": "",
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
