package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrVoucherCodeExists     = errors.New("voucher code already exists")
	ErrVoucherNotFound       = errors.New("voucher not found")
	ErrVoucherQuotaExhausted = errors.New("voucher quota exhausted")
)

type Voucher struct {
	ID uint `gorm:"primaryKey"`

	Code  string `gorm:"unique;not null"`
	Value int    `gorm:"not null"`
	Quota int    `gorm:"not null"`

	ParticipantType string
	Active          bool `gorm:"not null;default:true"`

	Emails []VoucherEmail `gorm:"foreignKey:VoucherID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type VoucherEmail struct {
	ID        uint   `gorm:"primaryKey"`
	VoucherID uint   `gorm:"not null;index"`
	Email     string `gorm:"not null"`
}

type VoucherDAO struct {
	db *gorm.DB
}

func NewVoucherDAO(db *gorm.DB) *VoucherDAO {
	return &VoucherDAO{
		db: db,
	}
}

func (d *VoucherDAO) Insert(ctx context.Context, voucher Voucher) (Voucher, error) {
	result := d.db.WithContext(ctx).Create(&voucher)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			return Voucher{}, ErrVoucherCodeExists
		}

		return Voucher{}, result.Error
	}

	return voucher, nil
}

func (d *VoucherDAO) FindByID(ctx context.Context, id uint) (Voucher, error) {
	var voucher Voucher

	result := d.db.WithContext(ctx).Preload("Emails").First(&voucher, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Voucher{}, ErrVoucherNotFound
		}

		return Voucher{}, result.Error
	}

	return voucher, nil
}

func (d *VoucherDAO) FindByCode(ctx context.Context, code string) (Voucher, error) {
	var voucher Voucher

	result := d.db.WithContext(ctx).Preload("Emails").First(&voucher, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Voucher{}, ErrVoucherNotFound
		}

		return Voucher{}, result.Error
	}

	return voucher, nil
}

// Update replaces the voucher row and its whitelist in one transaction.
func (d *VoucherDAO) Update(ctx context.Context, voucher Voucher) (Voucher, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("voucher_id = ?", voucher.ID).Delete(&VoucherEmail{}).Error; err != nil {
			return err
		}

		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&voucher).Error
	})
	if err != nil {
		return Voucher{}, err
	}

	return d.FindByID(ctx, voucher.ID)
}
