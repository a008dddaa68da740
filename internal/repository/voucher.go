package repository

import (
	"context"
	"fmt"

	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
	"github.com/pyconid/pyconid25-be-sub000/internal/repository/dao"
)

var (
	ErrVoucherCodeExists = dao.ErrVoucherCodeExists
	ErrVoucherNotFound   = dao.ErrVoucherNotFound
)

type VoucherDAO interface {
	Insert(ctx context.Context, voucher dao.Voucher) (dao.Voucher, error)
	FindByID(ctx context.Context, id uint) (dao.Voucher, error)
	FindByCode(ctx context.Context, code string) (dao.Voucher, error)
	Update(ctx context.Context, voucher dao.Voucher) (dao.Voucher, error)
}

type VoucherRepository struct {
	dao VoucherDAO
}

func NewVoucherRepository(dao VoucherDAO) *VoucherRepository {
	return &VoucherRepository{
		dao: dao,
	}
}

func (r *VoucherRepository) Create(ctx context.Context, voucher domain.Voucher) (domain.Voucher, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(voucher))
	if err != nil {
		return domain.Voucher{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *VoucherRepository) FindByID(ctx context.Context, id uint) (domain.Voucher, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Voucher{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *VoucherRepository) FindByCode(ctx context.Context, code string) (domain.Voucher, error) {
	found, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.Voucher{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *VoucherRepository) Update(ctx context.Context, voucher domain.Voucher) (domain.Voucher, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(voucher))
	if err != nil {
		return domain.Voucher{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *VoucherRepository) domainToDao(v domain.Voucher) dao.Voucher {
	emails := make([]dao.VoucherEmail, len(v.EmailWhitelist))
	for i, email := range v.EmailWhitelist {
		emails[i] = dao.VoucherEmail{
			VoucherID: v.ID,
			Email:     email,
		}
	}

	return dao.Voucher{
		ID:              v.ID,
		Code:            v.Code,
		Value:           v.Value,
		Quota:           v.Quota,
		ParticipantType: v.ParticipantType,
		Active:          v.Active,
		Emails:          emails,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func (r *VoucherRepository) daoToDomain(v dao.Voucher) domain.Voucher {
	var whitelist []string
	for _, e := range v.Emails {
		whitelist = append(whitelist, e.Email)
	}

	return domain.Voucher{
		ID:              v.ID,
		Code:            v.Code,
		Value:           v.Value,
		Quota:           v.Quota,
		ParticipantType: v.ParticipantType,
		Active:          v.Active,
		EmailWhitelist:  whitelist,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}
