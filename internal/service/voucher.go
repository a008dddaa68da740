package service

import (
	"context"
	"fmt"

	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
)

type VoucherRepository interface {
	Create(ctx context.Context, voucher domain.Voucher) (domain.Voucher, error)
	FindByID(ctx context.Context, id uint) (domain.Voucher, error)
	FindByCode(ctx context.Context, code string) (domain.Voucher, error)
	Update(ctx context.Context, voucher domain.Voucher) (domain.Voucher, error)
}

// VoucherService covers administrator voucher management. Redemption
// itself lives in PaymentService where it is transactional with the
// checkout.
type VoucherService struct {
	repo VoucherRepository
}

func NewVoucherService(repo VoucherRepository) *VoucherService {
	return &VoucherService{
		repo: repo,
	}
}

func (s *VoucherService) GetVoucher(ctx context.Context, id uint) (domain.Voucher, error) {
	voucher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Voucher{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return voucher, nil
}

func (s *VoucherService) CreateVoucher(ctx context.Context, voucher domain.Voucher) (domain.Voucher, error) {
	created, err := s.repo.Create(ctx, voucher)
	if err != nil {
		return domain.Voucher{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *VoucherService) UpdateVoucher(ctx context.Context, voucher domain.Voucher) (domain.Voucher, error) {
	existing, err := s.repo.FindByID(ctx, voucher.ID)
	if err != nil {
		return domain.Voucher{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	voucher.CreatedAt = existing.CreatedAt

	updated, err := s.repo.Update(ctx, voucher)
	if err != nil {
		return domain.Voucher{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}
