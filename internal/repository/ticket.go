package repository

import (
	"context"
	"fmt"

	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
	"github.com/pyconid/pyconid25-be-sub000/internal/repository/dao"
)

var ErrTicketNotFound = dao.ErrTicketNotFound

type TicketDAO interface {
	Insert(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	FindByID(ctx context.Context, id uint) (dao.Ticket, error)
	FindActive(ctx context.Context) ([]dao.Ticket, error)
	Update(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

func (r *TicketRepository) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(ticket))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id uint) (domain.Ticket, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TicketRepository) FindActive(ctx context.Context) ([]domain.Ticket, error) {
	found, err := r.dao.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActive -> %w", err)
	}

	tickets := make([]domain.Ticket, len(found))
	for i, t := range found {
		tickets[i] = r.daoToDomain(t)
	}

	return tickets, nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(ticket))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *TicketRepository) domainToDao(t domain.Ticket) dao.Ticket {
	return dao.Ticket{
		ID:              t.ID,
		Name:            t.Name,
		Price:           t.Price,
		ParticipantType: t.ParticipantType,
		SoldOut:         t.SoldOut,
		Active:          t.Active,
		Description:     t.Description,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (r *TicketRepository) daoToDomain(t dao.Ticket) domain.Ticket {
	return domain.Ticket{
		ID:              t.ID,
		Name:            t.Name,
		Price:           t.Price,
		ParticipantType: t.ParticipantType,
		SoldOut:         t.SoldOut,
		Active:          t.Active,
		Description:     t.Description,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
