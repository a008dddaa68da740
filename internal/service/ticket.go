package service

import (
	"context"
	"fmt"

	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	FindByID(ctx context.Context, id uint) (domain.Ticket, error)
	FindActive(ctx context.Context) ([]domain.Ticket, error)
	Update(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
}

type TicketService struct {
	repo TicketRepository
}

func NewTicketService(repo TicketRepository) *TicketService {
	return &TicketService{
		repo: repo,
	}
}

func (s *TicketService) GetTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindActive -> %w", err)
	}

	return tickets, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id uint) (domain.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return ticket, nil
}

func (s *TicketService) CreateTicket(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	created, err := s.repo.Create(ctx, ticket)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *TicketService) UpdateTicket(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	existing, err := s.repo.FindByID(ctx, ticket.ID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	ticket.CreatedAt = existing.CreatedAt

	updated, err := s.repo.Update(ctx, ticket)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}
