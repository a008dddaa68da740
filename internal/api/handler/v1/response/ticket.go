package response

import "github.com/pyconid/pyconid25-be-sub000/internal/domain"

type Ticket struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Price           int    `json:"price"`
	ParticipantType string `json:"participant_type"`
	SoldOut         bool   `json:"sold_out"`
	Description     string `json:"description"`
}

func NewTicket(t domain.Ticket) Ticket {
	return Ticket{
		ID:              t.ID,
		Name:            t.Name,
		Price:           t.Price,
		ParticipantType: t.ParticipantType,
		SoldOut:         t.SoldOut,
		Description:     t.Description,
	}
}

func NewTickets(tickets []domain.Ticket) []Ticket {
	resp := make([]Ticket, len(tickets))
	for i, t := range tickets {
		resp[i] = NewTicket(t)
	}

	return resp
}
