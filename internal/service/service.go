package service

import (
	"context"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
)

// BookingService runs the booking lifecycle on top of the inventory ledger.
type BookingService interface {
	Book(ctx context.Context, lines []entity.LineRequest) (*entity.BookingReceipt, error)
	GetBooking(ctx context.Context, id int64) (*entity.BookingDetails, error)
	Revoke(ctx context.Context, id int64, ticketCode string, qty int) ([]entity.RemainingLine, error)
	Update(ctx context.Context, id int64, lines []entity.LineRequest) ([]entity.CategorySummary, error)
	ListBookings(ctx context.Context, pageNumber, itemsPerPage int) (*entity.BookingPage, error)
}

// TicketService serves catalog lookups.
type TicketService interface {
	SearchAvailable(ctx context.Context, filter *entity.TicketFilter) (*entity.TicketPage, error)
	AvailableByCategory(ctx context.Context) ([]entity.TicketCategoryGroup, error)
	GetTicket(ctx context.Context, code string) (*entity.Ticket, error)
}

// EventPublisher ships booking events to a broker after commit.
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.BookingEvent) error
}

// CatalogCache stores search result pages per catalog version. GetPage reports
// the version it looked under; SetPage must be given that same version so a
// page read before an Invalidate is never stored as current.
type CatalogCache interface {
	GetPage(ctx context.Context, filter *entity.TicketFilter) (page *entity.TicketPage, version int64, ok bool)
	SetPage(ctx context.Context, version int64, filter *entity.TicketFilter, page *entity.TicketPage) error
	Invalidate(ctx context.Context) error
}

// BookTicketsRequest is the body of POST /book-ticket.
type BookTicketsRequest struct {
	Tickets []entity.LineRequest `json:"tickets" binding:"required,min=1,dive"`
}

// UpdateBookingRequest is the body of PUT /edit-booked-ticket.
type UpdateBookingRequest struct {
	Tickets []entity.LineRequest `json:"tickets" binding:"required,min=1,dive"`
}

// Pagination holds page size limits shared by listing endpoints.
type Pagination struct {
	DefaultPageSize int
	MaxPageSize     int
}

func (p Pagination) normalize(pageNumber, perPage int) (int, int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	def := p.DefaultPageSize
	if def <= 0 {
		def = 10
	}
	if perPage <= 0 {
		perPage = def
	}
	if p.MaxPageSize > 0 && perPage > p.MaxPageSize {
		perPage = p.MaxPageSize
	}
	return pageNumber, perPage
}
