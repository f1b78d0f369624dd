package database

import (
	"context"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
)

// Store groups the repositories sharing one connection or one transaction.
type Store interface {
	Tickets() TicketRepository
	Bookings() BookingRepository

	// WithinTx runs fn in a single unit of work. The Store handed to fn is
	// bound to that unit of work; any error returned by fn rolls it back.
	// Calling WithinTx on a bound Store joins the running unit of work.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	GetByCode(ctx context.Context, code string) (*entity.Ticket, error)
	GetByCodes(ctx context.Context, codes []string) (map[string]*entity.Ticket, error)

	// GetByCodesForUpdate returns the tickets found for codes keyed by
	// entity.NormalizeCode. Missing codes are simply absent. Inside a unit of
	// work the rows stay locked until it ends.
	GetByCodesForUpdate(ctx context.Context, codes []string) (map[string]*entity.Ticket, error)

	SearchAvailable(ctx context.Context, filter *entity.TicketFilter) ([]*entity.Ticket, int, error)
	ListAvailable(ctx context.Context) ([]*entity.Ticket, error)

	// Inventory ledger primitives.
	ReserveQuota(ctx context.Context, code string, qty int) error
	ReleaseQuota(ctx context.Context, code string, qty int) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id int64) (*entity.Booking, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.Booking, error)
	UpdateTotal(ctx context.Context, id int64, total int) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*entity.Booking, int, error)

	CreateLine(ctx context.Context, line *entity.BookingLine) error
	GetLines(ctx context.Context, bookingID int64) ([]*entity.BookingLine, error)
	UpdateLine(ctx context.Context, line *entity.BookingLine) error
	DeleteLine(ctx context.Context, lineID int64) error
}
