// Package memory keeps tickets and bookings in process memory. It backs the
// "memory" database driver and the service tests.
package memory

import (
	"context"
	"sync"

	"github.com/ds124wfegd/ticketbooker/internal/database"
	"github.com/ds124wfegd/ticketbooker/internal/entity"
)

type state struct {
	tickets       map[string]*entity.Ticket
	bookings      map[int64]*entity.Booking
	lines         map[int64]*entity.BookingLine
	nextBookingID int64
	nextLineID    int64
}

func newState() *state {
	return &state{
		tickets:  make(map[string]*entity.Ticket),
		bookings: make(map[int64]*entity.Booking),
		lines:    make(map[int64]*entity.BookingLine),
	}
}

func (s *state) clone() *state {
	c := &state{
		tickets:       make(map[string]*entity.Ticket, len(s.tickets)),
		bookings:      make(map[int64]*entity.Booking, len(s.bookings)),
		lines:         make(map[int64]*entity.BookingLine, len(s.lines)),
		nextBookingID: s.nextBookingID,
		nextLineID:    s.nextLineID,
	}
	for k, v := range s.tickets {
		t := *v
		c.tickets[k] = &t
	}
	for k, v := range s.bookings {
		b := *v
		c.bookings[k] = &b
	}
	for k, v := range s.lines {
		l := *v
		c.lines[k] = &l
	}
	return c
}

// Store is a database.Store over a mutex-guarded snapshot. A unit of work
// holds the mutex for its whole duration and mutates a private copy that
// replaces the shared state only on success.
type Store struct {
	mu    *sync.Mutex
	data  *state
	bound bool
}

var _ database.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, data: newState()}
}

func (s *Store) Tickets() database.TicketRepository {
	return &ticketRepository{store: s}
}

func (s *Store) Bookings() database.BookingRepository {
	return &bookingRepository{store: s}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx database.Store) error) error {
	if s.bound {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&Store{mu: s.mu, data: work, bound: true}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// view runs fn against the current state, taking the lock unless the store is
// already bound to a unit of work.
func (s *Store) view(fn func(st *state) error) error {
	if !s.bound {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}
