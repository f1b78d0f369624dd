package memory

import (
	"context"
	"sort"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
)

type bookingRepository struct {
	store *Store
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	return r.store.view(func(st *state) error {
		st.nextBookingID++
		booking.BookedTicketID = st.nextBookingID
		b := *booking
		st.bookings[b.BookedTicketID] = &b
		return nil
	})
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	var out *entity.Booking
	err := r.store.view(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return entity.ErrBookingNotFound
		}
		c := *b
		out = &c
		return nil
	})
	return out, err
}

func (r *bookingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *bookingRepository) UpdateTotal(ctx context.Context, id int64, total int) error {
	return r.store.view(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return entity.ErrBookingNotFound
		}
		b.TotalPrice = total
		return nil
	})
}

func (r *bookingRepository) Delete(ctx context.Context, id int64) error {
	return r.store.view(func(st *state) error {
		if _, ok := st.bookings[id]; !ok {
			return entity.ErrBookingNotFound
		}
		delete(st.bookings, id)
		for lineID, l := range st.lines {
			if l.BookedTicketID == id {
				delete(st.lines, lineID)
			}
		}
		return nil
	})
}

func (r *bookingRepository) List(ctx context.Context, limit, offset int) ([]*entity.Booking, int, error) {
	var all []*entity.Booking
	err := r.store.view(func(st *state) error {
		for _, b := range st.bookings {
			c := *b
			all = append(all, &c)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].BookedTicketID > all[j].BookedTicketID
	})

	total := len(all)
	if offset >= total {
		return []*entity.Booking{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *bookingRepository) CreateLine(ctx context.Context, line *entity.BookingLine) error {
	return r.store.view(func(st *state) error {
		if _, ok := st.bookings[line.BookedTicketID]; !ok {
			return entity.ErrBookingNotFound
		}
		st.nextLineID++
		line.BookedTicketDetailID = st.nextLineID
		l := *line
		st.lines[l.BookedTicketDetailID] = &l
		return nil
	})
}

func (r *bookingRepository) GetLines(ctx context.Context, bookingID int64) ([]*entity.BookingLine, error) {
	var lines []*entity.BookingLine
	err := r.store.view(func(st *state) error {
		for _, l := range st.lines {
			if l.BookedTicketID == bookingID {
				c := *l
				lines = append(lines, &c)
			}
		}
		return nil
	})
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].BookedTicketDetailID < lines[j].BookedTicketDetailID
	})
	return lines, err
}

func (r *bookingRepository) UpdateLine(ctx context.Context, line *entity.BookingLine) error {
	return r.store.view(func(st *state) error {
		l, ok := st.lines[line.BookedTicketDetailID]
		if !ok {
			return entity.ErrLineNotFound
		}
		l.Quantity = line.Quantity
		l.SubtotalPrice = line.SubtotalPrice
		return nil
	})
}

func (r *bookingRepository) DeleteLine(ctx context.Context, lineID int64) error {
	return r.store.view(func(st *state) error {
		if _, ok := st.lines[lineID]; !ok {
			return entity.ErrLineNotFound
		}
		delete(st.lines, lineID)
		return nil
	})
}
