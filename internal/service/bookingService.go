package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ds124wfegd/ticketbooker/internal/database"
	"github.com/ds124wfegd/ticketbooker/internal/entity"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type bookingService struct {
	store     database.Store
	publisher EventPublisher
	cache     CatalogCache
	paging    Pagination
	now       func() time.Time
}

// NewBookingService wires the booking lifecycle. publisher and cache may be nil.
func NewBookingService(store database.Store, publisher EventPublisher, cache CatalogCache, paging Pagination) BookingService {
	return &bookingService{
		store:     store,
		publisher: publisher,
		cache:     cache,
		paging:    paging,
		now:       time.Now,
	}
}

// Book validates every requested line and, if all pass, creates the booking
// and reserves quota in one unit of work.
func (s *bookingService) Book(ctx context.Context, lines []entity.LineRequest) (*entity.BookingReceipt, error) {
	if len(lines) == 0 {
		return nil, entity.ErrEmptyRequest
	}

	var receipt *entity.BookingReceipt
	err := s.store.WithinTx(ctx, func(tx database.Store) error {
		tickets, err := tx.Tickets().GetByCodesForUpdate(ctx, requestedCodes(lines))
		if err != nil {
			return err
		}

		now := s.now()
		verdicts := ValidateBooking(lines, tickets, now)
		if err := Rejection(verdicts); err != nil {
			return err
		}

		booking := &entity.Booking{CreatedAt: now.UTC()}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}

		items := make([]entity.LineItem, 0, len(verdicts))
		for _, v := range verdicts {
			line := &entity.BookingLine{
				BookedTicketID: booking.BookedTicketID,
				TicketCode:     v.Ticket.TicketCode,
				Quantity:       v.Line.Quantity,
				SubtotalPrice:  v.Line.Quantity * v.Ticket.Price,
			}
			if err := tx.Bookings().CreateLine(ctx, line); err != nil {
				return err
			}
			if err := reserveQuota(ctx, tx, line.TicketCode, line.Quantity); err != nil {
				return err
			}
			booking.TotalPrice += line.SubtotalPrice
			items = append(items, lineItem(line, v.Ticket))
		}

		if err := tx.Bookings().UpdateTotal(ctx, booking.BookedTicketID, booking.TotalPrice); err != nil {
			return err
		}

		receipt = &entity.BookingReceipt{
			BookedTicketID:       booking.BookedTicketID,
			TotalPrice:           booking.TotalPrice,
			CreatedAt:            booking.CreatedAt,
			TicketsPerCategories: SummarizeByCategory(items, true),
		}
		return nil
	})
	if err != nil {
		logRejection(err, logrus.Fields{"operation": "book"})
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":  receipt.BookedTicketID,
		"total_price": receipt.TotalPrice,
		"lines":       len(lines),
	}).Info("Booking created")

	s.afterCommit(ctx, entity.BookingCreated, receipt.BookedTicketID, receipt.TotalPrice, lines)
	return receipt, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id int64) (*entity.BookingDetails, error) {
	var details *entity.BookingDetails
	err := s.store.WithinTx(ctx, func(tx database.Store) error {
		booking, err := tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		details, err = s.loadDetails(ctx, tx, booking)
		return err
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// Revoke gives back qty tickets of one line. The line disappears when nothing
// is left of it, and the booking disappears with its last line.
func (s *bookingService) Revoke(ctx context.Context, id int64, ticketCode string, qty int) ([]entity.RemainingLine, error) {
	var remaining []entity.RemainingLine
	var released string
	var total int

	err := s.store.WithinTx(ctx, func(tx database.Store) error {
		if _, err := tx.Bookings().GetByIDForUpdate(ctx, id); err != nil {
			return err
		}

		lines, err := tx.Bookings().GetLines(ctx, id)
		if err != nil {
			return err
		}

		line := findLine(lines, ticketCode)
		if line == nil {
			return fmt.Errorf("%w: ticket code '%s' is not part of booking %d", entity.ErrLineNotFound, ticketCode, id)
		}
		if qty < 1 {
			return fmt.Errorf("%w: revoke quantity must be at least 1, got %d", entity.ErrInvalidQuantity, qty)
		}
		if qty > line.Quantity {
			return fmt.Errorf("%w: requested %d, booked %d", entity.ErrQuantityExceedsBooked, qty, line.Quantity)
		}

		if err := releaseQuota(ctx, tx, line.TicketCode, qty); err != nil {
			if !errors.Is(err, entity.ErrTicketNotRegistered) {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"booking_id":  id,
				"ticket_code": line.TicketCode,
			}).Warn("Ticket missing from catalog, quota not released")
		}
		released = line.TicketCode

		if qty == line.Quantity {
			if err := tx.Bookings().DeleteLine(ctx, line.BookedTicketDetailID); err != nil {
				return err
			}
			lines = removeLine(lines, line.BookedTicketDetailID)
		} else {
			unit := line.UnitPrice()
			line.Quantity -= qty
			line.SubtotalPrice = line.Quantity * unit
			if err := tx.Bookings().UpdateLine(ctx, line); err != nil {
				return err
			}
		}

		if len(lines) == 0 {
			remaining = []entity.RemainingLine{}
			return tx.Bookings().Delete(ctx, id)
		}

		total = totalOf(lines)
		if err := tx.Bookings().UpdateTotal(ctx, id, total); err != nil {
			return err
		}

		tickets, err := tx.Tickets().GetByCodes(ctx, lineCodes(lines))
		if err != nil {
			return err
		}
		remaining = make([]entity.RemainingLine, 0, len(lines))
		for _, l := range lines {
			item := lineItem(l, tickets[entity.NormalizeCode(l.TicketCode)])
			remaining = append(remaining, entity.RemainingLine{
				TicketCode:   item.TicketCode,
				TicketName:   item.TicketName,
				CategoryName: item.CategoryName,
				Quantity:     item.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		logRejection(err, logrus.Fields{"operation": "revoke", "booking_id": id, "ticket_code": ticketCode})
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":      id,
		"ticket_code":     released,
		"quantity":        qty,
		"remaining_lines": len(remaining),
	}).Info("Booking line revoked")

	s.afterCommit(ctx, entity.BookingRevoked, id, total, []entity.LineRequest{{TicketCode: released, Quantity: qty}})
	return remaining, nil
}

// Update replaces the quantities of existing lines, reserving or releasing the
// difference for each one. It returns all lines of the booking grouped by
// category.
func (s *bookingService) Update(ctx context.Context, id int64, lines []entity.LineRequest) ([]entity.CategorySummary, error) {
	if len(lines) == 0 {
		return nil, entity.ErrEmptyRequest
	}

	var updated []entity.CategorySummary
	var total int

	err := s.store.WithinTx(ctx, func(tx database.Store) error {
		if _, err := tx.Bookings().GetByIDForUpdate(ctx, id); err != nil {
			return err
		}

		current, err := tx.Bookings().GetLines(ctx, id)
		if err != nil {
			return err
		}
		existing := make(map[string]*entity.BookingLine, len(current))
		for _, l := range current {
			existing[entity.NormalizeCode(l.TicketCode)] = l
		}

		tickets, err := tx.Tickets().GetByCodesForUpdate(ctx, requestedCodes(lines))
		if err != nil {
			return err
		}

		verdicts := ValidateUpdate(id, lines, existing, tickets)
		if err := Rejection(verdicts); err != nil {
			return err
		}

		for _, v := range verdicts {
			line := existing[entity.NormalizeCode(v.Line.TicketCode)]

			delta := v.Line.Quantity - line.Quantity
			if delta >= 0 {
				err = reserveQuota(ctx, tx, line.TicketCode, delta)
			} else {
				err = releaseQuota(ctx, tx, line.TicketCode, -delta)
			}
			if err != nil {
				return err
			}

			line.Quantity = v.Line.Quantity
			line.SubtotalPrice = line.Quantity * v.Ticket.Price
			if err := tx.Bookings().UpdateLine(ctx, line); err != nil {
				return err
			}
		}

		total = totalOf(current)
		if err := tx.Bookings().UpdateTotal(ctx, id, total); err != nil {
			return err
		}

		// every line of the booking is returned, edited or not
		catalog, err := tx.Tickets().GetByCodes(ctx, lineCodes(current))
		if err != nil {
			return err
		}
		items := make([]entity.LineItem, 0, len(current))
		for _, l := range current {
			items = append(items, lineItem(l, catalog[entity.NormalizeCode(l.TicketCode)]))
		}
		updated = SummarizeByCategory(items, false)
		return nil
	})
	if err != nil {
		logRejection(err, logrus.Fields{"operation": "update", "booking_id": id})
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":  id,
		"total_price": total,
		"lines":       len(lines),
	}).Info("Booking updated")

	s.afterCommit(ctx, entity.BookingUpdated, id, total, lines)
	return updated, nil
}

// ListBookings returns one page of bookings, newest first.
func (s *bookingService) ListBookings(ctx context.Context, pageNumber, itemsPerPage int) (*entity.BookingPage, error) {
	pageNumber, itemsPerPage = s.paging.normalize(pageNumber, itemsPerPage)

	page := &entity.BookingPage{
		Bookings:     []*entity.BookingDetails{},
		PageNumber:   pageNumber,
		ItemsPerPage: itemsPerPage,
	}

	err := s.store.WithinTx(ctx, func(tx database.Store) error {
		bookings, total, err := tx.Bookings().List(ctx, itemsPerPage, (pageNumber-1)*itemsPerPage)
		if err != nil {
			return err
		}
		page.TotalBookings = total

		for _, booking := range bookings {
			details, err := s.loadDetails(ctx, tx, booking)
			if err != nil {
				return err
			}
			page.Bookings = append(page.Bookings, details)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *bookingService) loadDetails(ctx context.Context, tx database.Store, booking *entity.Booking) (*entity.BookingDetails, error) {
	lines, err := tx.Bookings().GetLines(ctx, booking.BookedTicketID)
	if err != nil {
		return nil, err
	}

	tickets, err := tx.Tickets().GetByCodes(ctx, lineCodes(lines))
	if err != nil {
		return nil, err
	}

	items := make([]entity.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, lineItem(l, tickets[entity.NormalizeCode(l.TicketCode)]))
	}

	return &entity.BookingDetails{
		BookedTicketID: booking.BookedTicketID,
		TotalPrice:     booking.TotalPrice,
		CreatedAt:      booking.CreatedAt,
		Categories:     SummarizeByCategory(items, false),
	}, nil
}

// afterCommit runs the best-effort side effects of a committed mutation.
func (s *bookingService) afterCommit(ctx context.Context, eventType entity.BookingEventType, id int64, total int, lines []entity.LineRequest) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logrus.WithError(err).Error("Failed to invalidate catalog cache")
		}
	}

	if s.publisher == nil {
		return
	}

	event := &entity.BookingEvent{
		EventID:        uuid.NewString(),
		Type:           eventType,
		BookedTicketID: id,
		TotalPrice:     total,
		Lines:          lines,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"booking_id": id,
			"event_type": eventType,
		}).WithError(err).Error("Failed to publish booking event")
	}
}

// lineItem joins a line with its ticket. A ticket missing from the catalog
// leaves name and category empty instead of dropping the line.
func lineItem(line *entity.BookingLine, ticket *entity.Ticket) entity.LineItem {
	item := entity.LineItem{
		TicketCode: line.TicketCode,
		Quantity:   line.Quantity,
		Price:      line.UnitPrice(),
	}
	if ticket != nil {
		item.TicketName = ticket.TicketName
		item.CategoryName = ticket.CategoryName
		item.EventDate = ticket.EventDate
	}
	return item
}

func logRejection(err error, fields logrus.Fields) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		logrus.WithFields(fields).WithField("errors", verr.Messages()).Warn("Request rejected by validation")
	case errors.Is(err, entity.ErrBookingNotFound),
		errors.Is(err, entity.ErrLineNotFound),
		errors.Is(err, entity.ErrQuantityExceedsBooked),
		errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrInsufficientQuota):
		logrus.WithFields(fields).WithError(err).Warn("Request rejected")
	default:
		logrus.WithFields(fields).WithError(err).Error("Booking operation failed")
	}
}

func requestedCodes(lines []entity.LineRequest) []string {
	codes := make([]string, 0, len(lines))
	for _, l := range lines {
		codes = append(codes, l.TicketCode)
	}
	return codes
}

func lineCodes(lines []*entity.BookingLine) []string {
	codes := make([]string, 0, len(lines))
	for _, l := range lines {
		codes = append(codes, l.TicketCode)
	}
	return codes
}

func findLine(lines []*entity.BookingLine, code string) *entity.BookingLine {
	key := entity.NormalizeCode(code)
	for _, l := range lines {
		if entity.NormalizeCode(l.TicketCode) == key {
			return l
		}
	}
	return nil
}

func removeLine(lines []*entity.BookingLine, lineID int64) []*entity.BookingLine {
	out := lines[:0]
	for _, l := range lines {
		if l.BookedTicketDetailID != lineID {
			out = append(out, l)
		}
	}
	return out
}

func totalOf(lines []*entity.BookingLine) int {
	total := 0
	for _, l := range lines {
		total += l.SubtotalPrice
	}
	return total
}
