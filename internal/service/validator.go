package service

import (
	"time"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
)

// LineVerdict is the outcome for one requested line. Err is nil when the line
// is accepted; Ticket is nil when the code is unknown.
type LineVerdict struct {
	Line   entity.LineRequest
	Ticket *entity.Ticket
	Err    *entity.LineError
}

// ValidateBooking checks every requested line of a new booking against the
// catalog snapshot. catalog is keyed by entity.NormalizeCode. All lines are
// evaluated; the first failing rule of each line is reported.
func ValidateBooking(lines []entity.LineRequest, catalog map[string]*entity.Ticket, now time.Time) []LineVerdict {
	verdicts := make([]LineVerdict, 0, len(lines))
	seen := make(map[string]bool, len(lines))

	for _, line := range lines {
		key := entity.NormalizeCode(line.TicketCode)
		v := LineVerdict{Line: line, Ticket: catalog[key]}

		switch {
		case seen[key]:
			v.Err = entity.NewLineError(line.TicketCode, entity.ErrDuplicateTicket)
		case v.Ticket == nil:
			v.Err = entity.NewLineError(line.TicketCode, entity.ErrTicketNotRegistered)
		case v.Ticket.Quota <= 0:
			v.Err = entity.NewLineError(line.TicketCode, entity.ErrOutOfQuota)
		case line.Quantity < 1:
			v.Err = entity.NewLineError(line.TicketCode, entity.ErrInvalidQuantity)
		case line.Quantity > v.Ticket.Quota:
			v.Err = entity.NewLineError(line.TicketCode, entity.ErrQuotaExceeded)
		case !v.Ticket.EventDate.After(now):
			v.Err = entity.NewLineError(line.TicketCode, entity.ErrEventPassed)
		}

		seen[key] = true
		verdicts = append(verdicts, v)
	}
	return verdicts
}

// ValidateUpdate checks requested quantity replacements for booking
// bookingID. existing holds the booking's lines keyed by normalized code.
//
// The quota rule compares the new quantity with the ticket's remaining quota
// only, without adding back what this line already holds.
func ValidateUpdate(bookingID int64, lines []entity.LineRequest, existing map[string]*entity.BookingLine, catalog map[string]*entity.Ticket) []LineVerdict {
	verdicts := make([]LineVerdict, 0, len(lines))
	seen := make(map[string]bool, len(lines))

	for _, line := range lines {
		key := entity.NormalizeCode(line.TicketCode)
		v := LineVerdict{Line: line, Ticket: catalog[key]}

		switch {
		case seen[key]:
			v.Err = entity.NewLineError(line.TicketCode, entity.ErrDuplicateTicket)
		case existing[key] == nil:
			v.Err = entity.NewLineNotFoundError(line.TicketCode, bookingID)
		case v.Ticket == nil:
			v.Err = entity.NewLineError(line.TicketCode, entity.ErrTicketNotRegistered)
		case line.Quantity > v.Ticket.Quota:
			v.Err = entity.NewLineError(line.TicketCode, entity.ErrQuotaExceeded)
		case line.Quantity < 1:
			v.Err = entity.NewLineError(line.TicketCode, entity.ErrInvalidQuantity)
		}

		seen[key] = true
		verdicts = append(verdicts, v)
	}
	return verdicts
}

// Rejection folds verdicts into a *entity.ValidationError, or nil when every
// line passed.
func Rejection(verdicts []LineVerdict) error {
	var failed []*entity.LineError
	for _, v := range verdicts {
		if v.Err != nil {
			failed = append(failed, v.Err)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &entity.ValidationError{Errors: failed}
}
