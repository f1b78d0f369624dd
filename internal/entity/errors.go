package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// validation kinds, collected per line
	ErrTicketNotRegistered = errors.New("ticket not registered")
	ErrOutOfQuota          = errors.New("ticket out of quota")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrQuotaExceeded       = errors.New("quantity exceeds remaining quota")
	ErrEventPassed         = errors.New("event date has passed")
	ErrDuplicateTicket     = errors.New("ticket code listed more than once")
	ErrEmptyRequest        = errors.New("at least one ticket line is required")

	// lookup kinds, fail-fast
	ErrBookingNotFound = errors.New("booking not found")
	ErrLineNotFound    = errors.New("booking line not found")

	ErrQuantityExceedsBooked = errors.New("quantity exceeds booked quantity")

	// ErrInsufficientQuota is returned by the ledger when a reserve lost a race
	// against a concurrent booking after validation passed.
	ErrInsufficientQuota = errors.New("insufficient quota")

	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// LineError is a rejection of a single requested line.
type LineError struct {
	TicketCode string `json:"ticketCode"`
	Kind       error  `json:"-"`
	Message    string `json:"message"`
}

func (e *LineError) Error() string { return e.Message }

func (e *LineError) Unwrap() error { return e.Kind }

// NewLineError builds a LineError with the human readable message for kind.
func NewLineError(ticketCode string, kind error) *LineError {
	return &LineError{
		TicketCode: ticketCode,
		Kind:       kind,
		Message:    lineMessage(ticketCode, kind),
	}
}

// NewLineNotFoundError is the update-path variant that also names the booking.
func NewLineNotFoundError(ticketCode string, bookedTicketID int64) *LineError {
	return &LineError{
		TicketCode: ticketCode,
		Kind:       ErrLineNotFound,
		Message:    fmt.Sprintf("Ticket code '%s' is not part of booking %d.", ticketCode, bookedTicketID),
	}
}

func lineMessage(code string, kind error) string {
	switch kind {
	case ErrTicketNotRegistered:
		return fmt.Sprintf("Ticket code '%s' is not registered.", code)
	case ErrOutOfQuota:
		return fmt.Sprintf("Ticket code '%s' is out of quota.", code)
	case ErrInvalidQuantity:
		return fmt.Sprintf("Quantity for ticket code '%s' must be at least 1.", code)
	case ErrQuotaExceeded:
		return fmt.Sprintf("The quantity of ticket with code '%s' exceeds the remaining quota.", code)
	case ErrEventPassed:
		return fmt.Sprintf("Ticket code '%s' cannot be booked as the event date has passed.", code)
	case ErrDuplicateTicket:
		return fmt.Sprintf("Ticket code '%s' is listed more than once.", code)
	case ErrLineNotFound:
		return fmt.Sprintf("Ticket code '%s' is not part of this booking.", code)
	default:
		return fmt.Sprintf("Ticket code '%s': %v", code, kind)
	}
}

// ValidationError aggregates every failing line of one request.
type ValidationError struct {
	Errors []*LineError
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// Messages returns one string per failing line, in request order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Errors))
	for _, le := range e.Errors {
		msgs = append(msgs, le.Message)
	}
	return msgs
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, le := range e.Errors {
		errs = append(errs, le)
	}
	return errs
}
