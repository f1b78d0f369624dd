package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validationNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testCatalog() map[string]*entity.Ticket {
	future := validationNow.Add(30 * 24 * time.Hour)
	return map[string]*entity.Ticket{
		"C1": {TicketCode: "C1", TicketName: "Cinema XXI", CategoryName: "Cinema", Price: 100, EventDate: future, Quota: 10},
		"C2": {TicketCode: "C2", TicketName: "CGV", CategoryName: "Cinema", Price: 80, EventDate: future, Quota: 0},
		"P1": {TicketCode: "P1", TicketName: "Past Concert", CategoryName: "Concert", Price: 500, EventDate: validationNow.Add(-time.Hour), Quota: 5},
		"N1": {TicketCode: "N1", TicketName: "Right Now", CategoryName: "Concert", Price: 500, EventDate: validationNow, Quota: 5},
	}
}

// TestValidateBookingRules covers each rule on a single line.
func TestValidateBookingRules(t *testing.T) {
	tests := []struct {
		name    string
		line    entity.LineRequest
		wantErr error
	}{
		{name: "accepted", line: entity.LineRequest{TicketCode: "C1", Quantity: 3}},
		{name: "accepted case-insensitive", line: entity.LineRequest{TicketCode: "c1", Quantity: 10}},
		{name: "unknown code", line: entity.LineRequest{TicketCode: "XX", Quantity: 1}, wantErr: entity.ErrTicketNotRegistered},
		{name: "out of quota wins over invalid quantity", line: entity.LineRequest{TicketCode: "C2", Quantity: 0}, wantErr: entity.ErrOutOfQuota},
		{name: "zero quantity", line: entity.LineRequest{TicketCode: "C1", Quantity: 0}, wantErr: entity.ErrInvalidQuantity},
		{name: "negative quantity", line: entity.LineRequest{TicketCode: "C1", Quantity: -2}, wantErr: entity.ErrInvalidQuantity},
		{name: "exceeds quota", line: entity.LineRequest{TicketCode: "C1", Quantity: 11}, wantErr: entity.ErrQuotaExceeded},
		{name: "event passed", line: entity.LineRequest{TicketCode: "P1", Quantity: 1}, wantErr: entity.ErrEventPassed},
		{name: "event exactly now is passed", line: entity.LineRequest{TicketCode: "N1", Quantity: 1}, wantErr: entity.ErrEventPassed},
		{name: "quota exceeded wins over event passed", line: entity.LineRequest{TicketCode: "P1", Quantity: 6}, wantErr: entity.ErrQuotaExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdicts := ValidateBooking([]entity.LineRequest{tt.line}, testCatalog(), validationNow)
			require.Len(t, verdicts, 1)

			if tt.wantErr == nil {
				assert.Nil(t, verdicts[0].Err)
				require.NotNil(t, verdicts[0].Ticket)
				assert.NoError(t, Rejection(verdicts))
				return
			}

			require.NotNil(t, verdicts[0].Err)
			assert.ErrorIs(t, verdicts[0].Err, tt.wantErr)
			assert.Contains(t, verdicts[0].Err.Message, tt.line.TicketCode)
		})
	}
}

func TestValidateBookingCollectsEveryFailure(t *testing.T) {
	lines := []entity.LineRequest{
		{TicketCode: "C1", Quantity: 2},
		{TicketCode: "UNKNOWN", Quantity: 1},
		{TicketCode: "C1", Quantity: 20},
		{TicketCode: "P1", Quantity: 1},
	}

	verdicts := ValidateBooking(lines, testCatalog(), validationNow)
	require.Len(t, verdicts, 4)
	assert.Nil(t, verdicts[0].Err)
	assert.ErrorIs(t, verdicts[1].Err, entity.ErrTicketNotRegistered)
	assert.ErrorIs(t, verdicts[2].Err, entity.ErrDuplicateTicket)
	assert.ErrorIs(t, verdicts[3].Err, entity.ErrEventPassed)

	err := Rejection(verdicts)
	var verr *entity.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{
		"Ticket code 'UNKNOWN' is not registered.",
		"Ticket code 'C1' is listed more than once.",
		"Ticket code 'P1' cannot be booked as the event date has passed.",
	}, verr.Messages())
	assert.ErrorIs(t, err, entity.ErrEventPassed)
}

func TestValidateUpdate(t *testing.T) {
	existing := map[string]*entity.BookingLine{
		"C1": {BookedTicketDetailID: 1, BookedTicketID: 7, TicketCode: "C1", Quantity: 3, SubtotalPrice: 300},
		"P1": {BookedTicketDetailID: 2, BookedTicketID: 7, TicketCode: "P1", Quantity: 1, SubtotalPrice: 500},
	}

	tests := []struct {
		name    string
		line    entity.LineRequest
		wantErr error
	}{
		{name: "within quota", line: entity.LineRequest{TicketCode: "C1", Quantity: 10}},
		{name: "decrease", line: entity.LineRequest{TicketCode: "C1", Quantity: 1}},
		{name: "event date is not checked on update", line: entity.LineRequest{TicketCode: "P1", Quantity: 2}},
		{name: "line not in booking", line: entity.LineRequest{TicketCode: "C2", Quantity: 1}, wantErr: entity.ErrLineNotFound},
		{name: "new quantity above remaining quota", line: entity.LineRequest{TicketCode: "C1", Quantity: 11}, wantErr: entity.ErrQuotaExceeded},
		{name: "zero quantity", line: entity.LineRequest{TicketCode: "C1", Quantity: 0}, wantErr: entity.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdicts := ValidateUpdate(7, []entity.LineRequest{tt.line}, existing, testCatalog())
			require.Len(t, verdicts, 1)
			if tt.wantErr == nil {
				assert.Nil(t, verdicts[0].Err)
				return
			}
			require.NotNil(t, verdicts[0].Err)
			assert.ErrorIs(t, verdicts[0].Err, tt.wantErr)
		})
	}
}

func TestValidateUpdateLineNotFoundNamesBooking(t *testing.T) {
	verdicts := ValidateUpdate(42, []entity.LineRequest{{TicketCode: "C9", Quantity: 1}}, nil, testCatalog())

	require.NotNil(t, verdicts[0].Err)
	assert.Equal(t, "Ticket code 'C9' is not part of booking 42.", verdicts[0].Err.Message)
}
