package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
)

type bookingRepository struct {
	db      querier
	locking bool
}

// Create inserts the header and fills in its id and creation time.
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO booked_tickets (total_price, created_at)
		VALUES ($1, $2)
		RETURNING booked_ticket_id
	`
	err := r.db.QueryRowContext(ctx, query, booking.TotalPrice, booking.CreatedAt).Scan(&booking.BookedTicketID)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate locks the header row so that revokes and updates of the
// same booking are serialized.
func (r *bookingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Booking, error) {
	return r.getByID(ctx, id, r.locking)
}

func (r *bookingRepository) getByID(ctx context.Context, id int64, lock bool) (*entity.Booking, error) {
	query := `SELECT booked_ticket_id, total_price, created_at FROM booked_tickets WHERE booked_ticket_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var booking entity.Booking
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.BookedTicketID,
		&booking.TotalPrice,
		&booking.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) UpdateTotal(ctx context.Context, id int64, total int) error {
	query := `UPDATE booked_tickets SET total_price = $1 WHERE booked_ticket_id = $2`

	result, err := r.db.ExecContext(ctx, query, total, id)
	if err != nil {
		return fmt.Errorf("failed to update booking total: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrBookingNotFound
	}
	return nil
}

// Delete removes the header; its lines go with it through ON DELETE CASCADE.
func (r *bookingRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM booked_tickets WHERE booked_ticket_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrBookingNotFound
	}
	return nil
}

func (r *bookingRepository) List(ctx context.Context, limit, offset int) ([]*entity.Booking, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM booked_tickets`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query := `
		SELECT booked_ticket_id, total_price, created_at
		FROM booked_tickets
		ORDER BY created_at DESC, booked_ticket_id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		if err := rows.Scan(&booking.BookedTicketID, &booking.TotalPrice, &booking.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, total, nil
}

func (r *bookingRepository) CreateLine(ctx context.Context, line *entity.BookingLine) error {
	query := `
		INSERT INTO booked_ticket_details (booked_ticket_id, ticket_code, quantity, subtotal_price)
		VALUES ($1, $2, $3, $4)
		RETURNING booked_ticket_detail_id
	`
	err := r.db.QueryRowContext(ctx, query,
		line.BookedTicketID,
		line.TicketCode,
		line.Quantity,
		line.SubtotalPrice,
	).Scan(&line.BookedTicketDetailID)
	if err != nil {
		return fmt.Errorf("failed to create booking line: %w", err)
	}
	return nil
}

// GetLines returns the lines of a booking in creation order.
func (r *bookingRepository) GetLines(ctx context.Context, bookingID int64) ([]*entity.BookingLine, error) {
	query := `
		SELECT booked_ticket_detail_id, booked_ticket_id, ticket_code, quantity, subtotal_price
		FROM booked_ticket_details
		WHERE booked_ticket_id = $1
		ORDER BY booked_ticket_detail_id
	`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.BookingLine
	for rows.Next() {
		var line entity.BookingLine
		err := rows.Scan(
			&line.BookedTicketDetailID,
			&line.BookedTicketID,
			&line.TicketCode,
			&line.Quantity,
			&line.SubtotalPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking line: %w", err)
		}
		lines = append(lines, &line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking lines: %w", err)
	}
	return lines, nil
}

func (r *bookingRepository) UpdateLine(ctx context.Context, line *entity.BookingLine) error {
	query := `
		UPDATE booked_ticket_details
		SET quantity = $1, subtotal_price = $2
		WHERE booked_ticket_detail_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, line.Quantity, line.SubtotalPrice, line.BookedTicketDetailID)
	if err != nil {
		return fmt.Errorf("failed to update booking line: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrLineNotFound
	}
	return nil
}

func (r *bookingRepository) DeleteLine(ctx context.Context, lineID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM booked_ticket_details WHERE booked_ticket_detail_id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("failed to delete booking line: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrLineNotFound
	}
	return nil
}
