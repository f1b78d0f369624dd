package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
	"github.com/lib/pq"
)

type ticketRepository struct {
	db querier
	// locking is set inside a unit of work, where reads take row locks
	locking bool
}

const ticketColumns = `
	SELECT t.ticket_code, t.ticket_name, c.category_name, t.price, t.event_date, t.quota
	FROM tickets t
	JOIN ticket_categories c ON c.ticket_category_id = t.ticket_category_id`

var ticketSortColumns = map[string]string{
	entity.SortByTicketCode:   "t.ticket_code",
	entity.SortByTicketName:   "t.ticket_name",
	entity.SortByCategoryName: "c.category_name",
	entity.SortByPrice:        "t.price",
	entity.SortByEventDate:    "t.event_date",
}

// Create registers a ticket, creating its category on first use.
func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	var categoryID int64
	query := `
		INSERT INTO ticket_categories (category_name) VALUES ($1)
		ON CONFLICT (category_name) DO UPDATE SET category_name = EXCLUDED.category_name
		RETURNING ticket_category_id
	`
	if err := r.db.QueryRowContext(ctx, query, ticket.CategoryName).Scan(&categoryID); err != nil {
		return fmt.Errorf("failed to upsert ticket category: %w", err)
	}

	query = `
		INSERT INTO tickets (ticket_code, ticket_name, ticket_category_id, price, event_date, quota)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		entity.NormalizeCode(ticket.TicketCode),
		ticket.TicketName,
		categoryID,
		ticket.Price,
		ticket.EventDate,
		ticket.Quota,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*entity.Ticket, error) {
	query := ticketColumns + ` WHERE UPPER(t.ticket_code) = $1`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, entity.NormalizeCode(code)))
	if err == sql.ErrNoRows {
		return nil, entity.ErrTicketNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

func (r *ticketRepository) GetByCodes(ctx context.Context, codes []string) (map[string]*entity.Ticket, error) {
	return r.getByCodes(ctx, codes, false)
}

func (r *ticketRepository) GetByCodesForUpdate(ctx context.Context, codes []string) (map[string]*entity.Ticket, error) {
	return r.getByCodes(ctx, codes, r.locking)
}

func (r *ticketRepository) getByCodes(ctx context.Context, codes []string, lock bool) (map[string]*entity.Ticket, error) {
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, entity.NormalizeCode(code))
	}

	// fixed lock order keeps concurrent bookings of overlapping codes from deadlocking
	query := ticketColumns + ` WHERE UPPER(t.ticket_code) = ANY($1) ORDER BY t.ticket_code`
	if lock {
		query += ` FOR UPDATE OF t`
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	tickets := make(map[string]*entity.Ticket, len(keys))
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets[entity.NormalizeCode(ticket.TicketCode)] = ticket
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}
	return tickets, nil
}

// SearchAvailable expects a normalized filter (valid sort field, positive page size).
func (r *ticketRepository) SearchAvailable(ctx context.Context, filter *entity.TicketFilter) ([]*entity.Ticket, int, error) {
	conds := []string{"t.quota > 0"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var text []string
	if filter.CategoryName != "" {
		text = append(text, "c.category_name ILIKE "+arg(containsPattern(filter.CategoryName)))
	}
	if filter.TicketCode != "" {
		text = append(text, "t.ticket_code ILIKE "+arg(containsPattern(filter.TicketCode)))
	}
	if filter.TicketName != "" {
		text = append(text, "t.ticket_name ILIKE "+arg(containsPattern(filter.TicketName)))
	}
	if len(text) > 0 {
		conds = append(conds, "("+strings.Join(text, " OR ")+")")
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "t.price <= "+arg(*filter.MaxPrice))
	}
	if filter.MinEventDate != nil {
		conds = append(conds, "t.event_date >= "+arg(*filter.MinEventDate))
	}
	if filter.MaxEventDate != nil {
		conds = append(conds, "t.event_date <= "+arg(*filter.MaxEventDate))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	countQuery := `
		SELECT COUNT(*) FROM tickets t
		JOIN ticket_categories c ON c.ticket_category_id = t.ticket_category_id` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	column, ok := ticketSortColumns[filter.OrderBy]
	if !ok {
		column = ticketSortColumns[entity.SortByTicketCode]
	}
	direction := "ASC"
	if filter.OrderState == entity.SortDesc {
		direction = "DESC"
	}

	query := ticketColumns + where +
		fmt.Sprintf(" ORDER BY %s %s, t.ticket_code ASC", column, direction)
	limit := arg(filter.TicketsPerPage)
	offset := arg((filter.PageNumber - 1) * filter.TicketsPerPage)
	query += " LIMIT " + limit + " OFFSET " + offset

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*entity.Ticket, 0, filter.TicketsPerPage)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, total, nil
}

func (r *ticketRepository) ListAvailable(ctx context.Context) ([]*entity.Ticket, error) {
	query := ticketColumns + ` WHERE t.quota > 0 ORDER BY t.ticket_code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// ReserveQuota decrements quota only when enough is left; the WHERE clause is
// the final re-check against concurrent reservations.
func (r *ticketRepository) ReserveQuota(ctx context.Context, code string, qty int) error {
	query := `UPDATE tickets SET quota = quota - $2 WHERE UPPER(ticket_code) = $1 AND quota >= $2`

	result, err := r.db.ExecContext(ctx, query, entity.NormalizeCode(code), qty)
	if err != nil {
		return fmt.Errorf("failed to reserve quota: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrInsufficientQuota
	}
	return nil
}

func (r *ticketRepository) ReleaseQuota(ctx context.Context, code string, qty int) error {
	query := `UPDATE tickets SET quota = quota + $2 WHERE UPPER(ticket_code) = $1`

	result, err := r.db.ExecContext(ctx, query, entity.NormalizeCode(code), qty)
	if err != nil {
		return fmt.Errorf("failed to release quota: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrTicketNotRegistered
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := row.Scan(
		&ticket.TicketCode,
		&ticket.TicketName,
		&ticket.CategoryName,
		&ticket.Price,
		&ticket.EventDate,
		&ticket.Quota,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func containsPattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
