package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
)

type ticketRepository struct {
	store *Store
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	return r.store.view(func(st *state) error {
		key := entity.NormalizeCode(ticket.TicketCode)
		if _, ok := st.tickets[key]; ok {
			return fmt.Errorf("failed to create ticket: code %s already exists", key)
		}
		t := *ticket
		t.TicketCode = key
		st.tickets[key] = &t
		return nil
	})
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*entity.Ticket, error) {
	var out *entity.Ticket
	err := r.store.view(func(st *state) error {
		t, ok := st.tickets[entity.NormalizeCode(code)]
		if !ok {
			return entity.ErrTicketNotRegistered
		}
		c := *t
		out = &c
		return nil
	})
	return out, err
}

func (r *ticketRepository) GetByCodes(ctx context.Context, codes []string) (map[string]*entity.Ticket, error) {
	out := make(map[string]*entity.Ticket, len(codes))
	err := r.store.view(func(st *state) error {
		for _, code := range codes {
			key := entity.NormalizeCode(code)
			if t, ok := st.tickets[key]; ok {
				c := *t
				out[key] = &c
			}
		}
		return nil
	})
	return out, err
}

// GetByCodesForUpdate needs no extra locking: a unit of work already owns the
// whole store.
func (r *ticketRepository) GetByCodesForUpdate(ctx context.Context, codes []string) (map[string]*entity.Ticket, error) {
	return r.GetByCodes(ctx, codes)
}

func (r *ticketRepository) SearchAvailable(ctx context.Context, filter *entity.TicketFilter) ([]*entity.Ticket, int, error) {
	var matched []*entity.Ticket
	err := r.store.view(func(st *state) error {
		for _, t := range st.tickets {
			if t.Quota > 0 && matches(t, filter) {
				c := *t
				matched = append(matched, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	less := ticketLess(filter.OrderBy)
	desc := filter.OrderState == entity.SortDesc
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if less(a, b) {
			return !desc
		}
		if less(b, a) {
			return desc
		}
		return a.TicketCode < b.TicketCode
	})

	total := len(matched)
	start := (filter.PageNumber - 1) * filter.TicketsPerPage
	if start >= total {
		return []*entity.Ticket{}, total, nil
	}
	end := start + filter.TicketsPerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *ticketRepository) ListAvailable(ctx context.Context) ([]*entity.Ticket, error) {
	var tickets []*entity.Ticket
	err := r.store.view(func(st *state) error {
		for _, t := range st.tickets {
			if t.Quota > 0 {
				c := *t
				tickets = append(tickets, &c)
			}
		}
		return nil
	})
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].TicketCode < tickets[j].TicketCode })
	return tickets, err
}

func (r *ticketRepository) ReserveQuota(ctx context.Context, code string, qty int) error {
	return r.store.view(func(st *state) error {
		t, ok := st.tickets[entity.NormalizeCode(code)]
		if !ok || t.Quota < qty {
			return entity.ErrInsufficientQuota
		}
		t.Quota -= qty
		return nil
	})
}

func (r *ticketRepository) ReleaseQuota(ctx context.Context, code string, qty int) error {
	return r.store.view(func(st *state) error {
		t, ok := st.tickets[entity.NormalizeCode(code)]
		if !ok {
			return entity.ErrTicketNotRegistered
		}
		t.Quota += qty
		return nil
	})
}

func matches(t *entity.Ticket, f *entity.TicketFilter) bool {
	var text []bool
	if f.CategoryName != "" {
		text = append(text, containsFold(t.CategoryName, f.CategoryName))
	}
	if f.TicketCode != "" {
		text = append(text, containsFold(t.TicketCode, f.TicketCode))
	}
	if f.TicketName != "" {
		text = append(text, containsFold(t.TicketName, f.TicketName))
	}
	if len(text) > 0 {
		hit := false
		for _, ok := range text {
			hit = hit || ok
		}
		if !hit {
			return false
		}
	}

	if f.MaxPrice != nil && t.Price > *f.MaxPrice {
		return false
	}
	if f.MinEventDate != nil && t.EventDate.Before(*f.MinEventDate) {
		return false
	}
	if f.MaxEventDate != nil && t.EventDate.After(*f.MaxEventDate) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func ticketLess(orderBy string) func(a, b *entity.Ticket) bool {
	switch orderBy {
	case entity.SortByTicketName:
		return func(a, b *entity.Ticket) bool { return a.TicketName < b.TicketName }
	case entity.SortByCategoryName:
		return func(a, b *entity.Ticket) bool { return a.CategoryName < b.CategoryName }
	case entity.SortByPrice:
		return func(a, b *entity.Ticket) bool { return a.Price < b.Price }
	case entity.SortByEventDate:
		return func(a, b *entity.Ticket) bool { return a.EventDate.Before(b.EventDate) }
	default:
		return func(a, b *entity.Ticket) bool { return a.TicketCode < b.TicketCode }
	}
}
