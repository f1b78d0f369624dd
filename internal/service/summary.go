package service

import "github.com/ds124wfegd/ticketbooker/internal/entity"

// SummarizeByCategory groups items by category name. Groups follow the order
// in which their category first appears; items keep source order. The
// per-category subtotal is filled only when withSubtotal is set.
func SummarizeByCategory(items []entity.LineItem, withSubtotal bool) []entity.CategorySummary {
	groups := make([]entity.CategorySummary, 0)
	index := make(map[string]int)

	for _, item := range items {
		i, ok := index[item.CategoryName]
		if !ok {
			i = len(groups)
			index[item.CategoryName] = i
			groups = append(groups, entity.CategorySummary{CategoryName: item.CategoryName})
		}

		g := &groups[i]
		g.QtyPerCategory += item.Quantity
		if withSubtotal {
			if g.SummaryPrice == nil {
				g.SummaryPrice = new(int)
			}
			*g.SummaryPrice += item.Quantity * item.Price
		}
		g.Tickets = append(g.Tickets, item)
	}
	return groups
}

// groupTickets buckets catalog tickets by category in first-occurrence order.
func groupTickets(tickets []*entity.Ticket) []entity.TicketCategoryGroup {
	groups := make([]entity.TicketCategoryGroup, 0)
	index := make(map[string]int)

	for _, t := range tickets {
		i, ok := index[t.CategoryName]
		if !ok {
			i = len(groups)
			index[t.CategoryName] = i
			groups = append(groups, entity.TicketCategoryGroup{CategoryName: t.CategoryName})
		}
		groups[i].Tickets = append(groups[i].Tickets, t)
	}
	return groups
}
