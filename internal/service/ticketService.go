package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ds124wfegd/ticketbooker/internal/database"
	"github.com/ds124wfegd/ticketbooker/internal/entity"
	"github.com/sirupsen/logrus"
)

type ticketService struct {
	store  database.Store
	cache  CatalogCache
	paging Pagination
}

// NewTicketService builds the catalog service. cache may be nil.
func NewTicketService(store database.Store, cache CatalogCache, paging Pagination) TicketService {
	return &ticketService{store: store, cache: cache, paging: paging}
}

var sortFields = map[string]bool{
	entity.SortByTicketCode:   true,
	entity.SortByTicketName:   true,
	entity.SortByCategoryName: true,
	entity.SortByPrice:        true,
	entity.SortByEventDate:    true,
}

// SearchAvailable returns one page of tickets that still have quota.
func (s *ticketService) SearchAvailable(ctx context.Context, filter *entity.TicketFilter) (*entity.TicketPage, error) {
	f, err := s.normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	// the version is taken before the store read so that a booking committed
	// in between leaves this page under the old version
	version := int64(-1)
	if s.cache != nil {
		cached, v, ok := s.cache.GetPage(ctx, f)
		if ok {
			return cached, nil
		}
		version = v
	}

	tickets, total, err := s.store.Tickets().SearchAvailable(ctx, f)
	if err != nil {
		return nil, err
	}

	page := &entity.TicketPage{
		Tickets:      tickets,
		TotalTickets: total,
		PageNumber:   f.PageNumber,
		ItemsPerPage: f.TicketsPerPage,
	}
	if page.Tickets == nil {
		page.Tickets = []*entity.Ticket{}
	}

	if s.cache != nil {
		if err := s.cache.SetPage(ctx, version, f, page); err != nil {
			logrus.WithError(err).Warn("Failed to cache catalog page")
		}
	}
	return page, nil
}

func (s *ticketService) AvailableByCategory(ctx context.Context) ([]entity.TicketCategoryGroup, error) {
	tickets, err := s.store.Tickets().ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return groupTickets(tickets), nil
}

func (s *ticketService) GetTicket(ctx context.Context, code string) (*entity.Ticket, error) {
	return s.store.Tickets().GetByCode(ctx, code)
}

// normalizeFilter returns a copy with defaults applied and sort options checked.
func (s *ticketService) normalizeFilter(filter *entity.TicketFilter) (*entity.TicketFilter, error) {
	f := entity.TicketFilter{}
	if filter != nil {
		f = *filter
	}

	f.OrderBy = strings.ToLower(strings.TrimSpace(f.OrderBy))
	if f.OrderBy == "" {
		f.OrderBy = entity.SortByTicketCode
	}
	if !sortFields[f.OrderBy] {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidSortField, filter.OrderBy)
	}

	f.OrderState = strings.ToLower(strings.TrimSpace(f.OrderState))
	if f.OrderState == "" {
		f.OrderState = entity.SortAsc
	}
	if f.OrderState != entity.SortAsc && f.OrderState != entity.SortDesc {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidSortOrder, filter.OrderState)
	}

	f.PageNumber, f.TicketsPerPage = s.paging.normalize(f.PageNumber, f.TicketsPerPage)
	return &f, nil
}
