package entity

import (
	"strings"
	"time"
)

type Ticket struct {
	TicketCode   string    `json:"ticketCode" db:"ticket_code"`
	TicketName   string    `json:"ticketName" db:"ticket_name"`
	CategoryName string    `json:"categoryName" db:"category_name"`
	Price        int       `json:"price" db:"price"`
	EventDate    time.Time `json:"eventDate" db:"event_date"`
	Quota        int       `json:"quota" db:"quota"`
}

// NormalizeCode is the lookup key for ticket codes, which match case-insensitively.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// TicketFilter holds catalog search parameters bound from the query string.
type TicketFilter struct {
	CategoryName   string     `form:"categoryName" json:"categoryName,omitempty"`
	TicketCode     string     `form:"ticketCode" json:"ticketCode,omitempty"`
	TicketName     string     `form:"ticketName" json:"ticketName,omitempty"`
	MaxPrice       *int       `form:"maxPrice" json:"maxPrice,omitempty"`
	MinEventDate   *time.Time `form:"minEventDate" time_format:"2006-01-02" json:"minEventDate,omitempty"`
	MaxEventDate   *time.Time `form:"maxEventDate" time_format:"2006-01-02" json:"maxEventDate,omitempty"`
	OrderBy        string     `form:"orderBy" json:"orderBy,omitempty"`
	OrderState     string     `form:"orderState" json:"orderState,omitempty"`
	PageNumber     int        `form:"pageNumber" json:"pageNumber"`
	TicketsPerPage int        `form:"ticketsPerPage" json:"ticketsPerPage"`
}

// Sort fields accepted by TicketFilter.OrderBy.
const (
	SortByTicketCode   = "ticketcode"
	SortByTicketName   = "ticketname"
	SortByCategoryName = "categoryname"
	SortByPrice        = "price"
	SortByEventDate    = "eventdate"

	SortAsc  = "asc"
	SortDesc = "desc"
)

type TicketPage struct {
	Tickets      []*Ticket `json:"tickets"`
	TotalTickets int       `json:"totalTickets"`
	PageNumber   int       `json:"pageNumber"`
	ItemsPerPage int       `json:"itemsPerPage"`
}

// TicketCategoryGroup is a catalog listing bucket.
type TicketCategoryGroup struct {
	CategoryName string    `json:"categoryName"`
	Tickets      []*Ticket `json:"tickets"`
}
