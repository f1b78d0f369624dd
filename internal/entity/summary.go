package entity

import "time"

// LineItem is one row fed to the category summarizer.
type LineItem struct {
	TicketCode   string    `json:"ticketCode"`
	TicketName   string    `json:"ticketName"`
	CategoryName string    `json:"-"`
	Quantity     int       `json:"quantity"`
	Price        int       `json:"price"`
	EventDate    time.Time `json:"eventDate"`
}

type CategorySummary struct {
	CategoryName   string     `json:"categoryName"`
	QtyPerCategory int        `json:"qtyPerCategory"`
	SummaryPrice   *int       `json:"summaryPrice,omitempty"`
	Tickets        []LineItem `json:"tickets"`
}
