package entity

import (
	"time"
)

// Booking is the header of one checkout.
type Booking struct {
	BookedTicketID int64     `json:"bookedTicketId" db:"booked_ticket_id"`
	TotalPrice     int       `json:"totalPrice" db:"total_price"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// BookingLine is one ticket code entry within a booking.
type BookingLine struct {
	BookedTicketDetailID int64  `json:"bookedTicketDetailId" db:"booked_ticket_detail_id"`
	BookedTicketID       int64  `json:"bookedTicketId" db:"booked_ticket_id"`
	TicketCode           string `json:"ticketCode" db:"ticket_code"`
	Quantity             int    `json:"quantity" db:"quantity"`
	SubtotalPrice        int    `json:"subtotalPrice" db:"subtotal_price"`
}

// UnitPrice is the per-ticket price the line was charged at.
func (l *BookingLine) UnitPrice() int {
	if l.Quantity == 0 {
		return 0
	}
	return l.SubtotalPrice / l.Quantity
}

// LineRequest is a requested (ticketCode, quantity) pair.
type LineRequest struct {
	TicketCode string `json:"ticketCode" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// BookingReceipt is returned after a booking is created.
type BookingReceipt struct {
	BookedTicketID       int64             `json:"bookedTicketId"`
	TotalPrice           int               `json:"totalPrice"`
	CreatedAt            time.Time         `json:"createdAt"`
	TicketsPerCategories []CategorySummary `json:"ticketsPerCategories"`
}

// BookingDetails is a booking with its lines grouped by category.
type BookingDetails struct {
	BookedTicketID int64             `json:"bookedTicketId"`
	TotalPrice     int               `json:"totalPrice"`
	CreatedAt      time.Time         `json:"createdAt"`
	Categories     []CategorySummary `json:"categories"`
}

// RemainingLine is a line left in a booking after a revoke.
type RemainingLine struct {
	TicketCode   string `json:"ticketCode"`
	TicketName   string `json:"ticketName"`
	CategoryName string `json:"categoryName"`
	Quantity     int    `json:"quantity"`
}

type BookingPage struct {
	Bookings      []*BookingDetails `json:"bookings"`
	TotalBookings int               `json:"totalBookings"`
	PageNumber    int               `json:"pageNumber"`
	ItemsPerPage  int               `json:"itemsPerPage"`
}
