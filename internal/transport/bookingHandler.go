package transport

import (
	"net/http"
	"strconv"

	"github.com/ds124wfegd/ticketbooker/internal/service"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) BookTicket(c *gin.Context) {
	var req service.BookTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	receipt, err := h.bookingService.Book(c.Request.Context(), req.Tickets)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

func (h *BookingHandler) GetBookedTicket(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	details, err := h.bookingService.GetBooking(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// GetBookedTickets lists bookings page by page, newest first.
func (h *BookingHandler) GetBookedTickets(c *gin.Context) {
	pageNumber, err := strconv.Atoi(c.DefaultQuery("pageNumber", "1"))
	if err != nil {
		badRequest(c, "invalid pageNumber")
		return
	}
	itemsPerPage, err := strconv.Atoi(c.DefaultQuery("itemsPerPage", "0"))
	if err != nil {
		badRequest(c, "invalid itemsPerPage")
		return
	}

	page, err := h.bookingService.ListBookings(c.Request.Context(), pageNumber, itemsPerPage)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *BookingHandler) RevokeTicket(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	qty, err := strconv.Atoi(c.Param("qty"))
	if err != nil {
		badRequest(c, "invalid quantity")
		return
	}

	remaining, err := h.bookingService.Revoke(c.Request.Context(), id, c.Param("ticketCode"), qty)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remainingLines": remaining})
}

func (h *BookingHandler) EditBookedTicket(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	updated, err := h.bookingService.Update(c.Request.Context(), id, req.Tickets)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updatedLines": updated})
}

func bookingIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("bookedTicketId"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid booked ticket id")
		return 0, false
	}
	return id, true
}
