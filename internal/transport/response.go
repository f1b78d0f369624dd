package transport

import (
	"errors"
	"net/http"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProblemDetails is the error body of every non-2xx response.
type ProblemDetails struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Status   int      `json:"status"`
	Detail   string   `json:"detail,omitempty"`
	Instance string   `json:"instance"`
	Errors   []string `json:"errors,omitempty"`
}

func problem(c *gin.Context, status int, kind, title, detail string, errs []string) {
	c.AbortWithStatusJSON(status, ProblemDetails{
		Type:     "https://example.com/probs/" + kind,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.RequestURI(),
		Errors:   errs,
	})
}

func badRequest(c *gin.Context, detail string) {
	problem(c, http.StatusBadRequest, "bad-request", "Bad Request", detail, nil)
}

// abortWithError maps service errors onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		problem(c, http.StatusBadRequest, "validation-failed", "Validation Failed",
			"One or more ticket lines were rejected.", verr.Messages())
	case errors.Is(err, entity.ErrBookingNotFound):
		problem(c, http.StatusNotFound, "booked-ticket-not-found", "Booked Ticket Not Found", err.Error(), nil)
	case errors.Is(err, entity.ErrLineNotFound):
		problem(c, http.StatusNotFound, "ticket-code-not-found", "Ticket Code Not Found", err.Error(), nil)
	case errors.Is(err, entity.ErrTicketNotRegistered):
		problem(c, http.StatusNotFound, "ticket-not-found", "Ticket Not Found", err.Error(), nil)
	case errors.Is(err, entity.ErrQuantityExceedsBooked):
		problem(c, http.StatusBadRequest, "quantity-exceeds-booked", "Quantity Exceeds Booked Tickets", err.Error(), nil)
	case errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrEmptyRequest),
		errors.Is(err, entity.ErrInvalidSortField),
		errors.Is(err, entity.ErrInvalidSortOrder):
		badRequest(c, err.Error())
	case errors.Is(err, entity.ErrInsufficientQuota):
		problem(c, http.StatusConflict, "quota-conflict", "Quota Changed",
			"Ticket quota changed while the request was processed, please retry.", nil)
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled error")
		problem(c, http.StatusInternalServerError, "internal-error", "Internal Server Error",
			"An unexpected error occurred.", nil)
	}
}
