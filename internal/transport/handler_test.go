package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ds124wfegd/ticketbooker/config"
	"github.com/ds124wfegd/ticketbooker/internal/database/memory"
	"github.com/ds124wfegd/ticketbooker/internal/entity"
	"github.com/ds124wfegd/ticketbooker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestRouter(t *testing.T, pinger Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	eventDate := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	for _, ticket := range []*entity.Ticket{
		{TicketCode: "C1", TicketName: "Cinema XXI", CategoryName: "Cinema", Price: 50, EventDate: eventDate, Quota: 10},
		{TicketCode: "M1", TicketName: "Rock Night", CategoryName: "Concert", Price: 300, EventDate: eventDate, Quota: 2},
	} {
		require.NoError(t, store.Tickets().Create(context.Background(), ticket))
	}
	if pinger == nil {
		pinger = store
	}

	paging := service.Pagination{DefaultPageSize: 10, MaxPageSize: 50}
	bookings := NewBookingHandler(service.NewBookingService(store, nil, nil, paging))
	tickets := NewTicketHandler(service.NewTicketService(store, nil, paging))
	return InitRoutes(&config.AppConfig{}, tickets, bookings, pinger)
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bookTickets(t *testing.T, router *gin.Engine, lines ...entity.LineRequest) entity.BookingReceipt {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/api/v1/book-ticket", service.BookTicketsRequest{Tickets: lines})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var receipt entity.BookingReceipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
	return receipt
}

func TestBookTicketCreated(t *testing.T) {
	router := newTestRouter(t, nil)

	receipt := bookTickets(t, router,
		entity.LineRequest{TicketCode: "c1", Quantity: 2},
		entity.LineRequest{TicketCode: "M1", Quantity: 1},
	)

	assert.NotZero(t, receipt.BookedTicketID)
	assert.Equal(t, 400, receipt.TotalPrice)
	require.Len(t, receipt.TicketsPerCategories, 2)
	assert.Equal(t, "Cinema", receipt.TicketsPerCategories[0].CategoryName)
	require.NotNil(t, receipt.TicketsPerCategories[0].SummaryPrice)
	assert.Equal(t, 100, *receipt.TicketsPerCategories[0].SummaryPrice)
}

func TestBookTicketRejected(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantErrors []string
	}{
		{
			name:       "malformed body",
			body:       map[string]string{"tickets": "nope"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty ticket list",
			body:       service.BookTicketsRequest{Tickets: []entity.LineRequest{}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "every failing line is reported",
			body: service.BookTicketsRequest{Tickets: []entity.LineRequest{
				{TicketCode: "XX", Quantity: 1},
				{TicketCode: "M1", Quantity: 5},
			}},
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{
				"Ticket code 'XX' is not registered.",
				"The quantity of ticket with code 'M1' exceeds the remaining quota.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/v1/book-ticket", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			var problem ProblemDetails
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, "/api/v1/book-ticket", problem.Instance)
			if tt.wantErrors != nil {
				assert.Equal(t, tt.wantErrors, problem.Errors)
			}
		})
	}
}

func TestGetBookedTicket(t *testing.T) {
	router := newTestRouter(t, nil)
	receipt := bookTickets(t, router, entity.LineRequest{TicketCode: "C1", Quantity: 3})

	w := doRequest(router, http.MethodGet, "/api/v1/get-booked-ticket/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var details entity.BookingDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, receipt.BookedTicketID, details.BookedTicketID)
	assert.Equal(t, 150, details.TotalPrice)
	require.Len(t, details.Categories, 1)
	assert.Nil(t, details.Categories[0].SummaryPrice)

	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/api/v1/get-booked-ticket/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/api/v1/get-booked-ticket/abc", nil).Code)
}

func TestGetBookedTickets(t *testing.T) {
	router := newTestRouter(t, nil)
	bookTickets(t, router, entity.LineRequest{TicketCode: "C1", Quantity: 1})
	bookTickets(t, router, entity.LineRequest{TicketCode: "C1", Quantity: 1})

	w := doRequest(router, http.MethodGet, "/api/v1/get-booked-tickets?pageNumber=1&itemsPerPage=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page entity.BookingPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.TotalBookings)
	assert.Len(t, page.Bookings, 1)

	w = doRequest(router, http.MethodGet, "/api/v1/get-booked-tickets?pageNumber=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRevokeTicket(t *testing.T) {
	router := newTestRouter(t, nil)
	bookTickets(t, router,
		entity.LineRequest{TicketCode: "C1", Quantity: 3},
		entity.LineRequest{TicketCode: "M1", Quantity: 1},
	)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "unknown booking", path: "/api/v1/revoke-ticket/42/C1/1", wantStatus: http.StatusNotFound},
		{name: "code not in booking", path: "/api/v1/revoke-ticket/1/ZZ/1", wantStatus: http.StatusNotFound},
		{name: "more than booked", path: "/api/v1/revoke-ticket/1/C1/4", wantStatus: http.StatusBadRequest},
		{name: "non numeric quantity", path: "/api/v1/revoke-ticket/1/C1/many", wantStatus: http.StatusBadRequest},
		{name: "zero quantity", path: "/api/v1/revoke-ticket/1/C1/0", wantStatus: http.StatusBadRequest},
		{name: "partial revoke", path: "/api/v1/revoke-ticket/1/c1/2", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodDelete, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	w := doRequest(router, http.MethodDelete, "/api/v1/revoke-ticket/1/M1/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		RemainingLines []entity.RemainingLine `json:"remainingLines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.RemainingLines, 1)
	assert.Equal(t, "C1", body.RemainingLines[0].TicketCode)
	assert.Equal(t, 1, body.RemainingLines[0].Quantity)
}

func TestEditBookedTicket(t *testing.T) {
	router := newTestRouter(t, nil)
	bookTickets(t, router, entity.LineRequest{TicketCode: "C1", Quantity: 3})

	w := doRequest(router, http.MethodPut, "/api/v1/edit-booked-ticket/1", service.UpdateBookingRequest{
		Tickets: []entity.LineRequest{{TicketCode: "C1", Quantity: 5}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		UpdatedLines []entity.CategorySummary `json:"updatedLines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.UpdatedLines, 1)
	assert.Equal(t, 5, body.UpdatedLines[0].QtyPerCategory)

	w = doRequest(router, http.MethodPut, "/api/v1/edit-booked-ticket/1", service.UpdateBookingRequest{
		Tickets: []entity.LineRequest{{TicketCode: "M1", Quantity: 1}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, []string{"Ticket code 'M1' is not part of booking 1."}, problem.Errors)

	w = doRequest(router, http.MethodPut, "/api/v1/edit-booked-ticket/7", service.UpdateBookingRequest{
		Tickets: []entity.LineRequest{{TicketCode: "C1", Quantity: 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvailableTickets(t *testing.T) {
	router := newTestRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/get-available-ticket?orderBy=price&orderState=desc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page entity.TicketPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Tickets, 2)
	assert.Equal(t, "M1", page.Tickets[0].TicketCode)

	w = doRequest(router, http.MethodGet, "/api/v1/get-available-ticket?orderBy=quota", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/get-available-ticket?ticketName=nothing-here", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Empty(t, page.Tickets)
	assert.Zero(t, page.TotalTickets)
}

func TestGetTicketAndCategories(t *testing.T) {
	router := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/api/v1/get-ticket/m1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/api/v1/get-ticket/NOPE", nil).Code)

	w := doRequest(router, http.MethodGet, "/api/v1/get-available-ticket/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Categories []entity.TicketCategoryGroup `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Categories, 2)
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(t, nil), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(newTestRouter(t, stubPinger{err: errors.New("db down")}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
