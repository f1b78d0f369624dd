package appServer

import (
	"context"
	"testing"

	"github.com/ds124wfegd/ticketbooker/config"
	"github.com/ds124wfegd/ticketbooker/internal/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalog(t *testing.T) {
	store := memory.NewStore()
	seeds := []config.SeedTicket{
		{Code: "c1", Name: "Cinema XXI", Category: "Cinema", Price: 50, EventDate: "2030-03-01T19:00:00Z", Quota: 10},
		{Code: "M1", Name: "Rock Night", Category: "Concert", Price: 300, EventDate: "2030-04-01T20:00:00+03:00", Quota: 2},
	}

	require.NoError(t, SeedCatalog(context.Background(), store, seeds))

	ticket, err := store.Tickets().GetByCode(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, "C1", ticket.TicketCode)
	assert.Equal(t, 10, ticket.Quota)
	assert.Equal(t, 2030, ticket.EventDate.Year())
}

func TestSeedCatalogIsAllOrNothing(t *testing.T) {
	store := memory.NewStore()
	seeds := []config.SeedTicket{
		{Code: "C1", Name: "Cinema XXI", Category: "Cinema", Price: 50, EventDate: "2030-03-01T19:00:00Z", Quota: 10},
		{Code: "BAD", Name: "Broken", Category: "Cinema", Price: 10, EventDate: "next friday", Quota: 1},
	}

	err := SeedCatalog(context.Background(), store, seeds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD")

	available, err := store.Tickets().ListAvailable(context.Background())
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestNewStoreUnknownDriver(t *testing.T) {
	_, _, err := newStore(&config.Config{Database: config.DatabaseConfig{Driver: "mongo"}})
	assert.Error(t, err)
}

func TestNewEventPublisherDisabled(t *testing.T) {
	publisher, closeFn := newEventPublisher(&config.EventsConfig{Driver: "none"})
	assert.Nil(t, publisher)
	closeFn()
}
