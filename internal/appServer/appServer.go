package appServer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/ticketbooker/config"
	"github.com/ds124wfegd/ticketbooker/internal/database"
	"github.com/ds124wfegd/ticketbooker/internal/database/memory"
	repository "github.com/ds124wfegd/ticketbooker/internal/database/postgres"
	cache "github.com/ds124wfegd/ticketbooker/internal/database/redis"
	"github.com/ds124wfegd/ticketbooker/internal/entity"
	"github.com/ds124wfegd/ticketbooker/internal/service"
	"github.com/ds124wfegd/ticketbooker/internal/transport"
	"github.com/ds124wfegd/ticketbooker/pkg/kafka"
	"github.com/ds124wfegd/ticketbooker/pkg/postgres"
	"github.com/ds124wfegd/ticketbooker/pkg/rabbitMQ"
	"github.com/ds124wfegd/ticketbooker/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// Initialize storage
	store, closeStore, err := newStore(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeStore()

	// Initialize catalog cache
	var catalogCache service.CatalogCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logrus.Errorf("Failed to initialize Redis: %v. Continuing without catalog cache...", err)
		} else {
			defer redisClient.Close()
			catalogCache = cache.NewCatalogCache(redisClient, cfg.App.CacheTTL)
			logrus.Info("Catalog cache initialized")
		}
	}

	// Initialize event publisher
	publisher, closePublisher := newEventPublisher(&cfg.Events)
	defer closePublisher()

	// Initialize services
	paging := service.Pagination{
		DefaultPageSize: cfg.App.DefaultPageSize,
		MaxPageSize:     cfg.App.MaxPageSize,
	}
	bookingService := service.NewBookingService(store, publisher, catalogCache, paging)
	ticketService := service.NewTicketService(store, catalogCache, paging)

	// Initialize handlers
	ticketHandler := transport.NewTicketHandler(ticketService)
	bookingHandler := transport.NewBookingHandler(bookingService)

	if cfg.Server.Mode == "release" || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(&cfg.App, ticketHandler, bookingHandler, store)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("addr", cfg.GetServerAddress()).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}

func newStore(cfg *config.Config) (database.Store, func(), error) {
	switch cfg.Database.Driver {
	case "memory":
		store := memory.NewStore()
		if err := SeedCatalog(context.Background(), store, cfg.Catalog.Tickets); err != nil {
			return nil, nil, err
		}
		logrus.WithField("tickets", len(cfg.Catalog.Tickets)).Info("Memory store initialized")
		return store, func() {}, nil

	case "postgres", "":
		db, err := postgres.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.NewStore(db), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// SeedCatalog registers the configured tickets in store.
func SeedCatalog(ctx context.Context, store database.Store, seeds []config.SeedTicket) error {
	return store.WithinTx(ctx, func(tx database.Store) error {
		for _, seed := range seeds {
			eventDate, err := time.Parse(time.RFC3339, seed.EventDate)
			if err != nil {
				return fmt.Errorf("invalid event_date for ticket %s: %w", seed.Code, err)
			}
			ticket := &entity.Ticket{
				TicketCode:   seed.Code,
				TicketName:   seed.Name,
				CategoryName: seed.Category,
				Price:        seed.Price,
				EventDate:    eventDate,
				Quota:        seed.Quota,
			}
			if err := tx.Tickets().Create(ctx, ticket); err != nil {
				return err
			}
		}
		return nil
	})
}

func newEventPublisher(cfg *config.EventsConfig) (service.EventPublisher, func()) {
	switch cfg.Driver {
	case "rabbitmq":
		queue, err := rabbitMQ.NewRabbitMQ(rabbitMQ.RabbitMQConfig{
			URL:       cfg.RabbitMQ.URL,
			QueueName: cfg.RabbitMQ.QueueName,
		})
		if err != nil {
			logrus.Errorf("Failed to initialize RabbitMQ: %v. Continuing without booking events...", err)
			return nil, func() {}
		}
		logrus.Info("RabbitMQ publisher initialized")
		return service.NewRabbitMQAdapter(queue), func() { queue.Close() }

	case "kafka":
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		return service.NewKafkaAdapter(producer), func() { producer.Close() }

	default:
		logrus.Warn("Booking events disabled")
		return nil, func() {}
	}
}
