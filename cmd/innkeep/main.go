package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"innkeep/internal/app/commands"
	bookingapp "innkeep/internal/app/handlers/booking"
	"innkeep/internal/app/middleware"
	appoutbox "innkeep/internal/app/outbox"
	"innkeep/internal/app/queries"
	"innkeep/internal/app/uow"
	"innkeep/internal/domain/availability"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/infra/broker/kafka"
	"innkeep/internal/infra/config"
	mongostore "innkeep/internal/infra/db/mongo"
	ginserver "innkeep/internal/infra/http/gin"
	"innkeep/internal/infra/obs"
	infraoutbox "innkeep/internal/infra/outbox"
	"innkeep/internal/infra/storage/memory"
	"innkeep/internal/infra/validate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.Probes{
		Storage: app.ready,
		Mode:    cfg.StorageMode,
	}, app.handlers)

	if cfg.StorageMode == config.StorageMemory {
		fixturesPath := os.Getenv("RATECARDS_FIXTURES")
		if fixturesPath == "" {
			fixturesPath = filepath.Join("data", "ratecards.json")
		}
		if err := app.loadRateCardFixtures(ctx, fixturesPath, logger); err != nil {
			logger.Warn("rate card fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	if app.outboxWorker != nil {
		go func() {
			if err := app.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	outboxWorker *infraoutbox.Worker
	ready        func() error
	rateCards    rates.Repository
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	cleanup := func() {}

	tariff := pricing.Tariff{
		ExtraBed:  money.Money{Amount: cfg.ExtraBedPrice, Currency: cfg.Currency},
		ExtraWood: money.Money{Amount: cfg.ExtraWoodPrice, Currency: cfg.Currency},
	}
	policy := availability.Policy{AllowSharedDayStay: cfg.DayStaySharing}
	clock := calendar.SystemClock

	var (
		uowFactory  uow.Factory
		outboxStore appoutbox.Outbox
		worker      *infraoutbox.Worker
		ready       = func() error { return nil }
		rateCards   rates.Repository
		idStore     middleware.IdempotencyStore
	)

	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, cleanup, fmt.Errorf("mongo connect: %w", err)
		}
		cleanup = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(closeCtx)
		}
		reservations := mongostore.NewReservationRepository(client.DB)
		cards := mongostore.NewRateCardRepository(client.DB)
		uowFactory = mongostore.Factory{
			DB:               client.DB,
			ReservationsRepo: reservations,
			RateCardsRepo:    cards,
		}
		store := infraoutbox.NewStore(client.DB)
		outboxStore = store
		rateCards = cards
		// Replay records live next to the reservations so a confirm replayed
		// after a restart, or against another instance, still short-circuits.
		idStore = mongostore.NewIdempotencyStore(client.DB)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, "innkeep-outbox")
			if err != nil {
				return application{}, cleanup, fmt.Errorf("kafka producer: %w", err)
			}
			prev := cleanup
			cleanup = func() {
				_ = producer.Close()
				prev()
			}
			worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Warn("kafka brokers not configured, outbox events will accumulate")
		}
	default:
		reservations := memory.NewReservationRepository()
		cards := memory.NewRateCardRepository()
		uowFactory = memory.NewFactory(reservations, cards)
		outboxStore = memory.NewOutbox()
		rateCards = cards
		idStore = memory.NewIdempotencyStore()
	}

	validator := validate.New()

	commandBus := commands.NewInMemoryBus()
	confirmHandler := &bookingapp.ConfirmHandler{
		UoW:    uowFactory,
		Tariff: tariff,
		Policy: policy,
		Clock:  clock,
		Outbox: outboxStore,
	}
	commands.Register(commandBus, bookingapp.ConfirmCommand{}.Key(), confirmHandler)
	changeStatusHandler := &bookingapp.ChangeStatusHandler{
		UoW:    uowFactory,
		Clock:  clock,
		Outbox: outboxStore,
	}
	commands.Register(commandBus, bookingapp.ChangeStatusCommand{}.Key(), changeStatusHandler)
	recomputeHandler := &bookingapp.RecomputeAdjustmentsHandler{
		UoW:    uowFactory,
		Tariff: tariff,
		Clock:  clock,
		Outbox: outboxStore,
	}
	commands.Register(commandBus, bookingapp.RecomputeAdjustmentsCommand{}.Key(), recomputeHandler)

	queryBus := queries.NewInMemoryBus()
	quoteHandler := &bookingapp.QuoteHandler{
		UoW:    uowFactory,
		Tariff: tariff,
		Policy: policy,
		Clock:  clock,
	}
	queries.Register(queryBus, bookingapp.QuoteQuery{}.Key(), quoteHandler)
	lookup := &bookingapp.LookupHandler{UoW: uowFactory}
	queries.Register(queryBus, bookingapp.RoomReservationsQuery{}.Key(), bookingapp.RoomReservationsHandler{Lookup: lookup})
	queries.Register(queryBus, bookingapp.RateCardQuery{}.Key(), bookingapp.RateCardHandler{Lookup: lookup})
	queries.Register(queryBus, bookingapp.ReservationByIDQuery{}.Key(), bookingapp.ReservationByIDHandler{Lookup: lookup})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger),
		middleware.Validation(validator),
		middleware.Idempotency(idStore),
		middleware.Transaction(uowFactory, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(validator),
	)

	return application{
		handlers: ginserver.Handlers{
			Quote: ginserver.QuoteHandler{Queries: queryBusWithMiddleware},
			Reservation: ginserver.ReservationHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			Room: ginserver.RoomHandler{Queries: queryBusWithMiddleware},
		},
		outboxWorker: worker,
		ready:        ready,
		rateCards:    rateCards,
	}, cleanup, nil
}

type rateCardFixture struct {
	RoomID   string `json:"room_id"`
	Currency string `json:"currency"`
	Base     int64  `json:"base"`
	Weekday  *int64 `json:"weekday"`
	Weekend  *int64 `json:"weekend"`
	DayStay  *int64 `json:"day_stay"`
}

func (a application) loadRateCardFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("rate card fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []rateCardFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range fixtures {
		currency := fx.Currency
		card := rates.Card{
			RoomID: fx.RoomID,
			Base:   money.Money{Amount: fx.Base, Currency: currency},
		}
		if fx.Weekday != nil {
			m := money.Money{Amount: *fx.Weekday, Currency: currency}
			card.Weekday = &m
		}
		if fx.Weekend != nil {
			m := money.Money{Amount: *fx.Weekend, Currency: currency}
			card.Weekend = &m
		}
		if fx.DayStay != nil {
			m := money.Money{Amount: *fx.DayStay, Currency: currency}
			card.DayStay = &m
		}
		if err := card.Validate(); err != nil {
			logger.Error("fixture invalid", "room_id", fx.RoomID, "error", err)
			continue
		}
		if err := a.rateCards.Save(ctx, card); err != nil {
			logger.Error("cannot store fixture rate card", "room_id", fx.RoomID, "error", err)
			continue
		}
		logger.Info("rate card fixture imported", "room_id", fx.RoomID)
	}
	return nil
}
