package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/hilthontt/guessit/internal/domain"
	"github.com/hilthontt/guessit/internal/game"
	"github.com/hilthontt/guessit/internal/infrastructure/bus"
	"github.com/hilthontt/guessit/internal/infrastructure/configs"
	"github.com/hilthontt/guessit/internal/infrastructure/logging"
	"github.com/hilthontt/guessit/internal/infrastructure/ratelimiter"
	memrepo "github.com/hilthontt/guessit/internal/infrastructure/repository"
	"github.com/hilthontt/guessit/internal/infrastructure/tracing"
	"github.com/hilthontt/guessit/internal/persistence/db"
	mongorepo "github.com/hilthontt/guessit/internal/persistence/repository"
	"github.com/hilthontt/guessit/internal/presentation/api"
	healthHandler "github.com/hilthontt/guessit/internal/presentation/handler/health"
	questionsHandler "github.com/hilthontt/guessit/internal/presentation/handler/questions"
	roomHandler "github.com/hilthontt/guessit/internal/presentation/handler/rooms"
)

func main() {
	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})

	shutdownTracer, err := tracing.InitTracer(tracing.NewDefaultConfig("guessit"))
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to init tracer", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	ctx := context.Background()

	rooms, players, questions, answers, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(logging.Mongo, logging.Startup, "failed to init store", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer closeStore()

	if err := seedQuestions(ctx, questions); err != nil {
		logger.Fatal(logging.Game, logging.Startup, "failed to seed question pool", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	eventBus, closeBus, err := buildBus(cfg, logger)
	if err != nil {
		logger.Fatal(logging.RabbitMQ, logging.Startup, "failed to init event bus", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer closeBus()

	coordinator := game.NewCoordinator(game.Config{
		MaxPlayers:           cfg.Game.MaxPlayers,
		DefaultQuestionCount: cfg.Game.DefaultQuestionCount,
	}, rooms, players, questions, answers, eventBus, logger)

	rateLimiter := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rateLimiter.Close()

	app := api.NewApplication(
		*cfg,
		*roomHandler.NewHandler(coordinator, rooms, players, eventBus, logger),
		*questionsHandler.NewHandler(questions, logger),
		*healthHandler.NewHandler(),
		logger,
		rateLimiter,
	)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(logging.General, logging.Shutdown, "server exited", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}

func buildStore(ctx context.Context, cfg *configs.Config, logger logging.Logger) (
	domain.RoomRepository,
	domain.PlayerRepository,
	domain.QuestionRepository,
	domain.AnswerRepository,
	func(),
	error,
) {
	switch cfg.Store.Backend {
	case "mongo":
		mongoCfg := &db.MongoConfig{
			URI:               cfg.Store.MongoURI,
			Database:          cfg.Store.MongoDatabase,
			ConnectionTimeout: cfg.Store.MongoTimeout,
		}

		client, err := db.NewMongoClient(ctx, mongoCfg)
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}

		database := db.GetDatabase(client, mongoCfg)

		if err := mongorepo.EnsureIndexes(ctx, database); err != nil {
			_ = db.DisconnectMongo(ctx, client)
			return nil, nil, nil, nil, nil, err
		}

		logger.Info(logging.Mongo, logging.Startup, "connected to mongodb", map[logging.ExtraKey]any{
			"database": mongoCfg.Database,
		})

		closeStore := func() {
			if err := db.DisconnectMongo(context.Background(), client); err != nil {
				logger.Warn(logging.Mongo, logging.Shutdown, "mongodb disconnect failed", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		}

		return mongorepo.NewRoomRepository(database),
			mongorepo.NewPlayerRepository(database),
			mongorepo.NewQuestionRepository(database),
			mongorepo.NewAnswerRepository(database),
			closeStore,
			nil

	default:
		return memrepo.NewRoomRepository(cfg.Game.RoomCapacity, cfg.Game.IdleRoomExpiry),
			memrepo.NewPlayerRepository(),
			memrepo.NewQuestionRepository(),
			memrepo.NewAnswerRepository(),
			func() {},
			nil
	}
}

func buildBus(cfg *configs.Config, logger logging.Logger) (bus.Bus, func(), error) {
	switch cfg.Bus.Backend {
	case "amqp":
		amqpBus, err := bus.NewAMQPBus(cfg.Bus.AMQPURI, uuid.NewString(), logger)
		if err != nil {
			return nil, nil, err
		}
		return amqpBus, amqpBus.Close, nil

	default:
		return bus.NewMemoryBus(logger), func() {}, nil
	}
}

// seedQuestions fills an empty pool with the built-in prompts so the
// first game works out of the box.
func seedQuestions(ctx context.Context, questions domain.QuestionRepository) error {
	count, err := questions.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, text := range domain.DefaultQuestions {
		question, err := domain.NewQuestion(text)
		if err != nil {
			return err
		}
		if err := questions.Create(ctx, question); err != nil {
			return err
		}
	}

	return nil
}
