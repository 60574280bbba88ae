package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/satriahrh/cocoa-fruit/mentor/adapters/hasher"
	httpadapter "github.com/satriahrh/cocoa-fruit/mentor/adapters/http"
	"github.com/satriahrh/cocoa-fruit/mentor/adapters/llm"
	"github.com/satriahrh/cocoa-fruit/mentor/adapters/message_broker"
	"github.com/satriahrh/cocoa-fruit/mentor/adapters/store"
	"github.com/satriahrh/cocoa-fruit/mentor/adapters/websocket"
	"github.com/satriahrh/cocoa-fruit/mentor/config"
	"github.com/satriahrh/cocoa-fruit/mentor/usecase"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	gotenv.Load()

	cfg := config.Load()
	log.Setup(cfg.Debug, cfg.LogFile)
	defer log.Sync()

	if err := run(cfg); err != nil {
		log.With(zap.Error(err)).Error("server stopped with error")
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	broker := message_broker.NewChannelMessageBroker()
	defer broker.Close()

	geminiLlm, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	})
	if err != nil {
		return err
	}

	mentor := usecase.NewMentorService(geminiLlm)
	progress := usecase.NewProgressService(db, hasher.New(), broker)
	wsServer := websocket.NewServer(broker)

	e := echo.New()
	e.HideBanner = true

	e.Use(httpadapter.RequestID)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	e.Use(httpadapter.CORS())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	auth := httpadapter.NewAuthenticator(cfg.JWTSecret)
	httpadapter.Routes{
		Relay:     httpadapter.NewRelayHandler(mentor),
		API:       httpadapter.NewAPIHandler(db, db, progress),
		Auth:      auth,
		Tokens:    httpadapter.NewTokenIssuer(auth, cfg.DevTokenKey),
		WebSocket: wsServer.Handler,
	}.Register(e)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wsServer.Run(ctx)
	})
	g.Go(func() error {
		log.With(zap.String("port", cfg.Port), zap.String("model", cfg.GeminiModel)).Info("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.With().Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
