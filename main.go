package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/chat"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/config"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/db"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/events"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/gateway"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/handlers"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/middleware"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/observability"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/presence"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/repositories"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/ws"
)

const serviceName = "sikhshan-chat"

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", serviceName).Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, serviceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
		shutdownTracer = func(context.Context) error { return nil }
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)
	presenceRepo := repositories.NewPresenceRepo(database)

	publisher := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	defer publisher.Close()

	hub := ws.NewHub()
	dispatcher := gateway.NewDispatcher(hub, publisher, serviceName, cfg.Environment, cfg.EventBuffer, log)
	go dispatcher.Run(ctx)

	svc := chat.NewService(roomRepo, messageRepo, userRepo, presenceRepo, dispatcher, log)

	sweeper := presence.NewSweeper(presenceRepo, cfg.PresenceSweepInterval, cfg.PresenceStaleAfter, log)
	go sweeper.Run(ctx)

	chatHandler := handlers.NewChatHandler(svc)
	socketHandler := ws.NewSocketHandler(hub, svc, dispatcher, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.POST("/chat/rooms", chatHandler.CreateRoom)
	router.GET("/chat/rooms", chatHandler.ListRooms)
	router.GET("/chat/rooms/byUsers", chatHandler.GetRoomByUsers)
	router.GET("/chat/rooms/:room_id", chatHandler.GetRoom)
	router.POST("/chat/messages", chatHandler.PostMessage)
	router.GET("/chat/rooms/:room_id/messages", chatHandler.GetMessages)
	router.GET("/chat/rooms/:room_id/history", chatHandler.GetHistory)
	router.DELETE("/chat/messages/:message_id", chatHandler.DeleteMessage)
	router.POST("/chat/rooms/:room_id/read", chatHandler.MarkRead)
	router.GET("/chat/rooms/:room_id/unread-count", chatHandler.UnreadCount)
	router.POST("/chat/users/:user_id/online", chatHandler.MarkOnline)
	router.POST("/chat/users/:user_id/offline", chatHandler.MarkOffline)
	router.POST("/chat/users/:user_id/last-seen", chatHandler.TouchLastSeen)

	router.GET("/ws/chat/rooms/:room_id", socketHandler.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("chat service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown failed")
	}
}
