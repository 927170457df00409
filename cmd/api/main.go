package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/advancelms/lms-api/internal/auth"
	"github.com/advancelms/lms-api/internal/chatbot"
	"github.com/advancelms/lms-api/internal/config"
	"github.com/advancelms/lms-api/internal/handler"
	"github.com/advancelms/lms-api/internal/mailer"
	"github.com/advancelms/lms-api/internal/media"
	"github.com/advancelms/lms-api/internal/payload"
	"github.com/advancelms/lms-api/internal/repository"
	"github.com/advancelms/lms-api/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.New(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	db := client.Database(cfg.MongoDB)

	mediaHost, err := media.NewMinioHost(ctx, cfg.Media)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to media host")
	}

	mail := mailer.NewMailer(&logger)
	chatClient := chatbot.NewClient(cfg.Chat)
	jwtAuth := auth.NewJWTAuthenticator(cfg.JWTAudience, cfg.JWTIssuer)

	validator, err := payload.NewValidator()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create payload validator")
	}

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	courseRepo := repository.NewCourseMongoRepository(ctx, &logger, db)
	paymentRepo := repository.NewPaymentMongoRepository(ctx, &logger, client, db, userRepo)

	courseUsecase := usecase.NewCourseUsecase(courseRepo, mediaHost, &logger)
	userUsecase := usecase.NewUserUsecase(userRepo, mediaHost, mail, jwtAuth, cfg, &logger)
	paymentUsecase := usecase.NewPaymentUsecase(paymentRepo, courseRepo, userRepo)
	chatUsecase := usecase.NewChatUsecase(chatClient, &logger)

	router := handler.NewRouter(
		cfg,
		&logger,
		jwtAuth,
		userRepo,
		handler.NewCourseHandler(courseUsecase, validator, &logger),
		handler.NewUserHandler(userUsecase, validator, cfg, &logger),
		handler.NewPaymentHandler(paymentUsecase, validator, &logger),
		handler.NewChatHandler(chatUsecase),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server is up")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down server gracefully")
	}

	logger.Info().Msg("server stopped")
}
