package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/config"
	"github.com/Kamey12/Apex-Inventory-System/internal/database"
	"github.com/Kamey12/Apex-Inventory-System/internal/notifications"
	"github.com/Kamey12/Apex-Inventory-System/internal/repositories"
	"github.com/Kamey12/Apex-Inventory-System/internal/server"
	"github.com/Kamey12/Apex-Inventory-System/internal/services"
	"github.com/Kamey12/Apex-Inventory-System/internal/storage"
	"github.com/Kamey12/Apex-Inventory-System/pkg/logger"
	"github.com/Kamey12/Apex-Inventory-System/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// stores groups the repositories behind the configured DB_DRIVER.
type stores struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
	txs      repositories.TransactionRepository
	close    func() error
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.DBDriver == "memory" {
		products := repositories.NewMemoryProductRepository()
		return &stores{
			users:    repositories.NewMemoryUserRepository(),
			products: products,
			txs:      repositories.NewMemoryTransactionRepository(products),
			close:    func() error { return nil },
		}, nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	return &stores{
		users:    repositories.NewGORMUserRepository(db),
		products: repositories.NewGORMProductRepository(db),
		txs:      repositories.NewGORMTransactionRepository(db),
		close:    func() error { return database.Close(db) },
	}, nil
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	if cfg.UsesDefaultSecret() {
		log.Warn().Msg("JWT_SECRET is not set; using the development fallback")
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()
	log.Info().Str("driver", cfg.DBDriver).Msg("database ready")

	authService := services.NewAuthService(st.users, cfg.JWTSecret).WithTokenTTL(cfg.TokenTTL)
	if _, err := authService.EnsureDefaultAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			return err
		}
		defer mq.Close()
		publisher = mq

		notifier := notifications.NewLowStockNotifier(alertSender(cfg, log))
		g.Go(func() error {
			err := mq.Consume(gctx, "low-stock-alerts", notifier.Handle)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		log.Info().Msg("RABBITMQ_URL not set; stock events are not published")
	}

	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		rs, err := storage.NewRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rs.Close()
		limiterStorage = rs
	}

	app := server.New(server.Options{
		AuthService:    authService,
		ProductService: services.NewProductService(st.products, st.txs, publisher),
		Logger:         log,
		LoginRateLimit: cfg.LoginRateLimit,
		LimiterStorage: limiterStorage,
		StaticDir:      cfg.StaticDir,
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.Port).Msg("starting server")
		return app.Listen(cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return err
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}

func alertSender(cfg *config.Config, log *logger.Logger) notifications.Sender {
	if !cfg.MailEnabled() {
		return notifications.NewLogSender(log)
	}
	return notifications.NewMailer(notifications.MailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		To:       cfg.AlertEmail,
	})
}

func runSeedAdmin(ctx context.Context, out io.Writer, username, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	if username == "" {
		username = cfg.AdminUsername
	}
	if password == "" {
		password = cfg.AdminPassword
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	created, err := services.NewAuthService(st.users, cfg.JWTSecret).EnsureDefaultAdmin(ctx, username, password)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "admin %q created\n", username)
	} else {
		fmt.Fprintln(out, "an admin already exists; nothing to do")
	}
	return nil
}
