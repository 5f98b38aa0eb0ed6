package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-userauth"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

func main() {
	cfg := LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DatabaseDSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("revocation store unreachable: %v", err)
	}

	repo := userauth.NewRepositoryManager(db)
	repo.MustValidate()

	codec := userauth.NewTokenCodec([]byte(cfg.GetSigningKey()), cfg.GetSigningMethod(), nil)
	revoker := userauth.NewRedisRevocationStore(redisClient, nil)

	var notifier userauth.Notifier = userauth.LogNotifier{}
	if cfg.SMTPAddr != "" {
		notifier = userauth.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPFrom, nil)
	}

	auther := userauth.NewAuthenticator(repo, codec, revoker, cfg)

	controller := userauth.NewAuthController(
		userauth.WithAuther(auther),
		userauth.WithHandlers(
			userauth.NewRegisterUserHandler(repo),
			userauth.NewRequestMissionTokenHandler(repo, codec, cfg.GetMissionTokenLifetime()).
				WithNotifier(notifier),
			userauth.NewConfirmUserHandler(repo, codec, revoker),
			userauth.NewRecoverPasswordHandler(repo, codec, revoker),
			userauth.NewDeleteUserHandler(repo, codec, revoker),
		),
	)

	app := fiber.New()
	userauth.RegisterAuthRoutes(app, controller)

	reaper := userauth.NewReaper(repo, cfg)
	go reaper.Run(ctx)

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	WaitExitSignal()
	cancel()

	if err := app.Shutdown(); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
