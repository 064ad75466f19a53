package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/polybooks/polybooks/internal/config"
	"github.com/polybooks/polybooks/internal/log"
	"github.com/polybooks/polybooks/internal/repository"
	"github.com/polybooks/polybooks/internal/service"
	"github.com/polybooks/polybooks/internal/storage/db"
)

// Bootstraps an administrator account so the API can be used before any
// user has registered.
func main() {
	if err := run(); err != nil {
		fmt.Printf("error creating admin user: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		username = flag.String("username", "admin", "admin username")
		email    = flag.String("email", "admin@example.com", "admin email")
		fullName = flag.String("full-name", "Administrator", "admin full name")
		password = flag.String("password", "", "admin password (required)")
	)
	flag.Parse()

	if *password == "" {
		return fmt.Errorf("password is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Auth     config.Auth
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)
	authService := service.NewAuthService(cfg.Auth, repository.NewUserRepository(dbClient))

	user, err := authService.Register(ctx, service.RegisterParams{
		Username: *username,
		Email:    *email,
		FullName: *fullName,
		Password: *password,
		Roles:    []string{"admin", "user"},
	})
	if err != nil {
		return fmt.Errorf("register admin user: %w", err)
	}

	logger.InfoContext(ctx, "admin user created")
	fmt.Printf("created admin user %s (%s)\n", user.Username, user.ID)

	return nil
}
