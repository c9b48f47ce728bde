package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sterry/blog-api/internal/auth"
	"github.com/sterry/blog-api/internal/config"
	"github.com/sterry/blog-api/internal/httpserver"
	"github.com/sterry/blog-api/internal/store"
)

// stores is the pair of repositories handed to the server.
type stores struct {
	posts store.PostStore
	users store.UserStore
	close func() error
}

func main() {
	_ = godotenv.Load()

	useradd := len(os.Args) > 1 && os.Args[1] == "useradd"
	load := config.Load
	if useradd {
		load = config.LoadStorage
	}
	cfg, err := load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if useradd {
		if err := userAddCmd(ctx, cfg, os.Args[2:]); err != nil {
			log.Fatal().Err(err).Msg("useradd failed")
		}
		return
	}
	if err := serve(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// serve opens the database, seeds the optional user and runs the HTTP server
// until ctx is cancelled.
func serve(ctx context.Context, cfg config.Config) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.DB.Driver, err)
	}
	defer func() { _ = st.close() }()

	if err := seedUser(ctx, st.users); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	tokens := auth.NewTokens([]byte(cfg.JWT.Secret), cfg.JWT.TTL)
	srv := httpserver.New(st.posts, st.users, tokens, httpserver.Options{
		Logger:         log.Logger,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	log.Info().Str("port", cfg.Port).Str("driver", cfg.DB.Driver).Msg("starting blog-api")
	return srv.Start(ctx, ":"+cfg.Port)
}

func setupLogger(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.DB.Driver == "memory" {
		mem := store.NewMemory()
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return stores{posts: mem, users: mem, close: func() error { return nil }}, nil
	}

	db, err := openDB(ctx, cfg.DB.Driver, cfg.DB.URL)
	if err != nil {
		return stores{}, err
	}
	if err := ensureSchema(ctx, db, cfg.DB.Driver); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	sqlStore := store.NewSQL(db, store.Placeholder(cfg.DB.Driver))
	return stores{posts: sqlStore, users: sqlStore, close: db.Close}, nil
}

// seedUser creates SEED_USER_EMAIL / SEED_USER_PASSWORD if both are set and
// the user does not exist yet.
func seedUser(ctx context.Context, users store.UserStore) error {
	email, pw := os.Getenv("SEED_USER_EMAIL"), os.Getenv("SEED_USER_PASSWORD")
	if email == "" || pw == "" {
		return nil
	}
	u, err := addUser(ctx, users, email, pw)
	if errors.Is(err, store.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Int64("user", u.ID).Str("email", u.Email).Msg("seeded user")
	return nil
}
