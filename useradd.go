package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sterry/blog-api/internal/auth"
	"github.com/sterry/blog-api/internal/config"
	"github.com/sterry/blog-api/internal/model"
	"github.com/sterry/blog-api/internal/store"
)

// userAddCmd opens the configured database and runs useradd against it.
func userAddCmd(ctx context.Context, cfg config.Config, args []string) error {
	if cfg.DB.Driver == "memory" {
		return errors.New("useradd needs a persistent DB_DRIVER")
	}
	st, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.DB.Driver, err)
	}
	defer func() { _ = st.close() }()

	return runUserAdd(ctx, st.users, args)
}

// runUserAdd implements `blog-api useradd -email E -password P`. Users are
// never created over HTTP.
func runUserAdd(ctx context.Context, users store.UserStore, args []string) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	email := fs.String("email", "", "login email (unique)")
	password := fs.String("password", "", "plain-text password, stored as a bcrypt hash")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := addUser(ctx, users, *email, *password)
	if err != nil {
		return err
	}
	log.Info().Int64("user", u.ID).Str("email", u.Email).Msg("user created")
	return nil
}

func addUser(ctx context.Context, users store.UserStore, email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.User{}, errors.New("email and password are required")
	}
	h, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := users.CreateUser(ctx, email, h)
	if err != nil {
		return model.User{}, fmt.Errorf("create user %s: %w", email, err)
	}
	return u, nil
}
