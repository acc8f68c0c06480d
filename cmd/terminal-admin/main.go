package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"terminal-portal/internal/config"
	"terminal-portal/internal/db"
	"terminal-portal/internal/logger"
	"terminal-portal/internal/model"
	"terminal-portal/internal/repository"
	"terminal-portal/internal/service"
)

const usage = `usage: terminal-admin create-user -username NAME -password PASS [-rol admin|operador] [-rut RUT]`

func main() {
	if len(os.Args) < 2 || os.Args[1] != "create-user" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "initial password, at least 6 characters")
	rut := fs.String("rut", "", "national id")
	role := fs.String("rol", string(model.UserRoleAdmin), "admin or operador")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment, cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	users := service.NewUserService(repository.NewUserRepository(database))
	user, err := users.Bootstrap(ctx, service.UserInput{
		Username: *username,
		Rut:      *rut,
		Password: *password,
		Rol:      *role,
	})
	if err != nil {
		log.Error().Err(err).Str("username", *username).Msg("create user failed")
		cancel()
		os.Exit(1)
	}
	log.Info().Int64("id", user.ID).Str("username", user.Username).Str("rol", string(user.Rol)).Msg("user created")
}
