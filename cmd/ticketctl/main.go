// Command ticketctl manages your tickets from a terminal. It talks to the
// document store directly and resumes the last sign-in from Redis.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/service"
	"github.com/spec-kit/ticket-tracker/internal/session"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var profile string
	global := pflag.NewFlagSet("ticketctl", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.StringVar(&profile, "profile", "", "session profile to resume (default: SESSION_PROFILE)")
	global.Usage = func() { printUsage(global) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		printUsage(global)
		return pflag.ErrHelp
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if profile == "" {
		profile = cfg.Session.Profile
	}

	logger, err := observability.NewCLILogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := persistence.OpenStore(ctx, *cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	var sessions service.SessionStore
	if cfg.Session.Enabled {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		sessions = session.NewStore(redis.Client, cfg.Session.KeyPrefix, cfg.Session.TTL(), logger)
	} else {
		logger.Warn("SESSION_ENABLED=false; sign-in will not be remembered between commands")
	}

	cli := &CLI{
		Auth: service.NewAuthService(cfg.Auth, service.AuthDependencies{
			UserRepo: repository.NewUserRepository(backends.Store),
			Sessions: sessions,
			Logger:   logger.Named("auth"),
		}),
		Tickets: service.NewTicketService(repository.NewTicketRepository(backends.Store, logger.Named("tickets"))),
		Profile: profile,
		Out:     os.Stdout,
		Logger:  logger,
	}
	if err := cli.Run(ctx, global.Args()); err != nil {
		logger.Debug("command failed", zap.Error(err))
		return err
	}
	return nil
}

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `ticketctl: manage your support tickets.

Usage:
  ticketctl [--profile NAME] <command> [flags] [args]

Commands:
`)
	for _, cmd := range commands() {
		fmt.Fprintf(os.Stderr, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintf(os.Stderr, "\nGlobal flags:\n%s", flagSet.FlagUsages())
}
