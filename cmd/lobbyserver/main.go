package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/partylobby/internal/admin"
	"github.com/udisondev/partylobby/internal/config"
	"github.com/udisondev/partylobby/internal/db"
	"github.com/udisondev/partylobby/internal/game/party"
	"github.com/udisondev/partylobby/internal/lobby"
	"github.com/udisondev/partylobby/internal/logging"
	"github.com/udisondev/partylobby/internal/model"
	"github.com/udisondev/partylobby/internal/social"
)

const LobbyConfigPath = "config/lobby.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := LobbyConfigPath
	if p := os.Getenv("PARTYLOBBY_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadLobby(cfgPath)
	if err != nil {
		return fmt.Errorf("loading lobby config: %w", err)
	}

	logging.Setup(os.Stdout, cfg.LogLevel)

	slog.Info("partylobby starting",
		"log_level", cfg.LogLevel,
		"bind", cfg.BindAddress,
		"port", cfg.Port,
		"invite_timeout", cfg.Party.InviteTimeout)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, database.Pool()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	players := db.NewPlayerRepository(database.Pool())
	book := social.NewBook(db.NewRelationRepository(database.Pool()))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := party.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("registering party metrics: %w", err)
	}

	clients := lobby.NewClientManager()
	parties := party.NewCoordinator(clients, book, cfg.Party.InviteTimeout)
	parties.SetMetrics(metrics)
	parties.SetReadyListener(func(partyID int64, snap model.UpdateParty) {
		slog.Info("party ready for matchmaking",
			"partyID", partyID,
			"owner", snap.Owner,
			"members", snap.MemberIDs())
	})

	server := lobby.NewServer(cfg, clients, parties, book, players)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Run(gctx); err != nil {
			return fmt.Errorf("lobby server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := parties.RunSweepLoop(gctx, cfg.Party.SweepInterval)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("invite sweep loop: %w", err)
		}
		return nil
	})

	if cfg.Admin.Enabled() {
		adminServer := admin.NewServer(admin.Deps{
			Parties:  parties,
			Online:   clients,
			Blocks:   book,
			Accounts: players,
			DB:       database,
			Gatherer: reg,
		})
		g.Go(func() error {
			if err := adminServer.Run(gctx, cfg.Admin.Addr()); err != nil {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("partylobby stopped")
	return nil
}
