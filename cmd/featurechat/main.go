package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/esnunes/featurechat/internal/config"
	"github.com/esnunes/featurechat/internal/db"
	"github.com/esnunes/featurechat/internal/interview"
	"github.com/esnunes/featurechat/internal/logger"
	"github.com/esnunes/featurechat/internal/mcpserver"
	"github.com/esnunes/featurechat/internal/registry"
	"github.com/esnunes/featurechat/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	engine := interview.NewEngine(store, log)

	mcpSrv, err := mcpserver.New(ctx, engine, log)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	switch cfg.Transport {
	case config.TransportHTTP:
		srv := server.New(engine, mcpSrv.HTTPHandler(), log)
		if err := srv.Listen(cfg.Addr); err != nil {
			return err
		}
		g.Go(func() error { return srv.Serve(ctx) })
	default:
		log.Info("serving MCP over stdio", "server", mcpserver.Name, "version", mcpserver.Version)
		g.Go(func() error { return mcpSrv.ServeStdio(ctx, os.Stdin, os.Stdout) })
	}

	return g.Wait()
}

func openStore(cfg config.Config, log *logger.Logger) (interview.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		database, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using sqlite storage", "path", cfg.SQLitePath)
		return db.NewQueries(database), func() { database.Close() }, nil
	default:
		log.Info("using in-memory storage")
		return registry.New(), func() {}, nil
	}
}
