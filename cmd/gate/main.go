package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/adapter/transport/gate"
	"github.com/dayanaadylkhanova/sssg-clearance/internal/service"
	"github.com/dayanaadylkhanova/sssg-clearance/pkg/config"
	"github.com/dayanaadylkhanova/sssg-clearance/pkg/logger"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.NewJSON(os.Stdout, logger.LevelFromEnv(cfg.LogLevel))

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))
	defer undo()
	if err != nil {
		log.Warn("set GOMAXPROCS", "err", err)
	}

	srv := gate.NewServer(log, cfg.ListenAddr, cfg.PoWDifficulty, cfg.PoWTTL, cfg.ShutdownWait, service.NewIssuer())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error("gate stopped with error", slog.Any("err", err))
		stop()
		os.Exit(1)
	}
}
