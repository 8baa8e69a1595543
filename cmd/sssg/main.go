package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/adapter/profile"
	"github.com/dayanaadylkhanova/sssg-clearance/internal/adapter/transport/web"
	"github.com/dayanaadylkhanova/sssg-clearance/internal/app"
	"github.com/dayanaadylkhanova/sssg-clearance/internal/service"
	"github.com/dayanaadylkhanova/sssg-clearance/pkg/config"
	"github.com/dayanaadylkhanova/sssg-clearance/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	html := flag.Bool("html", false, "Print the page HTML fetched with the clearance instead of the token")
	check := flag.Bool("check", false, "Exchange the answer token once more through the check endpoint")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-html] [-check] URL\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	target, err := url.Parse(flag.Arg(0))
	if err != nil || target.Scheme == "" || target.Host == "" {
		fmt.Fprintf(os.Stderr, "invalid URL %q: must be absolute\n", flag.Arg(0))
		return 2
	}

	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	log := logger.NewJSON(os.Stderr, logger.LevelFromEnv(cfg.LogLevel))

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))
	defer undo()
	if err != nil {
		log.Warn("set GOMAXPROCS", "err", err)
	}

	client, err := web.NewClient(log, web.Options{
		Target:    target,
		Profile:   profile.NewStatic().Random(),
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.HTTPTimeout,
		MaxBody:   int64(cfg.MaxBodySize),
		APIPrefix: cfg.APIPrefix,
	})
	if err != nil {
		log.Error("init transport", "err", err)
		return 1
	}
	extractor, err := service.NewExtractor(cfg.Namespace, cfg.Function)
	if err != nil {
		log.Error("init extractor", "err", err)
		return 1
	}
	solver := service.NewSolver(
		service.WithWorkers(cfg.Workers),
		service.WithCheckInterval(cfg.CheckInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.SolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.SolveTimeout)
		defer cancel()
	}

	if !*html {
		fmt.Printf("Target URL: %s\n", target)
	}
	log.Info("starting",
		"target", target.String(),
		"workers", solver.Workers(),
		"max_body", cfg.MaxBodySize.String())

	res, err := app.New(log, client, extractor, solver).Run(ctx, app.Options{Check: *check, FetchHTML: *html})
	if err != nil {
		log.Error("clearance failed", slog.Any("err", err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if *html {
		fmt.Println(res.Page)
		return 0
	}
	if res.Clearance.Checked {
		fmt.Printf("\nSuccessfully obtained sssg_clearance token (from /check): %s\n", res.Clearance.Token)
	} else {
		fmt.Printf("\nSSSG Clearance obtained (from /answer): %s\n", res.Clearance.Token)
	}
	return 0
}
