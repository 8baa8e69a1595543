package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/entity"
)

// Options selects the optional stages of a clearance run.
type Options struct {
	// Check trades the answer token once more through the check endpoint.
	Check bool
	// FetchHTML fetches the target again with the clearance cookie set.
	FetchHTML bool
}

type Result struct {
	Challenge entity.Challenge
	Solution  entity.Solution
	Clearance entity.Clearance
	Page      string
}

type App struct {
	log       *slog.Logger
	transport Transport
	extractor Extractor
	solver    Solver
}

func New(log *slog.Logger, transport Transport, extractor Extractor, solver Solver) *App {
	return &App{log: log, transport: transport, extractor: extractor, solver: solver}
}

// Run drives one pass of fetch, extract, solve and answer. Any failure ends
// the run; nothing is retried.
func (a *App) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	page, err := a.transport.FetchPage(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch page: %w", err)
	}

	res.Challenge, err = a.extractor.Extract(page)
	if err != nil {
		return Result{}, fmt.Errorf("extract challenge: %w", err)
	}
	a.log.Info("challenge found",
		"difficulty", res.Challenge.Difficulty,
		"timeout", res.Challenge.Timeout.String())

	start := time.Now()
	res.Solution, err = a.solver.Solve(ctx, res.Challenge)
	if err != nil {
		return Result{}, fmt.Errorf("solve: %w", err)
	}
	a.log.Info("solution found",
		"attempt", res.Solution.Attempt,
		"hash", res.Solution.Hash,
		"took", time.Since(start).String())

	token, err := a.transport.Answer(ctx, res.Challenge.Salt, res.Solution.Attempt)
	if err != nil {
		return Result{}, fmt.Errorf("answer: %w", err)
	}
	res.Clearance = entity.Clearance{Token: token}

	if opts.Check {
		token, err = a.transport.Check(ctx, token)
		if err != nil {
			return Result{}, fmt.Errorf("check: %w", err)
		}
		res.Clearance = entity.Clearance{Token: token, Checked: true}
	}

	if opts.FetchHTML {
		res.Page, err = a.transport.FetchPage(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("fetch gated page: %w", err)
		}
	}
	return res, nil
}
