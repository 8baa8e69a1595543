package app

import (
	"context"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/entity"
)

//go:generate mockgen -source=interfaces.go -destination=./app_mock.go -package=app

type Transport interface {
	FetchPage(ctx context.Context) (string, error)
	Answer(ctx context.Context, salt, attempt string) (string, error)
	Check(ctx context.Context, token string) (string, error)
}

type Extractor interface {
	Extract(page string) (entity.Challenge, error)
}

type Solver interface {
	Solve(ctx context.Context, ch entity.Challenge) (entity.Solution, error)
}
