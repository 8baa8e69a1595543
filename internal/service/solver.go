package service

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/entity"
)

const DefaultCheckInterval = 10_000

// Solver races a fixed pool of workers to the first attempt that meets the
// challenge difficulty.
type Solver struct {
	workers       int
	checkInterval uint64
	seed          func() float64
}

type SolverOption func(*Solver)

// WithWorkers sets the pool size; n <= 0 keeps the GOMAXPROCS default.
func WithWorkers(n int) SolverOption {
	return func(s *Solver) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCheckInterval sets how many attempts a worker makes between looks at
// the shared stop flag.
func WithCheckInterval(n uint64) SolverOption {
	return func(s *Solver) {
		if n > 0 {
			s.checkInterval = n
		}
	}
}

// WithSeed replaces the source of the starting attempt.
func WithSeed(seed func() float64) SolverOption {
	return func(s *Solver) {
		if seed != nil {
			s.seed = seed
		}
	}
}

// NewSolver returns a Solver with GOMAXPROCS workers unless opts say otherwise.
func NewSolver(opts ...SolverOption) *Solver {
	s := &Solver{
		workers:       runtime.GOMAXPROCS(0),
		checkInterval: DefaultCheckInterval,
		seed:          RandomSeed,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Workers reports the pool size Solve will start.
func (s *Solver) Workers() int { return s.workers }

// lane is the arithmetic progression of attempts owned by one worker:
// seed+w, seed+w+W, seed+w+2W, ...
type lane struct {
	next   float64
	stride float64
}

func newLane(seed float64, worker, workers int) lane {
	return lane{next: seed + float64(worker), stride: float64(workers)}
}

func (l *lane) take() float64 {
	v := l.next
	l.next += l.stride
	return v
}

// Solve blocks until one worker finds an acceptable attempt or ctx is done.
// Exactly one solution is reported even if several workers succeed at once.
func (s *Solver) Solve(ctx context.Context, ch entity.Challenge) (entity.Solution, error) {
	if ch.Difficulty < 0 || ch.Difficulty > MaxDifficulty {
		return entity.Solution{}, fmt.Errorf("difficulty %d: %w", ch.Difficulty, ErrInvalidDifficulty)
	}

	var solved atomic.Bool
	results := make(chan entity.Solution, 1)
	seed := s.seed()

	var g errgroup.Group
	for w := 0; w < s.workers; w++ {
		l := newLane(seed, w, s.workers)
		g.Go(func() error {
			s.work(&l, ch, &solved, results)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	select {
	case sol, ok := <-results:
		if !ok {
			return entity.Solution{}, ErrSearchFailed
		}
		return sol, nil
	case <-ctx.Done():
		solved.Store(true)
		return entity.Solution{}, ctx.Err()
	}
}

func (s *Solver) work(l *lane, ch entity.Challenge, solved *atomic.Bool, results chan<- entity.Solution) {
	ev := newEvaluator(ch.Salt, ch.Difficulty)
	for i := uint64(0); ; i++ {
		if i%s.checkInterval == 0 && solved.Load() {
			return
		}
		attempt := FormatAttempt(l.take())
		if !ev.accept(attempt) {
			continue
		}
		if solved.CompareAndSwap(false, true) {
			results <- entity.Solution{Attempt: attempt, Hash: ev.digestHex()}
		}
		return
	}
}
