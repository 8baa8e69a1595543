package service

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/entity"
)

func checkSolution(t *testing.T, ch entity.Challenge, sol entity.Solution) {
	t.Helper()

	ok, hashHex := Evaluate(ch.Salt, sol.Attempt, ch.Difficulty)
	if !ok {
		t.Fatalf("attempt %q does not meet difficulty %d", sol.Attempt, ch.Difficulty)
	}
	if hashHex != sol.Hash {
		t.Fatalf("reported hash %s; recomputed %s", sol.Hash, hashHex)
	}
	sum, err := hex.DecodeString(sol.Hash)
	if err != nil || len(sol.Hash) != 64 {
		t.Fatalf("hash %q is not 64 hex chars (err=%v)", sol.Hash, err)
	}
	if got := LeadingZeroBits(sum); got < ch.Difficulty {
		t.Fatalf("leading zero bits = %d; want >= %d", got, ch.Difficulty)
	}
}

func TestSolve_MeetsDifficulty(t *testing.T) {
	t.Parallel()

	for _, d := range []int{0, 1, 4, 8, 12, 16} {
		d := d
		t.Run(FormatAttempt(float64(d)), func(t *testing.T) {
			t.Parallel()
			ch := entity.Challenge{Salt: "salt-" + FormatAttempt(float64(d)), Difficulty: d}
			sol, err := NewSolver(WithWorkers(4)).Solve(context.Background(), ch)
			if err != nil {
				t.Fatalf("Solve() error: %v", err)
			}
			checkSolution(t, ch, sol)
		})
	}
}

func TestSolve_EndToEndScenario(t *testing.T) {
	t.Parallel()

	ch, err := mustExtractor(t).Extract(`<script>window.sssg_challenge("abc123", 8, 5000);</script>`)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if ch.Salt != "abc123" || ch.Difficulty != 8 {
		t.Fatalf("Extract() = %+v; want salt abc123 difficulty 8", ch)
	}

	sol, err := NewSolver().Solve(context.Background(), ch)
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	checkSolution(t, ch, sol)

	if err := NewIssuer().Verify(ch, sol); err != nil {
		t.Fatalf("issuer rejected solver output: %v", err)
	}
}

func TestSolve_AttemptTextFollowsSeed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		seed float64
		want string
	}{
		{1419766378392277.5, "1419766378392277.5"},
		{5, "5"},
		{0.25, "0.25"},
	}
	for _, tc := range cases {
		seed := tc.seed
		s := NewSolver(WithWorkers(1), WithSeed(func() float64 { return seed }))
		sol, err := s.Solve(context.Background(), entity.Challenge{Salt: "s", Difficulty: 0})
		if err != nil {
			t.Fatalf("Solve() error: %v", err)
		}
		if sol.Attempt != tc.want {
			t.Fatalf("attempt = %q; want %q", sol.Attempt, tc.want)
		}
	}
}

func TestLanes_PartitionIntegerOffsets(t *testing.T) {
	t.Parallel()

	const seed = 1_000_000
	const perLane = 257

	for _, workers := range []int{1, 2, 3, 7, 16} {
		owner := make(map[float64]int)
		for w := 0; w < workers; w++ {
			l := newLane(seed, w, workers)
			for i := 0; i < perLane; i++ {
				v := l.take()
				if prev, dup := owner[v]; dup {
					t.Fatalf("W=%d: %v produced by workers %d and %d", workers, v, prev, w)
				}
				owner[v] = w
			}
		}
		for off := 0; off < workers*perLane; off++ {
			if _, ok := owner[float64(seed+off)]; !ok {
				t.Fatalf("W=%d: offset %d not covered", workers, off)
			}
		}
		if len(owner) != workers*perLane {
			t.Fatalf("W=%d: %d values; want %d", workers, len(owner), workers*perLane)
		}
	}
}

func TestRandomSeed_LeavesLaneHeadroom(t *testing.T) {
	t.Parallel()

	for i := 0; i < 1000; i++ {
		v := RandomSeed()
		if v < 0 || v >= seedSpan-seedHeadroom {
			t.Fatalf("RandomSeed() = %v; want [0, %v)", v, float64(seedSpan-seedHeadroom))
		}
	}
}

func TestLanes_DisjointAtTopOfSeedRange(t *testing.T) {
	t.Parallel()

	const seed = seedSpan - seedHeadroom - 0.5
	const workers = 4
	const perLane = 1000

	owner := make(map[float64]int)
	for w := 0; w < workers; w++ {
		l := newLane(seed, w, workers)
		for i := 0; i < perLane; i++ {
			v := l.take()
			if want := seed + float64(w+i*workers); v != want {
				t.Fatalf("worker %d step %d = %v; want %v", w, i, v, want)
			}
			if prev, dup := owner[v]; dup {
				t.Fatalf("%v produced by workers %d and %d", v, prev, w)
			}
			owner[v] = w
		}
	}
}

func TestWork_SingleWinnerAtDifficultyZero(t *testing.T) {
	t.Parallel()

	const workers = 8
	s := NewSolver(WithWorkers(workers), WithCheckInterval(1))
	ch := entity.Challenge{Salt: "race", Difficulty: 0}

	for run := 0; run < 200; run++ {
		var solved atomic.Bool
		// room for every worker, so a second send would be observable
		results := make(chan entity.Solution, workers)

		var wg sync.WaitGroup
		start := make(chan struct{})
		for w := 0; w < workers; w++ {
			l := newLane(float64(run*workers), w, workers)
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				s.work(&l, ch, &solved, results)
			}()
		}
		close(start)
		wg.Wait()
		close(results)

		n := 0
		for range results {
			n++
		}
		if n != 1 {
			t.Fatalf("run %d: %d solutions published; want exactly 1", run, n)
		}
	}
}

func TestSolve_RepeatedDifficultyZero(t *testing.T) {
	t.Parallel()

	s := NewSolver(WithWorkers(8))
	for run := 0; run < 100; run++ {
		sol, err := s.Solve(context.Background(), entity.Challenge{Salt: "z", Difficulty: 0})
		if err != nil {
			t.Fatalf("run %d: Solve() error: %v", run, err)
		}
		if sol.Attempt == "" || len(sol.Hash) != 64 {
			t.Fatalf("run %d: incomplete solution %+v", run, sol)
		}
	}
}

func TestSolve_NoWorkersIsSearchFailed(t *testing.T) {
	t.Parallel()

	s := NewSolver()
	s.workers = 0

	_, err := s.Solve(context.Background(), entity.Challenge{Salt: "s", Difficulty: 0})
	if !errors.Is(err, ErrSearchFailed) {
		t.Fatalf("Solve() error = %v; want ErrSearchFailed", err)
	}
}

func TestSolve_InvalidDifficulty(t *testing.T) {
	t.Parallel()

	for _, d := range []int{-1, 33} {
		_, err := NewSolver().Solve(context.Background(), entity.Challenge{Salt: "s", Difficulty: d})
		if !errors.Is(err, ErrInvalidDifficulty) {
			t.Fatalf("difficulty %d: error = %v; want ErrInvalidDifficulty", d, err)
		}
	}
}

func TestSolve_StopsOnContextDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// 2^-32 per attempt: a hit inside 50ms is practically impossible.
	start := time.Now()
	_, err := NewSolver(WithWorkers(2)).Solve(ctx, entity.Challenge{Salt: "slow", Difficulty: 32})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Solve() error = %v; want context.DeadlineExceeded", err)
	}
	if el := time.Since(start); el > 2*time.Second {
		t.Fatalf("Solve() returned after %v; want prompt return", el)
	}
}
