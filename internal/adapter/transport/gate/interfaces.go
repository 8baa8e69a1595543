package gate

import (
	"time"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/entity"
)

//go:generate mockgen -source=interfaces.go -destination=./server_mock.go -package=gate

type PoW interface {
	NewChallenge(difficulty int, ttl time.Duration) (entity.Challenge, error)
	Verify(ch entity.Challenge, sol entity.Solution) error
}
