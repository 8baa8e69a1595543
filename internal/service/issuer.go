package service

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/entity"
)

// Issuer is the gate side of the protocol: it mints challenges and checks
// submitted attempts by recomputing the digest from the submitted text.
type Issuer struct{}

func NewIssuer() *Issuer { return &Issuer{} }

func (i *Issuer) NewChallenge(difficulty int, ttl time.Duration) (entity.Challenge, error) {
	if difficulty < 0 || difficulty > MaxDifficulty {
		return entity.Challenge{}, fmt.Errorf("difficulty %d: %w", difficulty, ErrInvalidDifficulty)
	}
	salt := make([]byte, 16)
	if _, err := crand.Read(salt); err != nil {
		return entity.Challenge{}, fmt.Errorf("read salt: %w", err)
	}
	return entity.Challenge{
		Salt:       hex.EncodeToString(salt),
		Difficulty: difficulty,
		Timeout:    ttl,
	}, nil
}

func (i *Issuer) Verify(ch entity.Challenge, sol entity.Solution) error {
	if ch.Salt == "" {
		return errors.New("empty salt")
	}
	if ch.Difficulty < 0 || ch.Difficulty > MaxDifficulty {
		return ErrInvalidDifficulty
	}
	if sol.Attempt == "" {
		return errors.New("empty attempt")
	}
	if ok, _ := Evaluate(ch.Salt, sol.Attempt, ch.Difficulty); !ok {
		return errors.New("pow invalid")
	}
	return nil
}
