package service

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"io"
	"math/bits"
)

// LeadingZeroBits counts zero bits at the top of the first digest word.
// Only four bytes are examined, so the result is at most 32.
func LeadingZeroBits(sum []byte) int {
	if len(sum) < 4 {
		return 0
	}
	return bits.LeadingZeros32(binary.BigEndian.Uint32(sum[:4]))
}

// Evaluate hashes salt||attempt and reports whether it meets difficulty,
// along with the lowercase hex digest.
func Evaluate(salt, attempt string, difficulty int) (bool, string) {
	ev := newEvaluator(salt, difficulty)
	ok := ev.accept(attempt)
	return ok, ev.digestHex()
}

// evaluator keeps one hasher per worker so the hot loop does not allocate.
type evaluator struct {
	h          hash.Hash
	salt       string
	difficulty int
	sum        []byte
}

func newEvaluator(salt string, difficulty int) *evaluator {
	return &evaluator{
		h:          sha256.New(),
		salt:       salt,
		difficulty: difficulty,
		sum:        make([]byte, 0, sha256.Size),
	}
}

func (ev *evaluator) accept(attempt string) bool {
	ev.h.Reset()
	_, _ = io.WriteString(ev.h, ev.salt)
	_, _ = io.WriteString(ev.h, attempt)
	ev.sum = ev.h.Sum(ev.sum[:0])
	return LeadingZeroBits(ev.sum) >= ev.difficulty
}

// digestHex returns the digest of the last accept call.
func (ev *evaluator) digestHex() string {
	return hex.EncodeToString(ev.sum)
}
