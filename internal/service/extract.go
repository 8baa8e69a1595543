package service

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/entity"
)

// MaxDifficulty is the largest difficulty the evaluator can check: only the
// first 32 bits of the digest are examined.
const MaxDifficulty = 32

// Extractor finds the challenge call inside inline scripts of a page.
type Extractor struct {
	call *regexp.Regexp
}

// NewExtractor builds a matcher for calls shaped like
// namespace.function("salt", difficulty, timeout).
func NewExtractor(namespace, function string) (*Extractor, error) {
	if namespace == "" || function == "" {
		return nil, errors.New("namespace and function must be set")
	}
	expr := regexp.QuoteMeta(namespace) + `\.` + regexp.QuoteMeta(function) +
		`\s*\(\s*['"]([^'"]+)['"]\s*,\s*(\d+)\s*,\s*(\d+)\s*\)`
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile challenge pattern: %w", err)
	}
	return &Extractor{call: re}, nil
}

// Extract returns the parameters of the first matching call, scanning script
// blocks in document order.
func (e *Extractor) Extract(page string) (entity.Challenge, error) {
	z := html.NewTokenizer(strings.NewReader(page))
	inScript := false
	var script strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return entity.Challenge{}, fmt.Errorf("tokenize page: %w", err)
			}
			// unterminated script at EOF still counts
			if inScript {
				if ch, ok, err := e.match(script.String()); ok || err != nil {
					return ch, err
				}
			}
			return entity.Challenge{}, ErrChallengeNotFound

		case html.StartTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Script {
				inScript = true
				script.Reset()
			}

		case html.TextToken:
			if inScript {
				script.Write(z.Text())
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if inScript && atom.Lookup(name) == atom.Script {
				inScript = false
				if ch, ok, err := e.match(script.String()); ok || err != nil {
					return ch, err
				}
			}
		}
	}
}

func (e *Extractor) match(script string) (entity.Challenge, bool, error) {
	m := e.call.FindStringSubmatch(script)
	if m == nil {
		return entity.Challenge{}, false, nil
	}

	d, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil || d > MaxDifficulty {
		return entity.Challenge{}, true, &ExtractionError{Param: "difficulty", Value: m[2], Err: ErrInvalidDifficulty}
	}

	ch := entity.Challenge{Salt: m[1], Difficulty: int(d)}
	if ms, err := strconv.ParseInt(m[3], 10, 64); err == nil && ms <= math.MaxInt64/int64(time.Millisecond) {
		ch.Timeout = time.Duration(ms) * time.Millisecond
	}
	return ch, true, nil
}
