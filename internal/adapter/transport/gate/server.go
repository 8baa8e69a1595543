package gate

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/entity"
)

const (
	APIPrefix       = "/.sssg/api"
	ClearanceCookie = "sssg_clearance"
)

type pending struct {
	ch      entity.Challenge
	expires time.Time
}

// Server emulates an sssg-protected site: unknown visitors get the challenge
// page, solved challenges are traded for a clearance cookie.
type Server struct {
	log          *slog.Logger
	addr         string
	difficulty   int
	ttl          time.Duration
	clearanceTTL time.Duration
	shutdownT    time.Duration
	pow          PoW
	content      string

	mu         sync.Mutex
	challenges map[string]pending
	tokens     map[string]time.Time
	now        func() time.Time
}

func NewServer(log *slog.Logger, addr string, difficulty int, ttl, shutdown time.Duration, pow PoW) *Server {
	return &Server{
		log:          log,
		addr:         addr,
		difficulty:   difficulty,
		ttl:          ttl,
		clearanceTTL: time.Hour,
		shutdownT:    shutdown,
		pow:          pow,
		content:      "<!DOCTYPE html><html><body><h1>You are through.</h1></body></html>",
		challenges:   make(map[string]pending),
		tokens:       make(map[string]time.Time),
		now:          time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+APIPrefix+"/answer", s.handleAnswer)
	mux.HandleFunc("POST "+APIPrefix+"/check", s.handleCheck)
	mux.HandleFunc("GET /", s.handlePage)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.log.Info("gate started", "addr", ln.Addr().String(), "difficulty", s.difficulty, "ttl", s.ttl.String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("shutdown: draining connections")
			sctx, cancel := context.WithTimeout(context.Background(), s.shutdownT)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				s.log.Warn("shutdown: force-close remaining connections", "err", err)
				_ = srv.Close()
			}
			return nil

		case <-sweep.C:
			s.sweep()

		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		}
	}
}

func (s *Server) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for salt, p := range s.challenges {
		if now.After(p.expires) {
			delete(s.challenges, salt)
		}
	}
	for tok, exp := range s.tokens {
		if now.After(exp) {
			delete(s.tokens, tok)
		}
	}
}

func (s *Server) cleared(r *http.Request) bool {
	c, err := r.Cookie(ClearanceCookie)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[c.Value]
	return ok && s.now().Before(exp)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if s.cleared(r) {
		_, _ = fmt.Fprint(w, s.content)
		return
	}

	ch, err := s.pow.NewChallenge(s.difficulty, s.ttl)
	if err != nil {
		s.log.Error("challenge create failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.mu.Lock()
	s.challenges[ch.Salt] = pending{ch: ch, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()

	s.log.Debug("challenge issued", "remote", r.RemoteAddr, "difficulty", ch.Difficulty)
	_, _ = fmt.Fprintf(w, challengePage, ch.Salt, ch.Difficulty, ch.Timeout.Milliseconds())
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	salt, attempt := r.PostFormValue("a"), r.PostFormValue("b")

	s.mu.Lock()
	p, ok := s.challenges[salt]
	delete(s.challenges, salt)
	s.mu.Unlock()

	if !ok || s.now().After(p.expires) {
		http.Error(w, "unknown or expired challenge", http.StatusForbidden)
		return
	}
	if err := s.pow.Verify(p.ch, entity.Solution{Attempt: attempt}); err != nil {
		s.log.Debug("pow failed", "remote", r.RemoteAddr, "reason", err.Error())
		http.Error(w, "pow verification failed", http.StatusForbidden)
		return
	}
	s.grant(w)
	s.log.Info("answer accepted", "remote", r.RemoteAddr)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	tok := r.PostFormValue("f")

	s.mu.Lock()
	exp, ok := s.tokens[tok]
	s.mu.Unlock()

	if tok == "" || !ok || s.now().After(exp) {
		http.Error(w, "invalid token", http.StatusForbidden)
		return
	}
	s.grant(w)
}

// grant mints a clearance token, stores it as a cookie and returns it as
// {"auth": token}.
func (s *Server) grant(w http.ResponseWriter) {
	b := make([]byte, 24)
	if _, err := crand.Read(b); err != nil {
		s.log.Error("token create failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	tok := hex.EncodeToString(b)
	exp := s.now().Add(s.clearanceTTL)

	s.mu.Lock()
	s.tokens[tok] = exp
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     ClearanceCookie,
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"auth": tok})
}

const challengePage = `<!DOCTYPE html>
<html id="sssg">
<head>
    <title>Checking your browser</title>
    <meta charset="utf-8">
</head>
<body>
    <noscript>Please enable JavaScript to continue.</noscript>
    <script src="/.sssg/challenge.js"></script>
    <script>
        window.sssg_challenge("%s", %d, %d);
    </script>
</body>
</html>
`
