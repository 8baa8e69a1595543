package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/docker/go-units"
	"golang.org/x/net/publicsuffix"

	"github.com/dayanaadylkhanova/sssg-clearance/internal/adapter/profile"
)

const (
	DefaultAPIPrefix = "/.sssg/api"
	defaultMaxBody   = 8 << 20
)

type Options struct {
	Target  *url.URL
	Profile profile.Profile
	// UserAgent overrides Profile.UserAgent when set.
	UserAgent string
	Timeout   time.Duration
	MaxBody   int64
	APIPrefix string
}

// Client talks to one gated site. Cookies set by the gate are kept in the
// client's jar, so later page fetches carry the clearance.
type Client struct {
	log       *slog.Logger
	http      *http.Client
	target    *url.URL
	headers   http.Header
	maxBody   int64
	apiPrefix string
}

func NewClient(log *slog.Logger, opts Options) (*Client, error) {
	if opts.Target == nil || opts.Target.Scheme == "" || opts.Target.Host == "" {
		return nil, errors.New("target must be an absolute URL")
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = defaultMaxBody
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = DefaultAPIPrefix
	}
	return &Client{
		log:       log,
		http:      &http.Client{Jar: jar, Timeout: opts.Timeout},
		target:    opts.Target,
		headers:   baseHeaders(opts),
		maxBody:   opts.MaxBody,
		apiPrefix: strings.TrimRight(opts.APIPrefix, "/"),
	}, nil
}

func origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

func baseHeaders(opts Options) http.Header {
	p := opts.Profile
	ua := p.UserAgent
	if opts.UserAgent != "" {
		ua = opts.UserAgent
	}
	lang := p.AcceptLanguage
	if lang == "" {
		lang = "en-US,en;q=0.5"
	}

	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", lang)
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sec-GPC", "1")
	h.Set("Origin", origin(opts.Target))
	h.Set("Referer", opts.Target.String())
	if ua != "" {
		h.Set("User-Agent", ua)
	}
	if p.SecCHUA != "" {
		h.Set("Sec-CH-UA", p.SecCHUA)
		h.Set("Sec-CH-UA-Mobile", p.SecCHUAMobile)
		h.Set("Sec-CH-UA-Platform", p.SecCHUAPlatform)
	}
	return h
}

// FetchPage GETs the target URL and returns the body as text.
func (c *Client) FetchPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.target.String(), nil)
	if err != nil {
		return "", &Error{Op: "fetch page", Err: err}
	}
	body, _, err := c.do("fetch page", req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Answer submits the solved attempt and returns the token the gate issues
// for it.
func (c *Client) Answer(ctx context.Context, salt, attempt string) (string, error) {
	return c.postForAuth(ctx, "answer", url.Values{"a": {salt}, "b": {attempt}})
}

// Check exchanges the answer token for the final clearance token.
func (c *Client) Check(ctx context.Context, token string) (string, error) {
	return c.postForAuth(ctx, "check", url.Values{"f": {token}})
}

type authResponse struct {
	Auth string `json:"auth"`
}

func (c *Client) endpoint(name string) string {
	return origin(c.target) + c.apiPrefix + "/" + name
}

func (c *Client) postForAuth(ctx context.Context, op string, form url.Values) (string, error) {
	endpoint := c.endpoint(op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &Error{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.log.Debug("api request", "op", op, "url", endpoint, "form", form.Encode())

	body, status, err := c.do(op, req)
	if err != nil {
		return "", err
	}
	c.log.Debug("api response", "op", op, "body", string(body))

	var ar authResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return "", &Error{Op: op, Status: status, Body: string(body), Err: fmt.Errorf("decode response: %w", err)}
	}
	if ar.Auth == "" {
		return "", &Error{Op: op, Status: status, Body: string(body), Err: ErrMissingAuth}
	}
	return ar.Auth, nil
}

func (c *Client) do(op string, req *http.Request) ([]byte, int, error) {
	for k, v := range c.headers {
		if req.Header.Get(k) == "" {
			req.Header[k] = v
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.log.Info("request timing", "op", op, "url", req.URL.String(), "took", time.Since(start).String())
	if err != nil {
		return nil, 0, &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	// one byte past the limit tells a full body from a cut one
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, resp.StatusCode, &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.maxBody {
		c.log.Warn("response too large",
			"op", op,
			"status", resp.StatusCode,
			"limit", units.HumanSize(float64(c.maxBody)),
		)
		return nil, resp.StatusCode, &Error{Op: op, Status: resp.StatusCode, Err: ErrBodyTooLarge}
	}
	c.log.Debug("response received",
		"op", op,
		"status", resp.StatusCode,
		"size", units.HumanSize(float64(len(body))),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &Error{Op: op, Status: resp.StatusCode, Body: string(body), Err: ErrStatus}
	}
	return body, resp.StatusCode, nil
}
