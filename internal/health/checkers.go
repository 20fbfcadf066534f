package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/config"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/session"
	"github.com/felixgeelhaar/rezai-admin/internal/upload"
)

// ConfigChecker validates the resolved configuration.
type ConfigChecker struct {
	cfg *config.Config
}

// NewConfigChecker creates a checker for cfg.
func NewConfigChecker(cfg *config.Config) *ConfigChecker {
	return &ConfigChecker{cfg: cfg}
}

func (c *ConfigChecker) Name() string { return "config" }

func (c *ConfigChecker) Check(ctx context.Context) *Result {
	if err := c.cfg.Validate(); err != nil {
		return Unhealthy(errors.UserMessage(err))
	}
	r := Healthy("configuration is valid").WithDetail("api", c.cfg.API.BaseURL)
	if c.cfg.File != "" {
		r.WithDetail("file", c.cfg.File)
	}
	return r
}

// APIChecker verifies the admin API answers at all. Any HTTP response
// counts as reachable.
type APIChecker struct {
	baseURL string
	client  *http.Client
}

// NewAPIChecker creates a checker for baseURL. hc may be nil.
func NewAPIChecker(baseURL string, hc *http.Client) *APIChecker {
	if hc == nil {
		hc = &http.Client{}
	}
	return &APIChecker{baseURL: baseURL, client: hc}
}

func (c *APIChecker) Name() string { return "admin-api" }

func (c *APIChecker) Check(ctx context.Context) *Result {
	if c.baseURL == "" {
		return Unhealthy("api.base_url is not set")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Unhealthy(fmt.Sprintf("invalid API URL: %v", err))
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return Unhealthy(fmt.Sprintf("API unreachable: %v", err)).WithDetail("url", c.baseURL)
	}
	defer resp.Body.Close()

	r := Healthy("API reachable").
		WithDetail("url", c.baseURL).
		WithDetail("status", resp.StatusCode)
	r.Latency = latency
	if resp.StatusCode >= http.StatusInternalServerError {
		r.Status = StatusDegraded
		r.Message = fmt.Sprintf("API answered with status %d", resp.StatusCode)
	}
	return r
}

// SessionChecker reports whether a session exists and how long it lasts.
type SessionChecker struct {
	store session.Store
	now   func() time.Time
}

// NewSessionChecker creates a checker for store.
func NewSessionChecker(store session.Store) *SessionChecker {
	return &SessionChecker{store: store, now: time.Now}
}

// WithClock overrides the clock.
func (c *SessionChecker) WithClock(now func() time.Time) *SessionChecker {
	c.now = now
	return c
}

func (c *SessionChecker) Name() string { return "session" }

// expiringSoon is the remaining lifetime below which a session is degraded.
const expiringSoon = 24 * time.Hour

func (c *SessionChecker) Check(ctx context.Context) *Result {
	s, err := c.store.Get(ctx)
	if err != nil {
		return Degraded("not logged in").WithDetail("hint", "rezai-admin auth login --email <email>")
	}

	now := c.now()
	r := Healthy(fmt.Sprintf("logged in as %s", s.User.Email))
	if !s.ExpiresAt.IsZero() {
		r.WithDetail("expires", s.ExpiresAt.Format(time.RFC3339))
	}

	if claims, err := auth.TokenClaims(s.Token); err == nil && claims.Expired(now) {
		r.Status = StatusDegraded
		r.Message = "token has expired; log in again"
		return r
	}
	if !s.ExpiresAt.IsZero() && s.ExpiresAt.Sub(now) < expiringSoon {
		r.Status = StatusDegraded
		r.Message = "session expires within a day"
	}
	return r
}

// UploadChecker reports whether icon uploads are configured.
type UploadChecker struct {
	cfg upload.Config
}

// NewUploadChecker creates a checker for cfg.
func NewUploadChecker(cfg upload.Config) *UploadChecker {
	return &UploadChecker{cfg: cfg}
}

func (c *UploadChecker) Name() string { return "image-host" }

func (c *UploadChecker) Check(ctx context.Context) *Result {
	if c.cfg.URL() == "" || c.cfg.Preset == "" {
		return Degraded("icon uploads disabled; set upload.cloud_name and upload.preset")
	}
	return Healthy("icon uploads configured").WithDetail("endpoint", c.cfg.URL())
}

// HomeChecker verifies the state directory is writable.
type HomeChecker struct {
	dir string
}

// NewHomeChecker creates a checker for dir.
func NewHomeChecker(dir string) *HomeChecker {
	return &HomeChecker{dir: dir}
}

func (c *HomeChecker) Name() string { return "home" }

func (c *HomeChecker) Check(ctx context.Context) *Result {
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return Unhealthy(fmt.Sprintf("cannot create %s: %v", c.dir, err))
	}
	f, err := os.CreateTemp(c.dir, ".doctor-*")
	if err != nil {
		return Unhealthy(fmt.Sprintf("%s is not writable: %v", c.dir, err))
	}
	name := f.Name()
	f.Close()
	_ = os.Remove(name)
	return Healthy("state directory writable").WithDetail("path", filepath.Clean(c.dir))
}
