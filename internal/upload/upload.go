// Package upload sends option icons to the image host with an unsigned
// upload preset and returns the hosted URL.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	adminerrors "github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/log"
	"github.com/felixgeelhaar/rezai-admin/internal/metrics"
)

// Config locates the image host.
type Config struct {
	// Endpoint overrides the URL derived from CloudName.
	Endpoint  string
	CloudName string
	Preset    string
}

// URL returns the upload endpoint.
func (c Config) URL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.CloudName == "" {
		return ""
	}
	return fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", c.CloudName)
}

// Uploader posts files to the image host.
type Uploader struct {
	cfg        Config
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *log.Logger
}

// New creates an uploader. m and logger may be nil.
func New(cfg Config, hc *http.Client, m *metrics.Metrics, logger *log.Logger) *Uploader {
	if hc == nil {
		hc = &http.Client{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Uploader{cfg: cfg, httpClient: hc, metrics: m, logger: logger}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends one file and returns its secure URL.
func (u *Uploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	endpoint := u.cfg.URL()
	if endpoint == "" || u.cfg.Preset == "" {
		return "", adminerrors.New(adminerrors.ErrCodeUploadNotConfigured, "image host is not configured").
			WithSuggestion("Set upload.cloud_name and upload.preset in the config file")
	}

	start := time.Now()
	url, err := u.post(ctx, endpoint, filename, r)
	u.metrics.ObserveUpload(err == nil, time.Since(start))
	if err != nil {
		u.logger.WithError(err).Warn("icon upload failed", "file", filename)
		return "", adminerrors.NewUploadError(err)
	}
	u.logger.Debug("icon uploaded", "file", filename, "url", url)
	return url, nil
}

func (u *Uploader) post(ctx context.Context, endpoint, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read icon: %w", err)
	}
	if err := mw.WriteField("upload_preset", u.cfg.Preset); err != nil {
		return "", fmt.Errorf("failed to write preset: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("image host rejected upload: %s", out.Error.Message)
		}
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", decodeErr)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("upload response has no secure_url")
	}
	return out.SecureURL, nil
}

// UploadFile opens path and uploads it.
func (u *Uploader) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", adminerrors.NewUploadError(err)
	}
	defer f.Close()
	return u.Upload(ctx, path, f)
}

// Result is the outcome of one upload in a batch.
type Result struct {
	URL string
	Err error
}

// maxParallel bounds concurrent uploads in UploadFiles.
const maxParallel = 4

// UploadFiles uploads files concurrently, keyed by option index. A failed
// upload does not cancel the others; each slot reports its own outcome.
func (u *Uploader) UploadFiles(ctx context.Context, paths map[int]string) map[int]Result {
	results := make(map[int]Result, len(paths))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(maxParallel)
	for idx, path := range paths {
		g.Go(func() error {
			url, err := u.UploadFile(ctx, path)
			mu.Lock()
			results[idx] = Result{URL: url, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
