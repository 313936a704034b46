// Package fetcher retrieves API descriptors over HTTP. Each configured
// retrieval path is tried in declared order; the first response carrying a
// recognizable descriptor payload wins. Transient failures (connection
// errors, timeouts, 5xx) are retried with backoff and jitter; 401/403 and
// structurally invalid payloads are not.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"specsync/internal/config"
	"specsync/internal/detector"
	"specsync/internal/logger"
	"specsync/internal/model"
	"specsync/internal/secrets"
	specsyncerrors "specsync/pkg/errors"
)

// maxDescriptorBytes bounds how much of a response body is read. Descriptors
// beyond this size are rejected rather than buffered.
const maxDescriptorBytes = 16 << 20

// Fetcher retrieves descriptors and probes service health. It is purely
// functional given its inputs; the only side effect is the network call.
type Fetcher struct {
	secrets  secrets.Resolver
	log      *logger.Logger
	defaults config.Settings

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Fetcher. The resolver supplies credentials referenced by
// service auth directives.
func New(resolver secrets.Resolver, log *logger.Logger, defaults config.Settings) *Fetcher {
	return &Fetcher{
		secrets:  resolver,
		log:      log,
		defaults: defaults,
		now:      time.Now,
	}
}

// Fetch retrieves the first recognizable descriptor from the service's
// configured paths. A 401/403 on any path surfaces immediately as an
// AuthError; exhausting all paths without a valid payload yields an
// InvalidDescriptorError unless every path failed at the transport layer,
// in which case the error is a transient FetchError.
func (f *Fetcher) Fetch(ctx context.Context, svc config.Service) (model.FetchedSpec, error) {
	client := f.newClient(svc)
	log := f.log.WithService(svc.Name)

	var lastErr error
	sawNonTransport := false

	for _, path := range svc.SpecPaths {
		url := svc.BaseURL + path

		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return model.FetchedSpec{}, specsyncerrors.NewFetchError(svc.Name, path, false, err)
		}
		req.Header.Set("Accept", "application/json")
		f.applyAuth(req.Request, svc, log)

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return model.FetchedSpec{}, specsyncerrors.NewFetchError(svc.Name, path, false, ctx.Err())
			}
			log.WithFields(map[string]any{"path": path}).Warn("descriptor fetch failed, trying next path")
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxDescriptorBytes))
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return model.FetchedSpec{}, specsyncerrors.NewAuthError(svc.Name, resp.StatusCode, nil)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			sawNonTransport = true
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			log.WithFields(map[string]any{"path": path, "status": resp.StatusCode}).Debug("descriptor path rejected")
			continue
		case readErr != nil:
			lastErr = readErr
			continue
		case !detector.LooksLikeDescriptor(body):
			sawNonTransport = true
			lastErr = fmt.Errorf("payload lacks descriptor marker")
			log.WithFields(map[string]any{"path": path}).Debug("payload is not a descriptor")
			continue
		}

		return model.FetchedSpec{
			Service:   svc.Name,
			Path:      path,
			Content:   body,
			FetchedAt: f.now(),
		}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no descriptor paths configured")
	}
	if sawNonTransport {
		return model.FetchedSpec{}, specsyncerrors.NewInvalidDescriptorError(svc.Name, svc.SpecPaths, lastErr)
	}
	return model.FetchedSpec{}, specsyncerrors.NewFetchError(svc.Name, "", true, lastErr)
}

// CheckHealth probes the service's health path. Services without one are
// assumed healthy. Any transport error or non-2xx response reports
// unhealthy; unavailability is expected to be transient, so the result is
// advisory rather than an error.
func (f *Fetcher) CheckHealth(ctx context.Context, svc config.Service) bool {
	if svc.HealthPath == "" {
		return true
	}

	client := &http.Client{Timeout: svc.FetchTimeout(f.defaults)}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.BaseURL+svc.HealthPath, nil)
	if err != nil {
		return false
	}
	f.applyAuth(req, svc, f.log.WithService(svc.Name))

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// applyAuth builds request headers from the service's auth directive. A
// missing secret reference means auth is unavailable: logged, not fatal; the
// request proceeds unauthenticated and fails at the transport layer if the
// service requires credentials.
func (f *Fetcher) applyAuth(req *http.Request, svc config.Service, log *logger.Logger) {
	switch svc.Auth.Kind {
	case "", "none":
		return
	case "bearer":
		token, ok := f.secrets.Resolve(svc.Auth.SecretRef)
		if !ok {
			log.WithFields(map[string]any{"secret_ref": svc.Auth.SecretRef}).Warn("auth unavailable, proceeding unauthenticated")
			return
		}
		req.Header.Set("Authorization", "Bearer "+token)
	case "header":
		value, ok := f.secrets.Resolve(svc.Auth.SecretRef)
		if !ok {
			log.WithFields(map[string]any{"secret_ref": svc.Auth.SecretRef}).Warn("auth unavailable, proceeding unauthenticated")
			return
		}
		req.Header.Set(svc.Auth.Header, value)
	}
}

func (f *Fetcher) newClient(svc config.Service) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = svc.FetchRetries(f.defaults)
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 8 * time.Second
	client.Backoff = retryablehttp.LinearJitterBackoff
	client.HTTPClient.Timeout = svc.FetchTimeout(f.defaults)
	client.Logger = nil
	client.CheckRetry = checkRetry
	return client
}

// checkRetry retries only transient failures: transport errors and 5xx.
// 401/403 (and any other 4xx) surface without retry.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode >= 500 {
		return true, nil
	}
	return false, nil
}
