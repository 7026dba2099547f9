// Package prompts resolves system-prompt text by version identifier. The
// provider is a startup-time dependency: resolution failures abort session
// start with a configuration error, never a transport error.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotFound marks version identifiers (or commit references) that do not
// exist or are not public.
var ErrNotFound = errors.New("prompt version not found")

type Provider interface {
	Resolve(ctx context.Context, version string, opts ...ResolveOption) (string, error)
}

type ResolveOptions struct {
	// CommitRef optionally pins the version to a content-addressed commit.
	CommitRef string
}

type ResolveOption func(*ResolveOptions)

func WithCommitRef(ref string) ResolveOption {
	return func(o *ResolveOptions) { o.CommitRef = ref }
}

// HTTPProvider fetches prompt text from a prompt registry over HTTP.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (p *HTTPProvider) Resolve(ctx context.Context, version string, opts ...ResolveOption) (string, error) {
	options := ResolveOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	endpoint, err := url.Parse(p.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid prompt registry url: %w", err)
	}
	endpoint = endpoint.JoinPath("prompts", version)
	if options.CommitRef != "" {
		query := endpoint.Query()
		query.Set("ref", options.CommitRef)
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch prompt %q: %w", version, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusForbidden:
		return "", fmt.Errorf("prompt %q: %w", version, ErrNotFound)
	default:
		return "", fmt.Errorf("prompt registry returned %s for %q", resp.Status, version)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt %q: %w", version, err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("prompt %q: %w", version, ErrNotFound)
	}

	return string(body), nil
}

// StaticProvider serves prompt text from an in-memory table. Useful for tests
// and for running without a registry.
type StaticProvider map[string]string

func (p StaticProvider) Resolve(_ context.Context, version string, _ ...ResolveOption) (string, error) {
	text, ok := p[version]
	if !ok {
		return "", fmt.Errorf("prompt %q: %w", version, ErrNotFound)
	}
	return text, nil
}
