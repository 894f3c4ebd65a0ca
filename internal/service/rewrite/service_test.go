package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"redraft/internal/config"
	"redraft/internal/domain"
	domainrewrite "redraft/internal/domain/services/rewrite"
	"redraft/internal/service/rewrite/capabilities"
)

// fakeProvider records the last request and returns a canned result.
type fakeProvider struct {
	model   string
	lastReq *domainrewrite.Request
	result  *domainrewrite.Result
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) SupportsModel(model string) bool { return model == f.model }

func (f *fakeProvider) Rewrite(ctx context.Context, req *domainrewrite.Request) (*domainrewrite.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testConfig(model string) *config.Config {
	return &config.Config{
		DefaultModel:     model,
		RewriteMaxTokens: config.DefaultRewriteMaxTokens,
		RewriteTimeout:   30 * time.Second,
	}
}

func newTestService(t *testing.T, provider *fakeProvider, cfg *config.Config) *Service {
	t.Helper()

	registry := NewRegistry()
	registry.Register(provider)

	caps, err := capabilities.NewRegistry()
	if err != nil {
		t.Fatalf("capabilities: %v", err)
	}
	return NewService(registry, caps, cfg, slog.Default())
}

func TestRewriteBuildsEditorialPrompt(t *testing.T) {
	provider := &fakeProvider{
		model:  "lorem-fast",
		result: &domainrewrite.Result{Text: "Improved.", Model: "lorem-fast", Provider: "fake"},
	}
	svc := newTestService(t, provider, testConfig("lorem-fast"))

	result, err := svc.Rewrite(context.Background(), "the input text")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if result.Text != "Improved." {
		t.Errorf("result text = %q", result.Text)
	}

	req := provider.lastReq
	if req == nil {
		t.Fatal("provider was never called")
	}
	if !strings.Contains(req.System, "grammar, clarity, and readability") {
		t.Errorf("system prompt = %q", req.System)
	}
	if !strings.HasPrefix(req.Prompt, "Improve the following text") {
		t.Errorf("prompt = %q", req.Prompt)
	}
	if !strings.HasSuffix(req.Prompt, "the input text") {
		t.Errorf("prompt must end with the document text, got %q", req.Prompt)
	}
	if req.MaxTokens != config.DefaultRewriteMaxTokens {
		t.Errorf("max tokens = %d, want %d", req.MaxTokens, config.DefaultRewriteMaxTokens)
	}
	if req.Temperature != config.RewriteTemperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, config.RewriteTemperature)
	}
}

func TestRewriteEmptyContentNeverCallsProvider(t *testing.T) {
	provider := &fakeProvider{model: "lorem-fast"}
	svc := newTestService(t, provider, testConfig("lorem-fast"))

	for _, text := range []string{"", "   ", "\n\n\t"} {
		_, err := svc.Rewrite(context.Background(), text)
		if !errors.Is(err, domain.ErrEmptyContent) {
			t.Errorf("text %q: expected empty content error, got %v", text, err)
		}
	}
	if provider.lastReq != nil {
		t.Error("provider must not be called for empty content")
	}
}

func TestRewriteCapsMaxTokensToModelLimit(t *testing.T) {
	provider := &fakeProvider{
		model:  "lorem-fast",
		result: &domainrewrite.Result{Text: "ok"},
	}
	cfg := testConfig("lorem-fast")
	cfg.RewriteMaxTokens = 1 << 20
	svc := newTestService(t, provider, cfg)

	if _, err := svc.Rewrite(context.Background(), "text"); err != nil {
		t.Fatal(err)
	}
	if provider.lastReq.MaxTokens >= 1<<20 {
		t.Errorf("max tokens %d should be capped to the model limit", provider.lastReq.MaxTokens)
	}
}

func TestRewriteNoProviderForModel(t *testing.T) {
	provider := &fakeProvider{model: "lorem-fast"}
	svc := newTestService(t, provider, testConfig("some-other-model"))

	_, err := svc.Rewrite(context.Background(), "text")
	if !errors.Is(err, domain.ErrRewrite) {
		t.Errorf("expected rewrite error, got %v", err)
	}
}

func TestRewriteProviderFailure(t *testing.T) {
	provider := &fakeProvider{
		model: "lorem-fast",
		err:   fmt.Errorf("upstream 529"),
	}
	svc := newTestService(t, provider, testConfig("lorem-fast"))

	_, err := svc.Rewrite(context.Background(), "text")
	if !errors.Is(err, domain.ErrRewrite) {
		t.Fatalf("expected rewrite error, got %v", err)
	}
	var httpErr domain.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode() != 502 {
		t.Errorf("provider failures must map to 502, got %v", err)
	}
}

func TestRewriteTimeout(t *testing.T) {
	provider := &fakeProvider{
		model: "lorem-fast",
		err:   context.DeadlineExceeded,
	}
	cfg := testConfig("lorem-fast")
	cfg.RewriteTimeout = time.Millisecond
	svc := newTestService(t, provider, cfg)

	_, err := svc.Rewrite(context.Background(), "text")
	if !errors.Is(err, domain.ErrRewrite) {
		t.Fatalf("expected rewrite error, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("timeout should be named in the error, got %q", err.Error())
	}
}

func TestRewriteEmptyProviderResponse(t *testing.T) {
	provider := &fakeProvider{
		model:  "lorem-fast",
		result: &domainrewrite.Result{Text: "   "},
	}
	svc := newTestService(t, provider, testConfig("lorem-fast"))

	_, err := svc.Rewrite(context.Background(), "text")
	if !errors.Is(err, domain.ErrRewrite) {
		t.Errorf("blank provider response must be an error, got %v", err)
	}
}

func TestRegistryRouting(t *testing.T) {
	registry := NewRegistry()
	fast := &fakeProvider{model: "lorem-fast"}
	registry.Register(fast)

	p, err := registry.ForModel("lorem-fast")
	if err != nil {
		t.Fatal(err)
	}
	if p != fast {
		t.Error("wrong provider returned")
	}

	if _, err := registry.ForModel("claude-haiku-4-5-20251001"); err == nil {
		t.Error("expected error for unserved model")
	}
	if _, err := registry.ForModel(""); err == nil {
		t.Error("expected error for empty model")
	}
}
