package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/clinicore/intake/internal/model"
)

// Extractor wraps a Provider as the engine's second candidate source.
// It enforces the provider's timeout, paces calls through a rate limiter,
// and validates the loosely-typed oracle output into the closed candidate
// shape at the boundary. Any failure (timeout, malformed output, oracle
// unavailable) degrades to an empty candidate set; nothing downstream
// ever sees untyped data or a fatal extraction error.
type Extractor struct {
	provider Provider
	limiter  *rate.Limiter
	timeout  time.Duration
	verbose  bool
}

// NewExtractor creates the model extractor. provider may be nil, in which
// case extraction is disabled and Extract always returns an empty set.
func NewExtractor(provider Provider, config Config, verbose bool) *Extractor {
	rps := config.RatePerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 4
	}
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Extractor{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		timeout:  timeout,
		verbose:  verbose,
	}
}

// Enabled reports whether a provider is configured
func (e *Extractor) Enabled() bool {
	return e != nil && e.provider != nil
}

// Extract asks the oracle for candidates. A non-nil error reports a
// recovered failure (timeout, oracle unreachable, malformed reply) and
// always comes with an empty set; callers surface it as a warning and the
// turn completes on pattern candidates alone.
func (e *Extractor) Extract(ctx context.Context, text string, conv model.ConversationContext) ([]model.FactCandidate, error) {
	if !e.Enabled() || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("model extraction rate-limited out: %w", err)
	}

	resp, err := e.provider.ExtractFacts(ctx, ExtractRequest{
		Text:    text,
		Context: conv.RecentTexts(6),
	})
	if err != nil {
		return nil, fmt.Errorf("model extraction failed (%s): %w", e.provider.Name(), err)
	}

	return e.validate(resp.Facts, conv), nil
}

// validate converts raw oracle facts into candidates, dropping anything
// whose kind falls outside the closed enumeration or whose text is empty.
func (e *Extractor) validate(facts []RawFact, conv model.ConversationContext) []model.FactCandidate {
	var candidates []model.FactCandidate
	for _, f := range facts {
		kind := model.Kind(strings.ToLower(strings.TrimSpace(f.Kind)))
		text := strings.TrimSpace(f.Text)
		if !kind.Valid() {
			e.warn("dropping model fact with unknown kind %q (text: %q)", f.Kind, f.Text)
			continue
		}
		if text == "" {
			continue
		}
		candidates = append(candidates, model.FactCandidate{
			Kind:      kind,
			Text:      text,
			Source:    model.SourceModel,
			RawSpan:   strings.TrimSpace(f.Span),
			Timestamp: conv.TurnTime,
		})
	}
	return candidates
}

func (e *Extractor) warn(format string, args ...interface{}) {
	if e.verbose {
		fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}
}
