// Package redflag scans free-text check-in notes for safety keywords.
package redflag

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/popeskul/spinecheck/internal/clock"
)

const (
	defaultCacheTTL    = time.Hour
	defaultFallbackTTL = time.Minute
	defaultLoadTimeout = 2 * time.Second
	refreshFlightKey   = "terms"
)

// DefaultTerms is used whenever the configured term source is unavailable or empty.
var DefaultTerms = []string{
	"saddle numbness",
	"numbness",
	"bladder",
	"bowel",
	"incontinence",
	"loss of control",
	"can't urinate",
	"cannot urinate",
	"fever",
	"trauma",
	"progressive weakness",
	"weakness in my leg",
	"foot drop",
	"unexplained weight loss",
}

// TermSource loads the configured red-flag term list.
type TermSource interface {
	RedFlagTerms(ctx context.Context) ([]string, error)
}

type termSet struct {
	terms     []string
	expiresAt time.Time
}

// Scanner matches notes against a cached term list. The zero value is not usable.
type Scanner struct {
	source      TermSource
	clock       clock.Clock
	logger      *zap.Logger
	ttl         time.Duration
	fallbackTTL time.Duration

	current atomic.Pointer[termSet]
	group   singleflight.Group
}

type Option func(*Scanner)

func WithClock(clk clock.Clock) Option {
	return func(s *Scanner) { s.clock = clk }
}

// WithCacheTTL sets how long a loaded term list is reused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Scanner) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// NewScanner creates a Scanner. A nil source always uses DefaultTerms.
func NewScanner(source TermSource, opts ...Option) *Scanner {
	s := &Scanner{
		source:      source,
		clock:       clock.New(),
		logger:      zap.NewNop(),
		ttl:         defaultCacheTTL,
		fallbackTTL: defaultFallbackTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fallbackTTL > s.ttl {
		s.fallbackTTL = s.ttl
	}
	return s
}

// Scan returns the terms found in text, in term-list order. It never fails.
func (s *Scanner) Scan(ctx context.Context, text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	return Match(s.Terms(ctx), text)
}

// Terms returns the cached term list, reloading it when expired.
func (s *Scanner) Terms(ctx context.Context) []string {
	if set := s.current.Load(); set != nil && s.clock.Now().Before(set.expiresAt) {
		return set.terms
	}

	v, _, _ := s.group.Do(refreshFlightKey, func() (interface{}, error) {
		if set := s.current.Load(); set != nil && s.clock.Now().Before(set.expiresAt) {
			return set, nil
		}
		set := s.load(ctx)
		s.current.Store(set)
		return set, nil
	})
	return v.(*termSet).terms
}

// Invalidate drops the cached list so the next scan reloads it.
func (s *Scanner) Invalidate() {
	s.current.Store(nil)
}

func (s *Scanner) load(ctx context.Context) *termSet {
	now := s.clock.Now()
	fallback := &termSet{terms: normalize(DefaultTerms), expiresAt: now.Add(s.fallbackTTL)}

	if s.source == nil {
		fallback.expiresAt = now.Add(s.ttl)
		return fallback
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultLoadTimeout)
	defer cancel()

	terms, err := s.source.RedFlagTerms(loadCtx)
	if err != nil {
		s.logger.Warn("Failed to load red flag terms, using built-in list", zap.Error(err))
		return fallback
	}
	terms = normalize(terms)
	if len(terms) == 0 {
		s.logger.Warn("Red flag term source is empty, using built-in list")
		return fallback
	}

	s.logger.Debug("Loaded red flag terms", zap.Int("count", len(terms)))
	return &termSet{terms: terms, expiresAt: now.Add(s.ttl)}
}

// Match reports which terms occur in text as case-insensitive substrings. Runs of
// whitespace, including line breaks, compare equal to a single space. Matching is not
// word-boundary aware; embedded occurrences count.
func Match(terms []string, text string) []string {
	matched := []string{}
	haystack := fold(text)
	if haystack == "" {
		return matched
	}
	for _, term := range terms {
		term = fold(term)
		if term != "" && strings.Contains(haystack, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

func fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func normalize(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = fold(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
