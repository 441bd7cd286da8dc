// Package recommend answers "movies like this one" queries against a built
// catalog index.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hubenschmidt/reelmatch/catalog"
	"github.com/hubenschmidt/reelmatch/core"
	"github.com/hubenschmidt/reelmatch/fuzzy"
	"github.com/hubenschmidt/reelmatch/logging"
	"github.com/hubenschmidt/reelmatch/monitor"
	"github.com/hubenschmidt/reelmatch/vector"
)

const (
	DefaultLimit     = 30
	DefaultCacheSize = 1024
)

type Options struct {
	Limit       int
	Cutoff      float64
	ExcludeSelf bool
	// CacheSize bounds the result cache; 0 disables caching.
	CacheSize int
}

func DefaultOptions() Options {
	return Options{
		Limit:     DefaultLimit,
		Cutoff:    fuzzy.DefaultCutoff,
		CacheSize: DefaultCacheSize,
	}
}

type Recommendation struct {
	Title string  `json:"title"`
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

type Result struct {
	Query           string           `json:"query"`
	Match           string           `json:"match"`
	MatchIndex      int              `json:"match_index"`
	Recommendations []Recommendation `json:"recommendations"`
}

type cached struct {
	result Result
	err    error
}

// Engine is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	index   Index
	titles  []string
	opts    Options
	cache   *lru.Cache[string, cached]
	log     zerolog.Logger
}

func NewEngine(c *catalog.Catalog, idx Index, opts Options) (*Engine, error) {
	if c == nil || c.Len() == 0 {
		return nil, core.NewError("recommend.new_engine", core.ErrEmptyCatalog)
	}
	if idx.Len() != c.Len() {
		return nil, core.WithContext(
			core.WithContext(core.NewError("recommend.new_engine", core.ErrSnapshotMismatch), "index_rows", idx.Len()),
			"catalog_rows", c.Len())
	}
	if opts.Limit <= 0 {
		return nil, core.WithContext(core.NewError("recommend.new_engine", core.ErrInvalidArgument), "limit", opts.Limit)
	}
	if opts.Cutoff < 0 || opts.Cutoff > 1 {
		return nil, core.WithContext(core.NewError("recommend.new_engine", core.ErrInvalidArgument), "cutoff", opts.Cutoff)
	}

	e := &Engine{
		catalog: c,
		index:   idx,
		titles:  c.Titles(),
		opts:    opts,
		log:     logging.With("recommend"),
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, cached](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("result cache: %w", err)
		}
		e.cache = cache
	}
	return e, nil
}

// Normalize trims and lowercases a query the way catalog titles are stored.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Recommend finds the title closest to query and returns the movies most
// similar to it. It returns core.ErrEmptyQuery for a blank query and
// core.ErrNoMatch when no title is close enough.
func (e *Engine) Recommend(ctx context.Context, query string) (Result, error) {
	start := time.Now()
	res, err := e.recommend(ctx, query)
	monitor.RecommendDuration.Observe(time.Since(start).Seconds())
	monitor.RecommendRequests.WithLabelValues(outcome(err)).Inc()
	return res, err
}

func (e *Engine) recommend(ctx context.Context, query string) (Result, error) {
	q := Normalize(query)
	if q == "" {
		return Result{}, core.NewError("recommend", core.ErrEmptyQuery)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if e.cache != nil {
		if hit, ok := e.cache.Get(q); ok {
			monitor.RecommendCache.WithLabelValues("hit").Inc()
			return cloneResult(hit.result), hit.err
		}
		monitor.RecommendCache.WithLabelValues("miss").Inc()
	}

	res, err := e.compute(q)
	if e.cache != nil && (err == nil || errors.Is(err, core.ErrNoMatch)) {
		e.cache.Add(q, cached{result: res, err: err})
	}
	return cloneResult(res), err
}

func (e *Engine) compute(q string) (Result, error) {
	match, ok, err := fuzzy.Best(q, e.titles, e.opts.Cutoff)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		e.log.Debug().Str("query", q).Msg("no close match")
		return Result{Query: q}, core.WithContext(core.NewError("recommend", core.ErrNoMatch), "query", q)
	}

	row, _ := e.catalog.IndexOf(match.Candidate)

	k := e.opts.Limit
	if e.opts.ExcludeSelf {
		k++
	}
	ns := e.index.Neighbors(row, k)
	if e.opts.ExcludeSelf {
		ns = vector.Without(ns, row)
	}
	if len(ns) > e.opts.Limit {
		ns = ns[:e.opts.Limit]
	}

	recs := make([]Recommendation, len(ns))
	for i, n := range ns {
		recs[i] = Recommendation{
			Title: e.TitleCase(e.catalog.Movies[n.Index].Title),
			Index: n.Index,
			Score: n.Score,
		}
	}

	e.log.Debug().
		Str("query", q).
		Str("match", match.Candidate).
		Float64("ratio", match.Score).
		Int("results", len(recs)).
		Msg("recommended")

	return Result{
		Query:           q,
		Match:           match.Candidate,
		MatchIndex:      row,
		Recommendations: recs,
	}, nil
}

// TitleCase renders a stored (lowercase) title for display.
func (e *Engine) TitleCase(s string) string {
	// Caser keeps state between calls and is not safe for concurrent use.
	return cases.Title(language.English).String(s)
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Catalog returns the catalog the engine serves.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

func cloneResult(r Result) Result {
	if r.Recommendations != nil {
		r.Recommendations = append([]Recommendation(nil), r.Recommendations...)
	}
	return r
}

func outcome(err error) string {
	switch {
	case err == nil:
		return monitor.OutcomeFound
	case errors.Is(err, core.ErrNoMatch):
		return monitor.OutcomeNoMatch
	case errors.Is(err, core.ErrEmptyQuery):
		return monitor.OutcomeInvalid
	default:
		return monitor.OutcomeError
	}
}
