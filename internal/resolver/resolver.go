// Package resolver giải một cặp đường (hoặc một đường) thành các dòng
// siniestro của một comuna.
package resolver

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/index"
	"github.com/siniestros-lookup/internal/matcher"
	"github.com/siniestros-lookup/internal/normalizer"
	"github.com/siniestros-lookup/internal/results"
)

// Index is what the resolver needs from the partition index.
type Index interface {
	LoadPack(ctx context.Context, region, district string) (index.Pack, bool)
	LoadStreets(ctx context.Context, region, district string) []string
}

// Options tham số của Resolver
type Options struct {
	MaxCandidates int
	Suggestions   int
}

// Resolver thực hiện tra cứu exact, fuzzy và một đường.
type Resolver struct {
	idx    Index
	opts   Options
	logger *zap.Logger
}

// New tạo mới Resolver
func New(idx Index, opts Options, logger *zap.Logger) *Resolver {
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = matcher.DefaultMaxCandidates
	}
	if opts.Suggestions < 0 {
		opts.Suggestions = 0
	}
	return &Resolver{idx: idx, opts: opts, logger: logger}
}

// Resolve returns every matching row for q, deduplicated and in stored
// order. Outcomes other than a fetch problem are reported through Status,
// never as an error.
func (r *Resolver) Resolve(ctx context.Context, q models.Query) (*models.Resolution, error) {
	q = q.Normalized()
	if !q.Complete() {
		return models.NewResolution(models.StatusNeedsInput, nil), nil
	}

	pack, ok := r.idx.LoadPack(ctx, q.Region, q.District)
	if !ok {
		return models.NewResolution(models.StatusNoData, nil), nil
	}

	if q.StreetA == "" || q.StreetB == "" {
		street := q.StreetA
		if street == "" {
			street = q.StreetB
		}
		return r.singleStreet(ctx, q, pack, street), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exact := pack.Lookup(ctx, normalizer.Slug(q.StreetA), normalizer.Slug(q.StreetB))
	if len(exact) > 0 {
		res := models.NewResolution(models.StatusExact, results.Dedup(exact))
		res.InterpretedA, res.InterpretedB = q.StreetA, q.StreetB
		return res, nil
	}
	if !pack.Present(ctx) {
		return models.NewResolution(models.StatusNoData, nil), nil
	}

	return r.fuzzy(ctx, q, pack), nil
}

func (r *Resolver) singleStreet(ctx context.Context, q models.Query, pack index.Pack, street string) *models.Resolution {
	all := pack.Scan(ctx)
	if len(all) == 0 && !pack.Present(ctx) {
		return models.NewResolution(models.StatusNoData, nil)
	}

	want := normalizer.NormStreet(street)
	collector := results.NewCollector()
	if want != "" {
		for _, row := range all {
			if strings.Contains(normalizer.NormStreet(string(row.Calleuno)), want) ||
				strings.Contains(normalizer.NormStreet(string(row.Calledos)), want) {
				collector.Add(row)
			}
		}
	}

	if collector.Len() == 0 {
		return r.noMatch(ctx, q, street)
	}
	res := models.NewResolution(models.StatusSingleStreet, collector.Rows())
	res.InterpretedA = street
	return res
}

func (r *Resolver) fuzzy(ctx context.Context, q models.Query, pack index.Pack) *models.Resolution {
	catalog := r.idx.LoadStreets(ctx, q.Region, q.District)
	candA := matcher.Candidates(catalog, q.StreetA, r.opts.MaxCandidates)
	candB := matcher.Candidates(catalog, q.StreetB, r.opts.MaxCandidates)

	collector := results.NewCollector()
	for _, ca := range candA {
		sa := normalizer.Slug(ca)
		for _, cb := range candB {
			if ctx.Err() != nil {
				break
			}
			collector.Add(pack.Lookup(ctx, sa, normalizer.Slug(cb))...)
		}
	}

	r.logger.Debug("Fuzzy intersection lookup",
		zap.String("district", q.District),
		zap.Int("candidates_a", len(candA)),
		zap.Int("candidates_b", len(candB)),
		zap.Int("rows", collector.Len()))

	if collector.Len() == 0 {
		return r.noMatchWithCatalog(catalog, q.StreetA, q.StreetB)
	}
	res := &models.Resolution{
		Status:       models.StatusFuzzy,
		Rows:         collector.Rows(),
		InterpretedA: candA[0],
		InterpretedB: candB[0],
	}
	res.Message = res.DefaultMessage()
	return res
}

func (r *Resolver) noMatch(ctx context.Context, q models.Query, streets ...string) *models.Resolution {
	if r.opts.Suggestions == 0 {
		return models.NewResolution(models.StatusNoMatch, nil)
	}
	return r.noMatchWithCatalog(r.idx.LoadStreets(ctx, q.Region, q.District), streets...)
}

// noMatchWithCatalog attaches "did you mean" hints from the catalog.
func (r *Resolver) noMatchWithCatalog(catalog []string, streets ...string) *models.Resolution {
	res := models.NewResolution(models.StatusNoMatch, nil)
	if r.opts.Suggestions == 0 {
		return res
	}
	seen := make(map[string]bool)
	for _, s := range streets {
		for _, hint := range matcher.Suggest(catalog, s, r.opts.Suggestions) {
			if !seen[hint] {
				seen[hint] = true
				res.Hints = append(res.Hints, hint)
			}
		}
	}
	return res
}
