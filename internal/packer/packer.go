// Package packer builds the partitioned resources (comunas, street catalogs,
// intersection packs) from a flat accident table.
package packer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/index"
	"github.com/siniestros-lookup/internal/normalizer"
	"github.com/siniestros-lookup/internal/source"
)

// Options tùy chọn build
type Options struct {
	Layout   index.Layout // whole or bucketed; auto builds whole packs
	Compress bool         // write .zst files
}

// Stats thống kê sau khi build
type Stats struct {
	Regions int `json:"regions"`
	Comunas int `json:"comunas"`
	Streets int `json:"streets"`
	Keys    int `json:"keys"`
	Rows    int `json:"rows"`
	Files   int `json:"files"`
	Skipped int `json:"skipped"`
}

type district struct {
	name    string
	streets map[string]string // slug → first spelling seen
	pack    *models.IntersectionPack
}

type region struct {
	slug      string
	districts map[string]*district
}

// Builder gom records theo region → comuna → cặp đường
type Builder struct {
	opts    Options
	logger  *zap.Logger
	regions map[string]*region
	stats   Stats
}

// NewBuilder tạo mới Builder
func NewBuilder(opts Options, logger *zap.Logger) *Builder {
	if opts.Layout != index.LayoutBucketed {
		opts.Layout = index.LayoutWhole
	}
	return &Builder{opts: opts, logger: logger, regions: make(map[string]*region)}
}

// Add thêm records. Rows without a comuna or without any street are skipped.
func (b *Builder) Add(records ...models.AccidentRecord) {
	for _, rec := range records {
		if rec.Comuna == "" || (rec.Calleuno == "" && rec.Calledos == "") {
			b.stats.Skipped++
			continue
		}
		rs := normalizer.Slug(string(rec.Region))
		r, ok := b.regions[rs]
		if !ok {
			r = &region{slug: rs, districts: make(map[string]*district)}
			b.regions[rs] = r
		}
		ds := normalizer.Slug(string(rec.Comuna))
		d, ok := r.districts[ds]
		if !ok {
			d = &district{name: string(rec.Comuna), streets: make(map[string]string), pack: models.NewIntersectionPack()}
			r.districts[ds] = d
		}

		a, c := normalizer.Slug(string(rec.Calleuno)), normalizer.Slug(string(rec.Calledos))
		for slug, name := range map[string]string{a: string(rec.Calleuno), c: string(rec.Calledos)} {
			if name == "" {
				continue
			}
			if _, seen := d.streets[slug]; !seen {
				d.streets[slug] = name
			}
		}
		d.pack.Add(normalizer.PairKey(a, c), rec)
		b.stats.Rows++
	}
}

// Write ghi tất cả resource ra sink
func (b *Builder) Write(ctx context.Context, sink Sink) (Stats, error) {
	coll := collate.New(language.Spanish, collate.Loose)

	regionSlugs := make([]string, 0, len(b.regions))
	for rs := range b.regions {
		regionSlugs = append(regionSlugs, rs)
	}
	sort.Strings(regionSlugs)

	for _, rs := range regionSlugs {
		r := b.regions[rs]
		if _, ok := models.FindRegion(rs); !ok {
			b.logger.Warn("Region outside the known list", zap.String("region", rs))
		}

		names := make([]string, 0, len(r.districts))
		for _, d := range r.districts {
			names = append(names, d.name)
		}
		coll.SortStrings(names)
		if err := b.putJSON(ctx, sink, source.DistrictsPath(rs), names); err != nil {
			return b.stats, err
		}
		b.stats.Regions++

		for ds, d := range r.districts {
			streets := make([]string, 0, len(d.streets))
			for _, name := range d.streets {
				streets = append(streets, name)
			}
			coll.SortStrings(streets)
			if err := b.putJSON(ctx, sink, source.StreetsPath(rs, ds), streets); err != nil {
				return b.stats, err
			}
			if err := b.writePack(ctx, sink, rs, ds, d.pack); err != nil {
				return b.stats, err
			}
			b.stats.Comunas++
			b.stats.Streets += len(streets)
			b.stats.Keys += d.pack.Len()
		}
	}

	b.logger.Info("Build completed",
		zap.Int("regions", b.stats.Regions),
		zap.Int("comunas", b.stats.Comunas),
		zap.Int("rows", b.stats.Rows),
		zap.Int("files", b.stats.Files))
	return b.stats, nil
}

func (b *Builder) writePack(ctx context.Context, sink Sink, rs, ds string, pack *models.IntersectionPack) error {
	if b.opts.Layout == index.LayoutWhole {
		return b.putJSON(ctx, sink, source.PackPath(rs, ds), pack)
	}

	buckets := make(map[string]*models.IntersectionPack)
	for _, key := range pack.Keys() {
		a, _, _ := normalizer.SplitPairKey(key)
		letter := normalizer.BucketLetter(a)
		bp, ok := buckets[letter]
		if !ok {
			bp = models.NewIntersectionPack()
			buckets[letter] = bp
		}
		bp.Add(key, pack.Get(key)...)
	}
	for letter, bp := range buckets {
		if err := b.putJSON(ctx, sink, source.BucketPath(rs, ds, letter), bp); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) putJSON(ctx context.Context, sink Sink, p string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}
	if b.opts.Compress {
		if data, err = source.CompressZstd(data); err != nil {
			return fmt.Errorf("compress %s: %w", p, err)
		}
		p += ".zst"
	}
	if err := sink.Put(ctx, p, data); err != nil {
		return err
	}
	b.stats.Files++
	return nil
}
