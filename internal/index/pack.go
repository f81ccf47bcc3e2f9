package index

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/normalizer"
)

// scanConcurrency số bucket tải song song khi quét toàn bộ comuna
const scanConcurrency = 8

// Pack is the intersection data of one comuna.
type Pack interface {
	// Lookup returns the rows stored under slugA×slugB followed by those
	// under slugB×slugA. Equal slugs are looked up once.
	Lookup(ctx context.Context, slugA, slugB string) []models.AccidentRecord
	// Scan returns every row of the comuna in stored order.
	Scan(ctx context.Context) []models.AccidentRecord
	// Present reports whether the comuna has any intersection data at all,
	// independent of which shards earlier lookups touched.
	Present(ctx context.Context) bool
}

// pairKeys trả về các key cần thử theo thứ tự
func pairKeys(slugA, slugB string) []string {
	if slugA == slugB {
		return []string{normalizer.PairKey(slugA, slugB)}
	}
	return []string{normalizer.PairKey(slugA, slugB), normalizer.PairKey(slugB, slugA)}
}

type wholePack struct {
	pack *models.IntersectionPack
}

func (p *wholePack) Lookup(_ context.Context, slugA, slugB string) []models.AccidentRecord {
	var rows []models.AccidentRecord
	for _, key := range pairKeys(slugA, slugB) {
		rows = append(rows, p.pack.Get(key)...)
	}
	return rows
}

func (p *wholePack) Scan(_ context.Context) []models.AccidentRecord {
	var rows []models.AccidentRecord
	for _, key := range p.pack.Keys() {
		rows = append(rows, p.pack.Get(key)...)
	}
	return rows
}

func (p *wholePack) Present(context.Context) bool { return true }

// bucketedPack loads letter shards on demand through the session cache.
type bucketedPack struct {
	index    *PartitionIndex
	region   string
	district string
	present  atomic.Bool
}

func (p *bucketedPack) bucket(ctx context.Context, letter string) *models.IntersectionPack {
	b := p.index.loadBucket(ctx, p.region, p.district, letter)
	if b != nil {
		p.present.Store(true)
	}
	return b
}

func (p *bucketedPack) Lookup(ctx context.Context, slugA, slugB string) []models.AccidentRecord {
	var rows []models.AccidentRecord
	for _, key := range pairKeys(slugA, slugB) {
		first, _, _ := normalizer.SplitPairKey(key)
		if b := p.bucket(ctx, normalizer.BucketLetter(first)); b != nil {
			rows = append(rows, b.Get(key)...)
		}
	}
	return rows
}

func (p *bucketedPack) Scan(ctx context.Context) []models.AccidentRecord {
	letters := normalizer.BucketLetters()
	shards := make([]*models.IntersectionPack, len(letters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for i, letter := range letters {
		i, letter := i, letter
		g.Go(func() error {
			shards[i] = p.bucket(gctx, letter)
			return nil
		})
	}
	_ = g.Wait()

	var rows []models.AccidentRecord
	for _, b := range shards {
		if b == nil {
			continue
		}
		for _, key := range b.Keys() {
			rows = append(rows, b.Get(key)...)
		}
	}
	return rows
}

// Present dò lần lượt các bucket cho đến khi gặp một bucket tồn tại.
// Bucket vắng mặt được memo trong session cache nên chỉ fetch một lần.
func (p *bucketedPack) Present(ctx context.Context) bool {
	if p.present.Load() {
		return true
	}
	for _, letter := range normalizer.BucketLetters() {
		if ctx.Err() != nil {
			return false
		}
		if p.bucket(ctx, letter) != nil {
			return true
		}
	}
	return false
}
