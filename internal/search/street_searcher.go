package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/internal/normalizer"
)

// DefaultIndexName tên index đường phố
const DefaultIndexName = "streets"

// StreetSearcher gợi ý tên đường qua Meilisearch
type StreetSearcher struct {
	client    meilisearch.ServiceManager
	logger    *zap.Logger
	indexName string
}

// SearchConfig cấu hình cho Meilisearch
type SearchConfig struct {
	Host      string
	APIKey    string
	IndexName string
}

// StreetDoc một document trong index
type StreetDoc struct {
	ID        string `json:"id"`
	Region    string `json:"region"`
	District  string `json:"district"`
	Name      string `json:"name"`
	Canonical string `json:"canonical"`
}

// NewStreetSearcher tạo mới StreetSearcher với Meilisearch client
func NewStreetSearcher(config SearchConfig, logger *zap.Logger) (*StreetSearcher, error) {
	client := meilisearch.New(config.Host, meilisearch.WithAPIKey(config.APIKey))

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Meilisearch: %w", err)
	}

	if config.IndexName == "" {
		config.IndexName = DefaultIndexName
	}
	return &StreetSearcher{
		client:    client,
		logger:    logger,
		indexName: config.IndexName,
	}, nil
}

// NewStreetDoc builds the document for one catalog entry. The id is the
// region, comuna and street slugs joined, which Meilisearch accepts as-is.
func NewStreetDoc(region, district, name string) StreetDoc {
	ds := normalizer.Slug(district)
	return StreetDoc{
		ID:        region + "_" + ds + "_" + normalizer.Slug(name),
		Region:    region,
		District:  ds,
		Name:      name,
		Canonical: normalizer.NormStreet(name),
	}
}

// FilterDistrict filter theo region và comuna
func FilterDistrict(region, district string) string {
	return fmt.Sprintf("region = %q AND district = %q", region, normalizer.Slug(district))
}

// SearchStreets tìm tên đường trong một comuna, có typo tolerance
func (ss *StreetSearcher) SearchStreets(ctx context.Context, region, district, query string, limit int) ([]string, error) {
	if query == "" {
		return nil, errors.New("query không được để trống")
	}
	if limit <= 0 {
		limit = 10
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := ss.client.Index(ss.indexName)
	searchReq := &meilisearch.SearchRequest{
		Limit:                int64(limit),
		Filter:               FilterDistrict(region, district),
		AttributesToRetrieve: []string{"name"},
	}

	result, err := index.Search(query, searchReq)
	if err != nil {
		return nil, fmt.Errorf("lỗi tìm kiếm Meilisearch: %w", err)
	}

	var names []string
	for _, hit := range result.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		if name, ok := hitMap["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// BuildIndexes cấu hình index đường phố
func (ss *StreetSearcher) BuildIndexes() error {
	index := ss.client.Index(ss.indexName)

	rules, err := normalizer.LoadRulesConfig()
	if err != nil {
		return fmt.Errorf("lỗi đọc street types: %w", err)
	}
	synonyms := make(map[string][]string)
	for canonical, variants := range rules.StreetTypes {
		for _, v := range variants {
			if v != canonical {
				synonyms[v] = []string{canonical}
			}
		}
	}

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"name", "canonical"},
		FilterableAttributes: []string{"region", "district"},
		SortableAttributes:   []string{"name"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		StopWords:            []string{"de", "del", "la", "los", "las"},
		Synonyms:             synonyms,
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  4,
				TwoTypos: 8,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("lỗi cấu hình index: %w", err)
	}

	ss.logger.Info("Đã cấu hình index Meilisearch thành công", zap.Int64("task_uid", task.TaskUID))
	return nil
}

// SeedStreets nạp danh mục đường của một comuna vào Meilisearch
func (ss *StreetSearcher) SeedStreets(region, district string, streets []string) (int, error) {
	if len(streets) == 0 {
		return 0, nil
	}

	index := ss.client.Index(ss.indexName)

	seen := make(map[string]bool, len(streets))
	documents := make([]StreetDoc, 0, len(streets))
	for _, s := range streets {
		doc := NewStreetDoc(region, district, s)
		if seen[doc.ID] {
			continue
		}
		seen[doc.ID] = true
		documents = append(documents, doc)
	}

	batchSize := 1000
	for i := 0; i < len(documents); i += batchSize {
		end := i + batchSize
		if end > len(documents) {
			end = len(documents)
		}

		task, err := index.AddDocuments(documents[i:end], "id")
		if err != nil {
			return i, fmt.Errorf("lỗi thêm documents batch %d-%d: %w", i, end, err)
		}
		ss.logger.Debug("Đã thêm batch documents",
			zap.String("district", district),
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	ss.logger.Info("Đã seed streets", zap.String("region", region), zap.String("district", district), zap.Int("total_documents", len(documents)))
	return len(documents), nil
}
