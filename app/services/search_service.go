package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/matcher"
	"github.com/siniestros-lookup/internal/metrics"
	"github.com/siniestros-lookup/internal/normalizer"
	"github.com/siniestros-lookup/internal/results"
)

// ErrUnknownRegion region không tồn tại
var ErrUnknownRegion = errors.New("región desconocida")

// StreetSuggester gợi ý tên đường từ index ngoài (Meilisearch)
type StreetSuggester interface {
	SearchStreets(ctx context.Context, region, district, query string, limit int) ([]string, error)
}

// SearchService service xử lý tra cứu siniestros theo giao lộ
type SearchService struct {
	sessions    *SessionManager
	suggester   StreetSuggester
	pageSize    int
	suggestions int
	logger      *zap.Logger
	startTime   time.Time
}

// NewSearchService tạo mới SearchService. suggester may be nil.
func NewSearchService(sessions *SessionManager, suggester StreetSuggester, pageSize, suggestions int, logger *zap.Logger) *SearchService {
	if pageSize <= 0 {
		pageSize = results.DefaultPageSize
	}
	if suggestions <= 0 {
		suggestions = matcher.DefaultMaxCandidates
	}
	return &SearchService{
		sessions:    sessions,
		suggester:   suggester,
		pageSize:    pageSize,
		suggestions: suggestions,
		logger:      logger,
		startTime:   time.Now(),
	}
}

// Sessions trả về session manager
func (ss *SearchService) Sessions() *SessionManager { return ss.sessions }

// Uptime thời gian chạy của service
func (ss *SearchService) Uptime() time.Duration { return time.Since(ss.startTime) }

// PageSize kích thước trang
func (ss *SearchService) PageSize() int { return ss.pageSize }

// regionSlug accepts a region slug or label.
func regionSlug(region string) (string, error) {
	slug := normalizer.Slug(region)
	if _, ok := models.FindRegion(slug); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}
	return slug, nil
}

// ListRegions danh sách regiones
func (ss *SearchService) ListRegions() []models.Region {
	return models.Regions
}

// ListComunas danh sách comunas của region, theo thứ tự lưu trữ
func (ss *SearchService) ListComunas(ctx context.Context, sessionID, region string) ([]string, string, error) {
	sess, id := ss.sessions.Get(sessionID)
	slug, err := regionSlug(region)
	if err != nil {
		return nil, id, err
	}
	districts, err := sess.Index().LoadDistricts(ctx, slug)
	return districts, id, err
}

// SuggestStreets gợi ý tên đường trong comuna. An empty query returns the
// catalog head.
func (ss *SearchService) SuggestStreets(ctx context.Context, sessionID, region, district, query string, limit int) ([]string, string, error) {
	sess, id := ss.sessions.Get(sessionID)
	slug, err := regionSlug(region)
	if err != nil {
		return nil, id, err
	}
	if limit <= 0 {
		limit = ss.suggestions
	}

	if query != "" && ss.suggester != nil {
		names, err := ss.suggester.SearchStreets(ctx, slug, district, query, limit)
		if err == nil && len(names) > 0 {
			return names, id, nil
		}
		if err != nil {
			ss.logger.Warn("Meilisearch suggestion failed, falling back to catalog", zap.Error(err))
		}
	}

	catalog := sess.Index().LoadStreets(ctx, slug, district)
	if query == "" {
		if len(catalog) > limit {
			catalog = catalog[:limit]
		}
		return catalog, id, nil
	}
	names := matcher.Candidates(catalog, query, limit)
	if len(names) == 0 {
		names = matcher.Suggest(catalog, query, limit)
	}
	return names, id, nil
}

// resolve runs q through the session backend and records the outcome.
func (ss *SearchService) resolve(ctx context.Context, sessionID string, q models.Query) (*models.Resolution, *Session, uint64, error) {
	sess, _ := ss.sessions.Get(sessionID)
	tok := sess.NextToken()

	q = q.Normalized()
	if q.Region != "" {
		slug, err := regionSlug(q.Region)
		if err != nil {
			return nil, sess, tok, err
		}
		q.Region = slug
	}

	res, err := sess.Backend().Resolve(ctx, q)
	if err != nil {
		return nil, sess, tok, fmt.Errorf("resolve: %w", err)
	}
	return res, sess, tok, nil
}

// Search tra cứu một trang kết quả. The session id is created when empty.
func (ss *SearchService) Search(ctx context.Context, sessionID string, q models.Query) (*models.SearchResult, string, error) {
	start := time.Now()

	res, sess, tok, err := ss.resolve(ctx, sessionID, q)
	if err != nil {
		return nil, sess.ID, err
	}

	page := results.Paginate(res.Rows, q.Page, ss.pageSize)
	stale := !sess.IsLatest(tok)
	if stale {
		ss.logger.Info("Superseded search result",
			zap.String("session_id", sess.ID),
			zap.Uint64("token", tok))
	}
	metrics.ObserveSearch(string(res.Status), time.Since(start), stale)

	out := &models.SearchResult{
		Query:        q.Normalized(),
		Status:       res.Status,
		Message:      res.Message,
		InterpretedA: res.InterpretedA,
		InterpretedB: res.InterpretedB,
		Hints:        res.Hints,
		Rows:         page.Visible,
		Total:        page.Total,
		Page:         page.Page,
		PageSize:     ss.pageSize,
		Token:        tok,
		Stale:        stale,
	}
	out.Query.Page = page.Page

	ss.logger.Debug("Search completed",
		zap.String("status", string(res.Status)),
		zap.Int("total", page.Total),
		zap.Duration("took", time.Since(start)))
	return out, sess.ID, nil
}

// Export trả về toàn bộ rows (không phân trang) của query
func (ss *SearchService) Export(ctx context.Context, sessionID string, q models.Query) (*models.Resolution, error) {
	res, _, _, err := ss.resolve(ctx, sessionID, q)
	if err != nil {
		return nil, err
	}
	if res.Rows == nil {
		res.Rows = []models.AccidentRecord{}
	}
	return res, nil
}
