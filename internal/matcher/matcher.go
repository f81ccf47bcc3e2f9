// Package matcher xếp hạng tên đường trong danh mục của một comuna theo
// một chuỗi người dùng nhập.
package matcher

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/siniestros-lookup/internal/normalizer"
)

// DefaultMaxCandidates số ứng viên tối đa mỗi phía
const DefaultMaxCandidates = 10

// lengthWeight phạt chuỗi dài
const lengthWeight = 0.05

type scored struct {
	name  string
	score float64
}

// Candidates returns up to maxN catalog entries whose canonical form contains
// the canonical query. Ranking is by match position plus a length penalty,
// ascending; ties keep catalog order.
func Candidates(catalog []string, query string, maxN int) []string {
	q := normalizer.NormStreet(query)
	if q == "" || maxN <= 0 {
		return nil
	}

	var hits []scored
	for _, entry := range catalog {
		canon := normalizer.NormStreet(entry)
		idx := strings.Index(canon, q)
		if idx < 0 {
			continue
		}
		hits = append(hits, scored{
			name:  entry,
			score: float64(idx) + lengthWeight*float64(len(canon)),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score < hits[j].score })
	if len(hits) > maxN {
		hits = hits[:maxN]
	}

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// minSuggestScore ngưỡng tối thiểu cho gợi ý
const minSuggestScore = 0.75

// Suggest ranks catalog entries by similarity to query for "did you mean"
// hints. Unlike Candidates it tolerates typos; entries below minSuggestScore
// are dropped.
func Suggest(catalog []string, query string, n int) []string {
	q := normalizer.NormStreet(query)
	if q == "" || n <= 0 {
		return nil
	}

	type suggestion struct {
		name  string
		score float64
		dist  int
	}
	var list []suggestion
	seen := make(map[string]bool)
	for _, entry := range catalog {
		canon := normalizer.NormStreet(entry)
		if canon == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		score, dist := similarity(q, canon)
		if score < minSuggestScore {
			continue
		}
		list = append(list, suggestion{name: entry, score: score, dist: dist})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].dist < list[j].dist
	})
	if len(list) > n {
		list = list[:n]
	}
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.name
	}
	return out
}

// similarity tính điểm fuzzy: max của Jaro-Winkler và Levenshtein chuẩn hóa.
func similarity(query, candidate string) (float64, int) {
	jaro := smetrics.JaroWinkler(query, candidate, 0.7, 4)

	dist := levenshtein.ComputeDistance(query, candidate)
	maxLen := math.Max(float64(len(query)), float64(len(candidate)))
	lev := 1.0 - float64(dist)/maxLen

	return math.Max(jaro, lev), dist
}
