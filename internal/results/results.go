// Package results gộp, loại trùng và phân trang các dòng siniestro.
package results

import "github.com/siniestros-lookup/app/models"

// DefaultPageSize số dòng mỗi trang
const DefaultPageSize = 100

// Collector accumulates rows in arrival order, dropping exact duplicates.
// Row identity is full value equality of the record.
type Collector struct {
	seen map[models.AccidentRecord]struct{}
	rows []models.AccidentRecord
}

// NewCollector tạo mới Collector
func NewCollector() *Collector {
	return &Collector{seen: make(map[models.AccidentRecord]struct{})}
}

// Add appends rows not seen before and returns how many were new.
func (c *Collector) Add(rows ...models.AccidentRecord) int {
	added := 0
	for _, r := range rows {
		if _, dup := c.seen[r]; dup {
			continue
		}
		c.seen[r] = struct{}{}
		c.rows = append(c.rows, r)
		added++
	}
	return added
}

// Rows returns the collected rows in first-seen order.
func (c *Collector) Rows() []models.AccidentRecord { return c.rows }

// Len số dòng đã gộp
func (c *Collector) Len() int { return len(c.rows) }

// Dedup removes duplicate rows keeping the first occurrence.
func Dedup(rows []models.AccidentRecord) []models.AccidentRecord {
	c := NewCollector()
	c.Add(rows...)
	return c.Rows()
}

// Page một trang kết quả.
type Page struct {
	Visible []models.AccidentRecord
	Total   int
	Page    int
}

// Paginate slices rows for a 1-indexed page. Pages below 1 are clamped to 1;
// pages past the end yield an empty Visible slice.
func Paginate(rows []models.AccidentRecord, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := Page{Visible: []models.AccidentRecord{}, Total: len(rows), Page: page}
	// so sánh theo số trang trước khi nhân để tránh tràn số
	pages := (len(rows) + pageSize - 1) / pageSize
	if page-1 >= pages {
		return p
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	p.Visible = rows[start:end]
	return p
}
