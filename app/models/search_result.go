package models

import (
	"fmt"
	"strings"
)

// Status kết quả của một lượt tìm kiếm
type Status string

// Status constants
const (
	StatusNeedsInput   Status = "needs_input"
	StatusNoData       Status = "no_data"
	StatusExact        Status = "exact"
	StatusFuzzy        Status = "fuzzy"
	StatusSingleStreet Status = "single_street"
	StatusNoMatch      Status = "no_match"
)

// Query tham số tìm kiếm; rebuilt for every search.
type Query struct {
	Region   string `json:"region"`
	District string `json:"comuna"`
	StreetA  string `json:"calle_a,omitempty"`
	StreetB  string `json:"calle_b,omitempty"`
	Page     int    `json:"page"`
}

// Normalized trims every text field.
func (q Query) Normalized() Query {
	q.Region = strings.TrimSpace(q.Region)
	q.District = strings.TrimSpace(q.District)
	q.StreetA = strings.TrimSpace(q.StreetA)
	q.StreetB = strings.TrimSpace(q.StreetB)
	return q
}

// Complete reports whether the query names a region, a comuna and a street.
func (q Query) Complete() bool {
	q = q.Normalized()
	return q.Region != "" && q.District != "" && (q.StreetA != "" || q.StreetB != "")
}

// Resolution kết quả resolver trả về, before pagination.
type Resolution struct {
	Status       Status           `json:"status"`
	Rows         []AccidentRecord `json:"-"`
	InterpretedA string           `json:"interpreted_a,omitempty"`
	InterpretedB string           `json:"interpreted_b,omitempty"`
	Hints        []string         `json:"hints,omitempty"`
	Message      string           `json:"message"`
}

// NewResolution builds a resolution with the default message for status.
func NewResolution(status Status, rows []AccidentRecord) *Resolution {
	r := &Resolution{Status: status, Rows: rows}
	r.Message = r.DefaultMessage()
	return r
}

// DefaultMessage thông báo cho người dùng theo status.
func (r *Resolution) DefaultMessage() string {
	switch r.Status {
	case StatusNeedsInput:
		return "Selecciona región y comuna, e ingresa al menos una calle."
	case StatusNoData:
		return "No hay datos de siniestros para esta comuna. Prueba con otra comuna."
	case StatusExact:
		return fmt.Sprintf("Coincidencia exacta: %d filas.", len(r.Rows))
	case StatusFuzzy:
		return fmt.Sprintf("Coincidencia aproximada usando %q × %q: %d filas.", r.InterpretedA, r.InterpretedB, len(r.Rows))
	case StatusSingleStreet:
		return fmt.Sprintf("Búsqueda por una calle: %d filas.", len(r.Rows))
	case StatusNoMatch:
		return "Sin resultados. Prueba sin prefijos (Av., Calle, Pje.) o busca por una sola calle."
	}
	return ""
}

// SearchResult kết quả trả về cho client sau khi phân trang.
type SearchResult struct {
	Query        Query            `json:"query"`
	Status       Status           `json:"status"`
	Message      string           `json:"message"`
	InterpretedA string           `json:"interpreted_a,omitempty"`
	InterpretedB string           `json:"interpreted_b,omitempty"`
	Hints        []string         `json:"hints,omitempty"`
	Rows         []AccidentRecord `json:"rows"`
	Total        int              `json:"total"`
	Page         int              `json:"page"`
	PageSize     int              `json:"page_size"`
	Token        uint64           `json:"token"`
	Stale        bool             `json:"stale"`
}
