package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// IntersectionPack maps "slugA__x__slugB" keys to the rows recorded at that
// intersection. Key order and row order are kept exactly as stored.
type IntersectionPack struct {
	Intersections map[string][]AccidentRecord
	order         []string
}

// NewIntersectionPack tạo mới IntersectionPack rỗng
func NewIntersectionPack() *IntersectionPack {
	return &IntersectionPack{Intersections: make(map[string][]AccidentRecord)}
}

// Add appends rows under key, remembering first-seen key order.
func (p *IntersectionPack) Add(key string, rows ...AccidentRecord) {
	if p.Intersections == nil {
		p.Intersections = make(map[string][]AccidentRecord)
	}
	if _, exists := p.Intersections[key]; !exists {
		p.order = append(p.order, key)
	}
	p.Intersections[key] = append(p.Intersections[key], rows...)
}

// Get returns the rows stored under one exact key.
func (p *IntersectionPack) Get(key string) []AccidentRecord {
	if p == nil {
		return nil
	}
	return p.Intersections[key]
}

// Keys returns the keys in stored order.
func (p *IntersectionPack) Keys() []string {
	if p == nil {
		return nil
	}
	if len(p.order) != len(p.Intersections) {
		p.rebuildOrder()
	}
	return append([]string(nil), p.order...)
}

// Len counts rows across all keys.
func (p *IntersectionPack) Len() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, rows := range p.Intersections {
		n += len(rows)
	}
	return n
}

// rebuildOrder covers packs whose map was filled directly.
func (p *IntersectionPack) rebuildOrder() {
	seen := make(map[string]bool, len(p.order))
	kept := p.order[:0]
	for _, k := range p.order {
		if _, ok := p.Intersections[k]; ok && !seen[k] {
			seen[k] = true
			kept = append(kept, k)
		}
	}
	var extra []string
	for k := range p.Intersections {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sortStrings(extra)
	p.order = append(kept, extra...)
}

// UnmarshalJSON decodes {"intersections": {...}} keeping key order.
func (p *IntersectionPack) UnmarshalJSON(data []byte) error {
	var raw struct {
		Intersections json.RawMessage `json:"intersections"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Intersections = make(map[string][]AccidentRecord)
	p.order = nil

	body := bytes.TrimSpace(raw.Intersections)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("intersections: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("intersections: expected key, got %v", tok)
		}
		var rows []AccidentRecord
		if err := dec.Decode(&rows); err != nil {
			return fmt.Errorf("intersections[%s]: %w", key, err)
		}
		p.Add(key, rows...)
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes keys in stored order.
func (p IntersectionPack) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"intersections":{`)
	for i, key := range p.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		rows := p.Intersections[key]
		if rows == nil {
			rows = []AccidentRecord{}
		}
		v, err := json.Marshal(rows)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}
