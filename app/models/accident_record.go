package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Cell giá trị một ô của bảng siniestros. Source files mix JSON numbers,
// strings and nulls for the same column, so every scalar is kept in its text
// form; null becomes "".
type Cell string

// UnmarshalJSON accepts any JSON scalar.
func (c *Cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Cell(s)
		return nil
	}
	*c = Cell(b)
	return nil
}

// String implements fmt.Stringer.
func (c Cell) String() string { return string(c) }

// AccidentRecord một dòng siniestro. The JSON names are the positional
// contract shared with the renderers and must not change.
// Two records are the same row iff they are == (no synthetic id exists).
type AccidentRecord struct {
	Fecha       Cell `json:"Fecha"`
	Hora        Cell `json:"Hora"`
	Region      Cell `json:"Región"`
	Comuna      Cell `json:"Comuna"`
	Calleuno    Cell `json:"Calleuno"`
	Calledos    Cell `json:"Calledos"`
	UrbanoRural Cell `json:"Urbano/Rural"`
	Fallecidos  Cell `json:"Fallecidos"`
	Graves      Cell `json:"Graves"`
	MGrave      Cell `json:"M/Grave"`
	Leves       Cell `json:"Leves"`
	Ilesos      Cell `json:"Ilesos"`
	Siniestros  Cell `json:"Siniestros,omitempty"`
	Causas      Cell `json:"Causas,omitempty"`
}

// Field names in display order.
const (
	FieldFecha       = "Fecha"
	FieldHora        = "Hora"
	FieldRegion      = "Región"
	FieldComuna      = "Comuna"
	FieldCalleuno    = "Calleuno"
	FieldCalledos    = "Calledos"
	FieldUrbanoRural = "Urbano/Rural"
	FieldFallecidos  = "Fallecidos"
	FieldGraves      = "Graves"
	FieldMGrave      = "M/Grave"
	FieldLeves       = "Leves"
	FieldIlesos      = "Ilesos"
	FieldSiniestros  = "Siniestros"
	FieldCausas      = "Causas"
)

// FieldNames lists the base columns followed by the optional variant columns.
var FieldNames = []string{
	FieldFecha, FieldHora, FieldRegion, FieldComuna, FieldCalleuno, FieldCalledos,
	FieldUrbanoRural, FieldFallecidos, FieldGraves, FieldMGrave, FieldLeves, FieldIlesos,
	FieldSiniestros, FieldCausas,
}

// Values trả về giá trị theo thứ tự FieldNames.
func (r AccidentRecord) Values() []string {
	return []string{
		string(r.Fecha), string(r.Hora), string(r.Region), string(r.Comuna),
		string(r.Calleuno), string(r.Calledos), string(r.UrbanoRural),
		string(r.Fallecidos), string(r.Graves), string(r.MGrave), string(r.Leves),
		string(r.Ilesos), string(r.Siniestros), string(r.Causas),
	}
}

// RecordFromFields builds a record from a column-name → value map.
// Header names are matched after trimming and ignoring case and accents
// ("Region" and "Región" are the same column). Unknown columns are ignored.
func RecordFromFields(fields map[string]string) AccidentRecord {
	get := func(name string) Cell {
		want := foldHeader(name)
		for k, v := range fields {
			if foldHeader(k) == want {
				return Cell(strings.TrimSpace(v))
			}
		}
		return ""
	}
	return AccidentRecord{
		Fecha:       get(FieldFecha),
		Hora:        get(FieldHora),
		Region:      get(FieldRegion),
		Comuna:      get(FieldComuna),
		Calleuno:    get(FieldCalleuno),
		Calledos:    get(FieldCalledos),
		UrbanoRural: get(FieldUrbanoRural),
		Fallecidos:  get(FieldFallecidos),
		Graves:      get(FieldGraves),
		MGrave:      get(FieldMGrave),
		Leves:       get(FieldLeves),
		Ilesos:      get(FieldIlesos),
		Siniestros:  get(FieldSiniestros),
		Causas:      get(FieldCausas),
	}
}

func foldHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u").Replace(s)
}
