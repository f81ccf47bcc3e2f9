package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellUnmarshal(t *testing.T) {
	var rec AccidentRecord
	raw := `{"Fecha":"2021-03-04","Hora":null,"Región":"Maule","Fallecidos":2,"Graves":0.5,"Leves":true}`
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, Cell("2021-03-04"), rec.Fecha)
	assert.Equal(t, Cell(""), rec.Hora)
	assert.Equal(t, Cell("Maule"), rec.Region)
	assert.Equal(t, Cell("2"), rec.Fallecidos)
	assert.Equal(t, Cell("0.5"), rec.Graves)
	assert.Equal(t, Cell("true"), rec.Leves)
}

func TestIntersectionPackKeepsKeyOrder(t *testing.T) {
	raw := `{"intersections":{
		"zeta__x__alfa":[{"Fecha":"1"}],
		"alfa__x__beta":[{"Fecha":"2"},{"Fecha":"3"}],
		"medio__x__alfa":[]
	}}`

	var pack IntersectionPack
	require.NoError(t, json.Unmarshal([]byte(raw), &pack))

	assert.Equal(t, []string{"zeta__x__alfa", "alfa__x__beta", "medio__x__alfa"}, pack.Keys())
	assert.Equal(t, 3, pack.Len())
	rows := pack.Get("alfa__x__beta")
	require.Len(t, rows, 2)
	assert.Equal(t, Cell("2"), rows[0].Fecha)
	assert.Equal(t, Cell("3"), rows[1].Fecha)

	out, err := json.Marshal(pack)
	require.NoError(t, err)

	var again IntersectionPack
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, pack.Keys(), again.Keys())
	assert.Equal(t, pack.Get("zeta__x__alfa"), again.Get("zeta__x__alfa"))
}

func TestIntersectionPackEmpty(t *testing.T) {
	var pack IntersectionPack
	require.NoError(t, json.Unmarshal([]byte(`{}`), &pack))
	assert.Equal(t, 0, pack.Len())
	assert.Empty(t, pack.Keys())

	require.Error(t, json.Unmarshal([]byte(`{"intersections":[]}`), &pack))
}

func TestRecordFieldNames(t *testing.T) {
	rec := AccidentRecord{Region: "Maule", UrbanoRural: "Urbano", MGrave: "1"}
	out, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Contains(t, fields, "Región")
	assert.Contains(t, fields, "Urbano/Rural")
	assert.Contains(t, fields, "M/Grave")
	assert.NotContains(t, fields, "Siniestros")
	assert.Len(t, rec.Values(), len(FieldNames))
}

func TestRecordFromFields(t *testing.T) {
	rec := RecordFromFields(map[string]string{
		"REGION":   " Maule ",
		"calleuno": "Av. Brasil",
		"Otro":     "x",
	})
	assert.Equal(t, Cell("Maule"), rec.Region)
	assert.Equal(t, Cell("Av. Brasil"), rec.Calleuno)
}

func TestFindRegion(t *testing.T) {
	r, ok := FindRegion("nuble")
	require.True(t, ok)
	assert.Equal(t, "Ñuble", r.Label)

	_, ok = FindRegion("mendoza")
	assert.False(t, ok)
	assert.Len(t, Regions, 16)
}
