package matcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidatesRanking(t *testing.T) {
	catalog := []string{
		"Pasaje Los Libertadores del Sur",
		"Av. Libertad",
		"General Libertad",
		"Los Aromos",
	}

	got := Candidates(catalog, "Libertad", 10)
	assert.Equal(t, []string{"Av. Libertad", "Pasaje Los Libertadores del Sur", "General Libertad"}, got)
}

func TestCandidatesScoreOrder(t *testing.T) {
	catalog := []string{"General Libertad", "Los Libertadores", "Libertad"}
	// scores: 8+0.8=8.8, 4+0.8=4.8, 0+0.4=0.4
	assert.Equal(t, []string{"Libertad", "Los Libertadores", "General Libertad"}, Candidates(catalog, "libertad", 10))
}

func TestCandidatesStableTies(t *testing.T) {
	catalog := []string{"Calle Roble", "Av. Roble", "Pje. Roble"}
	assert.Equal(t, []string{"Calle Roble", "Av. Roble", "Pje. Roble"}, Candidates(catalog, "roble", 10))
}

func TestCandidatesTruncatesAndEmptyQuery(t *testing.T) {
	var catalog []string
	for i := 0; i < 25; i++ {
		catalog = append(catalog, fmt.Sprintf("Los Pinos %d", i))
	}
	assert.Len(t, Candidates(catalog, "pinos", 10), 10)
	assert.Empty(t, Candidates(catalog, "   ", 10))
	assert.Empty(t, Candidates(catalog, "Avenida", 10))
	assert.Empty(t, Candidates(nil, "pinos", 10))
}

func TestCandidatesIgnoresAccentsAndPrefixes(t *testing.T) {
	catalog := []string{"Avenida Bernardo O'Higgins", "Peñalolén"}
	assert.Equal(t, []string{"Avenida Bernardo O'Higgins"}, Candidates(catalog, "av. bernardo o higgins", 10))
	assert.Equal(t, []string{"Peñalolén"}, Candidates(catalog, "penalolen", 10))
}

func TestSuggestToleratesTypos(t *testing.T) {
	catalog := []string{"Los Aromos", "Libertad", "Los Alamos", "Irarrázaval"}
	got := Suggest(catalog, "Los Aromso", 2)
	assert.NotEmpty(t, got)
	assert.Equal(t, "Los Aromos", got[0])

	assert.Empty(t, Suggest(catalog, "", 3))
	assert.Empty(t, Suggest(catalog, "zzzzzzzzzz", 3))
}
