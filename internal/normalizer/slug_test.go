package normalizer

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlug(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Región Metropolitana de Santiago", "region-metropolitana-de-santiago"},
		{"Ñuble", "nuble"},
		{"Libertador General Bernardo O’Higgins", "libertador-general-bernardo-o-higgins"},
		{"  Av. Libertad  ", "av-libertad"},
		{"Los Aromos", "los-aromos"},
		{"--Pasaje 12 / B--", "pasaje-12-b"},
		{"", SinDato},
		{"   ", SinDato},
		{"¿?¡!", SinDato},
		{"ΣΩ", SinDato},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slug(tc.input))
		})
	}
}

func TestSlug_IdempotentAndTotal(t *testing.T) {
	inputs := []string{
		"Calle Uno", "AVENIDA  VICUÑA MACKENNA", "ruta 5 sur", "ñandú", "O'Higgins",
		"12 de Octubre", "__x__", "sin dato", "Camino a Melipilla km 22", "\t\n",
	}

	for _, in := range inputs {
		s := Slug(in)
		assert.True(t, s == SinDato || slugShape.MatchString(s), "unexpected slug %q for %q", s, in)
		assert.Equal(t, s, Slug(s), "slug not idempotent for %q", in)
	}
}

func TestPairKey(t *testing.T) {
	key := PairKey("libertad", "los-aromos")
	assert.Equal(t, "libertad__x__los-aromos", key)

	a, b, ok := SplitPairKey(key)
	assert.True(t, ok)
	assert.Equal(t, "libertad", a)
	assert.Equal(t, "los-aromos", b)

	_, _, ok = SplitPairKey("no-separator")
	assert.False(t, ok)
}

func TestBucketLetter(t *testing.T) {
	assert.Equal(t, "l", BucketLetter("libertad"))
	assert.Equal(t, "1", BucketLetter("12-de-octubre"))
	assert.Equal(t, BucketFallback, BucketLetter(""))
	assert.Equal(t, BucketFallback, BucketLetter("-x"))
	assert.Len(t, BucketLetters(), 37)
}
