package normalizer

import (
	"regexp"
	"strings"
)

// SinDato is the slug of any text with no usable characters.
const SinDato = "sin-dato"

const pairSeparator = "__x__"

// BucketFallback is the bucket letter for keys that do not start with [a-z0-9].
const BucketFallback = "_"

var reNonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug canonicalizes region, comuna and street names into partition keys.
// Output always matches ^[a-z0-9]+(-[a-z0-9]+)*$ or equals SinDato, and
// Slug(Slug(x)) == Slug(x).
func Slug(text string) string {
	s := strings.TrimSpace(Fold(text))
	s = reNonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return SinDato
	}
	return s
}

// PairKey builds the intersection key for two street slugs, in the given order.
func PairKey(slugA, slugB string) string {
	return slugA + pairSeparator + slugB
}

// SplitPairKey is the inverse of PairKey.
func SplitPairKey(key string) (slugA, slugB string, ok bool) {
	return strings.Cut(key, pairSeparator)
}

// BucketLetter returns the shard letter for a key whose first street slug is slugA.
func BucketLetter(slugA string) string {
	if slugA == "" {
		return BucketFallback
	}
	c := slugA[0]
	if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
		return string(c)
	}
	return BucketFallback
}

// BucketLetters lists every shard letter a bucketed pack may contain.
func BucketLetters() []string {
	letters := make([]string, 0, 37)
	for c := 'a'; c <= 'z'; c++ {
		letters = append(letters, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		letters = append(letters, string(c))
	}
	return append(letters, BucketFallback)
}
