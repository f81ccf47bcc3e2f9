package normalizer

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/mozillazg/go-unidecode"
)

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var (
	prefixOnce sync.Once
	rePrefix   *regexp.Regexp
)

// streetPrefix compiles the leading roadway-type pattern from the embedded rules.
func streetPrefix() *regexp.Regexp {
	prefixOnce.Do(func() {
		rules, err := LoadRulesConfig()
		if err != nil {
			panic("normalizer: invalid embedded street_types.yaml: " + err.Error())
		}
		words := quoteAll(rules.Tokens())
		dotted := append([]string(nil), rules.DottedOnly...)
		sortLongestFirst(dotted)
		pattern := `^(?:(?:` + strings.Join(words, "|") + `)(?:\.\s*|\s+)`
		if len(dotted) > 0 {
			pattern += `|(?:` + strings.Join(quoteAll(dotted), "|") + `)\.\s*`
		}
		pattern += `)`
		rePrefix = regexp.MustCompile(pattern)
	})
	return rePrefix
}

// NormStreet canonicalizes a street name for containment matching only.
// "Avenida Libertad", "Av. Libertad" and "libertad" all become "libertad".
// Never use it for index keys; see Slug.
func NormStreet(text string) string {
	s := strings.TrimSpace(Fold(text))
	s = strings.ToLower(unidecode.Unidecode(s))
	s = streetPrefix().ReplaceAllString(s, "")
	s = reNonAlnum.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = regexp.QuoteMeta(s)
	}
	return out
}

func sortLongestFirst(tokens []string) {
	sort.SliceStable(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
}
