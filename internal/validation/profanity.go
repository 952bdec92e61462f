package validation

import (
	"strings"
	"unicode"

	"auction-market/internal/auctionerrors"
)

// bannedRoots are matched anywhere inside a normalized word.
var bannedRoots = []string{
	"fuck",
	"shit",
	"cunt",
	"bitch",
	"asshole",
	"bastard",
	"wanker",
	"whore",
	"nigger",
	"faggot",
	"motherfucker",
}

// bannedWords only match a whole normalized word; as roots they would hit
// ordinary words ("title", "cocktail", "dickens").
var bannedWords = []string{
	"tit",
	"tits",
	"titis",
	"titties",
	"dick",
	"cock",
	"pussy",
	"slut",
	"twat",
	"prick",
	"piss",
	"crap",
}

// innocentWords contain a banned root but are ordinary listing vocabulary.
var innocentWords = toSet([]string{
	"shiitake",
	"shiitakes",
	"shitake",
	"shitakes",
	"scunthorpe",
})

// leet maps look-alike characters to the letter they stand in for.
var leet = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'9': 'g',
	'@': 'a',
	'$': 's',
	'!': 'i',
	'|': 'l',
	'+': 't',
}

var (
	collapsedRoots = collapseAll(bannedRoots)
	wordSet        = toSet(bannedWords)
	collapsedWords = toSet(collapseAll(bannedWords))
)

// ValidateContentPolicy fails with ErrProhibitedContent when text contains a
// denylisted word, including simple character-substitution spellings such as
// "5h1t", "sh!t", "f.u.c.k", "f u c k" or "fuuuck".
func ValidateContentPolicy(text string) error {
	for _, word := range candidateWords(text) {
		if isProfane(word) {
			return auctionerrors.ErrProhibitedContent
		}
	}
	return nil
}

func isProfane(word string) bool {
	if word == "" {
		return false
	}
	if _, ok := innocentWords[word]; ok {
		return false
	}
	if _, ok := wordSet[word]; ok {
		return true
	}
	collapsed := collapseRepeats(word)
	if _, ok := collapsedWords[collapsed]; ok {
		return true
	}
	for i, root := range bannedRoots {
		if strings.Contains(word, root) || strings.Contains(collapsed, collapsedRoots[i]) {
			return true
		}
	}
	return false
}

// candidateWords normalizes every whitespace-separated token and also joins
// runs of single letters so spaced-out spellings are checked as one word.
func candidateWords(text string) []string {
	tokens := strings.Fields(text)
	words := make([]string, 0, len(tokens)+1)

	var run strings.Builder
	flush := func() {
		if run.Len() > 1 {
			words = append(words, run.String())
		}
		run.Reset()
	}

	for _, tok := range tokens {
		word := normalize(tok)
		if len([]rune(word)) == 1 {
			run.WriteString(word)
			continue
		}
		flush()
		words = append(words, word)
	}
	flush()

	return words
}

// normalize lower-cases a token, undoes leetspeak and drops everything that is
// not a letter.
func normalize(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(token) {
		if sub, ok := leet[r]; ok {
			r = sub
		}
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseRepeats(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if i > 0 && r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func collapseAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = collapseRepeats(w)
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
