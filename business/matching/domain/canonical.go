package domain

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var symbolReplacer = strings.NewReplacer(
	">=", " above ",
	"<=", " below ",
	">", " above ",
	"<", " below ",
	"&", " and ",
	"%", " percent ",
	"$", "",
)

// phraseSynonyms is applied in order, longer phrases first.
var phraseSynonyms = []struct{ from, to string }{
	{"end of the year", "eoy"},
	{"end of year", "eoy"},
	{"market capitalization", "marketcap"},
	{"market cap", "marketcap"},
	{"greater than", "above"},
	{"more than", "above"},
	{"higher than", "above"},
	{"less than", "below"},
	{"lower than", "below"},
	{"united states", "us"},
}

var tokenSynonyms = map[string]string{
	"btc":  "bitcoin",
	"eth":  "ethereum",
	"sol":  "solana",
	"by":   "",
	"will": "",
	"be":   "",
	"the":  "",
}

var (
	shorthandRE = regexp.MustCompile(`^(\d+(?:\.\d+)?)([kmb])$`)

	multipliers = map[string]decimal.Decimal{
		"k": decimal.NewFromInt(1_000),
		"m": decimal.NewFromInt(1_000_000),
		"b": decimal.NewFromInt(1_000_000_000),
	}
)

// Canonicalize reduces an event title to the form used as grouping key.
// It is idempotent: Canonicalize(Canonicalize(s)) == Canonicalize(s).
func Canonicalize(title string) string {
	// After the first pass every change removes at least one token, so the
	// loop terminates.
	s := canonicalPass(title)
	for {
		next := canonicalPass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func canonicalPass(s string) string {
	s = strings.ToLower(s)
	s = symbolReplacer.Replace(s)
	s = stripPunctuation(s)

	padded := " " + strings.Join(strings.Fields(s), " ") + " "
	for _, syn := range phraseSynonyms {
		padded = strings.ReplaceAll(padded, " "+syn.from+" ", " "+syn.to+" ")
	}

	fields := strings.Fields(padded)
	out := fields[:0]
	for _, tok := range fields {
		if repl, ok := tokenSynonyms[tok]; ok {
			if repl == "" {
				continue
			}
			tok = repl
		}
		out = append(out, ExpandShorthand(tok))
	}
	return strings.Join(out, " ")
}

// ExpandShorthand turns tokens such as "100k", "1.5m" or "2b" into plain
// integers. Other tokens are returned unchanged.
func ExpandShorthand(tok string) string {
	m := shorthandRE.FindStringSubmatch(tok)
	if m == nil {
		return tok
	}
	n, err := decimal.NewFromString(m[1])
	if err != nil {
		return tok
	}
	return n.Mul(multipliers[m[2]]).String()
}

// stripPunctuation replaces everything except letters, digits and decimal
// points between digits with a space.
func stripPunctuation(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' && i > 0 && i < len(runes)-1 && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]):
			b.WriteRune(r)
		case r == ',' && i > 0 && i < len(runes)-1 && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]):
			// thousands separator
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}
