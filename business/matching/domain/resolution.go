package domain

import (
	"regexp"
	"sort"
	"strings"
)

// ResolutionMeta is the parsed resolution metadata of a listing. It is
// populated once during normalization; empty fields mean unknown.
type ResolutionMeta struct {
	Source      string // canonical authority keyword, e.g. "coinbase"
	Criteria    string // normalized comparison fragment, e.g. "above 100000"
	Description string // raw resolution text
}

// NewResolutionMeta builds the metadata from the raw description and the
// optional hints a platform adapter may provide. Hints take precedence.
func NewResolutionMeta(description, sourceHint, criteriaHint string) ResolutionMeta {
	meta := ResolutionMeta{Description: strings.TrimSpace(description)}

	if src := strings.TrimSpace(sourceHint); src != "" {
		if kw := ExtractResolutionSource(src); kw != "" {
			meta.Source = kw
		} else {
			meta.Source = strings.ToLower(src)
		}
	} else {
		meta.Source = ExtractResolutionSource(meta.Description)
	}

	if crit := strings.TrimSpace(criteriaHint); crit != "" {
		if frag := ExtractCriteria(crit); frag != "" {
			meta.Criteria = frag
		} else {
			meta.Criteria = strings.Join(strings.Fields(strings.ToLower(crit)), " ")
		}
	} else {
		meta.Criteria = ExtractCriteria(meta.Description)
	}

	return meta
}

// Known resolution authorities.
var authorityKeywords = []string{
	"coinbase", "binance", "kraken", "coingecko", "coinmarketcap", "chainlink",
	"tradingview", "bloomberg", "reuters", "ap", "espn", "nba", "nfl", "mlb",
	"fifa", "uefa", "bls", "fed", "cme", "yahoo finance", "cnn", "fox news",
	"nyt", "wsj",
}

var authorityAliases = strings.NewReplacer(
	"associated press", "ap",
	"coin market cap", "coinmarketcap",
	"federal reserve", "fed",
	"bureau of labor statistics", "bls",
	"new york times", "nyt",
	"wall street journal", "wsj",
)

var (
	authorityRE = func() *regexp.Regexp {
		kws := append([]string(nil), authorityKeywords...)
		sort.Slice(kws, func(i, j int) bool { return len(kws[i]) > len(kws[j]) })
		for i, kw := range kws {
			kws[i] = regexp.QuoteMeta(kw)
		}
		return regexp.MustCompile(`\b(` + strings.Join(kws, "|") + `)\b`)
	}()

	sourcePhraseRE = regexp.MustCompile(
		`\b(?:according to|based on|as reported by|resolution source:?|resolves? (?:via|using|per)|source:|per)\s+(?:the\s+)?([^\n]{0,60})`)
)

// ExtractResolutionSource returns the authority keyword named in text, or "".
// Authorities introduced by phrases such as "according to X" win over bare
// mentions elsewhere in the text.
func ExtractResolutionSource(text string) string {
	lower := authorityAliases.Replace(strings.ToLower(text))

	for _, m := range sourcePhraseRE.FindAllStringSubmatch(lower, -1) {
		if kw := authorityRE.FindString(m[1]); kw != "" {
			return kw
		}
	}
	return authorityRE.FindString(lower)
}

const numberPattern = `\$?\s*(\d[\d,]*(?:\.\d+)?)(?:\s*(%)|\s*(percent|thousand|million|billion|[kmb])\b)?`

var (
	operatorCriteriaRE = regexp.MustCompile(`(>=|<=|>|<|=)\s*` + numberPattern)
	phraseCriteriaRE   = regexp.MustCompile(
		`\b(at least|at most|greater than|more than|less than|fewer than|above|below|over|under|` +
			`reach(?:es)?|exceed(?:s)?|hit(?:s)?|(?:fall|falls|drop|drops) below|(?:rise|rises) above)\s+` + numberPattern)

	unitWords = map[string]string{
		"thousand": "k",
		"million":  "m",
		"billion":  "b",
	}
)

// ExtractCriteria returns the first comparison fragment found in text, in a
// normalized form such as "above 100000" or ">= 3 percent". It returns ""
// when no threshold is present.
func ExtractCriteria(text string) string {
	lower := strings.ToLower(text)

	best := -1
	var match []string
	for _, re := range []*regexp.Regexp{operatorCriteriaRE, phraseCriteriaRE} {
		loc := re.FindStringSubmatchIndex(lower)
		if loc == nil {
			continue
		}
		if best == -1 || loc[0] < best {
			best = loc[0]
			match = submatches(lower, loc)
		}
	}
	if match == nil {
		return ""
	}

	op := strings.Join(strings.Fields(match[1]), " ")
	number := strings.ReplaceAll(match[2], ",", "")

	switch unit := match[4]; {
	case match[3] == "%" || unit == "percent":
		return op + " " + number + " percent"
	case unit != "":
		if short, ok := unitWords[unit]; ok {
			unit = short
		}
		number = ExpandShorthand(number + unit)
	}
	return op + " " + number
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}
