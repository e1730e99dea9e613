package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Supported lists the languages the engine answers in. The reply catalog is
// validated against this set at startup.
var Supported = []language.Tag{language.English, language.BrazilianPortuguese}

var matcher = language.NewMatcher(Supported)

// accentFold strips combining marks so "orçamento" and "orcamento" compare
// equal. Pattern tables are written in unaccented form.
var accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// languageMarkers are per-language keyword sets used to detect which language
// a query was actually asked in, independent of the stored preference. Mixed
// households ask in either language and expect the answer in the one they used.
var languageMarkers = map[language.Tag][]string{
	language.English: {
		"how much", "spend", "spent", "spending", "saving", "savings",
		"income", "earn", "budget", "balance", "last month", "this month",
		"last year", "this year", "compared", "money",
	},
	language.BrazilianPortuguese: {
		"quanto", "gastei", "gastamos", "gastando", "gastos", "poupanca",
		"economizando", "economizamos", "guardamos", "renda", "orcamento",
		"saldo", "mes passado", "este mes", "ano passado", "este ano",
		"comparado", "recebi", "ganhei", "dinheiro",
	},
}

// NormalizeText lower-cases, strips accents, and collapses whitespace. All
// pattern matching and parameter extraction runs over this form.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(accentFold, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}

// ParsePreference maps a stored/requested language preference onto the
// supported set, falling back when the preference is absent or unsupported.
func ParsePreference(pref string, fallback language.Tag) language.Tag {
	if pref == "" {
		return fallback
	}
	tag, err := language.Parse(pref)
	if err != nil {
		return fallback
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return fallback
	}
	return Supported[idx]
}

// DetectLanguage picks the working language for a single query. The stored
// preference wins unless another supported language has a strictly higher
// keyword match density in the text. Pure function; never blocks.
func DetectLanguage(text string, preferred language.Tag) language.Tag {
	normText := " " + NormalizeText(text) + " "

	best := preferred
	bestScore := markerScore(normText, preferred)
	for _, lang := range Supported {
		if lang == preferred {
			continue
		}
		if s := markerScore(normText, lang); s > bestScore {
			best, bestScore = lang, s
		}
	}
	return best
}

func markerScore(paddedText string, lang language.Tag) int {
	score := 0
	for _, marker := range languageMarkers[lang] {
		if strings.Contains(paddedText, " "+marker) {
			score++
		}
	}
	return score
}
