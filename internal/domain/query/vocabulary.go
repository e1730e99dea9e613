package query

import "golang.org/x/text/language"

// Canonical category names used across the ledger. Stored transactions carry
// these values; query text is mapped onto them through the synonym tables
// below so "groceries", "mercado" and "restaurante" all resolve to "food".
const (
	CategoryFood          = "food"
	CategoryHousing       = "housing"
	CategoryTransport     = "transport"
	CategoryLeisure       = "leisure"
	CategoryHealth        = "health"
	CategoryUtilities     = "utilities"
	CategoryEducation     = "education"
	CategoryShopping      = "shopping"
	CategorySubscriptions = "subscriptions"
	CategoryTravel        = "travel"
)

// categorySynonyms maps normalized query tokens to canonical categories.
// Multi-word entries match as contiguous phrases. The tables are static by
// design; a term missing here simply is not a category filter.
var categorySynonyms = map[language.Tag]map[string]string{
	language.English: {
		"food":           CategoryFood,
		"groceries":      CategoryFood,
		"grocery":        CategoryFood,
		"restaurant":     CategoryFood,
		"restaurants":    CategoryFood,
		"eating out":     CategoryFood,
		"dining":         CategoryFood,
		"rent":           CategoryHousing,
		"housing":        CategoryHousing,
		"mortgage":       CategoryHousing,
		"transport":      CategoryTransport,
		"transportation": CategoryTransport,
		"gas":            CategoryTransport,
		"fuel":           CategoryTransport,
		"uber":           CategoryTransport,
		"parking":        CategoryTransport,
		"leisure":        CategoryLeisure,
		"entertainment":  CategoryLeisure,
		"fun":            CategoryLeisure,
		"movies":         CategoryLeisure,
		"health":         CategoryHealth,
		"doctor":         CategoryHealth,
		"pharmacy":       CategoryHealth,
		"medicine":       CategoryHealth,
		"utilities":      CategoryUtilities,
		"electricity":    CategoryUtilities,
		"water bill":     CategoryUtilities,
		"internet":       CategoryUtilities,
		"education":      CategoryEducation,
		"tuition":        CategoryEducation,
		"courses":        CategoryEducation,
		"shopping":       CategoryShopping,
		"clothes":        CategoryShopping,
		"clothing":       CategoryShopping,
		"subscriptions":  CategorySubscriptions,
		"streaming":      CategorySubscriptions,
		"travel":         CategoryTravel,
		"trip":           CategoryTravel,
		"vacation":       CategoryTravel,
		"flights":        CategoryTravel,
	},
	language.BrazilianPortuguese: {
		"comida":         CategoryFood,
		"alimentacao":    CategoryFood,
		"mercado":        CategoryFood,
		"supermercado":   CategoryFood,
		"restaurante":    CategoryFood,
		"restaurantes":   CategoryFood,
		"ifood":          CategoryFood,
		"aluguel":        CategoryHousing,
		"moradia":        CategoryHousing,
		"casa":           CategoryHousing,
		"transporte":     CategoryTransport,
		"gasolina":       CategoryTransport,
		"combustivel":    CategoryTransport,
		"uber":           CategoryTransport,
		"estacionamento": CategoryTransport,
		"lazer":          CategoryLeisure,
		"entretenimento": CategoryLeisure,
		"cinema":         CategoryLeisure,
		"saude":          CategoryHealth,
		"medico":         CategoryHealth,
		"farmacia":       CategoryHealth,
		"remedio":        CategoryHealth,
		"remedios":       CategoryHealth,
		"contas":         CategoryUtilities,
		"luz":            CategoryUtilities,
		"agua":           CategoryUtilities,
		"internet":       CategoryUtilities,
		"educacao":       CategoryEducation,
		"escola":         CategoryEducation,
		"faculdade":      CategoryEducation,
		"cursos":         CategoryEducation,
		"compras":        CategoryShopping,
		"roupas":         CategoryShopping,
		"assinaturas":    CategorySubscriptions,
		"streaming":      CategorySubscriptions,
		"viagem":         CategoryTravel,
		"viagens":        CategoryTravel,
		"passagens":      CategoryTravel,
	},
}

// currencyTokens maps words and symbols found in query text to ISO codes.
// A bare "$" is deliberately absent: it is ambiguous between USD and BRL
// shorthand, so only explicit tokens override the base currency.
var currencyTokens = map[string]string{
	"usd":     "USD",
	"dollar":  "USD",
	"dollars": "USD",
	"dolar":   "USD",
	"dolares": "USD",
	"us$":     "USD",
	"eur":     "EUR",
	"euro":    "EUR",
	"euros":   "EUR",
	"€":       "EUR",
	"brl":     "BRL",
	"real":    "BRL",
	"reais":   "BRL",
	"r$":      "BRL",
	"gbp":     "GBP",
	"pound":   "GBP",
	"pounds":  "GBP",
	"libra":   "GBP",
	"libras":  "GBP",
	"£":       "GBP",
}
