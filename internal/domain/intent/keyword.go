package intent

import "strings"

// DefaultKeyword is the broad fallback category when no taxonomy token
// matches.
const DefaultKeyword = "restaurant"

// keywordTaxonomy maps categories to bilingual trigger tokens. Declaration
// order matters: when several categories match a query, the first declared
// one wins.
var keywordTaxonomy = []struct {
	category string
	tokens   []string
}{
	{"cafe", []string{"cafe", "kopi", "coffee", "kedai"}},
	{"restaurant", []string{"resto", "makan", "kuliner", "restaurant", "warung"}},
	{"tourist_attraction", []string{"wisata", "tourist", "taman", "monumen", "museum"}},
	{"hotel", []string{"hotel", "penginapan"}},
	{"atm", []string{"atm"}},
	{"bank", []string{"bank"}},
}

// SearchKeyword returns the concise category to search with. An explicit
// place type passes through unchanged; otherwise the lowercased query is
// scanned against the taxonomy and the first matching category is returned.
func (i *Intent) SearchKeyword() string {
	if i.placeType != "" {
		return i.placeType
	}
	q := strings.ToLower(i.query)
	for _, entry := range keywordTaxonomy {
		for _, token := range entry.tokens {
			if strings.Contains(q, token) {
				return entry.category
			}
		}
	}
	return DefaultKeyword
}
