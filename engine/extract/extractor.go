// Package extract turns free-text renovation transcripts into structured
// hints using lexicon and regex rules. No external NLP dependencies.
package extract

import (
	"strings"
	"unicode"

	"github.com/donizo/pricing-engine/engine/domain"
)

// renovationTypes maps a canonical renovation type to its trigger phrases.
// Scanned in order; the first phrase found in the transcript wins.
var renovationTypes = []struct {
	key      string
	synonyms []string
}{
	{"bathroom", []string{"bathroom", "salle de bain", "toilet", "wc"}},
	{"kitchen", []string{"kitchen", "cuisine"}},
	{"living_room", []string{"living room", "salon"}},
	{"bedroom", []string{"bedroom", "chambre"}},
	{"terrace", []string{"terrace", "balcony", "balcon"}},
	{"new_build", []string{"new build", "construction neuve", "maison neuve"}},
	{"renovation", []string{"renovation", "reno", "rénover"}},
}

// materialKeywords flag a word as the head of a material phrase.
var materialKeywords = []string{
	"tile", "carrelage", "glue", "colle", "paint", "peinture",
	"cement", "ciment", "toilet", "lavabo", "sink", "douche",
	"plomberie", "plaster", "wood", "bois", "parquet",
	"adhesive", "joint", "isolation", "plinth", "flooring", "panel",
}

var vendors = []string{
	"castorama", "leroy merlin", "manomano", "bricodepot", "mr bricolage",
}

// regionLexicon lists French administrative regions, then major cities as a
// location fallback.
var regionLexicon = []string{
	"Île-de-France", "Provence-Alpes-Côte d'Azur", "Auvergne-Rhône-Alpes",
	"Occitanie", "Nouvelle-Aquitaine", "Bretagne", "Normandie", "Grand Est",
	"Hauts-de-France", "Pays de la Loire", "Centre-Val de Loire",
	"Bourgogne-Franche-Comté", "Corse",
	"Paris", "Marseille", "Lyon", "Toulouse", "Nice", "Nantes",
	"Bordeaux", "Lille", "Strasbourg",
}

// phraseStopWords never start or extend a material phrase.
var phraseStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"in": true, "on": true, "for": true, "from": true, "with": true,
	"need": true, "needs": true, "want": true, "buy": true, "get": true,
	"some": true, "my": true, "our": true, "to": true, "this": true,
	"that": true, "time": true, "better": true, "quality": true,
	"install": true, "replace": true, "redo": true, "new": true,
	"also": true, "please": true,
}

// Parse extracts the material/vendor view of a transcript.
func Parse(text string) domain.TranscriptExtraction {
	lower := strings.ToLower(text)

	var renovationType string
	for _, rt := range renovationTypes {
		for _, syn := range rt.synonyms {
			if strings.Contains(lower, syn) {
				renovationType = rt.key
				break
			}
		}
		if renovationType != "" {
			break
		}
	}

	var vendor string
	for _, v := range vendors {
		if strings.Contains(lower, v) {
			vendor = v
			break
		}
	}

	var region string
	for _, r := range regionLexicon {
		if strings.Contains(lower, strings.ToLower(r)) {
			region = r
			break
		}
	}

	return domain.TranscriptExtraction{
		RenovationType: renovationType,
		Materials:      materialPhrases(text),
		Region:         region,
		Vendor:         vendor,
	}
}

// materialPhrases finds material keyword mentions and expands each into a
// short descriptor phrase: the keyword word plus up to two preceding
// descriptor words. Phrases are deduplicated preserving first-seen order.
func materialPhrases(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})

	var phrases []string
	seen := make(map[string]bool)

	for i, w := range words {
		cleaned := trimWord(w)
		if cleaned == "" || !isMaterialWord(cleaned) {
			continue
		}

		start := i
		for start > 0 && i-start < 2 {
			prev := trimWord(words[start-1])
			if prev == "" || phraseStopWords[prev] || isMaterialWord(prev) {
				break
			}
			start--
		}

		parts := make([]string, 0, i-start+1)
		for j := start; j <= i; j++ {
			parts = append(parts, strings.Trim(words[j], ".,!?;:\"()"))
		}
		phrase := strings.Join(parts, " ")
		key := strings.ToLower(phrase)
		if !seen[key] {
			seen[key] = true
			phrases = append(phrases, phrase)
		}
	}
	return phrases
}

func isMaterialWord(w string) bool {
	for _, kw := range materialKeywords {
		if strings.Contains(w, kw) {
			return true
		}
	}
	return false
}

func trimWord(w string) string {
	return strings.ToLower(strings.Trim(w, ".,!?;:\"()"))
}
