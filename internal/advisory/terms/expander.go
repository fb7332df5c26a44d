// internal/advisory/terms/expander.go
package terms

import (
	"sort"
	"strings"
)

// synonyms maps a normalized token or short phrase to its domain
// expansions. Keys and values are lower case. The table covers the
// abbreviations and colloquialisms advisors see in student questions.
var synonyms = map[string][]string{
	"comp sci":         {"computer science", "computing", "information technology"},
	"cs":               {"computer science", "computing", "information technology"},
	"computer science": {"computing", "information technology", "software development"},
	"it":               {"information technology", "computing"},
	"biz":              {"business", "business administration"},
	"business":         {"business administration", "management", "entrepreneurship"},
	"pre-med":          {"pre-medicine", "biology", "health sciences"},
	"premed":           {"pre-medicine", "biology", "health sciences"},
	"nursing":          {"registered nursing", "health sciences", "patient care"},
	"rn":               {"registered nursing", "nursing"},
	"med":              {"medicine", "health sciences"},
	"bio":              {"biology", "biological sciences"},
	"chem":             {"chemistry", "chemical sciences"},
	"math":             {"mathematics", "applied mathematics", "statistics"},
	"stats":            {"statistics", "data analysis"},
	"engineering":      {"engineering technology", "applied engineering"},
	"mech":             {"mechanical engineering", "mechanics"},
	"ee":               {"electrical engineering", "electronics"},
	"psych":            {"psychology", "behavioral sciences"},
	"poli sci":         {"political science", "government"},
	"econ":             {"economics", "business"},
	"culinary":         {"culinary arts", "food service", "hospitality"},
	"auto":             {"automotive technology", "automotive repair"},
	"welding":          {"welding technology", "metal fabrication"},
	"hvac":             {"heating ventilation and air conditioning", "climate control technology"},
	"cosmetology":      {"cosmetology", "personal care services"},
	"criminal justice": {"law enforcement", "corrections", "legal studies"},
	"cj":               {"criminal justice", "law enforcement"},
	"graphic design":   {"visual design", "digital media", "visual arts"},
	"art":              {"visual arts", "fine arts", "design"},
	"music":            {"music performance", "music production"},
	"ag":               {"agriculture", "agricultural sciences"},
	"vet":              {"veterinary technology", "animal science"},
	"teaching":         {"education", "teacher preparation"},
	"ed":               {"education", "teaching"},
	"cyber":            {"cybersecurity", "information security", "information technology"},
	"ai":               {"artificial intelligence", "machine learning", "computer science"},
	"data science":     {"data analysis", "statistics", "machine learning"},
	"accounting":       {"accountancy", "bookkeeping", "finance"},
	"finance":          {"financial services", "accounting", "economics"},
	"marketing":        {"digital marketing", "advertising", "communications"},
	"construction":     {"construction technology", "building trades"},
	"carpentry":        {"carpentry", "building trades", "construction technology"},
	"ems":              {"emergency medical services", "paramedicine"},
	"emt":              {"emergency medical technician", "emergency medical services"},
	"pharmacy":         {"pharmacy technology", "pharmaceutical sciences"},
	"dental":           {"dental hygiene", "dental assisting", "health sciences"},
	"radiology":        {"radiologic technology", "medical imaging"},
	"aviation":         {"aviation technology", "aeronautics", "pilot training"},
	"marine biology":   {"marine science", "oceanography", "biological sciences"},
	"physics":          {"physical sciences", "applied physics"},
	"law":              {"legal studies", "paralegal studies", "pre-law"},
	"social work":      {"human services", "community services"},
	"hospitality":      {"hospitality management", "tourism", "hotel management"},
}

// Expand maps a raw lower-cased token or short phrase to its domain
// synonym and abbreviation expansions plus trivial singular/plural
// variants. Total and deterministic: unknown terms still yield their own
// morphological variants, and output order is sorted.
func Expand(term string) []string {
	norm := strings.ToLower(strings.TrimSpace(term))
	if norm == "" {
		return nil
	}

	seen := map[string]bool{}
	add := func(s string) {
		if s != "" && s != norm && !seen[s] {
			seen[s] = true
		}
	}

	if syns, ok := synonyms[norm]; ok {
		// Known abbreviations expand to their full disciplinary names;
		// morphology on the abbreviation itself is not applicable.
		for _, syn := range syns {
			add(syn)
		}
	} else {
		for _, v := range pluralVariants(norm) {
			add(v)
		}
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ExpandAll widens a list of filter terms, preserving the originals in
// input order and appending each term's expansions after it.
func ExpandAll(list []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range list {
		norm := strings.ToLower(strings.TrimSpace(t))
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
		for _, e := range Expand(norm) {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// pluralVariants returns the opposite-number forms of a term. Only the
// regular English patterns the record keywords actually use.
func pluralVariants(term string) []string {
	switch {
	case strings.HasSuffix(term, "ies"):
		return []string{term[:len(term)-3] + "y"}
	case strings.HasSuffix(term, "ses"), strings.HasSuffix(term, "xes"), strings.HasSuffix(term, "ches"), strings.HasSuffix(term, "shes"):
		return []string{term[:len(term)-2]}
	case strings.HasSuffix(term, "ics"), strings.HasSuffix(term, "ss"):
		// mathematics, physics, business: no useful variant
		return nil
	case strings.HasSuffix(term, "y") && len(term) > 2 && !isVowel(term[len(term)-2]):
		return []string{term[:len(term)-1] + "ies"}
	case strings.HasSuffix(term, "s"):
		return []string{term[:len(term)-1]}
	default:
		return []string{term + "s"}
	}
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
