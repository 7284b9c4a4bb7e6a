package catalog

import (
	"slices"
	"strings"

	"filmwallaa/internal/config"
)

// IndustryRules tags a movie with its production industry from its original
// language and production countries.
type IndustryRules struct {
	NationalLanguages  []string
	RegionalLanguages  []string
	DomesticCountries  []string
	RegionalLabel      string
	NationalLabel      string
	InternationalLabel string
}

// IndustryRulesFromConfig builds rules from the [industry] config section.
func IndustryRulesFromConfig(cfg config.Industry) IndustryRules {
	return IndustryRules{
		NationalLanguages:  cfg.NationalLanguages,
		RegionalLanguages:  cfg.RegionalLanguages,
		DomesticCountries:  cfg.DomesticCountries,
		RegionalLabel:      cfg.RegionalLabel,
		NationalLabel:      cfg.NationalLabel,
		InternationalLabel: cfg.InternationalLabel,
	}
}

// DefaultIndustryRules returns the rules for the default configuration.
func DefaultIndustryRules() IndustryRules {
	return IndustryRulesFromConfig(config.Default().Industry)
}

// Classify returns the industry label. A production is domestic when its
// language is a national one or any production country is domestic. A
// regional language alone does not make it domestic. Domestic productions in
// a regional language get the regional label, other domestic productions the
// national label.
func (r IndustryRules) Classify(language string, countries []string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	regional := language != "" && slices.Contains(r.RegionalLanguages, language)
	domestic := language != "" && slices.Contains(r.NationalLanguages, language)
	if !domestic {
		for _, country := range countries {
			if slices.Contains(r.DomesticCountries, strings.ToUpper(strings.TrimSpace(country))) {
				domestic = true
				break
			}
		}
	}
	switch {
	case !domestic:
		return r.InternationalLabel
	case regional:
		return r.RegionalLabel
	default:
		return r.NationalLabel
	}
}
