package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1
	code3   string   // ISO 639-2
	alt3    string   // bibliographic ISO 639-2 variant, if any
	display string
	words   []string // spelled-out forms, lower case
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"ta", "tam", "", "Tamil", []string{"tamil"}},
	{"te", "tel", "", "Telugu", []string{"telugu"}},
	{"kn", "kan", "", "Kannada", []string{"kannada"}},
	{"ml", "mal", "", "Malayalam", []string{"malayalam"}},
	{"mr", "mar", "", "Marathi", []string{"marathi"}},
	{"bn", "ben", "", "Bengali", []string{"bengali", "bangla"}},
	{"pa", "pan", "", "Punjabi", []string{"punjabi"}},
	{"gu", "guj", "", "Gujarati", []string{"gujarati"}},
	{"ur", "urd", "", "Urdu", []string{"urdu"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese", "mandarin"}},
	{"cn", "", "", "Cantonese", []string{"cantonese"}},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		if e.code3 != "" {
			byCode3[e.code3] = e
		}
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	return byWord[code]
}

// ToISO2 converts a recognized code or language name to ISO 639-1.
// Unknown two-letter input passes through; anything else unknown yields "".
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns a human-readable name for a code, "Unknown" for empty
// input, or the upper-cased code when it is not recognized.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeList lower-cases, converts, and deduplicates a list of language
// codes. Entries that cannot be mapped to a two-letter code are kept as
// given so a misconfiguration stays visible in validation.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		trimmed := strings.ToLower(strings.TrimSpace(code))
		if trimmed == "" {
			continue
		}
		if mapped := ToISO2(trimmed); mapped != "" {
			trimmed = mapped
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
