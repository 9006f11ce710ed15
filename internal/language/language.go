package language

import (
	"strings"

	"golang.org/x/text/language"
)

// Undetermined is the tag used when no language is given.
const Undetermined = "und"

type entry struct {
	tag     string   // canonical BCP 47 tag
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

// Locales the card database publishes text in.
var languages = []entry{
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"en", "eng", "", "English", []string{"english"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh-Hans", "zho", "chi", "Simplified Chinese", []string{"chinese", "simplified chinese"}},
	{"zh-Hant", "", "", "Traditional Chinese", []string{"traditional chinese"}},
}

// Index maps built at init time.
var (
	byTag   map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byTag = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		byTag[strings.ToLower(e.tag)] = e
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
	if e, ok := byTag[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// Normalize maps a language code, ISO 639-2 code or English word form to a
// canonical BCP 47 tag. Other well-formed tags are canonicalized by
// golang.org/x/text. Input that does not parse is lowercased, and empty
// input yields "und".
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return Undetermined
	}
	if e := lookup(code); e != nil {
		return e.tag
	}
	parsed, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	return parsed.String()
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty or undetermined input, or the code itself otherwise.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || code == Undetermined {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return code
}
