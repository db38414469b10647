package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto requests engine-side language detection.
const Auto = "auto"

// knownForms lists, per ISO 639-1 code, the ISO 639-2 codes (terminology and
// bibliographic) and English words users commonly type. Anything else goes
// through BCP-47 parsing.
var knownForms = map[string]string{
	"en": "eng english",
	"es": "spa spanish castilian",
	"fr": "fra fre french",
	"de": "deu ger german",
	"it": "ita italian",
	"pt": "por portuguese",
	"ja": "jpn japanese",
	"ko": "kor korean",
	"zh": "zho chi chinese mandarin",
	"ru": "rus russian",
	"uk": "ukr ukrainian",
	"ar": "ara arabic",
	"hi": "hin hindi",
	"tr": "tur turkish",
	"nl": "nld dut dutch flemish",
	"pl": "pol polish",
	"sv": "swe swedish",
	"da": "dan danish",
	"no": "nor norwegian",
	"fi": "fin finnish",
	"el": "ell gre greek",
	"cs": "ces cze czech",
	"he": "heb hebrew",
	"id": "ind indonesian",
	"vi": "vie vietnamese",
}

var aliases = func() map[string]string {
	out := make(map[string]string, len(knownForms)*3)
	for iso, forms := range knownForms {
		out[iso] = iso
		for _, form := range strings.Fields(forms) {
			out[form] = iso
		}
	}
	return out
}()

// ToISO2 converts a language code, tag, or English word to ISO 639-1.
// Unrecognized input yields ""; unknown 2-letter codes pass through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if iso, ok := aliases[code]; ok {
		return iso
	}
	if len(code) == 2 {
		return code
	}
	return parseBase(code)
}

// parseBase falls back to BCP-47 parsing for tags like "pt-BR" or
// three-letter codes outside the local table.
func parseBase(code string) string {
	tag, err := xlanguage.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return ""
	}
	iso := base.String()
	if len(iso) != 2 {
		return ""
	}
	return iso
}

// Hint converts a user-supplied language setting into the value passed to an
// engine. "auto" and empty input yield "", meaning no hint.
func Hint(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" || trimmed == Auto {
		return ""
	}
	if iso := ToISO2(trimmed); iso != "" {
		return iso
	}
	return trimmed
}

// DisplayName returns the English name for a language code, "Unknown" for
// empty input, or the upper-cased input when nothing matches.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	iso := ToISO2(trimmed)
	if iso != "" {
		if tag, err := xlanguage.Parse(iso); err == nil {
			if name := display.English.Languages().Name(tag); name != "" {
				return name
			}
		}
	}
	return strings.ToUpper(trimmed)
}
