package language

import (
	"strings"
	"testing"
)

func TestEveryKnownFormMapsBack(t *testing.T) {
	for iso, forms := range knownForms {
		for _, form := range append(strings.Fields(forms), iso, strings.ToUpper(iso)) {
			if got := ToISO2(form); got != iso {
				t.Errorf("ToISO2(%q) = %q, want %q", form, got, iso)
			}
		}
	}
}

func TestToISO2Fallbacks(t *testing.T) {
	cases := map[string]string{
		"  French ":    "fr",
		"pt-BR":        "pt",
		"en_US":        "en",
		"zh-Hant-TW":   "zh",
		"xy":           "xy",
		"notalanguage": "",
		"":             "",
		"   ":          "",
	}
	for input, want := range cases {
		if got := ToISO2(input); got != want {
			t.Errorf("ToISO2(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestHintTreatsAutoAsNoHint(t *testing.T) {
	cases := map[string]string{
		"auto":    "",
		" AUTO ":  "",
		"":        "",
		"English": "en",
		"spa":     "es",
		"es-419":  "es",
		"xy":      "xy",
	}
	for input, want := range cases {
		if got := Hint(input); got != want {
			t.Errorf("Hint(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"eng":    "English",
		"ger":    "German",
		"cze":    "Czech",
		"el":     "Greek",
		"dut":    "Dutch",
		"zho":    "Chinese",
		"pt-BR":  "Portuguese",
		"":       "Unknown",
		"xyz":    "XYZ",
		"klingo": "KLINGO",
	}
	for input, want := range cases {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}
