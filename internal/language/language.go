package language

import (
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Undetermined is the ISO 639-2 code for an unset track language.
const Undetermined = "und"

// known are the languages resolved without consulting CLDR, keyed by the
// ISO 639-2/T code mkvmerge is given. English names double as accepted input.
var known = map[string]struct {
	iso1 string
	iso2 string // bibliographic form, when it differs
	name string
}{
	"eng": {"en", "", "English"},
	"spa": {"es", "", "Spanish"},
	"fra": {"fr", "fre", "French"},
	"deu": {"de", "ger", "German"},
	"ita": {"it", "", "Italian"},
	"por": {"pt", "", "Portuguese"},
	"jpn": {"ja", "", "Japanese"},
	"kor": {"ko", "", "Korean"},
	"zho": {"zh", "chi", "Chinese"},
	"rus": {"ru", "", "Russian"},
	"nld": {"nl", "dut", "Dutch"},
	"swe": {"sv", "", "Swedish"},
	"dan": {"da", "", "Danish"},
	"nor": {"no", "", "Norwegian"},
	"fin": {"fi", "", "Finnish"},
}

// aliases maps every accepted spelling to its key in known.
var aliases = func() map[string]string {
	m := make(map[string]string, len(known)*4)
	for code, k := range known {
		m[code] = code
		m[k.iso1] = code
		m[strings.ToLower(k.name)] = code
		if k.iso2 != "" {
			m[k.iso2] = code
		}
	}
	return m
}()

// lookup returns the known ISO 639-2/T code for code, or "".
func lookup(code string) string {
	return aliases[strings.ToLower(strings.TrimSpace(code))]
}

// Normalize3 converts a language code or English word into the ISO 639-2 code
// passed to mkvmerge. Codes missing from the built-in table are resolved through
// the CLDR registry.
func Normalize3(code string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "", fmt.Errorf("language code is empty")
	}
	if trimmed == Undetermined {
		return "", fmt.Errorf("language %q is the undetermined sentinel", code)
	}
	if iso3 := lookup(trimmed); iso3 != "" {
		return iso3, nil
	}
	base, err := xlanguage.ParseBase(trimmed)
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q: %w", code, err)
	}
	iso3 := base.ISO3()
	if iso3 == "" || iso3 == Undetermined {
		return "", fmt.Errorf("unrecognized language %q", code)
	}
	return iso3, nil
}

// IsUndetermined reports whether code is empty or the "und" sentinel.
func IsUndetermined(code string) bool {
	code = strings.TrimSpace(code)
	return code == "" || strings.EqualFold(code, Undetermined)
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Undetermined" for the sentinel and the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if IsUndetermined(code) {
		return "Undetermined"
	}
	if iso3 := lookup(code); iso3 != "" {
		return known[iso3].name
	}
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	base, err := xlanguage.ParseBase(strings.ToLower(trimmed))
	if err != nil {
		return trimmed
	}
	tag, err := xlanguage.Compose(base)
	if err != nil {
		return trimmed
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return trimmed
}
