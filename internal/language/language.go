package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// bibliographic maps ISO 639-2/B codes, which many broadcasters still put in
// the PMT language descriptor, to their terminology forms.
var bibliographic = map[string]string{
	"alb": "sqi", "arm": "hye", "baq": "eus", "bur": "mya", "chi": "zho",
	"cze": "ces", "dut": "nld", "fre": "fra", "geo": "kat", "ger": "deu",
	"gre": "ell", "ice": "isl", "mac": "mkd", "mao": "mri", "may": "msa",
	"per": "fas", "rum": "ron", "slo": "slk", "tib": "bod", "wel": "cym",
}

// names maps English language names, as users tend to type them in config
// files, to ISO 639-2/T codes.
var names = map[string]string{
	"english": "eng", "spanish": "spa", "espanol": "spa", "french": "fra",
	"francais": "fra", "german": "deu", "italian": "ita", "portuguese": "por",
	"japanese": "jpn", "korean": "kor", "chinese": "zho", "mandarin": "zho",
	"cantonese": "yue", "russian": "rus", "arabic": "ara", "hindi": "hin",
	"dutch": "nld", "polish": "pol", "swedish": "swe", "danish": "dan",
	"norwegian": "nor", "finnish": "fin", "vietnamese": "vie", "tagalog": "tgl",
	"greek": "ell", "hebrew": "heb", "turkish": "tur", "ukrainian": "ukr",
}

// Code returns the ISO 639-2/T code for a language identifier given as an
// ISO 639-1 or 639-2 code, a BCP 47 tag, or an English name. It returns an
// empty string for identifiers it cannot resolve and for the special codes
// that name no single language (und, mul, zxx, mis, and the qaa-qtz local
// range).
func Code(value string) string {
	code := strings.ToLower(strings.TrimSpace(value))
	if code == "" || isSpecial(code) {
		return ""
	}
	if t, ok := bibliographic[code]; ok {
		return t
	}
	if t, ok := names[code]; ok {
		return t
	}
	base, ok := parseBase(code)
	if !ok {
		return ""
	}
	iso3 := base.ISO3()
	if iso3 == "" || isSpecial(iso3) {
		return ""
	}
	return iso3
}

// Matches reports whether two identifiers name the same language, so "fr",
// "fra", "fre", and "French" all match one another. Identifiers that do not
// resolve never match, not even themselves.
func Matches(a, b string) bool {
	left := Code(a)
	return left != "" && left == Code(b)
}

// DisplayName returns the English name of a language for tables. Original
// audio tracks tagged with a local-use code show as "Original"; anything
// else unresolved is shown upper-cased as given.
func DisplayName(value string) string {
	code := strings.ToLower(strings.TrimSpace(value))
	switch {
	case code == "":
		return "Unknown"
	case code >= "qaa" && code <= "qtz" && len(code) == 3:
		return "Original"
	}
	if iso3 := Code(code); iso3 != "" {
		if base, ok := parseBase(iso3); ok {
			if name := display.English.Languages().Name(base); name != "" {
				return name
			}
		}
	}
	return strings.ToUpper(code)
}

// ExtractFromTags returns the lower-cased language from ffprobe stream tags,
// checking the keys muxers commonly use. NUL padding from fixed-width
// descriptors is stripped.
func ExtractFromTags(tags map[string]string) string {
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"} {
		value := strings.TrimSpace(strings.ReplaceAll(tags[key], "\x00", ""))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}

func isSpecial(code string) bool {
	switch code {
	case "und", "mul", "zxx", "mis":
		return true
	}
	return len(code) == 3 && code >= "qaa" && code <= "qtz"
}

func parseBase(code string) (xlanguage.Base, bool) {
	if strings.ContainsAny(code, "-_") {
		tag, err := xlanguage.Parse(strings.ReplaceAll(code, "_", "-"))
		if err != nil {
			return xlanguage.Base{}, false
		}
		base, confidence := tag.Base()
		return base, confidence != xlanguage.No
	}
	if len(code) != 2 && len(code) != 3 {
		return xlanguage.Base{}, false
	}
	base, err := xlanguage.ParseBase(code)
	return base, err == nil
}
