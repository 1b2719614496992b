package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxCleanPasses bounds the fixpoint iteration in Clean.
const maxCleanPasses = 8

var asciiReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "‘", "'", "’", "'",
	"„", `"`, "‚", "'", "‹", "'", "›", "'",
	"–", "-", "—", "-", "―", "-",
	"÷", "/", "±", "+/-",
	"≤", "<=", "≥", ">=", "≠", "!=", "≈", "~",
	"…", "...",
	"\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "", "\u00ad", "",
)

// wordSymbols are spoken as words. Inside a token the word is joined with
// hyphens so the token count does not change.
var wordSymbols = map[rune]string{
	'€': "euros",
	'£': "pounds",
	'$': "dollars",
	'°': "degrees",
	'∞': "infinity",
	'™': "TM",
	'®': "R",
	'©': "Copyright",
	'§': "Section",
}

var (
	dotsRegex = regexp.MustCompile(`\.(?:\s*\.){2,}`)

	runRegexes = []*regexp.Regexp{
		regexp.MustCompile("[-_=~`^]{3,}"),
		regexp.MustCompile(`\*{4,}`),
		regexp.MustCompile(`#{4,}`),
		regexp.MustCompile(`\+{3,}`),
		regexp.MustCompile(`\|{3,}`),
		regexp.MustCompile(`\\{3,}`),
		regexp.MustCompile(`/{3,}`),
	}

	markdownRegexes = []*regexp.Regexp{
		regexp.MustCompile(`\*\*([^*]+)\*\*`),
		regexp.MustCompile(`\*([^*]+)\*`),
		regexp.MustCompile(`__([^_]+)__`),
		regexp.MustCompile(`_([^_]+)_`),
		regexp.MustCompile("`([^`]+)`"),
		regexp.MustCompile(`~~([^~]+)~~`),
		regexp.MustCompile(`\[([^\]]+)\]\([^)\s]*\)`),
		regexp.MustCompile(`\[([^\]]+)\]\[[^\]\s]*\]`),
	}

	headerRegex = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)

	abbreviationPeriodRegex = regexp.MustCompile(
		`(?i)\b(` + strings.Join(DefaultAbbreviations, "|") + `)\.(\s|$)`,
	)
)

// Clean prepares text for speech synthesis. It normalizes quotes, dashes and
// symbols, strips markdown markup and decorative runs, drops loose
// punctuation and collapses whitespace.
//
// Clean is idempotent and never changes the number or order of tokens that
// contain a letter or digit, so timing data for the cleaned text can be
// aligned with the words of the original.
func Clean(s string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := cleanOnce(s)
		if next == s {
			return next
		}
		s = next
	}
	return s
}

func cleanOnce(s string) string {
	s = asciiReplacer.Replace(s)
	s = norm.NFC.String(s)

	s = dotsRegex.ReplaceAllString(s, "...")
	for _, re := range runRegexes {
		s = re.ReplaceAllString(s, "")
	}
	for _, re := range markdownRegexes {
		s = re.ReplaceAllString(s, "$1")
	}
	s = headerRegex.ReplaceAllString(s, "")
	s = abbreviationPeriodRegex.ReplaceAllString(s, "$1$2")

	return tidyTokens(s)
}

// tidyTokens rewrites each whitespace-delimited token and joins them with
// single spaces. Standalone trailing punctuation is attached to the
// previous token and stray marks are dropped.
func tidyTokens(s string) string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = replaceWordSymbols(f)
		f = strings.Map(keepRune, f)
		switch {
		case f == "":
		case isTrailingPunct(f) && len(out) > 0:
			out[len(out)-1] += f
		case isStray(f):
		default:
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

func replaceWordSymbols(tok string) string {
	if strings.IndexFunc(tok, func(r rune) bool { _, ok := wordSymbols[r]; return ok }) < 0 &&
		!strings.ContainsRune(tok, '×') {
		return tok
	}
	hasAlnum := strings.IndexFunc(tok, isAlnum) >= 0

	var b strings.Builder
	runes := []rune(tok)
	for i, r := range runes {
		if r == '×' {
			if hasAlnum {
				b.WriteByte('x')
			}
			continue
		}
		word, ok := wordSymbols[r]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if !hasAlnum {
			continue
		}
		if last, _ := utf8.DecodeLastRuneInString(b.String()); isAlnum(last) {
			b.WriteByte('-')
		}
		b.WriteString(word)
		if i+1 < len(runes) && isAlnum(runes[i+1]) {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func keepRune(r rune) rune {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
		return r
	case strings.ContainsRune(`.,!?;:()[]{}"'-•%&+/<=>@_`, r):
		return r
	default:
		return -1
	}
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isTrailingPunct(tok string) bool {
	for _, r := range tok {
		if !strings.ContainsRune(".,!?;:", r) {
			return false
		}
	}
	return true
}

func isStray(tok string) bool {
	if utf8.RuneCountInString(tok) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(tok)
	return strings.ContainsRune(`-'"_/`, r)
}
