package scanner

import (
	"regexp"
	"strings"
)

// Identifiers are letters, digits, underscores and hyphens. Keywords must not
// be glued to a preceding identifier character, so END-PERFORM is not a PERFORM.
const (
	ident     = `\w[\w-]*`
	keywordAt = `(?:^|[^\w-])`
)

var (
	divisionPattern  = regexp.MustCompile(`(?i)^\s*(` + ident + `)\s+DIVISION\.`)
	sectionPattern   = regexp.MustCompile(`(?i)^\s*(` + ident + `)\s+SECTION\.`)
	paragraphPattern = regexp.MustCompile(`^\s*(` + ident + `)\.\s*$`)

	copyPattern    = regexp.MustCompile(`(?i)` + keywordAt + `COPY\s+(` + ident + `)`)
	performPattern = regexp.MustCompile(`(?i)` + keywordAt + `PERFORM\s+(` + ident + `)`)
	callPattern    = regexp.MustCompile(`(?i)` + keywordAt + `CALL\s+['"]?(` + ident + `)`)
	fileOpPattern  = regexp.MustCompile(`(?i)` + keywordAt + `(OPEN|READ|WRITE|CLOSE)\s+(` + ident + `)`)
)

// matchName returns the uppercased first capture group when line matches re.
func matchName(re *regexp.Regexp, line string) (string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// SplitLines splits source text into lines the way a text editor would:
// \n, \r\n and \r all end a line and a final terminator adds no empty line.
func SplitLines(src string) []string {
	if src == "" {
		return nil
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	src = strings.TrimSuffix(src, "\n")
	return strings.Split(src, "\n")
}
