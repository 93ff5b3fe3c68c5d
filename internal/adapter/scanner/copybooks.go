package scanner

import "strings"

// extractCopybooks returns every COPY target in the buffer, in the order
// found. A copybook referenced twice is listed twice.
func extractCopybooks(lines []string) []string {
	copybooks := []string{}
	for _, line := range lines {
		for _, m := range copyPattern.FindAllStringSubmatch(line, -1) {
			copybooks = append(copybooks, strings.ToUpper(m[1]))
		}
	}
	return copybooks
}
