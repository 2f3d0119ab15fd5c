package analyzer

import "regexp"

// whitespace covers every character Unicode treats as a space, not only the
// ASCII set matched by \s.
const whitespace = `\t\n\x0B\f\r\x1C-\x1F\x{85}\p{Z}`

// tableRefPattern matches FROM or JOIN in any case followed by whitespace and
// captures the next run of characters that are neither whitespace nor
// parentheses. "FROM (SELECT ...)" therefore produces no match.
var tableRefPattern = regexp.MustCompile(`(?i)(?:FROM|JOIN)[` + whitespace + `]+([^` + whitespace + `()]+)`)

// ExtractCandidates returns every table name captured after FROM/JOIN in
// order of appearance, duplicates included. Schema-qualified names such as
// "analytics.events" stay a single token.
func ExtractCandidates(sql string) []string {
	matches := tableRefPattern.FindAllStringSubmatch(sql, -1)
	candidates := make([]string, 0, len(matches))
	for _, match := range matches {
		candidates = append(candidates, match[1])
	}
	return candidates
}
