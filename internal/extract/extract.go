// Package extract pulls the SQL out of a model completion.
package extract

import "strings"

const fence = "```"

// SQL finds the first fenced block tagged sql (any case) in text.
//
// When found, sql is the trimmed interior and remainder is text with the
// whole block cut out, trimmed. When no such block exists, or the fence is
// never closed, found is false and remainder is the trimmed input.
func SQL(text string) (sql string, found bool, remainder string) {
	start, bodyStart, ok := openFence(text)
	if !ok {
		return "", false, strings.TrimSpace(text)
	}

	closeAt := strings.Index(text[bodyStart:], fence)
	if closeAt < 0 {
		return "", false, strings.TrimSpace(text)
	}
	bodyEnd := bodyStart + closeAt
	blockEnd := bodyEnd + len(fence)

	sql = strings.TrimSpace(text[bodyStart:bodyEnd])
	remainder = strings.TrimSpace(text[:start] + text[blockEnd:])
	return sql, true, remainder
}

// openFence returns where the first ```sql opener begins and where its body
// starts. Every ``` is a candidate, whatever came before it. The tag must be
// exactly "sql" so ```sqlite or ```sql2 do not count.
func openFence(text string) (start, bodyStart int, ok bool) {
	offset := 0
	for {
		i := strings.Index(text[offset:], fence)
		if i < 0 {
			return 0, 0, false
		}
		at := offset + i
		tagStart := at + len(fence)
		tagEnd := tagStart + 3
		if tagEnd <= len(text) && strings.EqualFold(text[tagStart:tagEnd], "sql") && !isWordByte(text, tagEnd) {
			return at, tagEnd, true
		}
		offset = at + 1
	}
}

func isWordByte(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
