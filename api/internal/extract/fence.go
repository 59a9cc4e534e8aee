package extract

import "strings"

const fenceMark = "```"

// StripFences removes a markdown code fence wrapped around s. The opening
// fence may carry a language tag ("```json"); the closing fence is
// optional. Only the edges of s are inspected, so backticks inside the
// payload are left alone. Text without an opening or closing fence is
// returned unchanged.
func StripFences(s string) string {
	body := strings.TrimSpace(s)

	rest, opened := cutOpeningFence(body)
	if opened {
		body = rest
	}
	rest, closed := cutClosingFence(body, opened)
	if closed {
		body = rest
	}
	if !opened && !closed {
		return s
	}
	return strings.TrimSpace(body)
}

func cutOpeningFence(t string) (string, bool) {
	n := backtickRun(t)
	if n < len(fenceMark) {
		return t, false
	}
	after := t[n:]
	line, rest, multiline := strings.Cut(after, "\n")
	info := strings.TrimSpace(line)

	if !multiline {
		// single line: ```json {...}``` or ```{...}```
		if tag, payload, ok := strings.Cut(info, " "); ok && isLangTag(tag) {
			return payload, true
		}
		if isLangTag(info) {
			return "", true
		}
		return after, true
	}
	if info == "" || isLangTag(info) {
		return rest, true
	}
	// payload starts on the fence line itself
	return after, true
}

// cutClosingFence strips a trailing fence. Without an opening fence the
// closing one is only recognised on a line of its own.
func cutClosingFence(t string, opened bool) (string, bool) {
	t = strings.TrimRight(t, " \t\r\n")
	n := 0
	for n < len(t) && t[len(t)-1-n] == '`' {
		n++
	}
	if n < len(fenceMark) {
		return t, false
	}
	before := t[:len(t)-n]
	if !opened {
		trimmed := strings.TrimRight(before, " \t")
		if trimmed != "" && !strings.HasSuffix(trimmed, "\n") {
			return t, false
		}
	}
	return before, true
}

func backtickRun(s string) int {
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	return n
}

func isLangTag(s string) bool {
	if s == "" || len(s) > 32 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("+#-_.", r):
		default:
			return false
		}
	}
	return true
}
