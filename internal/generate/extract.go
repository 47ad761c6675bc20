package generate

import "strings"

const fence = "```"

// Extract splits a reply into the explanation before the first fenced code block and the
// block's contents. found is false when the reply has no complete code block; explanation is
// then the whole reply.
//
// The block runs from the leftmost fence to the next one. When it spans lines, a first line
// holding a single word or nothing is the language tag and is dropped.
func Extract(reply string) (explanation, code string, found bool) {
	open := strings.Index(reply, fence)
	if open < 0 {
		return strings.TrimSpace(reply), "", false
	}
	inner := reply[open+len(fence):]
	end := strings.Index(inner, fence)
	if end < 0 {
		return strings.TrimSpace(reply), "", false
	}
	inner = inner[:end]
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(inner[:nl]); !strings.ContainsAny(tag, " \t") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(reply[:open]), strings.TrimSpace(inner), true
}
