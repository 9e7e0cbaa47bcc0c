// Package caption derives the short text posted to the Facebook Page feed,
// either deterministically from the post fields or via an LLM caption source.
package caption

import (
	"fmt"
	"strings"
)

const (
	// SnippetLimit bounds the body excerpt included in the caption.
	SnippetLimit = 380
	// PlatformLimit is the Facebook post character ceiling.
	PlatformLimit = 63206

	readMoreLabel = "原文阅读："
	hashtags      = "#菲律宾华社 #FilChiOC"
)

// Build composes the default caption: bracketed title, the first line of the
// body truncated to SnippetLimit, the read-more link and fixed hashtags.
// Deterministic and side-effect free.
func Build(title, body, link string) string {
	return compose(fmt.Sprintf("【%s】", title), firstLine(body), link)
}

// BuildWithOverrides is Build with optional editor-supplied header and
// snippet cells taking the place of the derived values.
func BuildWithOverrides(title, body, link, header, snippet string) string {
	head := strings.TrimSpace(header)
	if head == "" {
		head = fmt.Sprintf("【%s】", title)
	}
	snip := strings.TrimSpace(snippet)
	if snip == "" {
		snip = firstLine(body)
	}
	return compose(head, snip, link)
}

func compose(header, snippet, link string) string {
	snippet = truncate(snippet, SnippetLimit)
	out := strings.TrimSpace(fmt.Sprintf("%s\n%s\n\n%s%s\n%s", header, snippet, readMoreLabel, link, hashtags))
	return truncate(out, PlatformLimit)
}

// firstLine returns the first non-empty line of the body.
func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// truncate cuts s to at most limit characters, counting runes so multi-byte
// text is never split mid-character.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
