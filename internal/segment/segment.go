// Package segment derives a post title and body from free-form pasted text.
// Editors paste a whole article blob into one spreadsheet cell; this package
// splits it into paragraphs and picks the pieces a post needs.
package segment

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlaceholderTitle is used when neither the raw blob nor the manual cells
// yield a usable title.
const PlaceholderTitle = "(untitled)"

// bodyMarkers identify the paragraph editors flag as the intended post body.
// Both simplified and traditional forms of the community label are accepted.
var bodyMarkers = []string{"【华语社区", "【華語社區"}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText strips HTML tags and collapses runs of whitespace to single
// spaces. Input that fails to parse as HTML is cleaned as plain text.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<>") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// SplitParagraphs splits raw text on blank-line boundaries. Consecutive
// non-blank lines are joined by single spaces into one paragraph.
func SplitParagraphs(raw string) []string {
	if raw == "" {
		return nil
	}
	var paras []string
	var buf []string
	flush := func() {
		if len(buf) > 0 {
			if p := strings.TrimSpace(strings.Join(buf, " ")); p != "" {
				paras = append(paras, p)
			}
			buf = nil
		}
	}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			buf = append(buf, line)
		} else {
			flush()
		}
	}
	flush()
	return paras
}

// Segment returns (title, body) for a row. Manually entered title and
// content always win; otherwise the raw blob is split into paragraphs: the
// first paragraph becomes the title, and the body is the first later
// paragraph starting with a community marker, falling back to the second
// paragraph when no marker is present.
func Segment(raw, givenTitle, givenContent string) (string, string) {
	raw = strings.TrimSpace(raw)
	title := CleanText(givenTitle)
	body := CleanText(givenContent)

	if raw != "" && title == "" && body == "" {
		paras := SplitParagraphs(raw)
		if len(paras) > 0 {
			title = paras[0]
			chosen := ""
			for _, p := range paras[1:] {
				if hasMarker(p) {
					chosen = p
					break
				}
			}
			if chosen == "" && len(paras) > 1 {
				chosen = paras[1]
			}
			body = CleanText(chosen)
		}
	}

	if title == "" {
		title = PlaceholderTitle
	}
	return title, body
}

func hasMarker(p string) bool {
	for _, m := range bodyMarkers {
		if strings.HasPrefix(p, m) {
			return true
		}
	}
	return false
}
