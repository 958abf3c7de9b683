package html

import (
	"html"
	"regexp"
	"strings"
)

// DefaultWordThreshold is the minimum number of words a block needs to be kept.
const DefaultWordThreshold = 15

// Converter turns HTML into markdown-style text.
type Converter struct {
	wordThreshold int
}

// Option configures a Converter.
type Option func(*Converter)

// WithWordThreshold sets the minimum word count of kept blocks.
// Headings are always kept. Values below zero are ignored.
func WithWordThreshold(words int) Option {
	return func(c *Converter) {
		if words >= 0 {
			c.wordThreshold = words
		}
	}
}

// New creates a new HTML converter.
func New(opts ...Option) *Converter {
	c := &Converter{wordThreshold: DefaultWordThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	excludedTags  = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg|nav|footer|a)\b[^>]*>.*?</(script|style|noscript|head|svg|nav|footer|a)>`)
	imgTags       = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	headingTags   = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	listItemTags  = regexp.MustCompile(`(?i)<li[^>]*>`)
	blockElements = regexp.MustCompile(`(?i)</?(p|div|br|hr|ul|ol|li|tr|blockquote|pre|table|section|article|main|header)\b[^>]*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t\r]+`)
)

// headingMarker prefixes heading blocks so they survive the word threshold.
const headingMarker = "\x00"

// Title returns the page title, or "" when the page has none.
func Title(content string) string {
	matches := titleTag.FindStringSubmatch(content)
	if len(matches) < 2 {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(matches[1]))
}

// Convert returns the readable text of content as markdown blocks separated
// by blank lines.
func (c *Converter) Convert(content string) string {
	content = htmlComments.ReplaceAllString(content, "")
	content = excludedTags.ReplaceAllString(content, " ")
	content = imgTags.ReplaceAllString(content, " ")

	content = headingTags.ReplaceAllStringFunc(content, func(m string) string {
		sub := headingTags.FindStringSubmatch(m)
		level := int(sub[1][0] - '0')
		return "\n" + headingMarker + strings.Repeat("#", level) + " " + sub[2] + "\n"
	})
	content = listItemTags.ReplaceAllString(content, "\n- ")
	content = blockElements.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	var blocks []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, headingMarker) {
			heading := strings.TrimPrefix(line, headingMarker)
			if strings.TrimSpace(strings.TrimLeft(heading, "#")) != "" {
				blocks = append(blocks, heading)
			}
			continue
		}
		if len(strings.Fields(line)) < c.wordThreshold {
			continue
		}
		blocks = append(blocks, line)
	}

	return strings.Join(blocks, "\n\n")
}
