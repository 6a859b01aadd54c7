package source

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^<]+?>`)
	urlPattern     = regexp.MustCompile(`http[s]?://[^\s]+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

var markdownParser = goldmark.New()

// cleanText normalizes a question+answer blob for indexing: HTML tags,
// URLs, emoji and markdown emphasis markers are removed, newlines collapse
// to spaces.
func cleanText(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = urlPattern.ReplaceAllString(s, "")
	s = stripMarkdown(s)
	s = stripSymbols(s)
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripMarkdown parses s as markdown and keeps only the text content,
// dropping emphasis markers, link syntax and the like.
func stripMarkdown(s string) string {
	src := []byte(s)
	doc := markdownParser.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.Paragraph, *ast.ListItem:
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})

	return b.String()
}

// stripSymbols removes emoji and other pictographic symbols.
func stripSymbols(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.In(r, unicode.So, unicode.Sk) {
			return -1
		}
		// Variation selectors and zero-width joiners left behind by emoji.
		if r == 0xFE0E || r == 0xFE0F || r == 0x200D {
			return -1
		}
		return r
	}, s)
}

// hasText reports whether s contains at least 3 consecutive alphabetic
// runes. Rows failing this check carry no usable text and are dropped.
func hasText(s string) bool {
	run := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
