package commentary

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup extracts the readable text of an HTML fragment. Block-level
// tags and <br> become line breaks; script and style bodies are dropped.
// Text without markup is returned unchanged.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	tokenizer := html.NewTokenizer(strings.NewReader(s))
	var textBuilder strings.Builder
	skipDepth := 0

	for {
		tokenType := tokenizer.Next()

		switch tokenType {
		case html.ErrorToken:
			// io.EOF, or a truncated fragment; keep what was read
			return cleanText(textBuilder.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				if tokenType == html.StartTagToken {
					skipDepth++
				}
			case "br", "p", "div", "li", "h1", "h2", "h3", "h4":
				textBuilder.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				if skipDepth > 0 {
					skipDepth--
				}
			case "p", "div", "li", "h1", "h2", "h3", "h4":
				textBuilder.WriteByte('\n')
			}

		case html.TextToken:
			if skipDepth == 0 {
				textBuilder.Write(tokenizer.Text())
			}
		}
	}
}

// cleanText collapses whitespace inside each line and drops empty lines.
func cleanText(input string) string {
	var lines []string
	for _, line := range strings.Split(input, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
