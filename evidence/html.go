package evidence

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var markdownConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

var sanitizePolicy = bluemonday.UGCPolicy()

// htmlToText sanitizes raw HTML, converts it to markdown, and falls back to
// a plain-text walk of the DOM if conversion yields nothing usable.
func htmlToText(rawHTML, sourceURL string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}
	clean := sanitizePolicy.Sanitize(rawHTML)

	if result, err := markdownConverter.ConvertString(clean, converter.WithDomain(sourceURL)); err == nil {
		if trimmed := strings.TrimSpace(result); trimmed != "" {
			return trimmed
		}
	}
	return plainText(clean)
}

func plainText(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(b.String())
}
