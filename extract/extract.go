// Package extract pulls raw anchor targets out of an HTML document.
package extract

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Link is one anchor reference as written on the page, before any
// resolution.
type Link struct {
	Text string // anchor text, may be empty
	Href string // raw target exactly as written
}

// Links tokenizes an HTML document and returns every <a href> in document
// order. Hrefs are returned raw, duplicates and all; resolution,
// deduplication, and scheme filtering are the audit engine's job.
func Links(body io.Reader) ([]Link, error) {
	tokenizer := html.NewTokenizer(body)

	var links []Link
	var inAnchor bool
	var href string
	var hasHref bool
	var text strings.Builder

	flush := func() {
		if hasHref {
			links = append(links, Link{Text: strings.TrimSpace(text.String()), Href: href})
		}
		inAnchor = false
		hasHref = false
		text.Reset()
	}

	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			flush()
			if err := tokenizer.Err(); err != io.EOF {
				return links, fmt.Errorf("tokenize html: %w", err)
			}
			return links, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			// An <a> opening inside an unclosed <a> implicitly closes it.
			flush()
			for _, attr := range token.Attr {
				if attr.Key == "href" {
					inAnchor = true
					hasHref = true
					href = attr.Val
					break
				}
			}
			if tokenType == html.SelfClosingTagToken {
				flush()
			}

		case html.TextToken:
			if inAnchor {
				text.Write(tokenizer.Text())
			}

		case html.EndTagToken:
			if tokenizer.Token().Data == "a" {
				flush()
			}
		}
	}
}

// Hrefs returns just the raw targets, in the same order as Links.
func Hrefs(links []Link) []string {
	hrefs := make([]string, len(links))
	for i, l := range links {
		hrefs[i] = l.Href
	}
	return hrefs
}
