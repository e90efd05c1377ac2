package crawler

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ImageExtension is the suffix of the page scans linked from letter pages.
const ImageExtension = ".gif"

// Link pairs a headword with the URL of its page scan.
type Link struct {
	// Headword is the anchor text, whitespace collapsed.
	Headword string

	// URL is the absolute image URL.
	URL string
}

// Parser extracts scan links from a letter page.
type Parser struct {
	// siteBase is the dictionary root; "../" hrefs are resolved against it.
	siteBase *url.URL

	// page is the URL of the letter page, used for other relative hrefs.
	page *url.URL
}

// NewParser creates a Parser for the letter page at pageURL on the site
// rooted at siteBase.
func NewParser(siteBase, pageURL string) (*Parser, error) {
	base, err := url.Parse(strings.TrimSuffix(siteBase, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	page, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("page URL %q: %w", pageURL, err)
	}
	return &Parser{siteBase: base, page: page}, nil
}

// Parse reads a letter page and returns its scan links in document order.
// contentType is the response Content-Type; it selects the decoder for
// legacy Latin-1 pages and may be empty.
func (p *Parser) Parse(content io.Reader, contentType string) ([]Link, error) {
	r, err := charset.NewReader(content, contentType)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	links := make([]Link, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := strings.TrimSpace(getAttr(n, "href"))
			if strings.HasSuffix(strings.ToLower(href), ImageExtension) {
				if resolved := p.resolveURL(href); resolved != "" {
					links = append(links, Link{
						Headword: strings.Join(strings.Fields(textContent(n)), " "),
						URL:      resolved,
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// resolveURL makes href absolute. Scan links climb out of the html/
// directory with "../", which always means the site root.
func (p *Parser) resolveURL(href string) string {
	if rest, ok := strings.CutPrefix(href, "../"); ok {
		for strings.HasPrefix(rest, "../") {
			rest = strings.TrimPrefix(rest, "../")
		}
		u, err := url.Parse(rest)
		if err != nil {
			return ""
		}
		return p.siteBase.ResolveReference(u).String()
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.page.ResolveReference(u).String()
}

// getAttr returns the value of the named attribute or "".
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

// textContent concatenates every text node below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
