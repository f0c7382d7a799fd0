package linkcheck

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	nberrors "nbexport/internal/errors"
)

// Link is a hyperlink extracted from a generated page.
type Link struct {
	URL       string
	Text      string
	Tag       string
	Attribute string
}

// ExtractLinks parses an HTML file and returns every link reference in it.
func ExtractLinks(htmlPath string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, nberrors.Wrap(err, nberrors.CategoryFileSystem, nberrors.SeverityError, "failed to open generated page").WithPath(htmlPath)
	}
	defer func() { _ = file.Close() }()
	return ExtractLinksFromReader(file)
}

// ExtractLinksFromReader parses HTML from r and returns every link reference.
func ExtractLinksFromReader(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nberrors.Wrap(err, nberrors.CategoryInternal, nberrors.SeverityError, "failed to parse generated HTML")
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if href := getAttr(n, "href"); href != "" {
					links = append(links, Link{URL: href, Text: nodeText(n), Tag: n.Data, Attribute: "href"})
				}
			case "img", "script":
				if src := getAttr(n, "src"); src != "" {
					links = append(links, Link{URL: src, Text: getAttr(n, "alt"), Tag: n.Data, Attribute: "src"})
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

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return strings.TrimSpace(b.String())
}

// IsSiteLocal reports whether a link points inside the generated site and is
// therefore checkable against the output directory.
func IsSiteLocal(linkURL string) bool {
	if linkURL == "" || strings.HasPrefix(linkURL, "#") {
		return false
	}
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(linkURL, scheme) {
			return false
		}
	}
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
