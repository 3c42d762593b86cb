package crawler

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/pagegate/internal/model"
)

// ErrNoBaseURL is returned when a Tokenizer is created without a base URL.
// Every page has one, so an empty value is a caller bug.
var ErrNoBaseURL = errors.New("tokenizer requires a base url")

// wordPattern matches runs of letters and digits with at most one internal
// apostrophe, so "don't" stays one word.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:'[\p{L}\p{N}]+)?`)

// apostrophes folds typographic apostrophes onto the ASCII one.
var apostrophes = strings.NewReplacer("’", "'", "ʼ", "'")

// skippedElements never contribute tokens, nor do their descendants.
var skippedElements = map[atom.Atom]bool{
	atom.Style:    true,
	atom.Script:   true,
	atom.Head:     true,
	atom.Title:    true,
	atom.Meta:     true,
	atom.Noscript: true,
	atom.Template: true,
}

// ignoredSchemes are href prefixes that never lead to a crawlable page.
var ignoredSchemes = []string{"mailto:", "javascript:", "tel:", "data:"}

// Tokenizer turns an HTML document into words and outbound links.
//
// Design decision: We build the full node tree with html.Parse and walk it
// lazily instead of driving the low-level html.Tokenizer. The tree builder
// applies the HTML5 recovery rules (implied end tags, misnested markup), so
// skipping a <script> or <head> subtree is exact even on broken pages.
type Tokenizer struct {
	// baseURL is the effective URL of the page, used for resolving relative links.
	baseURL *url.URL
}

// NewTokenizer creates a Tokenizer that resolves links against baseURL.
func NewTokenizer(baseURL string) (*Tokenizer, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{baseURL: u}, nil
}

// Tokens returns the words and links of raw in document order.
//
// contentType is the Content-Type header of the response, used as a hint
// for decoding non-UTF-8 pages; it may be empty. Only the <body> subtree is
// visited, so a document without one yields nothing. Unparseable input
// yields an empty sequence.
//
// The sequence is single-pass per call and stops walking the tree as soon
// as the consumer stops ranging.
func (t *Tokenizer) Tokens(raw []byte, contentType string) iter.Seq[model.Token] {
	return func(yield func(model.Token) bool) {
		if len(raw) == 0 {
			return
		}
		doc, err := html.Parse(decode(raw, contentType))
		if err != nil {
			return
		}
		body := findBody(doc)
		if body == nil {
			return
		}
		w := walker{base: t.documentBase(doc), yield: yield}
		w.walk(body)
	}
}

// documentBase returns the URL links resolve against: the first
// <base href> of the document resolved against the page URL, or the page
// URL itself.
func (t *Tokenizer) documentBase(doc *html.Node) *url.URL {
	href, ok := goquery.NewDocumentFromNode(doc).Find("base[href]").First().Attr("href")
	if !ok {
		return t.baseURL
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return t.baseURL
	}
	return t.baseURL.ResolveReference(u)
}

// decode converts raw to UTF-8, sniffing <meta charset> when the header
// gives no hint. Undecodable input is passed through unchanged.
func decode(raw []byte, contentType string) io.Reader {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return bytes.NewReader(raw)
	}
	return r
}

// findBody returns the <body> element of a parsed document, or nil.
func findBody(doc *html.Node) *html.Node {
	for n := range doc.Descendants() {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			return n
		}
	}
	return nil
}

// walker emits the tokens of one document.
type walker struct {
	base  *url.URL
	yield func(model.Token) bool
}

// walk visits n and its descendants depth first. It returns false once
// yield asks to stop.
func (w *walker) walk(n *html.Node) bool {
	switch n.Type {
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return true
		}
		if n.DataAtom == atom.A {
			if link := w.anchorLink(n); link != "" && !w.yield(model.Link(link)) {
				return false
			}
		}
	case html.TextNode:
		if !w.words(n.Data) {
			return false
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !w.walk(c) {
			return false
		}
	}
	return true
}

// words emits every word of text. It returns false once yield asks to stop.
func (w *walker) words(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	text = strings.ToLower(norm.NFC.String(apostrophes.Replace(text)))
	for _, word := range wordPattern.FindAllString(text, -1) {
		if !w.yield(model.Word(word)) {
			return false
		}
	}
	return true
}

// anchorLink returns the absolute, fragment-free target of an <a> element,
// or "" when the anchor should not be followed.
func (w *walker) anchorLink(n *html.Node) string {
	href := strings.TrimSpace(getAttr(n, "href"))
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range ignoredSchemes {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}
	if isNofollow(getAttr(n, "rel")) {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := w.base.ResolveReference(u)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}

// isNofollow reports whether a rel attribute value contains "nofollow".
func isNofollow(rel string) bool {
	for _, v := range strings.Fields(rel) {
		if strings.EqualFold(v, "nofollow") {
			return true
		}
	}
	return false
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
