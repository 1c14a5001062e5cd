// Package goquery implements HTML handling on top of PuerkitoBio/goquery:
// flattening markup into readable text and reading page titles.
package goquery

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webtext"
	"golang.org/x/net/html"
)

// Ensure TextConverter implements webtext.Converter at compile time.
var _ webtext.Converter = (*TextConverter)(nil)

// suppressedElements never contribute text, nor do their descendants.
// noscript and template are included because the parser keeps their
// contents as raw markup.
var suppressedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// blockElements break the text flow around their content. The value is the
// number of newlines emitted at the boundary.
var blockElements = map[string]int{
	"p": 2, "h1": 2, "h2": 2, "h3": 2, "h4": 2, "h5": 2, "h6": 2,
	"pre": 2, "blockquote": 2, "table": 2, "ul": 2, "ol": 2, "dl": 2,
	"figure": 2, "hr": 2,

	"div": 1, "section": 1, "article": 1, "header": 1, "footer": 1,
	"nav": 1, "aside": 1, "main": 1, "li": 1, "tr": 1, "dt": 1, "dd": 1,
	"form": 1, "fieldset": 1, "address": 1, "figcaption": 1, "title": 1,
	"br": 1, "body": 1, "details": 1, "summary": 1, "caption": 1,
}

// cellElements are separated from their neighbours by a space.
var cellElements = map[string]bool{
	"td": true,
	"th": true,
}

// TextConverter flattens HTML into readable text. Anchors become inline
// [text](href) markers; script and style content is dropped.
type TextConverter struct {
	base *url.URL
}

// Option configures a TextConverter.
type Option func(*TextConverter)

// WithBaseURL resolves relative anchor hrefs against rawURL.
// An unparseable or non-absolute rawURL leaves hrefs verbatim.
func WithBaseURL(rawURL string) Option {
	return func(c *TextConverter) {
		u, err := url.Parse(rawURL)
		if err != nil || !u.IsAbs() {
			return
		}
		c.base = u
	}
}

// NewTextConverter creates a new TextConverter.
func NewTextConverter(opts ...Option) *TextConverter {
	c := &TextConverter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert parses markup tolerantly and returns its text in document order.
// Unclosed tags and invalid nesting are repaired by the parser rather than
// rejected, so the only error is EEXTRACT for a parser failure.
func (c *TextConverter) Convert(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", webtext.Errorf(webtext.EEXTRACT, "failed to parse HTML: %v", err)
	}

	ec := &extractionContext{out: &textBuffer{}}
	for _, n := range doc.Nodes {
		c.walk(ec, n)
	}
	return ec.out.String(), nil
}

// walk visits n and its descendants depth-first.
func (c *TextConverter) walk(ec *extractionContext, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if ec.suppressed > 0 {
			return
		}
		ec.out.WriteText(n.Data, ec.pre > 0)
		return
	case html.DocumentNode:
		c.walkChildren(ec, n)
		return
	case html.ElementNode:
	default:
		// Comments and doctypes carry no readable text.
		return
	}

	name := strings.ToLower(n.Data)
	ec.push(name)
	defer ec.pop()

	if ec.suppressed > 0 {
		return
	}

	if name == "a" {
		c.writeAnchor(ec, n)
		return
	}

	breaks := blockElements[name]
	ec.out.Break(breaks)
	if cellElements[name] {
		ec.out.Space()
	}
	c.walkChildren(ec, n)
	ec.out.Break(breaks)
	if cellElements[name] {
		ec.out.Space()
	}
}

func (c *TextConverter) walkChildren(ec *extractionContext, n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(ec, child)
	}
}

// writeAnchor emits [text](href) for a linked anchor and plain text for an
// anchor without a usable href. A linked anchor without text uses the href
// as its text.
func (c *TextConverter) writeAnchor(ec *extractionContext, n *html.Node) {
	parent := ec.out
	inner := &textBuffer{}
	ec.out = inner
	c.walkChildren(ec, n)
	ec.out = parent

	text := strings.Join(strings.Fields(inner.String()), " ")
	href := c.href(n)

	if inner.leadingSpace {
		parent.Space()
	}
	switch {
	case href != "" && text != "":
		parent.WriteInline("[" + linkTextEscaper.Replace(text) + "](" + hrefEscaper.Replace(href) + ")")
	case href != "":
		parent.WriteInline("[" + linkTextEscaper.Replace(href) + "](" + hrefEscaper.Replace(href) + ")")
	case text != "":
		parent.WriteInline(text)
	}
	if inner.pendingSpace {
		parent.Space()
	}
}

// linkTextEscaper keeps brackets in anchor text from closing the marker.
var linkTextEscaper = strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`)

// hrefEscaper percent-encodes the characters that would end the target early.
var hrefEscaper = strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29")

// href returns the usable link target of an anchor, or "".
func (c *TextConverter) href(n *html.Node) string {
	var href string
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, "href") {
			href = strings.TrimSpace(attr.Val)
			break
		}
	}
	if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	if c.base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return c.base.ResolveReference(ref).String()
}

// extractionContext is the transient state of one Convert call.
type extractionContext struct {
	stack      []string // open element names
	suppressed int      // open suppressed elements
	pre        int      // open pre elements
	out        *textBuffer
}

func (ec *extractionContext) push(name string) {
	ec.stack = append(ec.stack, name)
	if suppressedElements[name] {
		ec.suppressed++
	}
	if name == "pre" {
		ec.pre++
	}
}

func (ec *extractionContext) pop() {
	name := ec.stack[len(ec.stack)-1]
	ec.stack = ec.stack[:len(ec.stack)-1]
	if suppressedElements[name] {
		ec.suppressed--
	}
	if name == "pre" {
		ec.pre--
	}
}

// textBuffer accumulates text, collapsing whitespace. Separators are held
// back until the next text so the output never starts or ends with them.
type textBuffer struct {
	b            strings.Builder
	pendingSpace bool
	pendingBreak int
	leadingSpace bool
}

// WriteText appends a text node. Outside pre, runs of whitespace collapse
// to a single space.
func (t *textBuffer) WriteText(s string, preserve bool) {
	if s == "" {
		return
	}
	if preserve {
		t.flush()
		t.b.WriteString(s)
		return
	}

	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		t.Space()
		return
	}
	if unicode.IsSpace(first) {
		t.Space()
	}
	t.flush()
	t.b.WriteString(strings.Join(fields, " "))
	if unicode.IsSpace(last) {
		t.Space()
	}
}

// WriteInline appends s verbatim as inline content.
func (t *textBuffer) WriteInline(s string) {
	t.flush()
	t.b.WriteString(s)
}

// Space requests a separating space before the next text.
func (t *textBuffer) Space() {
	if t.b.Len() == 0 {
		t.leadingSpace = true
		return
	}
	t.pendingSpace = true
}

// Break requests n newlines before the next text.
func (t *textBuffer) Break(n int) {
	if n == 0 || t.b.Len() == 0 {
		return
	}
	if n > t.pendingBreak {
		t.pendingBreak = n
	}
}

func (t *textBuffer) flush() {
	if t.b.Len() > 0 {
		if t.pendingBreak > 0 {
			t.b.WriteString(strings.Repeat("\n", t.pendingBreak))
		} else if t.pendingSpace {
			t.b.WriteByte(' ')
		}
	}
	t.pendingSpace = false
	t.pendingBreak = 0
}

// String returns the accumulated text without surrounding whitespace.
func (t *textBuffer) String() string {
	return strings.TrimSpace(t.b.String())
}
