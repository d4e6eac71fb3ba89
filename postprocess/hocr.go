package postprocess

import (
	"fmt"
	"golang.org/x/net/html"
	"image"
	"io"
	"strconv"
	"strings"
)

const (
	// hocrWordClass is the class name Tesseract gives each word span
	hocrWordClass = "ocrx_word"
)

// ParseHOCR reads a hOCR document and returns a Token for every word span in
// document order.  A word whose x_wconf property is missing or malformed is
// given UnscoredConfidence rather than failing the parse.  A word without a
// readable bbox is skipped
func ParseHOCR(r io.Reader) ([]Token, error) {

	doc, err := html.Parse(r)

	if err != nil {
		return nil, fmt.Errorf("error parsing hOCR: %w", err)
	}

	tokens := make([]Token, 0)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {

		if n.Type == html.ElementNode && hasClass(n, hocrWordClass) {
			if tok, ok := wordToken(n); ok {
				tokens = append(tokens, tok)
			}
			// words do not nest
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return tokens, nil
}

// wordToken builds a Token from a single ocrx_word element
func wordToken(n *html.Node) (Token, bool) {

	props := titleProps(attr(n, "title"))

	bbox, ok := props["bbox"]

	if !ok || len(bbox) != 4 {
		return Token{}, false
	}

	var coords [4]int

	for i, v := range bbox {
		c, err := strconv.Atoi(v)

		if err != nil {
			return Token{}, false
		}

		coords[i] = c
	}

	conf := UnscoredConfidence

	if wconf, ok := props["x_wconf"]; ok && len(wconf) == 1 {
		conf = ParseConfidence(wconf[0])
	}

	rect := image.Rect(coords[0], coords[1], coords[2], coords[3])

	return NewToken(nodeText(n), rect, conf), true
}

// titleProps splits a hOCR title attribute such as
// "bbox 36 92 96 116; x_wconf 93" into its named properties
func titleProps(title string) map[string][]string {

	props := make(map[string][]string)

	for _, part := range strings.Split(title, ";") {
		fields := strings.Fields(part)

		if len(fields) == 0 {
			continue
		}

		props[fields[0]] = fields[1:]
	}

	return props
}

// nodeText concatenates all text beneath the node
func nodeText(n *html.Node) string {

	var sb strings.Builder

	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}

	collect(n)

	return sb.String()
}

// attr returns the value of the named attribute or an empty string
func attr(n *html.Node, key string) string {

	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

// hasClass checks if the node has the given class name
func hasClass(n *html.Node, class string) bool {

	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}

	return false
}
