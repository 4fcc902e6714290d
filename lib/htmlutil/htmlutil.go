package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses a selection's text into a single printable line.
func CleanText(sel *goquery.Selection) string {
	text := sel.Text()
	text = removeNonPrintable(text)
	text = strings.Trim(text, " \t\n")
	return innerWhitespace.ReplaceAllString(text, " ")
}

// LabeledField finds the text following a label node, e.g. given
// `<span class="status-bold">Seats Available:</span> 3` it returns "3"
// for the label "Seats Available".
func LabeledField(doc *goquery.Document, label string) string {
	var out string
	doc.Find("span, dt, th, td, strong, b, label").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := CleanText(sel)
		if !strings.EqualFold(strings.TrimSuffix(text, ":"), label) {
			return true
		}

		// the value usually lives in the label's trailing sibling text,
		// or in the next cell of a definition/table row
		if node := sel.Nodes[0]; node.NextSibling != nil {
			value := strings.Trim(GetText(node.NextSibling), " \t\n:")
			if value != "" {
				out = innerWhitespace.ReplaceAllString(removeNonPrintable(value), " ")
				return false
			}
		}
		next := sel.Next()
		if next.Length() > 0 {
			value := CleanText(next)
			if value != "" {
				out = value
				return false
			}
		}
		return true
	})
	return out
}
