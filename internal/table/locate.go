package table

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TableNotFoundError is returned when no locator finds the requested table.
type TableNotFoundError struct {
	ID string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found in document or comments", e.ID)
}

// NotFound always reports true.
func (e *TableNotFoundError) NotFound() bool {
	return true
}

// Locator finds the table element with the given id in a document.
type Locator interface {
	Locate(doc *goquery.Document, id string) (*goquery.Selection, bool)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(doc *goquery.Document, id string) (*goquery.Selection, bool)

// Locate calls f.
func (f LocatorFunc) Locate(doc *goquery.Document, id string) (*goquery.Selection, bool) {
	return f(doc, id)
}

// Chain tries each locator in order and returns the first match.
type Chain []Locator

// Locate implements Locator.
func (c Chain) Locate(doc *goquery.Document, id string) (*goquery.Selection, bool) {
	for _, l := range c {
		if sel, ok := l.Locate(doc, id); ok {
			return sel, true
		}
	}
	return nil, false
}

// TreeLocator searches the visible document tree. The id may name the table itself,
// a container holding it, or the site's "div_<id>" wrapper.
type TreeLocator struct{}

// Locate implements Locator.
func (TreeLocator) Locate(doc *goquery.Document, id string) (*goquery.Selection, bool) {
	return locateIn(doc.Selection, id)
}

func locateIn(root *goquery.Selection, id string) (*goquery.Selection, bool) {
	if id == "" {
		return nil, false
	}
	selectors := []string{
		fmt.Sprintf(`table[id=%q]`, id),
		fmt.Sprintf(`[id=%q] table`, id),
		fmt.Sprintf(`[id=%q] table`, "div_"+id),
	}
	for _, s := range selectors {
		if sel := root.Find(s).First(); sel.Length() > 0 {
			return sel, true
		}
	}
	return nil, false
}

// CommentLocator searches HTML embedded in comment nodes. Each comment that
// contains a table is parsed as its own fragment and searched like the main tree.
type CommentLocator struct{}

// Locate implements Locator.
func (CommentLocator) Locate(doc *goquery.Document, id string) (*goquery.Selection, bool) {
	for _, text := range Comments(doc) {
		if !strings.Contains(text, "<table") || !strings.Contains(text, id) {
			continue
		}
		frag, err := goquery.NewDocumentFromReader(strings.NewReader(text))
		if err != nil {
			continue
		}
		if sel, ok := locateIn(frag.Selection, id); ok {
			return sel, true
		}
	}
	return nil, false
}

// Comments returns the text of every comment node in document order.
func Comments(doc *goquery.Document) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			out = append(out, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return out
}

// DefaultLocator searches the tree first and falls back to comments.
var DefaultLocator Locator = Chain{TreeLocator{}, CommentLocator{}}
