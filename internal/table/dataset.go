package table

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/award-shares/internal/logger"
)

// Dataset is a rectangular table of string cells. Links holds, for every cell, the
// href of the first anchor inside it or "".
type Dataset struct {
	ID      string
	Headers []string
	Rows    [][]string
	Links   [][]string
}

// Extract locates the table with the given id using DefaultLocator.
func Extract(doc *goquery.Document, id string) (*Dataset, error) {
	return ExtractWith(doc, id, DefaultLocator)
}

// ExtractWith locates the table with the given locator and converts it.
func ExtractWith(doc *goquery.Document, id string, loc Locator) (*Dataset, error) {
	sel, ok := loc.Locate(doc, id)
	if !ok {
		return nil, &TableNotFoundError{ID: id}
	}
	return FromSelection(id, sel), nil
}

// FromSelection converts a table element. Headers come from the last header row,
// skipping leading group-header rows. Body rows that repeat the header are skipped.
// Cells spanning several columns are expanded so every row has len(Headers) cells;
// short rows are padded and cells beyond the last header are dropped.
func FromSelection(id string, tbl *goquery.Selection) *Dataset {
	ds := &Dataset{ID: id}

	headerRows := tbl.Find("thead tr")
	bodyRows := tbl.Find("tbody tr")
	if headerRows.Length() == 0 {
		all := tbl.Find("tr")
		headerRows = all.First()
		bodyRows = all.Slice(1, all.Length())
	} else if bodyRows.Length() == 0 {
		bodyRows = tbl.ChildrenFiltered("tr")
	}

	if header := headerRows.Last(); header.Length() > 0 {
		ds.Headers, _ = rowCells(header)
	}

	bodyRows.Each(func(_ int, tr *goquery.Selection) {
		if isHeaderRow(tr) {
			return
		}
		cells, links := rowCells(tr)
		if len(cells) == 0 {
			return
		}
		if w := len(ds.Headers); w > 0 && len(cells) > w {
			logger.Debug("Dropping cells beyond the header", logger.Fields{
				"table":   id,
				"row":     len(ds.Rows),
				"cells":   len(cells),
				"headers": w,
			})
		}
		ds.Rows = append(ds.Rows, fit(cells, len(ds.Headers)))
		ds.Links = append(ds.Links, fit(links, len(ds.Headers)))
	})

	return ds
}

func isHeaderRow(tr *goquery.Selection) bool {
	class := tr.AttrOr("class", "")
	for _, c := range strings.Fields(class) {
		if c == "thead" || c == "over_header" {
			return true
		}
	}
	return false
}

// rowCells returns the trimmed text and first link of each th/td cell, expanded
// by colspan.
func rowCells(tr *goquery.Selection) ([]string, []string) {
	var cells, links []string
	tr.ChildrenFiltered("th, td").Each(func(_ int, c *goquery.Selection) {
		span := 1
		if v, ok := c.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
				span = n
			}
		}
		href, _ := c.Find("a").First().Attr("href")
		cells = append(cells, strings.TrimSpace(c.Text()))
		links = append(links, href)
		for i := 1; i < span; i++ {
			cells = append(cells, "")
			links = append(links, "")
		}
	})
	return cells, links
}

func fit(cells []string, width int) []string {
	if width == 0 || len(cells) == width {
		return cells
	}
	out := make([]string, width)
	copy(out, cells)
	return out
}

// Index returns the position of the first header equal to name, or -1.
func (d *Dataset) Index(name string) int {
	for i, h := range d.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// IndexOf returns the position of the first header matching any of names, or -1.
func (d *Dataset) IndexOf(names ...string) int {
	for _, n := range names {
		if i := d.Index(n); i >= 0 {
			return i
		}
	}
	return -1
}

// Get returns a row's cell under the named header, or "" when the column is absent.
func (d *Dataset) Get(row int, name string) string {
	i := d.Index(name)
	if i < 0 || row < 0 || row >= len(d.Rows) {
		return ""
	}
	return d.Rows[row][i]
}

// Link returns the first link in a row's cell under the named header.
func (d *Dataset) Link(row int, name string) string {
	i := d.Index(name)
	if i < 0 || row < 0 || row >= len(d.Rows) {
		return ""
	}
	return d.linkRow(row)[i]
}

// Column returns every cell under the named header.
func (d *Dataset) Column(name string) []string {
	i := d.Index(name)
	if i < 0 {
		return nil
	}
	col := make([]string, len(d.Rows))
	for r, row := range d.Rows {
		col[r] = row[i]
	}
	return col
}

// Filter returns a dataset holding only the rows for which keep returns true.
func (d *Dataset) Filter(keep func(row []string) bool) *Dataset {
	out := &Dataset{ID: d.ID, Headers: d.Headers}
	for i, row := range d.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
			out.Links = append(out.Links, d.linkRow(i))
		}
	}
	return out
}

// DropBlankColumns returns a dataset without columns whose cells are all blank.
// A column with a blank header and blank cells is dropped as well.
func (d *Dataset) DropBlankColumns() *Dataset {
	keep := make([]int, 0, len(d.Headers))
	for c := range d.Headers {
		for _, row := range d.Rows {
			if strings.TrimSpace(row[c]) != "" {
				keep = append(keep, c)
				break
			}
		}
	}

	out := &Dataset{ID: d.ID, Headers: pick(d.Headers, keep)}
	for i, row := range d.Rows {
		out.Rows = append(out.Rows, pick(row, keep))
		out.Links = append(out.Links, pick(d.linkRow(i), keep))
	}
	return out
}

// linkRow returns the links of row i, padded to the header width.
func (d *Dataset) linkRow(i int) []string {
	if i < len(d.Links) && len(d.Links[i]) == len(d.Headers) {
		return d.Links[i]
	}
	return make([]string, len(d.Headers))
}

func pick(cells []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, c := range idx {
		out[i] = cells[c]
	}
	return out
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// StripMarker removes a trailing "*" flag from a display name, as the site marks
// playoff teams and Hall of Fame players.
func StripMarker(name string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(name), "*"))
}
