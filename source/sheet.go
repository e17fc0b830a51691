package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// format is a spreadsheet file format recognized from the file content.
type format int

const (
	formatText format = iota // delimited text, the fallback
	formatXLSX
	formatXLS
	formatHTML
)

func (f format) String() string {
	switch f {
	case formatXLSX:
		return "xlsx"
	case formatXLS:
		return "xls"
	case formatHTML:
		return "html"
	default:
		return "text"
	}
}

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
)

// sniff recognizes the format from the first bytes of a file.
func sniff(head []byte) format {
	switch {
	case bytes.HasPrefix(head, zipMagic):
		return formatXLSX
	case bytes.HasPrefix(head, ole2Magic):
		return formatXLS
	}
	head = bytes.TrimSpace(bytes.TrimPrefix(head, utf8BOM))
	head = bytes.ToLower(head)
	for _, sig := range []string{"<html", "<!doc", "<table"} {
		if bytes.HasPrefix(head, []byte(sig)) {
			return formatHTML
		}
	}
	return formatText
}

// readGrid loads the first sheet of the file at path as rows of cells.
func readGrid(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("cannot read %q: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	switch sniff(head[:n]) {
	case formatXLSX:
		return readXLSX(path)
	case formatXLS:
		return readXLS(f)
	case formatHTML:
		return readHTML(f)
	default:
		return readDelimited(f)
	}
}

func readXLSX(path string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheet")
	}
	// raw values keep numbers free of display formatting.
	return wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readXLS(rs io.ReadSeeker) ([][]string, error) {
	wb, err := xls.OpenReader(rs, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("cannot open legacy workbook: %w", err)
	}
	if wb == nil {
		return nil, errors.New("legacy workbook has no Workbook stream")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no sheet")
	}
	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// xlsRow returns the i-th row of sheet, nil when the file has no such row:
// WorkSheet.Row dereferences a missing row.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// readHTML reads the first table of an HTML document.
func readHTML(r io.Reader) ([][]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse html: %w", err)
	}
	table := findElement(doc, atom.Table)
	if table == nil {
		return nil, errors.New("no table found in html document")
	}

	var grid [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				// nested tables are not part of this one.
			case atom.Tr:
				var cells []string
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.DataAtom == atom.Td || td.DataAtom == atom.Th) {
						cells = append(cells, textContent(td))
					}
				}
				grid = append(grid, cells)
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return grid, nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// textContent returns the text of n with whitespace collapsed.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// readDelimited reads comma or semicolon separated text. Semicolons win when the
// first line has more of them, as exports using the decimal comma do.
func readDelimited(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	first, _, _ := bytes.Cut(data, []byte("\n"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		cr.Comma = ';'
	}
	grid, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read delimited text: %w", err)
	}
	return grid, nil
}

// frame is a loaded sheet: a header and the non blank rows under it.
type frame struct {
	header []string
	rows   []row
}

// row is a line of cells, shorter rows read as blank on missing cells.
type row []string

// cell returns the trimmed content of the i-th cell, "" when out of range.
func (r row) cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

func (r row) blank() bool {
	for i := range r {
		if r.cell(i) != "" {
			return false
		}
	}
	return true
}

func newFrame(grid [][]string) *frame {
	f := new(frame)
	if len(grid) == 0 {
		return f
	}
	for _, h := range grid[0] {
		f.header = append(f.header, strings.TrimSpace(h))
	}
	for _, r := range grid[1:] {
		if row(r).blank() {
			continue
		}
		f.rows = append(f.rows, row(r))
	}
	return f
}

// index returns the position of the column named name, -1 if absent.
func (f *frame) index(name string) int {
	for i, h := range f.header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// bind resolves the columns feeding canonical fields, and validates that, with
// the fields the provider fills by itself, every core field is provided.
func (f *frame) bind(columns map[string]string, given ...string) (map[string]int, error) {
	idx := make(map[string]int, len(columns))
	provided := append([]string(nil), given...)
	for field, name := range columns {
		if i := f.index(name); i >= 0 {
			idx[field] = i
			provided = append(provided, field)
		}
	}
	return idx, validate(provided)
}

// number parses a plain numeric cell, unparsable cells read as zero.
func number(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
