package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ProductColumns is the header row expected by ReadProducts. Column order in
// the file does not matter; names are matched case-insensitively.
var ProductColumns = []string{"Name", "SKU", "Category", "Price", "Sale price", "Stock", "Description", "Image URL"}

// ProductRow is one importable product.
type ProductRow struct {
	Line        int
	Name        string
	SKU         string
	Category    string
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal
	Stock       int
	Description string
	ImageURL    string
}

// RowError explains why a line was skipped.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ReadProducts parses the first sheet of a workbook. Rows that cannot be
// imported are reported rather than aborting the whole file.
func ReadProducts(r io.Reader) ([]ProductRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "sku", "category", "price"} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		products []ProductRow
		skipped  []RowError
		seenSKU  = make(map[string]int)
	)
	for i, row := range rows[1:] {
		line := i + 2
		p := ProductRow{
			Line:        line,
			Name:        cell(row, "name"),
			SKU:         cell(row, "sku"),
			Category:    cell(row, "category"),
			Description: cell(row, "description"),
			ImageURL:    cell(row, "image url"),
		}
		if p.Name == "" && p.SKU == "" {
			continue
		}
		if p.Name == "" || p.SKU == "" || p.Category == "" {
			skipped = append(skipped, RowError{line, "name, sku and category are required"})
			continue
		}
		if first, dup := seenSKU[p.SKU]; dup {
			skipped = append(skipped, RowError{line, fmt.Sprintf("sku %s already on line %d", p.SKU, first)})
			continue
		}

		price, err := decimal.NewFromString(cell(row, "price"))
		if err != nil || price.IsNegative() {
			skipped = append(skipped, RowError{line, "invalid price"})
			continue
		}
		p.Price = price

		if raw := cell(row, "sale price"); raw != "" {
			sale, err := decimal.NewFromString(raw)
			if err != nil {
				skipped = append(skipped, RowError{line, "invalid sale price"})
				continue
			}
			p.SalePrice = &sale
		}

		if raw := cell(row, "stock"); raw != "" {
			stock, err := strconv.Atoi(raw)
			if err != nil || stock < 0 {
				skipped = append(skipped, RowError{line, "invalid stock"})
				continue
			}
			p.Stock = stock
		}

		seenSKU[p.SKU] = line
		products = append(products, p)
	}
	return products, skipped, nil
}
