// Package export moves catalog data in and out of spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/storefront/storefront-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const VariantSheet = "variants"

var variantHeader = []string{"SKU", "Price", "Sale price", "Stock"}

// AttributeColumns returns the attribute names used across variants. Names
// listed in order come first, in that order; any others follow sorted.
func AttributeColumns(variants []model.ProductVariant, order []string) []string {
	seen := make(map[string]bool)
	for _, v := range variants {
		for k := range v.Attributes {
			seen[k] = false
		}
	}

	cols := make([]string, 0, len(seen))
	for _, name := range order {
		if done, ok := seen[name]; ok && !done {
			seen[name] = true
			cols = append(cols, name)
		}
	}
	var rest []string
	for name, done := range seen {
		if !done {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

// Variants writes one row per variant to an XLSX workbook.
func Variants(product *model.Product, variants []model.ProductVariant, attributeOrder []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), VariantSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	cols := AttributeColumns(variants, attributeOrder)
	header := make([]interface{}, 0, len(variantHeader)+len(cols))
	for _, h := range variantHeader {
		header = append(header, h)
	}
	for _, c := range cols {
		header = append(header, c)
	}
	if err := f.SetSheetRow(VariantSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, v := range variants {
		row := []interface{}{v.SKU, v.Price.StringFixed(2), "", v.StockQuantity}
		if v.SalePrice.Valid {
			row[2] = v.SalePrice.Decimal.StringFixed(2)
		}
		for _, c := range cols {
			row = append(row, v.Attribute(c))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(VariantSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if product != nil {
		if err := f.SetDocProps(&excelize.DocProperties{
			Title:   product.Name,
			Subject: product.SKU,
		}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
