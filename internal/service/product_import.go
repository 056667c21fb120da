package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/model"
	"github.com/zakareajob-cpu/zak-crm/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// importColumns maps each product field to the header spellings accepted in
// spreadsheets exported by sales staff.
var importColumns = map[string][]string{
	"short_name":    {"product abbreviation", "abbreviation", "abbr", "short name", "short_name"},
	"full_name":     {"product full name", "full name", "product name", "name", "full_name"},
	"specification": {"specification", "spec"},
	"package":       {"package", "pack"},
	"form":          {"form"},
	"unit_price":    {"unit price", "price", "unit price (usd)", "unit_price"},
	"currency":      {"currency"},
}

// ImportFormat is the file layout an import reads.
type ImportFormat string

const (
	ImportCSV  ImportFormat = "csv"
	ImportXLSX ImportFormat = "xlsx"
)

// ImportFormatFor picks the format from a file name: .xlsx is read as a
// workbook, anything else as CSV.
func ImportFormatFor(filename string) ImportFormat {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ImportXLSX
	}
	return ImportCSV
}

// ProductImporter seeds the catalog from a CSV file or an xlsx workbook with a
// header row.
type ProductImporter struct {
	repo            repository.ProductRepository
	defaultCurrency string
}

func NewProductImporter(repo repository.ProductRepository, defaultCurrency string) *ProductImporter {
	return &ProductImporter{repo: repo, defaultCurrency: defaultCurrency}
}

// Import inserts every usable row in one transaction. When the catalog
// already holds products nothing is read unless force is set.
func (im *ProductImporter) Import(ctx context.Context, r io.Reader, format ImportFormat, force bool) (*dto.ImportResult, error) {
	if !force {
		n, err := im.repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			log.Info().Int64("existing", n).Msg("products already present, import skipped")
			return &dto.ImportResult{SkippedExisting: true}, nil
		}
	}

	var (
		rows  [][]string
		sheet string
		err   error
	)
	switch format {
	case ImportXLSX:
		sheet, rows, err = readWorkbookRows(r)
	case ImportCSV, "":
		rows, err = readCSVRows(r)
	default:
		return nil, invalid("format", "unsupported import format "+string(format))
	}
	if err != nil {
		return nil, err
	}

	products, skipped, err := im.parse(rows)
	if err != nil {
		return nil, err
	}
	err = runTx(ctx, im.repo.DB(), func(tx *gorm.DB) error {
		return im.repo.CreateBatchTx(tx, products)
	})
	if err != nil {
		return nil, fmt.Errorf("import products: %w", err)
	}
	log.Info().Int("inserted", len(products)).Int("skipped", skipped).Str("sheet", sheet).Msg("products imported")
	return &dto.ImportResult{Inserted: len(products), Skipped: skipped, Sheet: sheet}, nil
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// readWorkbookRows reads the first worksheet whose name mentions "product",
// falling back to the first worksheet.
func readWorkbookRows(r io.Reader) (string, [][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, invalid("file", "not a readable xlsx workbook")
	}
	defer wb.Close()

	sheet := pickProductSheet(wb.GetSheetList())
	if sheet == "" {
		return "", nil, invalid("file", "workbook has no worksheets")
	}
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return "", nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return sheet, rows, nil
}

func pickProductSheet(names []string) string {
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), "product") {
			return n
		}
	}
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func (im *ProductImporter) parse(rows [][]string) ([]model.Product, int, error) {
	if len(rows) == 0 {
		return nil, 0, invalid("file", "empty file")
	}
	index := mapImportHeader(rows[0])
	if _, ok := index["full_name"]; !ok {
		if _, ok := index["short_name"]; !ok {
			return nil, 0, invalid("file", "no product name column found")
		}
	}

	var products []model.Product
	skipped := 0
	for _, record := range rows[1:] {
		p, ok := im.productFromRecord(record, index)
		if !ok {
			skipped++
			continue
		}
		products = append(products, p)
	}
	return products, skipped, nil
}

func (im *ProductImporter) productFromRecord(record []string, index map[string]int) (model.Product, bool) {
	get := func(field string) string {
		i, ok := index[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	short := get("short_name")
	full := firstNonEmpty(get("full_name"), short)
	if full == "" {
		return model.Product{}, false
	}
	rawPrice := strings.NewReplacer("$", "", ",", "").Replace(get("unit_price"))
	price := ParseLenientDecimal(rawPrice)
	if price.IsNegative() {
		return model.Product{}, false
	}
	currency := strings.ToUpper(get("currency"))
	if currency == "" {
		currency = im.defaultCurrency
	}
	return model.Product{
		ShortName:     short,
		FullName:      full,
		Specification: get("specification"),
		Package:       get("package"),
		Form:          get("form"),
		UnitPrice:     price,
		Currency:      currency,
		Active:        true,
	}, true
}

// mapImportHeader returns the column position of every recognised field.
// The first matching column wins.
func mapImportHeader(header []string) map[string]int {
	index := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for field, aliases := range importColumns {
			if _, seen := index[field]; seen {
				continue
			}
			for _, a := range aliases {
				if name == a {
					index[field] = i
					break
				}
			}
		}
	}
	return index
}
