package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCatalog = "\ufeffProduct Abbreviation,Product Full Name,Spec,Pack,Form,Unit Price (USD)\n" +
	"VC,Vitamin C,99%,25kg drum,Powder,\"1,250.50\"\n" +
	",,,,,\n" +
	"ZN,,USP,1kg bag,Powder,abc\n" +
	",Lysine HCl,98.5%,25kg bag,Granule,$2.10\n"

func TestProductImporter_MapsAliasesAndSkipsEmptyRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	im := NewProductImporter(env.products, "USD")

	res, err := im.Import(ctx, strings.NewReader(sampleCatalog), ImportCSV, false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, res.SkippedExisting)

	products, err := env.products.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	byName := map[string]int{}
	for i, p := range products {
		byName[p.FullName] = i
	}

	vc := products[byName["Vitamin C"]]
	assert.Equal(t, "VC", vc.ShortName)
	assert.Equal(t, "99%", vc.Specification)
	assert.Equal(t, "25kg drum", vc.Package)
	assert.True(t, vc.UnitPrice.Equal(dec("1250.5")))
	assert.Equal(t, "USD", vc.Currency)
	assert.True(t, vc.Active)

	// short name stands in for a missing full name; bad price is zero
	zn := products[byName["ZN"]]
	assert.True(t, zn.UnitPrice.IsZero())

	lys := products[byName["Lysine HCl"]]
	assert.True(t, lys.UnitPrice.Equal(dec("2.1")))
}

func TestProductImporter_SkipsWhenCatalogIsPopulated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	im := NewProductImporter(env.products, "USD")

	_, err := im.Import(ctx, strings.NewReader(sampleCatalog), ImportCSV, false)
	require.NoError(t, err)

	res, err := im.Import(ctx, strings.NewReader(sampleCatalog), ImportCSV, false)
	require.NoError(t, err)
	assert.True(t, res.SkippedExisting)
	assert.Zero(t, res.Inserted)

	res, err = im.Import(ctx, strings.NewReader(sampleCatalog), ImportCSV, true)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)

	n, err := env.products.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)
}

func TestProductImporter_RejectsFilesWithoutNameColumn(t *testing.T) {
	env := newTestEnv(t)
	_, err := NewProductImporter(env.products, "USD").Import(context.Background(), strings.NewReader("price,currency\n1,USD\n"), ImportCSV, false)
	assert.ErrorIs(t, err, ErrValidation)
}

// workbook builds an xlsx file with one sheet per entry of sheets, in order.
func workbook(t *testing.T, sheets []string, rows map[string][][]interface{}) *bytes.Buffer {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, wb.SetSheetName("Sheet1", name))
		} else {
			_, err := wb.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, wb.SetSheetRow(name, cell, &row))
		}
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestProductImporter_ReadsProductSheetOfWorkbook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buf := workbook(t, []string{"Notes", "Product List", "Products old"}, map[string][][]interface{}{
		"Notes": {{"Product Full Name"}, {"Not a product"}},
		"Product List": {
			{"Product Abbreviation", "Product Full Name", "Spec", "Pack", "Unit Price (USD)"},
			{"VC", "Vitamin C", "99%", "25kg drum", 12.5},
			{},
			{"ZN", "Zinc Oxide", "USP", "1kg bag", "3"},
		},
		"Products old": {{"Product Full Name"}, {"Retired"}},
	})

	res, err := NewProductImporter(env.products, "USD").Import(ctx, buf, ImportXLSX, false)
	require.NoError(t, err)
	assert.Equal(t, "Product List", res.Sheet)
	assert.Equal(t, 2, res.Inserted)

	products, err := env.products.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	want := map[string]string{"Vitamin C": "12.5", "Zinc Oxide": "3"}
	for _, p := range products {
		price, ok := want[p.FullName]
		require.True(t, ok, p.FullName)
		assert.True(t, p.UnitPrice.Equal(dec(price)), "%s: %s", p.FullName, p.UnitPrice)
	}
}

func TestProductImporter_WorkbookFallsBackToFirstSheet(t *testing.T) {
	env := newTestEnv(t)
	buf := workbook(t, []string{"Catalog", "Other"}, map[string][][]interface{}{
		"Catalog": {{"Name", "Price"}, {"Lysine HCl", 2.1}},
		"Other":   {{"Name"}, {"Ignored"}},
	})

	res, err := NewProductImporter(env.products, "USD").Import(context.Background(), buf, ImportXLSX, false)
	require.NoError(t, err)
	assert.Equal(t, "Catalog", res.Sheet)
	assert.Equal(t, 1, res.Inserted)
}

func TestProductImporter_RejectsUnreadableWorkbook(t *testing.T) {
	env := newTestEnv(t)
	_, err := NewProductImporter(env.products, "USD").Import(context.Background(), strings.NewReader("not a zip"), ImportXLSX, false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestImportFormatFor(t *testing.T) {
	assert.Equal(t, ImportXLSX, ImportFormatFor("data/products.XLSX"))
	assert.Equal(t, ImportCSV, ImportFormatFor("products.csv"))
	assert.Equal(t, ImportCSV, ImportFormatFor("products"))
}

func TestPickProductSheet(t *testing.T) {
	assert.Equal(t, "My Products", pickProductSheet([]string{"Summary", "My Products", "product2"}))
	assert.Equal(t, "Summary", pickProductSheet([]string{"Summary", "Other"}))
	assert.Empty(t, pickProductSheet(nil))
}
