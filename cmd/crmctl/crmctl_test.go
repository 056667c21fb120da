package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func useTempDatabase(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "crm.db"))
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "hash-password", "s3cret!")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret!")))
}

func TestImportProducts(t *testing.T) {
	useTempDatabase(t)
	csvPath := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Product Abbreviation,Product Full Name,Unit Price (USD)\nVC,Vitamin C,12.50\nZN,Zinc,3\n"), 0o644))

	out, err := run(t, "import-products", "--file", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 products")

	out, err = run(t, "import-products", "--file", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing imported")
}

func TestImportProducts_Workbook(t *testing.T) {
	useTempDatabase(t)
	wb := excelize.NewFile()
	defer wb.Close()
	require.NoError(t, wb.SetSheetName("Sheet1", "Products"))
	require.NoError(t, wb.SetSheetRow("Products", "A1", &[]interface{}{"Product Full Name", "Unit Price (USD)"}))
	require.NoError(t, wb.SetSheetRow("Products", "A2", &[]interface{}{"Vitamin C", 12.5}))
	xlsxPath := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, wb.SaveAs(xlsxPath))

	out, err := run(t, "import-products", "-f", xlsxPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 products from sheet Products")
}

func TestImportProducts_RequiresFile(t *testing.T) {
	useTempDatabase(t)
	_, err := run(t, "import-products")
	assert.Error(t, err)
}

func TestSeedAdmin_WithEnvFile(t *testing.T) {
	useTempDatabase(t)
	envFile := filepath.Join(t.TempDir(), "crm.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ADMIN_EMAIL=owner@example.com\nADMIN_PASSWORD=hunter22\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("ADMIN_EMAIL")
		os.Unsetenv("ADMIN_PASSWORD")
	})

	out, err := run(t, "--env-file", envFile, "seed-admin")
	require.NoError(t, err)
	assert.Contains(t, out, "owner@example.com created")

	out, err = run(t, "--env-file", envFile, "seed-admin")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}
