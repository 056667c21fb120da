package main

import (
	"fmt"
	"os"

	"github.com/zakareajob-cpu/zak-crm/internal/repository"
	"github.com/zakareajob-cpu/zak-crm/internal/service"

	"github.com/spf13/cobra"
)

func newImportProductsCmd(a *app) *cobra.Command {
	var (
		file  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "import-products",
		Short: "Load the product catalog from an xlsx or CSV file",
		Long: `Import products from an xlsx workbook or a CSV file with a header row.
Workbooks are read from the first sheet whose name contains "product", or the
first sheet when none does. Files not ending in .xlsx are read as CSV.
Recognised columns include "Product Abbreviation", "Product Full Name", "Spec",
"Pack", "Form" and "Unit Price (USD)". The import is skipped when products
already exist unless --force is given.`,
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "xlsx or CSV file to import")
	cmd.Flags().BoolVar(&force, "force", false, "import even when the catalog is not empty")
	_ = cmd.MarkFlagRequired("file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("open %s: %w", file, err)
		}
		defer f.Close()

		db, err := a.database()
		if err != nil {
			return err
		}
		im := service.NewProductImporter(repository.NewProductRepository(db), a.cfg.CurrencyDefault)
		res, err := im.Import(cmd.Context(), f, service.ImportFormatFor(file), force)
		if err != nil {
			return fmt.Errorf("import %s: %w", file, err)
		}

		out := cmd.OutOrStdout()
		if res.SkippedExisting {
			fmt.Fprintln(out, "Catalog already has products; nothing imported (use --force to import anyway).")
			return nil
		}
		if res.Sheet != "" {
			fmt.Fprintf(out, "Imported %d products from sheet %s (%d empty rows skipped).\n", res.Inserted, res.Sheet, res.Skipped)
			return nil
		}
		fmt.Fprintf(out, "Imported %d products (%d empty rows skipped).\n", res.Inserted, res.Skipped)
		return nil
	}
	return cmd
}
