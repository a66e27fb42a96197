package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/sabha-admin/internal/pincode"
)

var (
	pincodeFile  string
	pincodeBatch int
)

var pincodesCmd = &cobra.Command{
	Use:   "pincodes",
	Short: "Manage the postal reference table",
}

var pincodesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-load post offices from a CSV file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := os.Open(pincodeFile)
		if err != nil {
			return err
		}
		defer f.Close()

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := pincode.Import(cmd.Context(), f, a.pincodes, pincodeBatch)
		if err != nil {
			return fmt.Errorf("import stopped after %d rows: %w", n, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d post offices\n", n)
		return nil
	},
}

func init() {
	pincodesImportCmd.Flags().StringVar(&pincodeFile, "file", "", "CSV file with a header row")
	pincodesImportCmd.Flags().IntVar(&pincodeBatch, "batch", pincode.DefaultBatch, "rows per INSERT")
	_ = pincodesImportCmd.MarkFlagRequired("file")
	pincodesCmd.AddCommand(pincodesImportCmd)
}
