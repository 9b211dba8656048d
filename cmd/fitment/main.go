package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/baxtbl4b/app-goroshina/catalog"
	"github.com/baxtbl4b/app-goroshina/db"
	"github.com/baxtbl4b/app-goroshina/delivery"
	"github.com/baxtbl4b/app-goroshina/fitment"
	"github.com/baxtbl4b/app-goroshina/stock"
	"github.com/spf13/cobra"
)

var (
	rulesFile    string
	deliveryFile string
	trace        bool
	provider     string
	dbFile       string
	dryRun       bool
)

var rootCmd = &cobra.Command{
	Use:           "fitment",
	Short:         "Offline tools for tire fitment and stock data",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <records.json>",
	Short: "Resolve raw vendor fitment records into size options",
	Long: `Reads a JSON array of vendor fitment records ("-" for stdin) and
prints the resolved tire sizes, staggered pairs and wheel specs.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var stockCmd = &cobra.Command{
	Use:   "stock <product.json>",
	Short: "Aggregate a product's warehouse stock into display rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runStock,
}

var importCmd = &cobra.Command{
	Use:   "import <stock.xlsx>",
	Short: "Import a supplier stock sheet into the product catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	stockCmd.Flags().StringVar(&rulesFile, "rules", "", "stock rules YAML file")
	stockCmd.Flags().StringVar(&deliveryFile, "delivery", "", "delivery table YAML file")
	stockCmd.Flags().BoolVar(&trace, "trace", false, "also print the rules that fired")

	importCmd.Flags().StringVar(&provider, "provider", "", "provider the sheet belongs to")
	importCmd.Flags().StringVar(&dbFile, "db", "shop.db", "SQLite database file")
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the sheet without writing")
	_ = importCmd.MarkFlagRequired("provider")

	rootCmd.AddCommand(resolveCmd, stockCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	var records []fitment.Record
	if err := readJSON(cmd, args[0], &records); err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), fitment.Resolve(records))
}

func runStock(cmd *cobra.Command, args []string) error {
	var p stock.Product
	if err := readJSON(cmd, args[0], &p); err != nil {
		return err
	}

	rules, err := stock.LoadRules(rulesFile)
	if err != nil {
		return err
	}
	table, err := delivery.LoadTable(deliveryFile)
	if err != nil {
		return err
	}

	locations, fired := stock.New(rules, table).Trace(p)
	if !trace {
		return writeJSON(cmd.OutOrStdout(), locations)
	}
	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"locations": locations,
		"rules":     fired,
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	result, err := catalog.ImportXLSX(f, provider)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range result.Errors {
		fmt.Fprintf(out, "skipped %s\n", e)
	}
	if dryRun {
		fmt.Fprintf(out, "Parsed %d products (%d invalid rows)\n", result.ValidRows, result.InvalidRows)
		return nil
	}

	if err := db.Init(dbFile); err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer db.Close()

	if err := catalog.Upsert(result.Products...); err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d products (%d invalid rows)\n", result.ValidRows, result.InvalidRows)
	return nil
}

func readJSON(cmd *cobra.Command, path string, out any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
