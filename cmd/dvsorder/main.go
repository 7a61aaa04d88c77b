package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"dvsorder/adapters/cvr"
	"dvsorder/adapters/report"
	"dvsorder/app"
	"dvsorder/domain/core"
	"dvsorder/domain/sequence"
	"dvsorder/internal"
	"dvsorder/internal/config"
	"dvsorder/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dvsorder",
		Short: "Detect the DVSorder ballot-order leak in Dominion CVR exports",
	}

	rootCmd.AddCommand(
		newScanCmd(),
		newSeqCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newScanCmd() *cobra.Command {
	var images bool
	var showUnshuffled bool
	var workers int

	cmd := &cobra.Command{
		Use:   "scan FILE [FILE...]",
		Short: "Scan CVR exports and estimate how many ballots are vulnerable",
		Long: `Scan one or more CVR exports for the DVSorder vulnerability.

Accepts CSV or XLSX results reports, zipped JSON CVR exports, and (with
--images) zip archives of ballot images. Prints a per-batch verdict and a
run summary.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("show-unshuffled") {
				cfg.ShowUnshuffled = showUnshuffled
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			log := internal.NewDefaultLogger()

			sources := make([]ports.BatchSource, 0, len(args))
			for _, path := range args {
				src, err := cvr.ForPath(path, images, log)
				if err != nil {
					return err
				}
				sources = append(sources, src)
			}

			if cfg.WarmTables {
				sequence.Warm()
			}
			sink := report.NewConsoleSink(cmd.OutOrStdout(), cfg.ShowUnshuffled)
			svc := app.NewScanService(log, sink, cfg.Workers)
			_, err := svc.Scan(cmd.Context(), sources)
			return err
		},
	}

	cmd.Flags().BoolVar(&images, "images", false, "treat zip arguments as ballot-image archives")
	cmd.Flags().BoolVar(&showUnshuffled, "show-unshuffled", false, "print the recovered scan order of each vulnerable batch")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent batches (default from DVSORDER_WORKERS)")

	return cmd
}

func newSeqCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "seq ID [ID...]",
		Short: "Locate record ids in a scanner's id sequence",
		Long: `Map record ids back to their sequence positions for one scanner family.

Example: dvsorder seq --model ImagecastPrecinct 555555 134524`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := core.ParseScannerModel(model)
			if err != nil {
				return err
			}
			variants := sequence.Variants
			if m.Known() {
				variants = []core.ScannerModel{m}
			}

			for _, arg := range args {
				raw, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("not a record id: %q", arg)
				}
				id := core.Identifier(raw).Reduce()
				for _, variant := range variants {
					p, err := sequence.Locate(variant, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tposition %d\n", id, variant, p)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "scanner family (ImagecastPrecinct or ImagecastEvolution; default both)")

	return cmd
}
