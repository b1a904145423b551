package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dataforge/dataforge-cli/internal/engine"
	"github.com/dataforge/dataforge-cli/internal/model"
	"github.com/dataforge/dataforge-cli/internal/pipeline"
	"github.com/dataforge/dataforge-cli/internal/sizeclass"
	"github.com/dataforge/dataforge-cli/internal/store"
)

var dedupeFlags struct {
	states    []string
	filters   []string
	smallOnly bool
	sizes     []string
	format    string
	exportDir string
	noExport  bool
	noStore   bool
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Deduplicate a record batch and export the merged output",
}

var dedupeBusinessCmd = &cobra.Command{
	Use:   "business <input.csv>",
	Short: "Deduplicate business records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		records, err := pipeline.LoadBusinessCSV(args[0])
		if err != nil {
			return err
		}

		p, closeFn, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := p.RunBusinesses(ctx, records, dedupeOptions())
		if err != nil {
			return eris.Wrap(err, "dedupe business")
		}

		printSummary(res.Run, len(records), len(res.Records), res.Report, res.ExportPath)
		return nil
	},
}

var dedupeRFPCmd = &cobra.Command{
	Use:   "rfp <input.csv>",
	Short: "Deduplicate RFP records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		records, err := pipeline.LoadRFPCSV(args[0])
		if err != nil {
			return err
		}

		p, closeFn, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := p.RunRFPs(ctx, records, dedupeOptions())
		if err != nil {
			return eris.Wrap(err, "dedupe rfp")
		}

		printSummary(res.Run, len(records), len(res.Records), res.Report, res.ExportPath)
		return nil
	},
}

// initPipeline assembles the pipeline from configuration. The returned
// close function releases the store.
func initPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	eng, err := engine.New(cfg.Engine)
	if err != nil {
		return nil, nil, err
	}

	table := sizeclass.DefaultTable()
	if cfg.Size.TablePath != "" {
		table, err = sizeclass.LoadTable(cfg.Size.TablePath)
		if err != nil {
			return nil, nil, err
		}
	}

	var st store.Store
	closeFn := func() {}
	if !dedupeFlags.noStore {
		st, err = initStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, nil, err
		}
		closeFn = func() {
			if err := st.Close(); err != nil {
				zap.L().Warn("close store", zap.Error(err))
			}
		}
	}

	return pipeline.New(eng, cfg.Quality, table, st), closeFn, nil
}

func dedupeOptions() pipeline.Options {
	exportDir := dedupeFlags.exportDir
	if exportDir == "" {
		exportDir = cfg.Export.Dir
	}
	format := dedupeFlags.format
	if format == "" {
		format = cfg.Export.Format
	}
	return pipeline.Options{
		States:         dedupeFlags.states,
		Filters:        dedupeFlags.filters,
		SmallOnly:      dedupeFlags.smallOnly,
		Sizes:          dedupeFlags.sizes,
		ExportDir:      exportDir,
		Format:         format,
		SkipExport:     dedupeFlags.noExport,
		GeocodeEnabled: cfg.QA.GeocodeEnabled,
	}
}

func printSummary(run *model.Run, in, out int, report model.QAReport, exportPath string) {
	if run != nil {
		fmt.Printf("run:      %s\n", run.ID)
	}
	fmt.Printf("input:    %d\n", in)
	fmt.Printf("output:   %d\n", out)
	fmt.Printf("qa:       %s\n", qaStatus(report))
	if exportPath != "" {
		fmt.Printf("exported: %s\n", exportPath)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "qa error: %s\n", e)
	}
}

func qaStatus(report model.QAReport) string {
	if report.Passed {
		return "passed"
	}
	return fmt.Sprintf("failed (%d errors)", len(report.Errors))
}

func init() {
	for _, c := range []*cobra.Command{dedupeBusinessCmd, dedupeRFPCmd} {
		c.Flags().StringSliceVar(&dedupeFlags.states, "states", nil, "state codes for the export filename slug")
		c.Flags().StringSliceVar(&dedupeFlags.filters, "filters", nil, "NAICS codes or keywords for the export filename slug")
		c.Flags().StringVar(&dedupeFlags.format, "format", "", "export format: csv or xlsx (default from config)")
		c.Flags().StringVar(&dedupeFlags.exportDir, "export-dir", "", "export directory (default from config)")
		c.Flags().BoolVar(&dedupeFlags.noExport, "no-export", false, "skip file export")
		c.Flags().BoolVar(&dedupeFlags.noStore, "no-store", false, "skip run persistence")
	}
	dedupeBusinessCmd.Flags().BoolVar(&dedupeFlags.smallOnly, "small-only", false, "keep only small businesses")
	dedupeBusinessCmd.Flags().StringSliceVar(&dedupeFlags.sizes, "sizes", nil, "keep only these size categories (micro,small,medium,large)")

	dedupeCmd.AddCommand(dedupeBusinessCmd, dedupeRFPCmd)
	rootCmd.AddCommand(dedupeCmd)
}
