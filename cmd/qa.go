package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dataforge/dataforge-cli/internal/model"
	"github.com/dataforge/dataforge-cli/internal/pipeline"
	"github.com/dataforge/dataforge-cli/internal/qa"
)

var qaCmd = &cobra.Command{
	Use:   "qa",
	Short: "Validate a record file without deduplicating",
}

var qaBusinessCmd = &cobra.Command{
	Use:   "business <input.csv>",
	Short: "Validate business records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := pipeline.LoadBusinessCSV(args[0])
		if err != nil {
			return err
		}
		return printQAReport(qa.BusinessReport(records, cfg.QA.GeocodeEnabled))
	},
}

var qaRFPCmd = &cobra.Command{
	Use:   "rfp <input.csv>",
	Short: "Validate RFP records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := pipeline.LoadRFPCSV(args[0])
		if err != nil {
			return err
		}
		return printQAReport(qa.RFPReport(records))
	},
}

func printQAReport(report model.QAReport) error {
	fmt.Printf("rows:   %d\n", report.TotalRows)
	if report.Dupes > 0 {
		fmt.Printf("dupes:  %d\n", report.Dupes)
	}
	fmt.Printf("status: %s\n", qaStatus(report))
	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "qa error: %s\n", e)
	}
	if !report.Passed {
		os.Exit(1)
	}
	return nil
}

func init() {
	qaCmd.AddCommand(qaBusinessCmd, qaRFPCmd)
	rootCmd.AddCommand(qaCmd)
}
