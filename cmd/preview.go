package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dataforge/dataforge-cli/internal/model"
)

var previewCmd = &cobra.Command{
	Use:   "preview <run-id>",
	Short: "Preview the merged records of a completed run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "preview")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer tw.Flush()

		switch run.Kind {
		case model.KindBusiness:
			records, err := st.ListBusinesses(ctx, run.ID, limit, offset)
			if err != nil {
				return eris.Wrap(err, "preview")
			}
			fmt.Fprintln(tw, "NAME\tDOMAIN\tSTATE\tSIZE\tSCORE\tSOURCE")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					r.CompanyName, r.Domain, r.State, r.BusinessSize, r.QualityScore, r.Source)
			}
		case model.KindRFP:
			records, err := st.ListRFPs(ctx, run.ID, limit, offset)
			if err != nil {
				return eris.Wrap(err, "preview")
			}
			fmt.Fprintln(tw, "NOTICE\tTITLE\tAGENCY\tSCORE\tSOURCE")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					r.NoticeID, r.Title, r.Agency, r.QualityScore, r.Source)
			}
		default:
			return eris.Errorf("unknown run kind: %s", run.Kind)
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().Int("limit", 20, "maximum records to show")
	previewCmd.Flags().Int("offset", 0, "records to skip")
	rootCmd.AddCommand(previewCmd)
}
