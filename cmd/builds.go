package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alberto-moreno-sa/notion-blog/internal/buildlog"
)

var limitFlag int

var buildsCmd = &cobra.Command{
	Use:   "builds",
	Short: "Show the most recent builds from the build log",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := buildlog.Open(cmd.Context(), cfg.DatabaseURL, cfg.BuildLogSQLite)
		if errors.Is(err, buildlog.ErrNoStore) {
			return errors.New("no build log configured: set DATABASE_URL or BUILD_LOG_SQLITE")
		}
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Recent(cmd.Context(), serviceName, limitFlag)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSTATUS\tPOSTS\tPAGES\tTRIGGERED BY\tERROR")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Status, e.Posts, e.Pages, e.TriggeredBy, e.Error)
		}
		return w.Flush()
	},
}

func init() {
	buildsCmd.Flags().IntVarP(&limitFlag, "limit", "n", 10, "number of entries to show")
	rootCmd.AddCommand(buildsCmd)
}
