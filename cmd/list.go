package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/procwing/procwing/internal/orchestrate"
	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/store"
	"github.com/spf13/cobra"
)

var (
	listStatuses []string
	listTags     []string
	listSearch   string
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List processes in the current agent partition",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		filter := store.ListFilter{
			Tags:   listTags,
			Search: listSearch,
			Limit:  listLimit,
		}
		for _, raw := range listStatuses {
			filter.Statuses = append(filter.Statuses, models.ProcessStatus(raw))
		}

		procs, err := s.ListProcesses(filter)
		if err != nil {
			return err
		}
		if len(procs) == 0 {
			fmt.Println("No processes found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tTASKS\tPROGRESS\tUPDATED")
		for i := range procs {
			p := procs[i]
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d%%\t%s\n",
				shortID(p.ID), p.Name, p.Status, len(p.Tasks),
				orchestrate.Progress(&p),
				time.UnixMilli(p.UpdatedAt).UTC().Format(time.RFC3339))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringSliceVar(&listStatuses, "status", nil, "filter by status (repeatable)")
	listCmd.Flags().StringSliceVar(&listTags, "tag", nil, "filter by tag (repeatable)")
	listCmd.Flags().StringVar(&listSearch, "search", "", "case-insensitive substring over name/description")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of results")
}
