package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/procwing/procwing/internal/orchestrate"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <process>",
	Short: "Show a process, its tasks and which are ready to run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		proc, err := resolveProcess(s, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s  [%s]\n", proc.Name, proc.Status)
		fmt.Printf("ID: %s  Agent: %s  Progress: %d%%\n", proc.ID, proc.AgentID, orchestrate.Progress(&proc))
		if proc.Description != "" {
			fmt.Printf("Description: %s\n", proc.Description)
		}
		if len(proc.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(proc.Tags, ", "))
		}
		if proc.Schedule != nil && proc.Schedule.Cron != nil {
			c := proc.Schedule.Cron
			switch c.Kind {
			case "cron":
				fmt.Printf("Schedule: %s cron %q\n", proc.Schedule.Mode, c.Expression)
			case "every":
				fmt.Printf("Schedule: %s every %s\n", proc.Schedule.Mode, time.Duration(c.EveryMs)*time.Millisecond)
			case "at":
				fmt.Printf("Schedule: %s at %s\n", proc.Schedule.Mode, time.UnixMilli(c.AtMs).UTC().Format(time.RFC3339))
			}
		}

		ready := make(map[string]bool)
		for _, t := range orchestrate.ReadyTasks(&proc) {
			ready[t.ID] = true
		}

		fmt.Printf("\nTasks (%d):\n", len(proc.Tasks))
		for _, t := range proc.Tasks {
			marker := " "
			if ready[t.ID] {
				marker = "*"
			}
			line := fmt.Sprintf("%s %2d. %-30s %s", marker, t.Order+1, t.Label, t.Status)
			if len(t.DependsOn) > 0 {
				deps := make([]string, 0, len(t.DependsOn))
				for _, id := range t.DependsOn {
					if dep := proc.Task(id); dep != nil {
						deps = append(deps, dep.Label)
					}
				}
				line += fmt.Sprintf("  (after: %s)", strings.Join(deps, ", "))
			}
			if t.LastError != "" {
				line += fmt.Sprintf("  error: %s", t.LastError)
			}
			fmt.Println(line)
		}
		if len(ready) > 0 {
			fmt.Println("\n* ready to run")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
