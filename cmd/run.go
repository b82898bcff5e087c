package cmd

import (
	"fmt"

	"github.com/procwing/procwing/internal/orchestrate"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <process>",
	Short: "Start every ready task of a process",
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
		report, err := orchestrate.Run(s, proc.ID)
		if err != nil {
			return err
		}

		switch {
		case len(report.Started) > 0:
			fmt.Printf("Started %d task(s) in %q [%s, %d%%]:\n", len(report.Started), proc.Name, report.Status, report.Progress)
			for _, t := range report.Started {
				fmt.Printf("  - %s\n", t.Label)
			}
		case report.Complete:
			fmt.Printf("Process %q is complete.\n", proc.Name)
		case report.InProgress:
			fmt.Printf("Process %q has tasks still in progress; nothing new to start.\n", proc.Name)
		case report.Blocked:
			fmt.Printf("Process %q is blocked on unfinished dependencies.\n", proc.Name)
		}
		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause <process>",
	Short: "Pause an active process",
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
		paused, err := orchestrate.Pause(s, proc.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Paused %q\n", paused.Name)
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <process>",
	Short: "Resume a paused process; status is derived from task state",
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
		resumed, err := orchestrate.Resume(s, proc.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Resumed %q [%s]\n", resumed.Name, resumed.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd, pauseCmd, resumeCmd)
}
