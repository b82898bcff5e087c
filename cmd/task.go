package cmd

import (
	"fmt"
	"strings"

	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/store"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks inside a process",
}

var (
	taskAddPrompt    string
	taskAddDesc      string
	taskAddAfter     string
	taskAddDependsOn []string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <process> <label>",
	Short: "Add a task to a process",
	Long: `Add a task to a process. --after inserts it directly after an existing
task's label; --depends-on references existing tasks by label.`,
	Args: cobra.ExactArgs(2),
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

		task := models.NewProcessTask(args[1], taskAddPrompt)
		task.Description = taskAddDesc
		for _, depLabel := range taskAddDependsOn {
			dep := proc.TaskByLabel(depLabel)
			if dep == nil {
				return fmt.Errorf("dependency %q is not a task of %q", depLabel, proc.Name)
			}
			task.DependsOn = append(task.DependsOn, dep.ID)
		}

		created, err := s.AddTask(proc.ID, task, taskAddAfter)
		if err != nil {
			return err
		}
		fmt.Printf("Added task %q (%s) at position %d\n", created.Label, shortID(created.ID), created.Order+1)
		return nil
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:   "remove <process> <task>",
	Short: "Remove a task (rejected while other tasks depend on it)",
	Args:  cobra.ExactArgs(2),
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
		task, err := resolveTask(proc, args[1])
		if err != nil {
			return err
		}
		if err := s.RemoveTask(proc.ID, task.ID); err != nil {
			return err
		}
		fmt.Printf("Removed task %q from %q\n", task.Label, proc.Name)
		return nil
	},
}

var taskReorderCmd = &cobra.Command{
	Use:   "reorder <process> <label> [label...]",
	Short: "Rewrite task order; every task label must appear exactly once",
	Args:  cobra.MinimumNArgs(2),
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

		ids := make([]string, 0, len(args)-1)
		for _, label := range args[1:] {
			t := proc.TaskByLabel(label)
			if t == nil {
				return fmt.Errorf("no task labeled %q in %q", label, proc.Name)
			}
			ids = append(ids, t.ID)
		}
		if err := s.ReorderTasks(proc.ID, ids); err != nil {
			return err
		}
		fmt.Printf("Reordered %d tasks in %q\n", len(ids), proc.Name)
		return nil
	},
}

var (
	taskDoneResult   string
	taskDoneDuration int64
)

var taskDoneCmd = &cobra.Command{
	Use:   "done <process> [task]",
	Short: "Mark a task completed",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return completeTask(args, models.TaskCompleted, store.TaskOutcome{
			Result:     taskDoneResult,
			DurationMs: taskDoneDuration,
		})
	},
}

var taskStartCmd = &cobra.Command{
	Use:   "start <process> [task]",
	Short: "Start a single task manually",
	Args:  cobra.RangeArgs(1, 2),
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

		var task models.ProcessTask
		if len(args) == 2 {
			task, err = resolveTask(proc, args[1])
		} else {
			task, err = selectTaskInteractive(proc, func(t models.ProcessTask) bool {
				return t.Status == models.TaskPending || t.Status == models.TaskScheduled
			}, fmt.Sprintf("Start which task of %q", proc.Name))
		}
		if err != nil {
			return err
		}

		started, err := s.SetTaskStatus(proc.ID, task.ID, models.TaskInProgress, store.TaskOutcome{})
		if err != nil {
			return err
		}
		fmt.Printf("Started task %q\n", started.Label)
		return nil
	},
}

var taskFailReason string

var taskFailCmd = &cobra.Command{
	Use:   "fail <process> [task]",
	Short: "Mark a task failed",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return completeTask(args, models.TaskFailed, store.TaskOutcome{Error: taskFailReason})
	},
}

// completeTask resolves the task (interactively when no reference is given)
// and applies the terminal transition.
func completeTask(args []string, status models.TaskStatus, outcome store.TaskOutcome) error {
	s, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	proc, err := resolveProcess(s, args[0])
	if err != nil {
		return err
	}

	var task models.ProcessTask
	if len(args) == 2 {
		task, err = resolveTask(proc, args[1])
	} else {
		task, err = selectTaskInteractive(proc, func(t models.ProcessTask) bool {
			return t.Status == models.TaskInProgress
		}, fmt.Sprintf("Which task of %q", proc.Name))
	}
	if err != nil {
		return err
	}

	updated, err := s.SetTaskStatus(proc.ID, task.ID, status, outcome)
	if err != nil {
		return err
	}
	fmt.Printf("Task %q is now %s\n", updated.Label, strings.ToLower(string(updated.Status)))
	return nil
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd, taskRemoveCmd, taskReorderCmd, taskStartCmd, taskDoneCmd, taskFailCmd)

	taskAddCmd.Flags().StringVarP(&taskAddPrompt, "prompt", "p", "", "instruction payload dispatched when the task runs")
	taskAddCmd.Flags().StringVarP(&taskAddDesc, "description", "d", "", "task description")
	taskAddCmd.Flags().StringVar(&taskAddAfter, "after", "", "insert after the task with this label")
	taskAddCmd.Flags().StringSliceVar(&taskAddDependsOn, "depends-on", nil, "labels of tasks that must complete first")

	taskDoneCmd.Flags().StringVar(&taskDoneResult, "result", "", "task result payload")
	taskDoneCmd.Flags().Int64Var(&taskDoneDuration, "duration-ms", 0, "how long the task ran")
	taskFailCmd.Flags().StringVar(&taskFailReason, "error", "", "failure reason")
}
