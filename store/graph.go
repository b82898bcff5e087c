package store

import (
	"fmt"

	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/types"
)

// verifyTaskGraph checks that a process's tasks form a valid dependency DAG:
// every DependsOn id references an existing task in the same process, no task
// depends on itself, labels and ids are unique, and there are no cycles.
func verifyTaskGraph(tasks []models.ProcessTask) error {
	byID := make(map[string]*models.ProcessTask, len(tasks))
	labels := make(map[string]string, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			return types.InvalidStatef("task %q has an empty id", t.Label)
		}
		if _, dup := byID[t.ID]; dup {
			return types.InvalidStatef("duplicate task id %q", t.ID)
		}
		byID[t.ID] = t
		if prior, dup := labels[t.Label]; dup {
			return types.InvalidStatef("duplicate task label %q (tasks %s, %s)", t.Label, prior, t.ID)
		}
		labels[t.Label] = t.ID
	}

	for _, t := range byID {
		for _, depID := range t.DependsOn {
			if depID == t.ID {
				return types.InvalidStatef("task %q cannot depend on itself", t.Label)
			}
			if _, exists := byID[depID]; !exists {
				return types.InvalidStatef("task %q depends on unknown task id %q", t.Label, depID)
			}
		}
	}

	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)

	var checkCycle func(taskID string) error
	checkCycle = func(taskID string) error {
		visited[taskID] = true
		recursionStack[taskID] = true

		for _, depID := range byID[taskID].DependsOn {
			if !visited[depID] {
				if err := checkCycle(depID); err != nil {
					return err
				}
			} else if recursionStack[depID] {
				return types.InvalidStatef("dependency cycle detected involving tasks %s -> %s", taskID, depID)
			}
		}

		recursionStack[taskID] = false
		return nil
	}

	for i := range tasks {
		if !visited[tasks[i].ID] {
			if err := checkCycle(tasks[i].ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// normalizeTaskOrder rewrites Order fields to match slice position.
func normalizeTaskOrder(tasks []models.ProcessTask) {
	for i := range tasks {
		tasks[i].Order = i
	}
}

// taskIDSummary is used in error details when a removal is blocked.
func taskIDSummary(ids []string) string {
	return fmt.Sprintf("%v", ids)
}
