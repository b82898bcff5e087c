// Package orchestrate holds the dependency-aware scheduling logic over a
// loaded process: which tasks are runnable, whether the process is done, and
// the run/pause/resume lifecycle built on those primitives.
package orchestrate

import (
	"math"

	"github.com/procwing/procwing/models"
)

// ReadyTasks returns every task that is pending or scheduled and whose
// dependencies are all completed. Tasks with no dependencies are ready as
// soon as they are pending or scheduled.
func ReadyTasks(p *models.ProcessDescriptor) []models.ProcessTask {
	byID := make(map[string]*models.ProcessTask, len(p.Tasks))
	for i := range p.Tasks {
		byID[p.Tasks[i].ID] = &p.Tasks[i]
	}

	var ready []models.ProcessTask
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.Status != models.TaskPending && t.Status != models.TaskScheduled {
			continue
		}
		satisfied := true
		for _, depID := range t.DependsOn {
			dep, exists := byID[depID]
			if !exists || dep.Status != models.TaskCompleted {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, *t)
		}
	}
	return ready
}

// IsComplete reports whether every task in the process is completed.
func IsComplete(p *models.ProcessDescriptor) bool {
	for i := range p.Tasks {
		if p.Tasks[i].Status != models.TaskCompleted {
			return false
		}
	}
	return true
}

// HasFailed reports whether any task in the process has failed.
func HasFailed(p *models.ProcessDescriptor) bool {
	for i := range p.Tasks {
		if p.Tasks[i].Status == models.TaskFailed {
			return true
		}
	}
	return false
}

// HasInProgress reports whether any task is currently in progress.
func HasInProgress(p *models.ProcessDescriptor) bool {
	for i := range p.Tasks {
		if p.Tasks[i].Status == models.TaskInProgress {
			return true
		}
	}
	return false
}

// Progress returns the completion percentage, rounded to the nearest whole
// number. A process with no tasks is 0% complete.
func Progress(p *models.ProcessDescriptor) int {
	if len(p.Tasks) == 0 {
		return 0
	}
	completed := 0
	for i := range p.Tasks {
		if p.Tasks[i].Status == models.TaskCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(p.Tasks))))
}

// derivedStatus computes the status a resumed process should land in:
// completed if all tasks are done, failed if any task failed, active
// otherwise.
func derivedStatus(p *models.ProcessDescriptor) models.ProcessStatus {
	switch {
	case IsComplete(p):
		return models.ProcessCompleted
	case HasFailed(p):
		return models.ProcessFailed
	default:
		return models.ProcessActive
	}
}
