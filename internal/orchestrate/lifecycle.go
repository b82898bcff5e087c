package orchestrate

import (
	"time"

	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/store"
	"github.com/procwing/procwing/types"
)

// RunReport describes what a run request did. When no tasks were started,
// exactly one of Complete, InProgress or Blocked explains why.
type RunReport struct {
	ProcessID  string               `json:"processId"`
	Status     models.ProcessStatus `json:"status"`
	Started    []models.ProcessTask `json:"started,omitempty"`
	Complete   bool                 `json:"complete,omitempty"`
	InProgress bool                 `json:"inProgress,omitempty"`
	Blocked    bool                 `json:"blocked,omitempty"`
	Progress   int                  `json:"progress"`
}

// Run starts every ready task of a process. A paused, completed, archived or
// failed process rejects the request. Starting the first task of a draft
// process promotes it to active; when nothing is ready, the report states
// whether the process is complete (and promotes it), still has in-progress
// tasks, or is blocked on dependencies.
func Run(s store.ProcessStore, processID string) (RunReport, error) {
	var report RunReport
	err := s.Mutate(func(st *models.ProcessStore) error {
		proc, ok := st.Processes[processID]
		if !ok {
			return types.NotFoundf("process with id %q not found", processID)
		}
		switch proc.Status {
		case models.ProcessPaused, models.ProcessCompleted, models.ProcessArchived, models.ProcessFailed:
			return types.InvalidStatef("cannot run process %s while %s", processID, proc.Status)
		}

		now := time.Now().UTC()
		ready := ReadyTasks(&proc)

		if len(ready) == 0 {
			switch {
			case IsComplete(&proc):
				report.Complete = true
				// A task-less draft is vacuously complete but has no
				// draft -> completed edge; it stays draft.
				if models.CanProcessTransition(proc.Status, models.ProcessCompleted) {
					proc.Status = models.ProcessCompleted
					proc.Touch(now)
				}
			case HasInProgress(&proc):
				report.InProgress = true
			default:
				report.Blocked = true
			}
		} else {
			ms := now.UnixMilli()
			for _, r := range ready {
				t := proc.Task(r.ID)
				t.Status = models.TaskInProgress
				t.LastRunAt = &ms
				report.Started = append(report.Started, *t)
			}
			if proc.Status == models.ProcessDraft {
				proc.Status = models.ProcessActive
			}
			proc.Touch(now)
		}

		st.Processes[processID] = proc
		report.ProcessID = processID
		report.Status = proc.Status
		report.Progress = Progress(&proc)
		return nil
	})
	if err != nil {
		return RunReport{}, err
	}
	return report, nil
}

// Pause suspends an active process. Pausing a process that is already
// paused, or that has finished its lifecycle, is rejected.
func Pause(s store.ProcessStore, processID string) (models.ProcessDescriptor, error) {
	var paused models.ProcessDescriptor
	err := s.Mutate(func(st *models.ProcessStore) error {
		proc, ok := st.Processes[processID]
		if !ok {
			return types.NotFoundf("process with id %q not found", processID)
		}
		if !models.CanProcessTransition(proc.Status, models.ProcessPaused) {
			return types.InvalidStatef("cannot pause process %s while %s", processID, proc.Status)
		}
		proc.Status = models.ProcessPaused
		proc.Touch(time.Now().UTC())
		st.Processes[processID] = proc
		paused = proc
		return nil
	})
	if err != nil {
		return models.ProcessDescriptor{}, err
	}
	return paused, nil
}

// Resume lifts a pause. The new status is derived from task state: completed
// if every task is done, failed if any task failed, active otherwise.
// Resuming a process that is not paused is rejected.
func Resume(s store.ProcessStore, processID string) (models.ProcessDescriptor, error) {
	var resumed models.ProcessDescriptor
	err := s.Mutate(func(st *models.ProcessStore) error {
		proc, ok := st.Processes[processID]
		if !ok {
			return types.NotFoundf("process with id %q not found", processID)
		}
		if proc.Status != models.ProcessPaused {
			return types.InvalidStatef("cannot resume process %s: status is %s, not paused", processID, proc.Status)
		}
		proc.Status = derivedStatus(&proc)
		proc.Touch(time.Now().UTC())
		st.Processes[processID] = proc
		resumed = proc
		return nil
	})
	if err != nil {
		return models.ProcessDescriptor{}, err
	}
	return resumed, nil
}
