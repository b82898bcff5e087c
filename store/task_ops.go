package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/types"
)

// AddTask adds a task to a process, appending by default or inserting
// directly after the task labeled afterLabel. The new task always starts
// pending unless the caller provided a status explicitly.
func (s *FileProcessStore) AddTask(processID string, task models.ProcessTask, afterLabel string) (models.ProcessTask, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	if task.DependsOn == nil {
		task.DependsOn = []string{}
	}

	var created models.ProcessTask
	err := s.Mutate(func(st *models.ProcessStore) error {
		proc, ok := st.Processes[processID]
		if !ok {
			return types.NotFoundf("process with id %q not found", processID)
		}

		insertAt := len(proc.Tasks)
		if afterLabel != "" {
			anchor := proc.TaskByLabel(afterLabel)
			if anchor == nil {
				return types.NotFoundf("task with label %q not found in process %s", afterLabel, processID)
			}
			insertAt = anchor.Order + 1
		}

		tasks := make([]models.ProcessTask, 0, len(proc.Tasks)+1)
		tasks = append(tasks, proc.Tasks[:insertAt]...)
		tasks = append(tasks, task)
		tasks = append(tasks, proc.Tasks[insertAt:]...)
		normalizeTaskOrder(tasks)

		if err := verifyTaskGraph(tasks); err != nil {
			return err
		}
		proc.Tasks = tasks
		proc.Touch(time.Now().UTC())
		if err := models.ValidateStruct(proc); err != nil {
			return types.InvalidStatef("validation failed adding task: %v", err)
		}
		st.Processes[processID] = proc
		created = *proc.Task(task.ID)
		return nil
	})
	if err != nil {
		return models.ProcessTask{}, err
	}
	return created, nil
}

// UpdateTask applies a partial update to one task. The task ID is immutable
// and a status change must be a legal transition.
func (s *FileProcessStore) UpdateTask(processID, taskID string, patch models.TaskPatch) (models.ProcessTask, error) {
	var updated models.ProcessTask
	err := s.Mutate(func(st *models.ProcessStore) error {
		proc, ok := st.Processes[processID]
		if !ok {
			return types.NotFoundf("process with id %q not found", processID)
		}
		t := proc.Task(taskID)
		if t == nil {
			return types.NotFoundf("task with id %q not found in process %s", taskID, processID)
		}
		if patch.Status != nil && *patch.Status != t.Status {
			if !models.CanTaskTransition(t.Status, *patch.Status) {
				return types.InvalidStatef("task %s cannot move from %s to %s", taskID, t.Status, *patch.Status)
			}
		}
		if patch.Label != nil && *patch.Label != t.Label {
			if other := proc.TaskByLabel(*patch.Label); other != nil {
				return types.InvalidStatef("task label %q already in use by task %s", *patch.Label, other.ID)
			}
		}
		patch.Apply(t)
		proc.Touch(time.Now().UTC())
		if err := models.ValidateStruct(proc); err != nil {
			return types.InvalidStatef("validation failed updating task: %v", err)
		}
		st.Processes[processID] = proc
		updated = *t
		return nil
	})
	if err != nil {
		return models.ProcessTask{}, err
	}
	return updated, nil
}

// RemoveTask deletes a task from a process. Removal is rejected while any
// other task's DependsOn references it; the caller must re-point or remove
// the dependents first.
func (s *FileProcessStore) RemoveTask(processID, taskID string) error {
	return s.Mutate(func(st *models.ProcessStore) error {
		proc, ok := st.Processes[processID]
		if !ok {
			return types.NotFoundf("process with id %q not found", processID)
		}
		target := proc.Task(taskID)
		if target == nil {
			return types.NotFoundf("task with id %q not found in process %s", taskID, processID)
		}
		if dependents := proc.Dependents(taskID); len(dependents) > 0 {
			return types.NewProcessError(types.CodeInvalidState,
				"cannot remove task "+target.Label+": other tasks depend on it "+taskIDSummary(dependents),
				map[string]interface{}{"dependents": dependents})
		}

		tasks := make([]models.ProcessTask, 0, len(proc.Tasks)-1)
		for i := range proc.Tasks {
			if proc.Tasks[i].ID != taskID {
				tasks = append(tasks, proc.Tasks[i])
			}
		}
		normalizeTaskOrder(tasks)
		proc.Tasks = tasks
		proc.Touch(time.Now().UTC())
		st.Processes[processID] = proc
		return nil
	})
}

// ReorderTasks rewrites the order of a process's tasks to match orderedIDs.
// The slice must contain exactly the process's current task IDs; sets that
// omit or add ids are rejected and the stored order is left unchanged.
func (s *FileProcessStore) ReorderTasks(processID string, orderedIDs []string) error {
	return s.Mutate(func(st *models.ProcessStore) error {
		proc, ok := st.Processes[processID]
		if !ok {
			return types.NotFoundf("process with id %q not found", processID)
		}
		if len(orderedIDs) != len(proc.Tasks) {
			return types.InvalidStatef("reorder requires exactly %d task ids, got %d", len(proc.Tasks), len(orderedIDs))
		}

		seen := make(map[string]bool, len(orderedIDs))
		tasks := make([]models.ProcessTask, 0, len(proc.Tasks))
		for _, id := range orderedIDs {
			if seen[id] {
				return types.InvalidStatef("duplicate task id %q in reorder list", id)
			}
			seen[id] = true
			t := proc.Task(id)
			if t == nil {
				return types.InvalidStatef("unknown task id %q in reorder list", id)
			}
			tasks = append(tasks, *t)
		}
		normalizeTaskOrder(tasks)
		proc.Tasks = tasks
		proc.Touch(time.Now().UTC())
		st.Processes[processID] = proc
		return nil
	})
}

// SetTaskStatus transitions a task through its status state machine. Entering
// in-progress stamps LastRunAt; entering a terminal status (completed, failed,
// skipped) stamps LastDurationMs, Result and LastError from the outcome.
// Repeating a terminal transition is idempotent: the latest outcome wins.
func (s *FileProcessStore) SetTaskStatus(processID, taskID string, status models.TaskStatus, outcome TaskOutcome) (models.ProcessTask, error) {
	var updated models.ProcessTask
	err := s.Mutate(func(st *models.ProcessStore) error {
		proc, ok := st.Processes[processID]
		if !ok {
			return types.NotFoundf("process with id %q not found", processID)
		}
		t := proc.Task(taskID)
		if t == nil {
			return types.NotFoundf("task with id %q not found in process %s", taskID, processID)
		}
		if !models.CanTaskTransition(t.Status, status) {
			return types.InvalidStatef("task %s cannot move from %s to %s", taskID, t.Status, status)
		}

		now := time.Now().UTC()
		t.Status = status
		switch {
		case status == models.TaskInProgress:
			ms := now.UnixMilli()
			t.LastRunAt = &ms
		case status.IsTerminal():
			duration := outcome.DurationMs
			t.LastDurationMs = &duration
			t.Result = outcome.Result
			t.LastError = outcome.Error
		}

		proc.Touch(now)
		st.Processes[processID] = proc
		updated = *t
		return nil
	})
	if err != nil {
		return models.ProcessTask{}, err
	}
	return updated, nil
}
