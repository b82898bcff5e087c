package store

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/types"
)

// CreateProcess adds a new process to the partition. Missing identity and
// lifecycle fields are filled with factory defaults; provided tasks are
// normalized (ids, pending status, contiguous order) and their dependency
// graph verified before anything is persisted.
func (s *FileProcessStore) CreateProcess(proc models.ProcessDescriptor) (models.ProcessDescriptor, error) {
	now := time.Now().UTC()

	if proc.ID == "" {
		proc.ID = uuid.NewString()
	}
	proc.AgentID = s.agentID
	if proc.Status == "" {
		proc.Status = models.ProcessDraft
	}
	if proc.Interface == nil {
		proc.Interface = models.DefaultProcessInterface()
	}
	if proc.Tasks == nil {
		proc.Tasks = []models.ProcessTask{}
	}
	for i := range proc.Tasks {
		if proc.Tasks[i].ID == "" {
			proc.Tasks[i].ID = uuid.NewString()
		}
		if proc.Tasks[i].Status == "" {
			proc.Tasks[i].Status = models.TaskPending
		}
	}
	normalizeTaskOrder(proc.Tasks)
	proc.CreatedAt = now.UnixMilli()
	proc.UpdatedAt = proc.CreatedAt

	if err := verifyTaskGraph(proc.Tasks); err != nil {
		return models.ProcessDescriptor{}, err
	}
	if err := models.ValidateStruct(proc); err != nil {
		return models.ProcessDescriptor{}, types.InvalidStatef("validation failed for new process: %v", err)
	}

	err := s.Mutate(func(st *models.ProcessStore) error {
		if _, exists := st.Processes[proc.ID]; exists {
			return types.InvalidStatef("process with id %q already exists", proc.ID)
		}
		st.Processes[proc.ID] = proc
		return nil
	})
	if err != nil {
		return models.ProcessDescriptor{}, err
	}
	return proc, nil
}

// GetProcess retrieves a process by ID from the latest persisted snapshot.
// Read-only: no lock is taken.
func (s *FileProcessStore) GetProcess(id string) (models.ProcessDescriptor, error) {
	st, err := s.Load()
	if err != nil {
		return models.ProcessDescriptor{}, err
	}
	proc, ok := st.Processes[id]
	if !ok {
		return models.ProcessDescriptor{}, types.NotFoundf("process with id %q not found", id)
	}
	return proc, nil
}

// UpdateProcess applies a partial update to a process. Identity and creation
// time are immutable; a status change must be a legal lifecycle transition.
func (s *FileProcessStore) UpdateProcess(id string, patch models.ProcessPatch) (models.ProcessDescriptor, error) {
	var updated models.ProcessDescriptor
	err := s.Mutate(func(st *models.ProcessStore) error {
		proc, ok := st.Processes[id]
		if !ok {
			return types.NotFoundf("process with id %q not found", id)
		}
		if patch.Status != nil && *patch.Status != proc.Status {
			if !models.CanProcessTransition(proc.Status, *patch.Status) {
				return types.InvalidStatef("process %s cannot move from %s to %s", id, proc.Status, *patch.Status)
			}
		}
		patch.Apply(&proc)
		proc.Touch(time.Now().UTC())
		if err := models.ValidateStruct(proc); err != nil {
			return types.InvalidStatef("validation failed for updated process: %v", err)
		}
		st.Processes[id] = proc
		updated = proc
		return nil
	})
	if err != nil {
		return models.ProcessDescriptor{}, err
	}
	return updated, nil
}

// DeleteProcess removes a process by ID.
func (s *FileProcessStore) DeleteProcess(id string) error {
	return s.Mutate(func(st *models.ProcessStore) error {
		if _, ok := st.Processes[id]; !ok {
			return types.NotFoundf("process with id %q not found", id)
		}
		delete(st.Processes, id)
		return nil
	})
}

// ListProcesses returns processes matching the filter, newest update first.
// Read-only: no lock is taken.
func (s *FileProcessStore) ListProcesses(filter ListFilter) ([]models.ProcessDescriptor, error) {
	st, err := s.Load()
	if err != nil {
		return nil, err
	}

	result := make([]models.ProcessDescriptor, 0, len(st.Processes))
	for _, proc := range st.Processes {
		if matchesFilter(proc, filter) {
			result = append(result, proc)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].UpdatedAt != result[j].UpdatedAt {
			return result[i].UpdatedAt > result[j].UpdatedAt
		}
		return result[i].ID < result[j].ID
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func matchesFilter(proc models.ProcessDescriptor, filter ListFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if proc.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(filter.Tags) > 0 {
		found := false
	tagLoop:
		for _, want := range filter.Tags {
			for _, have := range proc.Tags {
				if have == want {
					found = true
					break tagLoop
				}
			}
		}
		if !found {
			return false
		}
	}

	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(proc.Name), needle) &&
			!strings.Contains(strings.ToLower(proc.Description), needle) {
			return false
		}
	}
	return true
}
