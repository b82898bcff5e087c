package store

import "github.com/procwing/procwing/models"

// ListFilter narrows ListProcesses results. Zero values mean "no filter".
type ListFilter struct {
	// Statuses keeps only processes whose status is in the set.
	Statuses []models.ProcessStatus
	// Tags keeps only processes carrying at least one of the tags.
	Tags []string
	// Search is a case-insensitive substring match over name and description.
	Search string
	// Limit caps the number of results after sorting by UpdatedAt descending.
	Limit int
}

// TaskOutcome carries the execution results reported when a task enters a
// terminal status. Ignored for non-terminal transitions.
type TaskOutcome struct {
	Result     string
	Error      string
	DurationMs int64
}

// ProcessStore defines the interface for process persistence. All operations
// are scoped to one agent partition; mutations against the same partition are
// serialized by the mutation lock, reads are lock-free snapshot reads.
type ProcessStore interface {
	// Initialize configures the store with necessary parameters, such as the
	// data directory, owning agent ID and data format. It must be called
	// before any other store operation.
	Initialize(config map[string]string) error

	// Load reads the partition's backing file and returns the parsed store.
	// A missing or structurally invalid file yields a fresh empty store,
	// never an error: availability is preferred over strict durability of a
	// corrupted file.
	Load() (*models.ProcessStore, error)

	// Save persists the full store. On platforms with atomic rename the
	// write is torn-read free for concurrent readers.
	Save(st *models.ProcessStore) error

	// Mutate is the only sanctioned way to change persisted state. It
	// acquires the partition's mutation lock, reloads the freshest on-disk
	// state, invokes fn, persists the mutated store, and releases the lock
	// on every exit path.
	Mutate(fn func(st *models.ProcessStore) error) error

	// CreateProcess adds a process to the partition. Missing ID, status and
	// timestamps are filled in; provided tasks are validated for duplicate
	// ids/labels, dependency existence and cycles.
	CreateProcess(proc models.ProcessDescriptor) (models.ProcessDescriptor, error)

	// GetProcess retrieves a process by ID from the latest snapshot.
	GetProcess(id string) (models.ProcessDescriptor, error)

	// UpdateProcess applies a partial update. ID, AgentID and CreatedAt are
	// immutable; UpdatedAt advances monotonically.
	UpdateProcess(id string, patch models.ProcessPatch) (models.ProcessDescriptor, error)

	// DeleteProcess removes a process by ID.
	DeleteProcess(id string) error

	// ListProcesses returns processes matching the filter, sorted by
	// UpdatedAt descending.
	ListProcesses(filter ListFilter) ([]models.ProcessDescriptor, error)

	// AddTask appends a task to the process, or inserts it directly after
	// the task with afterLabel when non-empty. Labels must be unique within
	// the process at creation time.
	AddTask(processID string, task models.ProcessTask, afterLabel string) (models.ProcessTask, error)

	// UpdateTask applies a partial update to one task. The task ID is
	// immutable; status changes go through the transition table.
	UpdateTask(processID, taskID string, patch models.TaskPatch) (models.ProcessTask, error)

	// RemoveTask deletes a task. Rejected with invalid-state while another
	// task's DependsOn references it.
	RemoveTask(processID, taskID string) error

	// ReorderTasks rewrites task order to match orderedIDs, which must be a
	// permutation of the process's current task IDs.
	ReorderTasks(processID string, orderedIDs []string) error

	// SetTaskStatus transitions a task, stamping LastRunAt on entering
	// in-progress and LastDurationMs/Result/LastError on entering a terminal
	// status.
	SetTaskStatus(processID, taskID string, status models.TaskStatus, outcome TaskOutcome) (models.ProcessTask, error)

	// Backup copies the partition's backing file to the destination path.
	Backup(destinationPath string) error

	// Restore replaces the partition's backing file with the source file.
	Restore(sourcePath string) error

	// Close releases any resources held by the store.
	Close() error
}
