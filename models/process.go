package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ProcessStatus represents the lifecycle state of a process.
type ProcessStatus string

const (
	ProcessDraft     ProcessStatus = "draft"
	ProcessActive    ProcessStatus = "active"
	ProcessPaused    ProcessStatus = "paused"
	ProcessCompleted ProcessStatus = "completed"
	ProcessFailed    ProcessStatus = "failed"
	ProcessArchived  ProcessStatus = "archived"
)

// TaskStatus represents the possible statuses of a task inside a process.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskScheduled  TaskStatus = "scheduled"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
	TaskSkipped    TaskStatus = "skipped"
	TaskBlocked    TaskStatus = "blocked"
)

// IsTerminal reports whether the task status is a final one.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskSkipped
}

// processTransitions enumerates the legal process status transitions.
// Resume targets (paused -> completed/failed) are derived from task state.
var processTransitions = map[ProcessStatus][]ProcessStatus{
	ProcessDraft:     {ProcessActive, ProcessArchived},
	ProcessActive:    {ProcessPaused, ProcessCompleted, ProcessFailed, ProcessArchived},
	ProcessPaused:    {ProcessActive, ProcessCompleted, ProcessFailed, ProcessArchived},
	ProcessCompleted: {ProcessArchived},
	ProcessFailed:    {ProcessArchived},
	ProcessArchived:  {},
}

// taskTransitions enumerates the legal task status transitions.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskScheduled, TaskInProgress, TaskBlocked, TaskSkipped},
	TaskScheduled:  {TaskPending, TaskInProgress, TaskBlocked, TaskSkipped},
	TaskBlocked:    {TaskPending, TaskScheduled, TaskInProgress, TaskSkipped},
	TaskInProgress: {TaskCompleted, TaskFailed, TaskSkipped},
	TaskCompleted:  {TaskCompleted},
	TaskFailed:     {TaskPending, TaskScheduled, TaskInProgress, TaskFailed},
	TaskSkipped:    {TaskPending, TaskScheduled},
}

// CanProcessTransition reports whether a process may move from one status to another.
func CanProcessTransition(from, to ProcessStatus) bool {
	for _, next := range processTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTaskTransition reports whether a task may move from one status to another.
// Setting the same status again is allowed only where the table says so
// (completed -> completed keeps terminal stamping idempotent).
func CanTaskTransition(from, to TaskStatus) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ProcessTask is one unit of work inside a process.
// Prompt is the instruction payload dispatched by an external scheduler; the
// engine never interprets it.
type ProcessTask struct {
	ID             string     `json:"id" validate:"required"`
	Label          string     `json:"label" validate:"required,min=1,max=255"`
	Description    string     `json:"description,omitempty"`
	Order          int        `json:"order" validate:"gte=0"`
	Status         TaskStatus `json:"status" validate:"required,oneof=pending scheduled in-progress completed failed skipped blocked"`
	DependsOn      []string   `json:"dependsOn,omitempty"` // Task IDs in the same process that must complete first
	CronJobID      string     `json:"cronJobId,omitempty"` // Handle to an external scheduler entry
	Prompt         string     `json:"prompt,omitempty"`
	LastRunAt      *int64     `json:"lastRunAt,omitempty"` // epoch ms
	NextRunAt      *int64     `json:"nextRunAt,omitempty"` // epoch ms
	LastDurationMs *int64     `json:"lastDurationMs,omitempty"`
	LastError      string     `json:"lastError,omitempty"`
	Result         string     `json:"result,omitempty"`
}

// InterfaceAction describes one action button an external viewer may render.
// The engine passes these through verbatim.
type InterfaceAction struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind,omitempty"`
}

// ProcessInterface describes which actions and fields an external viewer may
// use. Opaque to the engine beyond defaulting.
type ProcessInterface struct {
	ViewKind       string            `json:"viewKind"`
	AllowReorder   bool              `json:"allowReorder"`
	AllowManualRun bool              `json:"allowManualRun"`
	AllowPause     bool              `json:"allowPause"`
	Actions        []InterfaceAction `json:"actions,omitempty"`
}

// ProcessParam declares a named input or output of a process.
type ProcessParam struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// ProcessDescriptor is the top-level persisted entity: a named collection of
// ordered, dependency-linked tasks with its own lifecycle.
type ProcessDescriptor struct {
	ID                    string                 `json:"id" validate:"required"`
	AgentID               string                 `json:"agentId" validate:"required"`
	CreatedFromSessionKey string                 `json:"createdFromSessionKey,omitempty"`
	Name                  string                 `json:"name" validate:"required,min=1,max=255"`
	Description           string                 `json:"description,omitempty"`
	Status                ProcessStatus          `json:"status" validate:"required,oneof=draft active paused completed failed archived"`
	Tasks                 []ProcessTask          `json:"tasks" validate:"dive"`
	Schedule              *ProcessSchedule       `json:"schedule,omitempty"`
	Interface             *ProcessInterface      `json:"interface,omitempty"`
	ComposedFrom          []string               `json:"composedFrom,omitempty"`
	Inputs                []ProcessParam         `json:"inputs,omitempty" validate:"dive"`
	Outputs               []ProcessParam         `json:"outputs,omitempty" validate:"dive"`
	InputValues           map[string]interface{} `json:"inputValues,omitempty"`
	OutputValues          map[string]interface{} `json:"outputValues,omitempty"`
	Tags                  []string               `json:"tags,omitempty"`
	Meta                  map[string]interface{} `json:"meta,omitempty"`
	CreatedAt             int64                  `json:"createdAt" validate:"required"` // epoch ms, immutable
	UpdatedAt             int64                  `json:"updatedAt" validate:"required"` // epoch ms, monotonic
}

// Task returns a pointer to the task with the given ID, or nil.
func (p *ProcessDescriptor) Task(id string) *ProcessTask {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// TaskByLabel returns a pointer to the task with the given label, or nil.
func (p *ProcessDescriptor) TaskByLabel(label string) *ProcessTask {
	for i := range p.Tasks {
		if p.Tasks[i].Label == label {
			return &p.Tasks[i]
		}
	}
	return nil
}

// Dependents returns the IDs of tasks whose DependsOn references taskID.
func (p *ProcessDescriptor) Dependents(taskID string) []string {
	var out []string
	for i := range p.Tasks {
		for _, dep := range p.Tasks[i].DependsOn {
			if dep == taskID {
				out = append(out, p.Tasks[i].ID)
				break
			}
		}
	}
	return out
}

// Touch advances UpdatedAt to now, keeping it strictly monotonic even when
// the wall clock has not moved between mutations.
func (p *ProcessDescriptor) Touch(now time.Time) {
	ms := now.UnixMilli()
	if ms <= p.UpdatedAt {
		ms = p.UpdatedAt + 1
	}
	p.UpdatedAt = ms
}

// ProcessStore is the persisted container: a format version plus the
// processes of one agent partition, keyed by process ID.
type ProcessStore struct {
	Version   int                          `json:"version"`
	Processes map[string]ProcessDescriptor `json:"processes"`
}

// StoreVersion is the current on-disk format version.
const StoreVersion = 1

// NewProcessStore returns an empty, version-stamped store container.
func NewProcessStore() *ProcessStore {
	return &ProcessStore{
		Version:   StoreVersion,
		Processes: make(map[string]ProcessDescriptor),
	}
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}
