package models

import (
	"time"

	"github.com/google/uuid"
)

// NewProcessDescriptor constructs an empty process with invariant-respecting
// defaults. New processes always start in draft.
func NewProcessDescriptor(agentID, name string, now time.Time) ProcessDescriptor {
	ms := now.UnixMilli()
	return ProcessDescriptor{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		Name:      name,
		Status:    ProcessDraft,
		Tasks:     []ProcessTask{},
		Interface: DefaultProcessInterface(),
		CreatedAt: ms,
		UpdatedAt: ms,
	}
}

// NewProcessTask constructs a task with defaults. New tasks always start
// pending; Order is assigned by the store on insertion.
func NewProcessTask(label, prompt string) ProcessTask {
	return ProcessTask{
		ID:        uuid.NewString(),
		Label:     label,
		Prompt:    prompt,
		Status:    TaskPending,
		DependsOn: []string{},
	}
}

// DefaultProcessInterface grants reorder, manual run and pause, plus the
// three standard actions every viewer renders.
func DefaultProcessInterface() *ProcessInterface {
	return &ProcessInterface{
		ViewKind:       "checklist",
		AllowReorder:   true,
		AllowManualRun: true,
		AllowPause:     true,
		Actions: []InterfaceAction{
			{ID: "run-all", Label: "Run all", Kind: "primary"},
			{ID: "pause", Label: "Pause"},
			{ID: "reset", Label: "Reset", Kind: "danger"},
		},
	}
}
