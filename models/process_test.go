package models

import (
	"testing"
	"time"
)

func TestCanProcessTransition(t *testing.T) {
	allowed := []struct{ from, to ProcessStatus }{
		{ProcessDraft, ProcessActive},
		{ProcessDraft, ProcessArchived},
		{ProcessActive, ProcessPaused},
		{ProcessActive, ProcessCompleted},
		{ProcessActive, ProcessFailed},
		{ProcessPaused, ProcessActive},
		{ProcessPaused, ProcessCompleted},
		{ProcessCompleted, ProcessArchived},
		{ProcessFailed, ProcessArchived},
	}
	for _, tr := range allowed {
		if !CanProcessTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to ProcessStatus }{
		{ProcessDraft, ProcessPaused},
		{ProcessDraft, ProcessCompleted},
		{ProcessCompleted, ProcessActive},
		{ProcessFailed, ProcessActive},
		{ProcessArchived, ProcessActive},
		{ProcessArchived, ProcessDraft},
		{ProcessActive, ProcessDraft},
	}
	for _, tr := range denied {
		if CanProcessTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be denied", tr.from, tr.to)
		}
	}
}

func TestCanTaskTransition(t *testing.T) {
	allowed := []struct{ from, to TaskStatus }{
		{TaskPending, TaskInProgress},
		{TaskPending, TaskScheduled},
		{TaskScheduled, TaskInProgress},
		{TaskInProgress, TaskCompleted},
		{TaskInProgress, TaskFailed},
		{TaskFailed, TaskPending},
		{TaskFailed, TaskInProgress},
		{TaskSkipped, TaskPending},
		{TaskBlocked, TaskInProgress},
		// Re-completing is allowed so terminal stamps stay idempotent.
		{TaskCompleted, TaskCompleted},
	}
	for _, tr := range allowed {
		if !CanTaskTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to TaskStatus }{
		{TaskPending, TaskCompleted},
		{TaskPending, TaskFailed},
		{TaskCompleted, TaskPending},
		{TaskCompleted, TaskInProgress},
		{TaskCompleted, TaskFailed},
		{TaskSkipped, TaskCompleted},
		{TaskBlocked, TaskCompleted},
	}
	for _, tr := range denied {
		if CanTaskTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be denied", tr.from, tr.to)
		}
	}
}

func TestTaskStatusIsTerminal(t *testing.T) {
	terminal := []TaskStatus{TaskCompleted, TaskFailed, TaskSkipped}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	open := []TaskStatus{TaskPending, TaskScheduled, TaskInProgress, TaskBlocked}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("expected %s to not be terminal", s)
		}
	}
}

func TestTouchIsMonotonic(t *testing.T) {
	now := time.Now()
	p := NewProcessDescriptor("agent-1", "Monotonic", now)
	first := p.UpdatedAt

	// Touch with the same wall clock must still advance.
	p.Touch(now)
	if p.UpdatedAt <= first {
		t.Fatalf("UpdatedAt did not advance: %d -> %d", first, p.UpdatedAt)
	}
	second := p.UpdatedAt

	// Even a clock that went backwards must not regress the stamp.
	p.Touch(now.Add(-time.Hour))
	if p.UpdatedAt <= second {
		t.Fatalf("UpdatedAt regressed under a backwards clock: %d -> %d", second, p.UpdatedAt)
	}

	if p.CreatedAt != first {
		t.Errorf("CreatedAt changed on touch: %d -> %d", first, p.CreatedAt)
	}
}

func TestNewProcessDescriptorDefaults(t *testing.T) {
	now := time.Now()
	p := NewProcessDescriptor("agent-1", "Morning routine", now)

	if p.ID == "" {
		t.Error("expected a generated ID")
	}
	if p.Status != ProcessDraft {
		t.Errorf("status = %s, want %s", p.Status, ProcessDraft)
	}
	if p.Tasks == nil || len(p.Tasks) != 0 {
		t.Errorf("expected an empty task slice, got %v", p.Tasks)
	}
	if p.Interface == nil || p.Interface.ViewKind != "checklist" {
		t.Errorf("expected default checklist interface, got %+v", p.Interface)
	}
	if p.CreatedAt != now.UnixMilli() || p.UpdatedAt != p.CreatedAt {
		t.Errorf("timestamps not initialized from now: created=%d updated=%d", p.CreatedAt, p.UpdatedAt)
	}
	if err := ValidateStruct(p); err != nil {
		t.Errorf("fresh descriptor failed validation: %v", err)
	}
}

func TestNewProcessTaskDefaults(t *testing.T) {
	task := NewProcessTask("Water plants", "Water every plant on the balcony")
	if task.ID == "" {
		t.Error("expected a generated ID")
	}
	if task.Status != TaskPending {
		t.Errorf("status = %s, want %s", task.Status, TaskPending)
	}
	if task.DependsOn == nil {
		t.Error("expected DependsOn initialized to an empty slice")
	}
}

func TestProcessPatchApply(t *testing.T) {
	now := time.Now()
	p := NewProcessDescriptor("agent-1", "Before", now)
	origID, origAgent, origCreated := p.ID, p.AgentID, p.CreatedAt

	name := "After"
	status := ProcessActive
	desc := "updated"
	patch := ProcessPatch{
		Name:        &name,
		Description: &desc,
		Status:      &status,
		Tags:        []string{"daily"},
		Meta:        map[string]interface{}{"source": "test"},
	}
	patch.Apply(&p)

	if p.Name != "After" || p.Description != "updated" || p.Status != ProcessActive {
		t.Errorf("patch not applied: %+v", p)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "daily" {
		t.Errorf("tags not applied: %v", p.Tags)
	}
	if p.ID != origID || p.AgentID != origAgent || p.CreatedAt != origCreated {
		t.Error("immutable fields changed by patch")
	}

	// An empty patch is a no-op.
	before := p
	ProcessPatch{}.Apply(&p)
	if p.Name != before.Name || p.Status != before.Status || p.Description != before.Description {
		t.Error("empty patch mutated the process")
	}
}

func TestTaskPatchApply(t *testing.T) {
	task := NewProcessTask("Label", "prompt")
	origID := task.ID

	label := "Renamed"
	status := TaskInProgress
	next := int64(1_700_000_000_000)
	patch := TaskPatch{Label: &label, Status: &status, NextRunAt: &next}
	patch.Apply(&task)

	if task.Label != "Renamed" || task.Status != TaskInProgress {
		t.Errorf("patch not applied: %+v", task)
	}
	if task.NextRunAt == nil || *task.NextRunAt != next {
		t.Errorf("NextRunAt not applied: %v", task.NextRunAt)
	}
	if task.ID != origID {
		t.Error("task ID changed by patch")
	}
}

func TestDescriptorLookups(t *testing.T) {
	p := NewProcessDescriptor("agent-1", "Lookups", time.Now())
	a := NewProcessTask("a", "")
	b := NewProcessTask("b", "")
	b.DependsOn = []string{a.ID}
	c := NewProcessTask("c", "")
	c.DependsOn = []string{a.ID, b.ID}
	p.Tasks = []ProcessTask{a, b, c}

	if got := p.Task(b.ID); got == nil || got.Label != "b" {
		t.Errorf("Task(%q) = %v", b.ID, got)
	}
	if got := p.Task("missing"); got != nil {
		t.Errorf("Task(missing) = %v, want nil", got)
	}
	if got := p.TaskByLabel("c"); got == nil || got.ID != c.ID {
		t.Errorf("TaskByLabel(c) = %v", got)
	}

	deps := p.Dependents(a.ID)
	if len(deps) != 2 || deps[0] != b.ID || deps[1] != c.ID {
		t.Errorf("Dependents(a) = %v, want [%s %s]", deps, b.ID, c.ID)
	}
	if deps := p.Dependents(c.ID); len(deps) != 0 {
		t.Errorf("Dependents(c) = %v, want none", deps)
	}
}

func TestValidateStructRejectsBadStatus(t *testing.T) {
	p := NewProcessDescriptor("agent-1", "Bad status", time.Now())
	p.Status = ProcessStatus("bogus")
	if err := ValidateStruct(p); err == nil {
		t.Error("expected validation error for unknown status")
	}

	p = NewProcessDescriptor("agent-1", "", time.Now())
	if err := ValidateStruct(p); err == nil {
		t.Error("expected validation error for empty name")
	}
}
