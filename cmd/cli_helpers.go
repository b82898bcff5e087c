package cmd

import (
	"fmt"
	"strings"

	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/store"
)

// shortID abbreviates an identifier for display. IDs are opaque tokens and
// may be shorter than the usual UUID, so never slice past the end.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// resolveProcess finds one process by full ID, unique ID prefix, or exact
// name. Ambiguity and misses are reported as plain errors; the store's
// structured errors only apply once an ID is pinned down.
func resolveProcess(s store.ProcessStore, ref string) (models.ProcessDescriptor, error) {
	procs, err := s.ListProcesses(store.ListFilter{})
	if err != nil {
		return models.ProcessDescriptor{}, err
	}

	var candidates []models.ProcessDescriptor
	for _, p := range procs {
		if p.ID == ref {
			return p, nil
		}
		if strings.HasPrefix(p.ID, ref) || p.Name == ref {
			candidates = append(candidates, p)
		}
	}

	switch len(candidates) {
	case 0:
		return models.ProcessDescriptor{}, fmt.Errorf("no process matches %q", ref)
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, 0, len(candidates))
		for _, p := range candidates {
			names = append(names, fmt.Sprintf("%s (%s)", p.Name, shortID(p.ID)))
		}
		return models.ProcessDescriptor{}, fmt.Errorf("%q is ambiguous: %s", ref, strings.Join(names, ", "))
	}
}

// resolveTask finds a task inside a process by ID, ID prefix, or label.
func resolveTask(proc models.ProcessDescriptor, ref string) (models.ProcessTask, error) {
	var candidates []models.ProcessTask
	for _, t := range proc.Tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) || t.Label == ref {
			candidates = append(candidates, t)
		}
	}
	switch len(candidates) {
	case 0:
		return models.ProcessTask{}, fmt.Errorf("no task in %q matches %q", proc.Name, ref)
	case 1:
		return candidates[0], nil
	default:
		return models.ProcessTask{}, fmt.Errorf("%q matches multiple tasks in %q", ref, proc.Name)
	}
}
