package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/types"
)

// setupTestStore creates a FileProcessStore backed by a temp directory.
func setupTestStore(t *testing.T) *FileProcessStore {
	t.Helper()
	return setupTestStoreWithConfig(t, map[string]string{})
}

func setupTestStoreWithConfig(t *testing.T, overrides map[string]string) *FileProcessStore {
	t.Helper()
	cfg := map[string]string{
		"dataDir": t.TempDir(),
		"agentId": "test-agent",
	}
	for k, v := range overrides {
		cfg[k] = v
	}
	s := NewFileProcessStore()
	if err := s.Initialize(cfg); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return s
}

func TestInitializeDerivesPartitionPath(t *testing.T) {
	dir := t.TempDir()
	s := NewFileProcessStore()
	if err := s.Initialize(map[string]string{"dataDir": dir, "agentId": "agent/01"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	want := filepath.Join(dir, "processes-agent_01.json")
	if s.FilePath() != want {
		t.Errorf("filePath = %q, want %q", s.FilePath(), want)
	}
	if s.AgentID() != "agent/01" {
		t.Errorf("agentID = %q, want %q", s.AgentID(), "agent/01")
	}
}

func TestInitializeRejectsUnknownFormat(t *testing.T) {
	s := NewFileProcessStore()
	err := s.Initialize(map[string]string{"dataDir": t.TempDir(), "dataFileFormat": "xml"})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadMissingFileReturnsFreshStore(t *testing.T) {
	s := setupTestStore(t)
	st, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.Version != models.StoreVersion {
		t.Errorf("version = %d, want %d", st.Version, models.StoreVersion)
	}
	if st.Processes == nil || len(st.Processes) != 0 {
		t.Errorf("expected empty process map, got %v", st.Processes)
	}
}

func TestLoadCorruptFileReturnsFreshStore(t *testing.T) {
	cases := map[string]string{
		"bad syntax":  `{"version": 1, "processes": {`,
		"no version":  `{"processes": {}}`,
		"nil map":     `{"version": 1}`,
		"wrong shape": `[1, 2, 3]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			s := setupTestStore(t)
			if err := os.WriteFile(s.FilePath(), []byte(content), 0o600); err != nil {
				t.Fatalf("write corrupt file: %v", err)
			}
			st, err := s.Load()
			if err != nil {
				t.Fatalf("Load should not fail on corruption: %v", err)
			}
			if st.Version != models.StoreVersion || len(st.Processes) != 0 {
				t.Errorf("expected fresh store, got version=%d processes=%d", st.Version, len(st.Processes))
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	formats := []string{"json", "yaml", "toml"}
	for _, format := range formats {
		t.Run(format, func(t *testing.T) {
			s := setupTestStoreWithConfig(t, map[string]string{"dataFileFormat": format})

			created, err := s.CreateProcess(models.ProcessDescriptor{
				Name:        "Morning routine",
				Description: "Start the day",
				Tags:        []string{"daily"},
				Tasks: []models.ProcessTask{
					{Label: "stretch"},
					{Label: "coffee"},
				},
			})
			if err != nil {
				t.Fatalf("CreateProcess: %v", err)
			}

			st, err := s.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if st.Version != models.StoreVersion {
				t.Errorf("version = %d, want %d", st.Version, models.StoreVersion)
			}
			got, ok := st.Processes[created.ID]
			if !ok {
				t.Fatalf("process %s not present after reload", created.ID)
			}
			if got.ID != created.ID {
				t.Errorf("map key and descriptor ID diverge: %s vs %s", created.ID, got.ID)
			}
			if got.Name != "Morning routine" || len(got.Tasks) != 2 {
				t.Errorf("round trip lost data: %+v", got)
			}
			if got.Tasks[0].Label != "stretch" || got.Tasks[0].Order != 0 ||
				got.Tasks[1].Label != "coffee" || got.Tasks[1].Order != 1 {
				t.Errorf("task order not preserved: %+v", got.Tasks)
			}
		})
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.CreateProcess(models.ProcessDescriptor{Name: "p"}); err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(s.FilePath()))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the store file, found %v", names)
	}
}

func TestCreateProcessFillsDefaults(t *testing.T) {
	s := setupTestStore(t)
	created, err := s.CreateProcess(models.ProcessDescriptor{
		Name:  "Defaults",
		Tasks: []models.ProcessTask{{Label: "only"}},
	})
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated process ID")
	}
	if created.AgentID != "test-agent" {
		t.Errorf("agentID = %q, want test-agent", created.AgentID)
	}
	if created.Status != models.ProcessDraft {
		t.Errorf("status = %s, want draft", created.Status)
	}
	if created.Interface == nil {
		t.Error("expected a default interface")
	}
	if created.CreatedAt == 0 || created.UpdatedAt != created.CreatedAt {
		t.Errorf("timestamps not stamped: created=%d updated=%d", created.CreatedAt, created.UpdatedAt)
	}
	task := created.Tasks[0]
	if task.ID == "" || task.Status != models.TaskPending || task.Order != 0 {
		t.Errorf("task defaults not applied: %+v", task)
	}
}

func TestCreateProcessRejectsDuplicateID(t *testing.T) {
	s := setupTestStore(t)
	created, err := s.CreateProcess(models.ProcessDescriptor{Name: "first"})
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	_, err = s.CreateProcess(models.ProcessDescriptor{ID: created.ID, Name: "second"})
	if !errors.Is(err, types.ErrInvalidState) {
		t.Errorf("expected invalid-state for duplicate ID, got %v", err)
	}
}

func TestCreateProcessRejectsBadTaskGraph(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.CreateProcess(models.ProcessDescriptor{
		Name: "unknown dep",
		Tasks: []models.ProcessTask{
			{ID: "a", Label: "a", DependsOn: []string{"ghost"}},
		},
	})
	if !errors.Is(err, types.ErrInvalidState) {
		t.Errorf("expected invalid-state for unknown dependency, got %v", err)
	}

	_, err = s.CreateProcess(models.ProcessDescriptor{
		Name: "cycle",
		Tasks: []models.ProcessTask{
			{ID: "a", Label: "a", DependsOn: []string{"b"}},
			{ID: "b", Label: "b", DependsOn: []string{"a"}},
		},
	})
	if !errors.Is(err, types.ErrInvalidState) {
		t.Errorf("expected invalid-state for dependency cycle, got %v", err)
	}

	_, err = s.CreateProcess(models.ProcessDescriptor{
		Name: "duplicate labels",
		Tasks: []models.ProcessTask{
			{ID: "a", Label: "same"},
			{ID: "b", Label: "same"},
		},
	})
	if !errors.Is(err, types.ErrInvalidState) {
		t.Errorf("expected invalid-state for duplicate labels, got %v", err)
	}
}

func TestGetProcessNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetProcess("nope")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestUpdateProcess(t *testing.T) {
	s := setupTestStore(t)
	created, err := s.CreateProcess(models.ProcessDescriptor{Name: "before"})
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}

	name := "after"
	active := models.ProcessActive
	updated, err := s.UpdateProcess(created.ID, models.ProcessPatch{Name: &name, Status: &active})
	if err != nil {
		t.Fatalf("UpdateProcess: %v", err)
	}
	if updated.Name != "after" || updated.Status != models.ProcessActive {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.ID != created.ID || updated.CreatedAt != created.CreatedAt {
		t.Error("immutable fields changed on update")
	}
	if updated.UpdatedAt <= created.UpdatedAt {
		t.Errorf("UpdatedAt did not advance: %d -> %d", created.UpdatedAt, updated.UpdatedAt)
	}

	// Illegal lifecycle transition: active -> draft is not a thing.
	draft := models.ProcessDraft
	_, err = s.UpdateProcess(created.ID, models.ProcessPatch{Status: &draft})
	if !errors.Is(err, types.ErrInvalidState) {
		t.Errorf("expected invalid-state for illegal transition, got %v", err)
	}

	// Re-asserting the current status is a no-op, not a transition.
	if _, err := s.UpdateProcess(created.ID, models.ProcessPatch{Status: &active}); err != nil {
		t.Errorf("same-status patch should succeed, got %v", err)
	}
}

func TestDeleteProcess(t *testing.T) {
	s := setupTestStore(t)
	created, err := s.CreateProcess(models.ProcessDescriptor{Name: "doomed"})
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if err := s.DeleteProcess(created.ID); err != nil {
		t.Fatalf("DeleteProcess: %v", err)
	}
	if _, err := s.GetProcess(created.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected not-found after delete, got %v", err)
	}
	if err := s.DeleteProcess(created.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected not-found deleting twice, got %v", err)
	}
}

func TestListProcessesFilters(t *testing.T) {
	s := setupTestStore(t)

	seed := []models.ProcessDescriptor{
		{Name: "Morning routine", Tags: []string{"daily"}},
		{Name: "Weekly report", Description: "compile numbers", Tags: []string{"work"}},
		{Name: "Backup photos", Tags: []string{"work", "media"}},
	}
	ids := make([]string, 0, len(seed))
	for _, p := range seed {
		created, err := s.CreateProcess(p)
		if err != nil {
			t.Fatalf("CreateProcess(%s): %v", p.Name, err)
		}
		ids = append(ids, created.ID)
	}
	// Make sure the update lands on a later millisecond than every creation.
	time.Sleep(5 * time.Millisecond)
	active := models.ProcessActive
	if _, err := s.UpdateProcess(ids[1], models.ProcessPatch{Status: &active}); err != nil {
		t.Fatalf("UpdateProcess: %v", err)
	}

	all, err := s.ListProcesses(ListFilter{})
	if err != nil {
		t.Fatalf("ListProcesses: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 processes, got %d", len(all))
	}
	// The just-updated process has the newest UpdatedAt.
	if all[0].ID != ids[1] {
		t.Errorf("expected newest-updated first, got %s", all[0].Name)
	}

	byStatus, err := s.ListProcesses(ListFilter{Statuses: []models.ProcessStatus{models.ProcessActive}})
	if err != nil {
		t.Fatalf("ListProcesses: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != ids[1] {
		t.Errorf("status filter returned %d results", len(byStatus))
	}

	byTag, err := s.ListProcesses(ListFilter{Tags: []string{"work"}})
	if err != nil {
		t.Fatalf("ListProcesses: %v", err)
	}
	if len(byTag) != 2 {
		t.Errorf("tag filter returned %d results, want 2", len(byTag))
	}

	bySearch, err := s.ListProcesses(ListFilter{Search: "NUMBERS"})
	if err != nil {
		t.Fatalf("ListProcesses: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].ID != ids[1] {
		t.Errorf("search filter returned %d results", len(bySearch))
	}

	limited, err := s.ListProcesses(ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListProcesses: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit filter returned %d results, want 2", len(limited))
	}
}

func TestMutateSerializesConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// Each goroutine gets its own store handle sharing the same file,
			// as independent processes would.
			s := NewFileProcessStore()
			if err := s.Initialize(map[string]string{"dataDir": dir, "agentId": "shared"}); err != nil {
				errs <- err
				return
			}
			if _, err := s.CreateProcess(models.ProcessDescriptor{Name: fmt.Sprintf("proc-%d", n)}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent create failed: %v", err)
	}

	s := NewFileProcessStore()
	if err := s.Initialize(map[string]string{"dataDir": dir, "agentId": "shared"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	st, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Processes) != writers {
		t.Errorf("lost updates: %d processes persisted, want %d", len(st.Processes), writers)
	}
}

func TestBackupAndRestore(t *testing.T) {
	s := setupTestStore(t)
	created, err := s.CreateProcess(models.ProcessDescriptor{Name: "keep me"})
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}

	backupPath := filepath.Join(t.TempDir(), "backup.json")
	if err := s.Backup(backupPath); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	if err := s.DeleteProcess(created.ID); err != nil {
		t.Fatalf("DeleteProcess: %v", err)
	}
	if err := s.Restore(backupPath); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	restored, err := s.GetProcess(created.ID)
	if err != nil {
		t.Fatalf("process missing after restore: %v", err)
	}
	if restored.Name != "keep me" {
		t.Errorf("restored name = %q", restored.Name)
	}
}
