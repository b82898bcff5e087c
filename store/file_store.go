package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/types"
	yaml "gopkg.in/yaml.v3"
)

const (
	dataDirKey        = "dataDir"
	agentIDKey        = "agentId"
	dataFileKey       = "dataFile"
	dataFileFormatKey = "dataFileFormat"
	lockTimeoutKey    = "lockTimeoutMs"
	lockStaleKey      = "lockStaleMs"

	defaultDataFormat = "json"
	formatJSON        = "json"
	formatYAML        = "yaml"
	formatTOML        = "toml"
)

// FileProcessStore implements the ProcessStore interface with one structured
// file per agent partition. Mutations follow a lock / reload / mutate / save
// / release cycle so independent callers sharing the file never lose updates.
type FileProcessStore struct {
	agentID  string
	filePath string
	format   string
	lock     *mutationLock
}

// NewFileProcessStore creates a new instance of FileProcessStore.
// It does not initialize the store; Initialize must be called separately.
func NewFileProcessStore() *FileProcessStore {
	return &FileProcessStore{}
}

// PartitionFileName returns the deterministic backing file name for an agent
// partition in the given format.
func PartitionFileName(agentID, format string) string {
	return "processes-" + sanitizePartition(agentID) + "." + format
}

// sanitizePartition keeps the partition identifier filesystem-safe.
func sanitizePartition(agentID string) string {
	var b strings.Builder
	for _, r := range agentID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}

// Initialize configures the FileProcessStore. It expects an 'agentId' key
// naming the owning partition and a 'dataDir' key for the directory holding
// partition files; 'dataFile' overrides the derived path entirely. The
// directory is created if absent.
func (s *FileProcessStore) Initialize(config map[string]string) error {
	s.agentID = config[agentIDKey]
	if s.agentID == "" {
		s.agentID = "default"
	}

	if val, ok := config[dataFileFormatKey]; ok && val != "" {
		formatLower := strings.ToLower(val)
		switch formatLower {
		case formatJSON, formatYAML, formatTOML:
			s.format = formatLower
		default:
			return fmt.Errorf("unsupported dataFileFormat: %s. Supported formats are json, yaml, toml", val)
		}
	} else {
		s.format = defaultDataFormat
	}

	if val, ok := config[dataFileKey]; ok && val != "" {
		s.filePath = val
	} else {
		dir := config[dataDirKey]
		if dir == "" {
			dir = "."
		}
		s.filePath = filepath.Join(dir, PartitionFileName(s.agentID, s.format))
	}

	dir := filepath.Dir(s.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	timeout := parseDurationMs(config[lockTimeoutKey], DefaultLockTimeout)
	stale := parseDurationMs(config[lockStaleKey], DefaultLockStale)
	s.lock = newMutationLock(s.filePath, timeout, stale)
	return nil
}

func parseDurationMs(val string, fallback time.Duration) time.Duration {
	if val == "" {
		return fallback
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// AgentID returns the owning partition identifier.
func (s *FileProcessStore) AgentID() string {
	return s.agentID
}

// FilePath returns the partition's backing file path.
func (s *FileProcessStore) FilePath() string {
	return s.filePath
}

// Load reads and parses the partition's backing file. Absent or structurally
// invalid files yield a fresh empty store: corruption means "start fresh",
// never a fatal error.
func (s *FileProcessStore) Load() (*models.ProcessStore, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.NewProcessStore(), nil
		}
		return nil, types.Unavailablef("read store file %s: %v", s.filePath, err)
	}
	return s.decode(data), nil
}

// decode parses raw store bytes, falling back to an empty store on any
// structural problem (bad syntax, missing version, nil process map).
func (s *FileProcessStore) decode(data []byte) *models.ProcessStore {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.NewProcessStore()
	}

	var st models.ProcessStore
	var err error
	switch s.format {
	case formatYAML:
		err = yaml.Unmarshal(data, &st)
	case formatTOML:
		err = toml.Unmarshal(data, &st)
	default:
		err = json.Unmarshal(data, &st)
	}
	if err != nil || st.Version == 0 || st.Processes == nil {
		fmt.Fprintf(os.Stderr, "procwing: store file %s is malformed, starting fresh\n", s.filePath)
		return models.NewProcessStore()
	}
	return &st
}

// Save writes the full store back. It writes a uniquely-named temporary file
// in the same directory, tightens permissions to owner-only, then renames it
// over the destination so a concurrent reader never observes a partial file.
func (s *FileProcessStore) Save(st *models.ProcessStore) error {
	var marshaled []byte
	var err error
	switch s.format {
	case formatYAML:
		marshaled, err = yaml.Marshal(st)
	case formatTOML:
		buf := new(bytes.Buffer)
		if encodeErr := toml.NewEncoder(buf).Encode(st); encodeErr == nil {
			marshaled = buf.Bytes()
		} else {
			err = encodeErr
		}
	default:
		marshaled, err = json.MarshalIndent(st, "", "  ")
	}
	if err != nil {
		return types.Unavailablef("marshal store to %s: %v", s.format, err)
	}

	tempPath := fmt.Sprintf("%s.tmp-%s", s.filePath, uuid.NewString()[:8])
	defer func() { _ = os.Remove(tempPath) }()

	if err := os.WriteFile(tempPath, marshaled, 0o600); err != nil {
		return types.Unavailablef("write temporary store file %s: %v", tempPath, err)
	}
	if err := os.Chmod(tempPath, 0o600); err != nil {
		return types.Unavailablef("chmod temporary store file %s: %v", tempPath, err)
	}
	if err := os.Rename(tempPath, s.filePath); err != nil {
		return types.Unavailablef("rename %s over %s: %v", tempPath, s.filePath, err)
	}
	return nil
}

// Mutate acquires the partition's mutation lock, reloads the freshest
// on-disk state, invokes fn which may mutate the in-memory store, persists
// the result and releases the lock, in that order, on all exit paths.
// A failure inside fn leaves the on-disk store untouched.
func (s *FileProcessStore) Mutate(fn func(st *models.ProcessStore) error) error {
	if s.lock == nil {
		return types.Unavailablef("store not initialized")
	}
	if err := s.lock.Acquire(); err != nil {
		return err
	}
	defer s.lock.Release()

	st, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return s.Save(st)
}

// Backup copies the partition's backing file to the destination path. The
// lock is held so the copy is a consistent snapshot.
func (s *FileProcessStore) Backup(destinationPath string) error {
	if err := s.lock.Acquire(); err != nil {
		return err
	}
	defer s.lock.Release()

	input, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			input = nil
		} else {
			return types.Unavailablef("read store file %s for backup: %v", s.filePath, err)
		}
	}
	if err := os.WriteFile(destinationPath, input, 0o600); err != nil {
		return types.Unavailablef("write backup file %s: %v", destinationPath, err)
	}
	return nil
}

// Restore replaces the partition's backing file with data from sourcePath,
// using the same temp-and-rename path as Save.
func (s *FileProcessStore) Restore(sourcePath string) error {
	if err := s.lock.Acquire(); err != nil {
		return err
	}
	defer s.lock.Release()

	sourceData, err := os.ReadFile(sourcePath)
	if err != nil {
		return types.Unavailablef("read backup file %s: %v", sourcePath, err)
	}

	tempPath := fmt.Sprintf("%s.tmp-%s", s.filePath, uuid.NewString()[:8])
	defer func() { _ = os.Remove(tempPath) }()

	if err := os.WriteFile(tempPath, sourceData, 0o600); err != nil {
		return types.Unavailablef("write restored data to %s: %v", tempPath, err)
	}
	if err := os.Rename(tempPath, s.filePath); err != nil {
		return types.Unavailablef("rename %s over %s: %v", tempPath, s.filePath, err)
	}
	return nil
}

// Close releases any resources held by the store. The mutation lock is never
// held between operations, so there is nothing to unlock here; Close exists
// to satisfy the interface and future backends.
func (s *FileProcessStore) Close() error {
	return nil
}
