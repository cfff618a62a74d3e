package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
)

const runFileName = "run.json"

// Store persists WorkflowRun records as JSON under one directory per run.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated record.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating runs directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// RunDir returns the directory holding one run's record and logs.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.dir, runID)
}

// Save writes the run record atomically.
func (s *Store) Save(run *Run) error {
	dir := s.RunDir(run.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}

	raw, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run %s: %w", run.ID, err)
	}

	tmp, err := os.CreateTemp(dir, runFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing run %s: %w", run.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing run %s: %w", run.ID, err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, runFileName)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("committing run %s: %w", run.ID, err)
	}
	return nil
}

// Load reads one run record. Missing runs fail with ErrRunNotFound.
func (s *Store) Load(runID string) (*Run, error) {
	raw, err := os.ReadFile(filepath.Join(s.RunDir(runID), runFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}

	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", runID, err)
	}
	return &run, nil
}

// List returns all persisted runs, newest first. Directories without a
// readable record are skipped.
func (s *Store) List() ([]*Run, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	var runs []*Run
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		run, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}
