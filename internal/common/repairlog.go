package common

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RepairEntry records a single byte-level repair applied to a raw frame file.
type RepairEntry struct {
	Op           string    `json:"op"`
	File         string    `json:"file"`
	Offset       int64     `json:"offset"`
	ShiftCount   int       `json:"shiftCount,omitempty"`
	BeforeSha256 string    `json:"beforeSha256"`
	AfterSha256  string    `json:"afterSha256"`
	Ts           time.Time `json:"ts"`
}

// RepairLog provides append-only access to a JSONL audit log.
type RepairLog struct {
	path string
	mu   sync.Mutex
}

// NewRepairLog returns a RepairLog that writes to the provided path.
func NewRepairLog(path string) *RepairLog {
	return &RepairLog{path: path}
}

// Path returns the backing file path for the log.
func (l *RepairLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a new entry to the audit log. Entries are serialized as JSON
// objects, one per line, to make downstream consumption straightforward.
func (l *RepairLog) Append(entry RepairEntry) error {
	if l == nil {
		return errors.New("nil repair log")
	}
	if entry.Op == "" {
		return errors.New("repair entry missing op")
	}
	if entry.Ts.IsZero() {
		entry.Ts = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	dir := filepath.Dir(l.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// ReadRepairLog loads every entry from the supplied JSONL file.
func ReadRepairLog(path string) ([]RepairEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var entries []RepairEntry
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var entry RepairEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("decode repair entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
