package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vocdoni/gofirma/appreceipt/log"
)

// AuditEntry records the outcome of decoding one receipt file.
type AuditEntry struct {
	Timestamp   string `json:"timestamp"`
	RunID       string `json:"runId"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	Verified    bool   `json:"verified"`
	BundleID    string `json:"bundleId,omitempty"`
	AppVersion  string `json:"appVersion,omitempty"`
	InAppCount  int    `json:"inAppCount"`
	HashMatches *bool  `json:"hashMatches,omitempty"`
	Outdated    bool   `json:"outdated,omitempty"`
	Error       string `json:"error,omitempty"`
}

const (
	StatusDecoded = "decoded"
	StatusFailed  = "failed"
)

// AuditLogger appends entries to receipts.jsonl in its directory. Entries
// written by one AuditLogger share a run ID.
type AuditLogger struct {
	mu       sync.Mutex
	filePath string
	runID    string
	logger   log.Logger
}

func NewAuditLogger(dir string, logger log.Logger) (*AuditLogger, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if logger == nil {
		logger = log.Discard
	}
	return &AuditLogger{
		filePath: filepath.Join(dir, "receipts.jsonl"),
		runID:    uuid.New().String(),
		logger:   logger,
	}, nil
}

func (l *AuditLogger) RunID() string {
	return l.runID
}

func (l *AuditLogger) Log(entry AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	entry.RunID = l.runID
	l.logger.Debugf("audit entry: source=%s status=%s", entry.Source, entry.Status)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(l.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// ReadAll returns every readable entry. Lines that do not decode are skipped.
func (l *AuditLogger) ReadAll() ([]AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []AuditEntry{}, nil
		}
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}
	defer f.Close()

	var entries []AuditEntry
	dec := json.NewDecoder(f)
	for dec.More() {
		var entry AuditEntry
		if err := dec.Decode(&entry); err != nil {
			l.logger.Warnf("stopping at unreadable audit entry: %v", err)
			break
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
