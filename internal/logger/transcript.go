package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TranscriptPath is the default transcript file, relative to the working directory.
const TranscriptPath = "logs/terminal.txt"

// Transcript stores chat lines in memory and appends them to a file on disk.
type Transcript struct {
	mu    sync.Mutex
	path  string
	lines []string
	now   func() time.Time
}

// NewTranscript returns a transcript writing to path and ensures its directory exists.
// An empty path keeps the transcript in memory only.
func NewTranscript(path string) *Transcript {
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
	}
	return &Transcript{path: path, lines: make([]string, 0), now: time.Now}
}

// Log appends a line prefixed with [timestamp] and mirrors it to the file.
func (t *Transcript) Log(line string) {
	stamped := "[" + t.now().Format("2006-01-02 15:04:05") + "] " + line

	t.mu.Lock()
	t.lines = append(t.lines, stamped)
	t.mu.Unlock()

	if t.path == "" {
		return
	}
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(stamped + "\n")
	_ = f.Close()
}

// Lines returns a copy of all stored lines.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Clear drops the in-memory lines. The file is left alone.
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.lines = t.lines[:0]
	t.mu.Unlock()
}
