// Package display holds the two user-facing surfaces of the workflow: a
// single status line and a single result area. Both are overwritten on each
// update; neither keeps history.
package display

import (
	"bytes"
	"encoding/json"
	"sync"
)

// Status is a single line of progress text.
type Status interface {
	SetStatus(msg string)
}

// Output shows one JSON result, replacing the previous one.
type Output interface {
	Show(result json.RawMessage) error
}

// Surface is a status line plus an output area.
type Surface interface {
	Status
	Output
}

// Pretty indents raw with two spaces.
func Pretty(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Memory keeps the latest status and output in memory.
type Memory struct {
	mu     sync.Mutex
	status string
	output string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SetStatus(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = msg
}

func (m *Memory) Show(result json.RawMessage) error {
	pretty, err := Pretty(result)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.output = pretty
	return nil
}

// Status returns the latest status.
func (m *Memory) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Output returns the latest output, pretty-printed.
func (m *Memory) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output
}
