package event

import (
	"slices"
	"sync"
)

// Sink receives events as components emit them.
type Sink interface {
	Emit(ev Event)
}

// Discard drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Event) {}

// Record is an event with its position in the log.
type Record struct {
	Seq   uint64
	Event Event
}

// Log is an in-memory append-only event log. Truncate exists only so a
// failed call can roll back the events it emitted. Safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	records []Record
}

var _ Sink = (*Log)(nil)

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Emit appends ev.
func (l *Log) Emit(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, Record{Seq: uint64(len(l.records)), Event: ev})
}

// Len returns the number of records, usable as a mark for Truncate.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Truncate drops every record at or after mark.
func (l *Log) Truncate(mark int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if mark >= 0 && mark < len(l.records) {
		clear(l.records[mark:])
		l.records = l.records[:mark]
	}
}

// Records returns a copy of all records.
func (l *Log) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.records)
}

// Since returns the records from mark on.
func (l *Log) Since(mark int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if mark < 0 || mark >= len(l.records) {
		return nil
	}
	return slices.Clone(l.records[mark:])
}

// Filter returns the events named name, oldest first.
func (l *Log) Filter(name string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Event
	for _, r := range l.records {
		if r.Event.Name() == name {
			out = append(out, r.Event)
		}
	}
	return out
}
