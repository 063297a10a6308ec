package vm

import (
	"sort"

	"github.com/chazu/lispbc/value"
)

// Heap maps symbols to records for the lifetime of one execution.
type Heap interface {
	// Insert stores r at symbol.
	Insert(symbol string, r value.Record)
	// Get returns a snapshot of the record at symbol.
	Get(symbol string) (value.Record, bool)
}

// MapHeap is the in-memory Heap. On overwrite the stored record keeps
// every property of the old record that the new one does not set; the
// value itself is replaced.
type MapHeap struct {
	records map[string]value.Record
}

// NewHeap returns an empty heap.
func NewHeap() *MapHeap {
	return &MapHeap{records: make(map[string]value.Record)}
}

// Insert stores a copy of r, carrying forward old properties it lacks.
func (h *MapHeap) Insert(symbol string, r value.Record) {
	stored := r.Clone()
	if old, ok := h.records[symbol]; ok {
		for k, v := range old.Properties {
			if _, set := stored.Properties[k]; set {
				continue
			}
			if stored.Properties == nil {
				stored.Properties = make(map[string]value.Value, len(old.Properties))
			}
			stored.Properties[k] = v
		}
	}
	h.records[symbol] = stored
}

// Get returns a copy of the record at symbol.
func (h *MapHeap) Get(symbol string) (value.Record, bool) {
	r, ok := h.records[symbol]
	if !ok {
		return value.Record{}, false
	}
	return r.Clone(), true
}

// Symbols returns the bound symbols in sorted order.
func (h *MapHeap) Symbols() []string {
	syms := make([]string, 0, len(h.records))
	for sym := range h.records {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}

// Len returns the number of bound symbols.
func (h *MapHeap) Len() int {
	return len(h.records)
}
