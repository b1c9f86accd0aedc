package source

import (
	"strings"
	"sync"
)

// Name is a handle for a string kept in a NameTable. The zero Name is "".
type Name uint32

// NameTable hands out one Name per distinct string.
type NameTable struct {
	ids   sync.Map // string -> Name
	mu    sync.Mutex
	names []string
}

func NewNameTable() *NameTable { return &NameTable{names: []string{""}} }

func (t *NameTable) Intern(s string) Name {
	if s == "" {
		return 0
	}
	if n, ok := t.ids.Load(s); ok {
		return n.(Name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.ids.Load(s); ok {
		return n.(Name)
	}
	s = strings.Clone(s)
	n := Name(len(t.names))
	t.names = append(t.names, s)
	t.ids.Store(s, n)
	return n
}

// String returns "" for a Name issued by another table.
func (t *NameTable) String(n Name) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(n) >= len(t.names) {
		return ""
	}
	return t.names[n]
}

// Len counts distinct non-empty strings.
func (t *NameTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.names) - 1
}
