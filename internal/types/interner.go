package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Interner provides stable TypeIDs by keying structural descriptors. Each
// resolver level owns one.
type Interner struct {
	level Level
	types []Type
	index map[string]TypeID
}

func NewInterner(level Level) *Interner {
	return &Interner{level: level, index: make(map[string]TypeID, 32)}
}

// Level returns the level IDs from this interner belong to.
func (in *Interner) Level() Level { return in.level }

// Intern ensures the descriptor has a stable ID.
func (in *Interner) Intern(t Type) ResolvedTypeID {
	key := t.key()
	if id, ok := in.index[key]; ok {
		return ResolvedTypeID{Level: in.level, ID: id}
	}
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[key] = id
	return ResolvedTypeID{Level: in.level, ID: id}
}

// Lookup returns the descriptor for id.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

func (in *Interner) Len() int { return len(in.types) }
