package types

import (
	"fmt"
	"strings"
)

// TypeID identifies a type inside one interner.
type TypeID uint32

// Level names the interner that owns a TypeID. The three levels keep their
// own ID spaces, so IDs are only meaningful together with their level.
type Level uint8

const (
	LevelGlobal Level = iota
	LevelModule
	LevelLocal
)

func (l Level) String() string {
	switch l {
	case LevelGlobal:
		return "global"
	case LevelModule:
		return "module"
	case LevelLocal:
		return "local"
	default:
		return fmt.Sprintf("Level(%d)", l)
	}
}

// ResolvedTypeID is a type reference that is unique across levels.
type ResolvedTypeID struct {
	Level Level
	ID    TypeID
}

// Kind enumerates the supported kinds of types.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindUndefined
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindBigInt
	KindSymbol
	KindObject
	KindFunction
	KindArray
	KindPromise
	KindRegExp
	KindUnion
	KindLiteral
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindNumber:    "number",
	KindString:    "string",
	KindBigInt:    "bigint",
	KindSymbol:    "symbol",
	KindObject:    "object",
	KindFunction:  "function",
	KindArray:     "Array",
	KindPromise:   "Promise",
	KindRegExp:    "RegExp",
	KindUnion:     "union",
	KindLiteral:   "literal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Type is a compact descriptor.
type Type struct {
	Kind Kind
	// Elem is the element of arrays and promises and the return type of
	// functions.
	Elem ResolvedTypeID
	// Literal is the value of a string literal type.
	Literal string
	Members []ResolvedTypeID // union
	Params  []ResolvedTypeID // function
}

func (t Type) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d.%d|%q", t.Kind, t.Elem.Level, t.Elem.ID, t.Literal)
	for _, m := range t.Members {
		fmt.Fprintf(&b, "|m%d.%d", m.Level, m.ID)
	}
	for _, p := range t.Params {
		fmt.Fprintf(&b, "|p%d.%d", p.Level, p.ID)
	}
	return b.String()
}
