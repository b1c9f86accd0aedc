package types

import "sync"

// TypeofNames are the strings the typeof operator can produce.
var TypeofNames = []string{"bigint", "boolean", "function", "number", "object", "string", "symbol", "undefined"}

// Catalog is the global level: primitives, the built-in instance types and
// a few callback shapes. It is built once and never written afterwards.
type Catalog struct {
	in *Interner

	Unknown   ResolvedTypeID
	Undefined ResolvedTypeID
	Null      ResolvedTypeID
	Boolean   ResolvedTypeID
	Number    ResolvedTypeID
	String    ResolvedTypeID
	BigInt    ResolvedTypeID
	Symbol    ResolvedTypeID
	Object    ResolvedTypeID
	Function  ResolvedTypeID
	Array     ResolvedTypeID // Array<unknown>
	Promise   ResolvedTypeID // Promise<unknown>
	RegExp    ResolvedTypeID

	// TypeofUnion is the union of the typeof literal strings.
	TypeofUnion ResolvedTypeID
	typeof      map[string]ResolvedTypeID

	// ArrayCallback is (value, index, array) => unknown.
	ArrayCallback ResolvedTypeID
	// PromiseExecutor is (resolve, reject) => undefined.
	PromiseExecutor ResolvedTypeID
	// VoidCallback is () => undefined.
	VoidCallback ResolvedTypeID
}

// Global returns the shared catalog.
var Global = sync.OnceValue(newCatalog)

func newCatalog() *Catalog {
	in := NewInterner(LevelGlobal)
	c := &Catalog{in: in, typeof: make(map[string]ResolvedTypeID, len(TypeofNames))}
	c.Unknown = in.Intern(Type{Kind: KindUnknown}) // ID 0
	c.Undefined = in.Intern(Type{Kind: KindUndefined})
	c.Null = in.Intern(Type{Kind: KindNull})
	c.Boolean = in.Intern(Type{Kind: KindBoolean})
	c.Number = in.Intern(Type{Kind: KindNumber})
	c.String = in.Intern(Type{Kind: KindString})
	c.BigInt = in.Intern(Type{Kind: KindBigInt})
	c.Symbol = in.Intern(Type{Kind: KindSymbol})
	c.Object = in.Intern(Type{Kind: KindObject})
	c.Function = in.Intern(Type{Kind: KindFunction, Elem: c.Unknown})
	c.Array = in.Intern(Type{Kind: KindArray, Elem: c.Unknown})
	c.Promise = in.Intern(Type{Kind: KindPromise, Elem: c.Unknown})
	c.RegExp = in.Intern(Type{Kind: KindRegExp})

	members := make([]ResolvedTypeID, 0, len(TypeofNames))
	for _, name := range TypeofNames {
		id := in.Intern(Type{Kind: KindLiteral, Literal: name})
		c.typeof[name] = id
		members = append(members, id)
	}
	c.TypeofUnion = in.Intern(Type{Kind: KindUnion, Members: members})

	c.VoidCallback = in.Intern(Type{Kind: KindFunction, Elem: c.Undefined})
	c.ArrayCallback = in.Intern(Type{Kind: KindFunction, Elem: c.Unknown, Params: []ResolvedTypeID{c.Unknown, c.Number, c.Array}})
	c.PromiseExecutor = in.Intern(Type{Kind: KindFunction, Elem: c.Undefined, Params: []ResolvedTypeID{c.VoidCallback, c.VoidCallback}})
	return c
}

// Lookup returns a global descriptor.
func (c *Catalog) Lookup(id TypeID) (Type, bool) { return c.in.Lookup(id) }

// TypeofLiteral returns the literal type of a valid typeof result.
func (c *Catalog) TypeofLiteral(name string) (ResolvedTypeID, bool) {
	id, ok := c.typeof[name]
	return id, ok
}

// IsTypeofName reports whether s is a string the typeof operator produces.
func (c *Catalog) IsTypeofName(s string) bool {
	_, ok := c.typeof[s]
	return ok
}
