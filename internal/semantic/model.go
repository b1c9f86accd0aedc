package semantic

import (
	"iter"

	"weblint/internal/syntax"
)

type ScopeID int32

// NoScope is the parent of the global scope.
const NoScope ScopeID = -1

type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeModule
	ScopeFunction
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	}
	return "unknown"
}

// Scope is a lexical scope. Node is nil for the global scope.
type Scope struct {
	ID     ScopeID
	Kind   ScopeKind
	Node   *syntax.Node
	Parent ScopeID
	names  map[string]BindingID
	order  []BindingID
}

// Bindings lists the bindings declared directly in the scope, in
// declaration order.
func (s *Scope) Bindings() []BindingID { return s.order }

type BindingID int32

type BindingKind uint8

const (
	BindVar BindingKind = iota
	BindLet
	BindConst
	BindFunction
	BindClass
	BindParameter
	BindCatch
	BindImport
	BindType
	BindEnum
)

func (k BindingKind) String() string {
	switch k {
	case BindVar:
		return "var"
	case BindLet:
		return "let"
	case BindConst:
		return "const"
	case BindFunction:
		return "function"
	case BindClass:
		return "class"
	case BindParameter:
		return "parameter"
	case BindCatch:
		return "catch"
	case BindImport:
		return "import"
	case BindType:
		return "type"
	case BindEnum:
		return "enum"
	}
	return "unknown"
}

// Binding is a declared name.
type Binding struct {
	ID    BindingID
	Name  string
	Kind  BindingKind
	Scope ScopeID
	// Token is the identifier of the first declaration.
	Token *syntax.Token
	// Decl is the declaring node: variable_declarator, function_declaration,
	// import_statement, the parameter list...
	Decl     *syntax.Node
	Hoisted  bool
	Exported bool
	refs     []ReferenceID
}

type ReferenceID int32

type RefKind uint8

const (
	RefRead RefKind = iota
	RefWrite
)

// Reference is one use of a name. Binding is -1 for unresolved names.
type Reference struct {
	ID      ReferenceID
	Token   *syntax.Token
	Kind    RefKind
	Scope   ScopeID
	Binding BindingID
}

func (r *Reference) IsRead() bool            { return r.Kind == RefRead }
func (r *Reference) IsWrite() bool           { return r.Kind == RefWrite }
func (r *Reference) Resolved() bool          { return r.Binding >= 0 }
func (r *Reference) Name() string            { return r.Token.Text() }
func (r *Reference) Range() syntax.TextRange { return r.Token.Range() }

// ImportName is one imported binding. Imported is "default" for default
// imports and "*" for namespace imports.
type ImportName struct {
	Imported string
	Local    string
	Binding  BindingID
	// Node is the specifier node, or the identifier's parent for default
	// imports.
	Node     *syntax.Node
	Token    *syntax.Token
	TypeOnly bool
}

// Import is one import statement.
type Import struct {
	Specifier string
	Names     []ImportName
	Node      *syntax.Node
	Range     syntax.TextRange
	// Resolved is the file the specifier points at, "" when unknown.
	Resolved string
	TypeOnly bool
}

// Export is one exported name. From is set for re-exports.
type Export struct {
	Name    string
	Local   string
	From    string
	Binding BindingID
	Node    *syntax.Node
}

// Model is the semantic view of one file. It is immutable once built and
// safe for concurrent readers.
type Model struct {
	tree         *syntax.Tree
	scopes       []Scope
	bindings     []Binding
	refs         []Reference
	scopeByNode  map[syntax.NodeID]ScopeID
	bindingByTok map[*syntax.Token]BindingID
	refByTok     map[*syntax.Token]ReferenceID
	unresolved   []ReferenceID
	globals      map[string]bool
	imports      []Import
	exports      []Export
	comments     *Comments
}

func (m *Model) Tree() *syntax.Tree { return m.tree }

func (m *Model) Scope(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(m.scopes) {
		return nil
	}
	return &m.scopes[id]
}

func (m *Model) GlobalScope() *Scope { return &m.scopes[0] }

// ModuleScope returns the program scope, or the global scope for trees
// without a program.
func (m *Model) ModuleScope() *Scope {
	if len(m.scopes) > 1 {
		return &m.scopes[1]
	}
	return &m.scopes[0]
}

// ScopeOf returns the innermost scope containing n.
func (m *Model) ScopeOf(n *syntax.Node) ScopeID {
	for cur := n; cur != nil; cur = cur.Parent() {
		if id, ok := m.scopeByNode[cur.ID()]; ok {
			return id
		}
	}
	return m.ModuleScope().ID
}

// Ancestors yields the scope and its parents up to the global scope.
func (m *Model) Ancestors(id ScopeID) iter.Seq[*Scope] {
	return func(yield func(*Scope) bool) {
		for s := m.Scope(id); s != nil; s = m.Scope(s.Parent) {
			if !yield(s) {
				return
			}
		}
	}
}

// Lookup resolves name from scope id outwards.
func (m *Model) Lookup(id ScopeID, name string) (*Binding, bool) {
	for s := range m.Ancestors(id) {
		if b, ok := s.names[name]; ok {
			return &m.bindings[b], true
		}
	}
	return nil, false
}

func (m *Model) Bindings() []Binding { return m.bindings }

func (m *Model) Binding(id BindingID) *Binding {
	if id < 0 || int(id) >= len(m.bindings) {
		return nil
	}
	return &m.bindings[id]
}

// Declaration returns the declaring node of a binding.
func (m *Model) Declaration(id BindingID) *syntax.Node {
	if b := m.Binding(id); b != nil {
		return b.Decl
	}
	return nil
}

// BindingOf returns the binding declared by tok.
func (m *Model) BindingOf(tok *syntax.Token) (*Binding, bool) {
	id, ok := m.bindingByTok[tok]
	if !ok {
		return nil, false
	}
	return &m.bindings[id], true
}

// ReferenceOf returns the reference made by tok.
func (m *Model) ReferenceOf(tok *syntax.Token) (*Reference, bool) {
	id, ok := m.refByTok[tok]
	if !ok {
		return nil, false
	}
	return &m.refs[id], true
}

// References returns every reference resolved to the binding.
func (m *Model) References(id BindingID) []*Reference {
	b := m.Binding(id)
	if b == nil {
		return nil
	}
	out := make([]*Reference, 0, len(b.refs))
	for _, r := range b.refs {
		out = append(out, &m.refs[r])
	}
	return out
}

// Reads returns the read references of a binding.
func (m *Model) Reads(id BindingID) []*Reference {
	var out []*Reference
	for _, r := range m.References(id) {
		if r.IsRead() {
			out = append(out, r)
		}
	}
	return out
}

// Writes returns the write references of a binding.
func (m *Model) Writes(id BindingID) []*Reference {
	var out []*Reference
	for _, r := range m.References(id) {
		if r.IsWrite() {
			out = append(out, r)
		}
	}
	return out
}

// Unresolved returns references that no declaration in the file binds.
func (m *Model) Unresolved() []*Reference {
	out := make([]*Reference, 0, len(m.unresolved))
	for _, id := range m.unresolved {
		out = append(out, &m.refs[id])
	}
	return out
}

// IsGlobal reports whether name is a configured global.
func (m *Model) IsGlobal(name string) bool { return m.globals[name] }

func (m *Model) Imports() []Import { return m.imports }
func (m *Model) Exports() []Export { return m.exports }

func (m *Model) Comments() *Comments { return m.comments }

// JsDocFor returns the JSDoc block attached to a declaration.
func (m *Model) JsDocFor(n *syntax.Node) (string, bool) {
	return m.comments.JsDocFor(n)
}
