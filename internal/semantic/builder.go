package semantic

import (
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"

	"weblint/internal/syntax"
)

// Options configures Build.
type Options struct {
	// Globals are names treated as declared outside the file
	// (javascript.globals plus domain globals).
	Globals []string
	// Fs and Path enable resolution of relative import specifiers.
	Fs   afero.Fs
	Path string
}

type pendingRef struct {
	tok   *syntax.Token
	scope ScopeID
	kind  RefKind
}

// Builder constructs a Model from a pre-order walk. The analyzer feeds it
// Enter/Leave events during the syntax phase; Build drives it directly.
type Builder struct {
	opts       Options
	m          *Model
	enabled    bool
	stack      []ScopeID
	skip       map[*syntax.Token]bool
	write      map[*syntax.Token]bool
	refs       []pendingRef
	exportRefs map[int]*syntax.Token
}

func NewBuilder(tree *syntax.Tree, opts Options) *Builder {
	m := &Model{
		tree:         tree,
		scopeByNode:  make(map[syntax.NodeID]ScopeID),
		bindingByTok: make(map[*syntax.Token]BindingID),
		refByTok:     make(map[*syntax.Token]ReferenceID),
		globals:      make(map[string]bool, len(opts.Globals)),
	}
	for _, g := range opts.Globals {
		m.globals[g] = true
	}
	m.scopes = append(m.scopes, Scope{ID: 0, Kind: ScopeGlobal, Parent: NoScope, names: map[string]BindingID{}})
	return &Builder{
		opts:       opts,
		m:          m,
		enabled:    tree.Language().IsJSFamily(),
		stack:      []ScopeID{0},
		skip:       make(map[*syntax.Token]bool),
		write:      make(map[*syntax.Token]bool),
		exportRefs: make(map[int]*syntax.Token),
	}
}

// Build walks tree and returns its model. Non-JS trees get an empty model
// that still carries the comment index.
func Build(tree *syntax.Tree, opts Options) *Model {
	b := NewBuilder(tree, opts)
	if b.enabled {
		for ev := range tree.Root().Preorder() {
			if ev.Kind == syntax.Enter {
				b.Enter(ev.Node)
			} else {
				b.Leave(ev.Node)
			}
		}
	}
	return b.Finish()
}

func (b *Builder) current() ScopeID { return b.stack[len(b.stack)-1] }

func (b *Builder) push(kind ScopeKind, n *syntax.Node) {
	id := ScopeID(len(b.m.scopes))
	b.m.scopes = append(b.m.scopes, Scope{
		ID:     id,
		Kind:   kind,
		Node:   n,
		Parent: b.current(),
		names:  map[string]BindingID{},
	})
	b.m.scopeByNode[n.ID()] = id
	b.stack = append(b.stack, id)
}

// functionScope is the target of var and hoisted declarations.
func (b *Builder) functionScope() ScopeID {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if k := b.m.scopes[b.stack[i]].Kind; k != ScopeBlock {
			return b.stack[i]
		}
	}
	return 0
}

func isFunctionLike(n *syntax.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case "function_declaration", "generator_function_declaration", "function_expression",
		"function", "generator_function", "arrow_function", "method_definition":
		return true
	}
	return false
}

func slotToken(n *syntax.Node, name string) *syntax.Token {
	if el, ok := n.Slot(name); ok {
		if tok, ok := el.(*syntax.Token); ok {
			return tok
		}
	}
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func insideExport(decl *syntax.Node) bool {
	for p := decl; p != nil; p = p.Parent() {
		switch p.Kind() {
		case "export_statement":
			return true
		case "program", "statement_block", "class_body":
			return false
		}
	}
	return false
}

func (b *Builder) declare(tok *syntax.Token, kind BindingKind, decl *syntax.Node, scope ScopeID, hoisted bool) {
	if tok == nil || tok.IsMissing() || tok.Text() == "" {
		return
	}
	name := tok.Text()
	s := &b.m.scopes[scope]
	if id, ok := s.names[name]; ok {
		b.m.bindingByTok[tok] = id
		return
	}
	id := BindingID(len(b.m.bindings))
	b.m.bindings = append(b.m.bindings, Binding{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Scope:    scope,
		Token:    tok,
		Decl:     decl,
		Hoisted:  hoisted,
		Exported: s.Kind == ScopeModule && insideExport(decl),
	})
	s.names[name] = id
	s.order = append(s.order, id)
	b.m.bindingByTok[tok] = id
}

// bindPattern declares every identifier of a binding pattern.
func (b *Builder) bindPattern(el syntax.Element, kind BindingKind, decl *syntax.Node, scope ScopeID, hoisted bool) {
	switch e := el.(type) {
	case *syntax.Token:
		switch e.Kind() {
		case "identifier", "shorthand_property_identifier_pattern", "type_identifier":
			b.declare(e, kind, decl, scope, hoisted)
		}
	case *syntax.Node:
		switch e.Kind() {
		case "pair_pattern":
			if v, ok := e.Slot("value"); ok {
				b.bindPattern(v, kind, decl, scope, hoisted)
			}
		case "assignment_pattern", "object_assignment_pattern":
			if l, ok := e.Slot("left"); ok {
				b.bindPattern(l, kind, decl, scope, hoisted)
			}
		case "required_parameter", "optional_parameter":
			if p, ok := e.Slot("pattern"); ok {
				b.bindPattern(p, kind, decl, scope, hoisted)
			}
		case "object_pattern", "array_pattern", "rest_pattern":
			for _, c := range e.Children() {
				b.bindPattern(c, kind, decl, scope, hoisted)
			}
		}
	}
}

// markWrites flags the identifiers of an assignment target.
func (b *Builder) markWrites(el syntax.Element) {
	switch e := el.(type) {
	case *syntax.Token:
		switch e.Kind() {
		case "identifier", "shorthand_property_identifier_pattern":
			b.write[e] = true
		}
	case *syntax.Node:
		switch e.Kind() {
		case "pair_pattern":
			if v, ok := e.Slot("value"); ok {
				b.markWrites(v)
			}
		case "assignment_pattern", "object_assignment_pattern":
			if l, ok := e.Slot("left"); ok {
				b.markWrites(l)
			}
		case "object_pattern", "array_pattern", "rest_pattern", "parenthesized_expression":
			for _, c := range e.Children() {
				b.markWrites(c)
			}
		}
	}
}

func (b *Builder) bindParams(fn *syntax.Node) {
	scope := b.current()
	if params := fn.SlotNode("parameters"); params != nil {
		for _, c := range params.Children() {
			b.bindPattern(c, BindParameter, params, scope, false)
		}
	}
	if p, ok := fn.Slot("parameter"); ok {
		b.bindPattern(p, BindParameter, fn, scope, false)
	}
}

func (b *Builder) declKind(declarator *syntax.Node) (BindingKind, ScopeID, bool) {
	p := declarator.Parent()
	if p == nil {
		return BindVar, b.current(), false
	}
	switch p.Kind() {
	case "variable_declaration":
		return BindVar, b.functionScope(), true
	case "lexical_declaration":
		if p.SlotText("kind") == "const" {
			return BindConst, b.current(), false
		}
		return BindLet, b.current(), false
	}
	return BindVar, b.current(), false
}

// Enter processes a node before its children.
func (b *Builder) Enter(n *syntax.Node) {
	if !b.enabled {
		return
	}
	outer := b.current()
	switch n.Kind() {
	case "program":
		b.push(ScopeModule, n)
	case "function_declaration", "generator_function_declaration":
		b.declare(slotToken(n, "name"), BindFunction, n, outer, true)
		b.push(ScopeFunction, n)
		b.bindParams(n)
	case "function_expression", "function", "generator_function":
		b.push(ScopeFunction, n)
		b.declare(slotToken(n, "name"), BindFunction, n, b.current(), false)
		b.bindParams(n)
	case "arrow_function", "method_definition":
		b.push(ScopeFunction, n)
		b.bindParams(n)
	case "class_declaration", "abstract_class_declaration":
		b.declare(slotToken(n, "name"), BindClass, n, outer, false)
	case "class":
		if tok := slotToken(n, "name"); tok != nil {
			b.skip[tok] = true
		}
	case "statement_block":
		if !isFunctionLike(n.Parent()) {
			b.push(ScopeBlock, n)
		}
	case "class_body", "switch_body", "for_statement":
		b.push(ScopeBlock, n)
	case "for_in_statement":
		b.push(ScopeBlock, n)
		left, ok := n.Slot("left")
		if !ok {
			break
		}
		switch n.SlotText("kind") {
		case "var":
			b.bindPattern(left, BindVar, n, b.functionScope(), true)
		case "let":
			b.bindPattern(left, BindLet, n, b.current(), false)
		case "const":
			b.bindPattern(left, BindConst, n, b.current(), false)
		default:
			b.markWrites(left)
		}
	case "catch_clause":
		b.push(ScopeBlock, n)
		if p, ok := n.Slot("parameter"); ok {
			b.bindPattern(p, BindCatch, n, b.current(), false)
		}
	case "variable_declarator":
		kind, scope, hoisted := b.declKind(n)
		if name, ok := n.Slot("name"); ok {
			b.bindPattern(name, kind, n, scope, hoisted)
		}
	case "interface_declaration", "type_alias_declaration":
		b.declare(slotToken(n, "name"), BindType, n, outer, false)
	case "enum_declaration":
		b.declare(slotToken(n, "name"), BindEnum, n, outer, false)
	case "type_parameter":
		if tok := slotToken(n, "name"); tok != nil {
			b.skip[tok] = true
		}
	case "assignment_expression", "augmented_assignment_expression":
		if l, ok := n.Slot("left"); ok {
			b.markWrites(l)
		}
	case "update_expression":
		if a, ok := n.Slot("argument"); ok {
			b.markWrites(a)
		}
	case "import_statement":
		b.importStatement(n)
	case "export_statement":
		b.exportStatement(n)
	}
	b.collectRefs(n)
}

// Leave pops the scope n opened, if any.
func (b *Builder) Leave(n *syntax.Node) {
	if !b.enabled {
		return
	}
	if id, ok := b.m.scopeByNode[n.ID()]; ok && b.current() == id {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

func (b *Builder) collectRefs(n *syntax.Node) {
	for _, c := range n.Children() {
		tok, ok := c.(*syntax.Token)
		if !ok {
			continue
		}
		switch tok.Kind() {
		case "identifier", "shorthand_property_identifier", "type_identifier":
		default:
			continue
		}
		if b.skip[tok] {
			continue
		}
		if _, declared := b.m.bindingByTok[tok]; declared {
			continue
		}
		if !isReference(n, tok) {
			continue
		}
		kind := RefRead
		if b.write[tok] {
			kind = RefWrite
		}
		b.refs = append(b.refs, pendingRef{tok: tok, scope: b.current(), kind: kind})
	}
}

func isReference(parent *syntax.Node, tok *syntax.Token) bool {
	switch parent.Kind() {
	case "jsx_opening_element", "jsx_self_closing_element":
		// <div> is an intrinsic element, <Foo> a component reference
		r, _ := utf8.DecodeRuneInString(tok.Text())
		return unicode.IsUpper(r)
	case "jsx_closing_element", "import_specifier", "namespace_import", "import_clause",
		"export_specifier", "namespace_export":
		return false
	}
	return true
}

func (b *Builder) importStatement(n *syntax.Node) {
	imp := Import{
		Specifier: unquote(n.SlotText("source")),
		Node:      n,
		Range:     n.Range(),
		TypeOnly:  n.ChildToken("type") != nil,
	}
	scope := b.current()
	add := func(tok *syntax.Token, imported string, spec *syntax.Node, typeOnly bool) {
		b.declare(tok, BindImport, n, scope, false)
		imp.Names = append(imp.Names, ImportName{
			Imported: imported,
			Local:    tok.Text(),
			Binding:  b.m.bindingByTok[tok],
			Node:     spec,
			Token:    tok,
			TypeOnly: typeOnly,
		})
	}
	if clause := n.FirstChildOfKind("import_clause"); clause != nil {
		for _, c := range clause.Children() {
			switch e := c.(type) {
			case *syntax.Token:
				if e.Kind() == "identifier" {
					add(e, "default", clause, imp.TypeOnly)
				}
			case *syntax.Node:
				switch e.Kind() {
				case "namespace_import":
					if tok := e.ChildToken("identifier"); tok != nil {
						add(tok, "*", e, imp.TypeOnly)
					}
				case "named_imports":
					for _, spec := range e.ChildNodes() {
						if spec.Kind() != "import_specifier" {
							continue
						}
						name, alias := slotToken(spec, "name"), slotToken(spec, "alias")
						if name == nil {
							continue
						}
						local := name
						if alias != nil {
							local = alias
							b.skip[name] = true
						}
						if local.Kind() != "identifier" {
							continue
						}
						add(local, unquote(name.Text()), spec, imp.TypeOnly || spec.ChildToken("type") != nil)
					}
				}
			}
		}
	}
	b.m.imports = append(b.m.imports, imp)
}

func (b *Builder) exportStatement(n *syntax.Node) {
	from := unquote(n.SlotText("source"))
	clause := n.FirstChildOfKind("export_clause")
	switch {
	case clause != nil:
		for _, spec := range clause.ChildNodes() {
			if spec.Kind() != "export_specifier" {
				continue
			}
			name, alias := slotToken(spec, "name"), slotToken(spec, "alias")
			if name == nil {
				continue
			}
			exported := unquote(name.Text())
			if alias != nil {
				exported = unquote(alias.Text())
				b.skip[alias] = true
			}
			b.skip[name] = true
			if from == "" && name.Kind() == "identifier" {
				b.exportRefs[len(b.m.exports)] = name
				b.refs = append(b.refs, pendingRef{tok: name, scope: b.current(), kind: RefRead})
			}
			b.m.exports = append(b.m.exports, Export{
				Name: exported, Local: name.Text(), From: from, Binding: -1, Node: spec,
			})
		}
	case from != "":
		name := "*"
		if ns := n.FirstChildOfKind("namespace_export"); ns != nil {
			for _, c := range ns.Children() {
				if tok, ok := c.(*syntax.Token); ok && (tok.Kind() == "identifier" || tok.Kind() == "string") {
					name = unquote(tok.Text())
				}
			}
		}
		b.m.exports = append(b.m.exports, Export{Name: name, From: from, Binding: -1, Node: n})
	case n.ChildToken("default") != nil && n.SlotNode("declaration") == nil:
		e := Export{Name: "default", Binding: -1, Node: n}
		if tok := slotToken(n, "value"); tok != nil && tok.Kind() == "identifier" {
			// resolved at Finish through the reference collectRefs records
			e.Local = tok.Text()
			b.exportRefs[len(b.m.exports)] = tok
		}
		b.m.exports = append(b.m.exports, e)
	}
}

// Finish resolves references and returns the model. The builder must not be
// used afterwards.
func (b *Builder) Finish() *Model {
	m := b.m
	for _, p := range b.refs {
		id := ReferenceID(len(m.refs))
		ref := Reference{ID: id, Token: p.tok, Kind: p.kind, Scope: p.scope, Binding: -1}
		if bd, ok := m.Lookup(p.scope, p.tok.Text()); ok {
			ref.Binding = bd.ID
			bd.refs = append(bd.refs, id)
		} else {
			m.unresolved = append(m.unresolved, id)
		}
		m.refs = append(m.refs, ref)
		m.refByTok[p.tok] = id
	}
	for i, tok := range b.exportRefs {
		if r, ok := m.ReferenceOf(tok); ok && r.Resolved() {
			m.exports[i].Binding = r.Binding
			m.bindings[r.Binding].Exported = true
		}
	}
	for i := range m.bindings {
		bd := &m.bindings[i]
		if !bd.Exported || bd.Kind == BindImport || b.exportedByClause(bd.ID) {
			continue
		}
		name := bd.Name
		if st := syntax.AncestorOfKind(bd.Decl, "export_statement"); st != nil && st.ChildToken("default") != nil {
			name = "default"
		}
		m.exports = append(m.exports, Export{Name: name, Local: bd.Name, Binding: bd.ID, Node: bd.Decl})
	}
	for i := range m.imports {
		m.imports[i].Resolved = resolveSpecifier(b.opts.Fs, b.opts.Path, m.imports[i].Specifier)
	}
	m.comments = ScanComments(m.tree)
	return m
}

func (b *Builder) exportedByClause(id BindingID) bool {
	for i := range b.exportRefs {
		if b.m.exports[i].Binding == id {
			return true
		}
	}
	return false
}
