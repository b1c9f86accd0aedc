package types

import (
	"strings"

	"weblint/internal/semantic"
	"weblint/internal/syntax"
)

// Resolver answers type queries for one file. Module-level bindings are
// inferred lazily on first use and cached at LevelModule; everything else is
// interned at LevelLocal. A Resolver is not safe for concurrent use.
type Resolver struct {
	model  *semantic.Model
	global *Catalog
	module *Interner
	local  *Interner

	bindings map[semantic.BindingID]ResolvedTypeID
	exprs    map[syntax.NodeID]ResolvedTypeID
	busy     map[semantic.BindingID]bool
}

func NewResolver(model *semantic.Model) *Resolver {
	return &Resolver{
		model:    model,
		global:   Global(),
		module:   NewInterner(LevelModule),
		local:    NewInterner(LevelLocal),
		bindings: make(map[semantic.BindingID]ResolvedTypeID),
		exprs:    make(map[syntax.NodeID]ResolvedTypeID),
		busy:     make(map[semantic.BindingID]bool),
	}
}

// Catalog returns the global catalog.
func (r *Resolver) Catalog() *Catalog { return r.global }

// Resolve returns the descriptor behind id. Unknown IDs resolve to Unknown.
func (r *Resolver) Resolve(id ResolvedTypeID) Type {
	var (
		t  Type
		ok bool
	)
	switch id.Level {
	case LevelGlobal:
		t, ok = r.global.Lookup(id.ID)
	case LevelModule:
		t, ok = r.module.Lookup(id.ID)
	case LevelLocal:
		t, ok = r.local.Lookup(id.ID)
	}
	if !ok {
		return Type{Kind: KindUnknown}
	}
	return t
}

func (r *Resolver) Kind(id ResolvedTypeID) Kind { return r.Resolve(id).Kind }

func (r *Resolver) IsUnknown(id ResolvedTypeID) bool { return r.Kind(id) == KindUnknown }

// IsPromise reports a promise or a union whose members are all promises.
func (r *Resolver) IsPromise(id ResolvedTypeID) bool { return r.all(id, KindPromise) }

func (r *Resolver) IsArray(id ResolvedTypeID) bool { return r.all(id, KindArray) }

func (r *Resolver) all(id ResolvedTypeID, k Kind) bool {
	t := r.Resolve(id)
	if t.Kind != KindUnion {
		return t.Kind == k
	}
	for _, m := range t.Members {
		if r.Kind(m) != k {
			return false
		}
	}
	return len(t.Members) > 0
}

// String renders id the way TypeScript would print it.
func (r *Resolver) String(id ResolvedTypeID) string {
	t := r.Resolve(id)
	switch t.Kind {
	case KindArray, KindPromise:
		return t.Kind.String() + "<" + r.String(t.Elem) + ">"
	case KindFunction:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = r.String(p)
		}
		return "(" + strings.Join(params, ", ") + ") => " + r.String(t.Elem)
	case KindUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = r.String(m)
		}
		return strings.Join(parts, " | ")
	case KindLiteral:
		return `"` + t.Literal + `"`
	}
	return t.Kind.String()
}

func (r *Resolver) interner(module bool) *Interner {
	if module {
		return r.module
	}
	return r.local
}

func (r *Resolver) promiseOf(elem ResolvedTypeID, module bool) ResolvedTypeID {
	if elem == r.global.Unknown {
		return r.global.Promise
	}
	return r.interner(module).Intern(Type{Kind: KindPromise, Elem: elem})
}

func (r *Resolver) arrayOf(elem ResolvedTypeID, module bool) ResolvedTypeID {
	if elem == r.global.Unknown {
		return r.global.Array
	}
	return r.interner(module).Intern(Type{Kind: KindArray, Elem: elem})
}

func (r *Resolver) functionReturning(ret ResolvedTypeID, module bool) ResolvedTypeID {
	if ret == r.global.Unknown {
		return r.global.Function
	}
	return r.interner(module).Intern(Type{Kind: KindFunction, Elem: ret})
}

func (r *Resolver) union(a, b ResolvedTypeID) ResolvedTypeID {
	if a == b {
		return a
	}
	if r.IsUnknown(a) || r.IsUnknown(b) {
		return r.global.Unknown
	}
	return r.local.Intern(Type{Kind: KindUnion, Members: []ResolvedTypeID{a, b}})
}

// TypeOfBinding infers the type of a declared name.
func (r *Resolver) TypeOfBinding(id semantic.BindingID) ResolvedTypeID {
	if t, ok := r.bindings[id]; ok {
		return t
	}
	b := r.model.Binding(id)
	if b == nil || r.busy[id] {
		return r.global.Unknown
	}
	r.busy[id] = true
	t := r.inferBinding(b)
	delete(r.busy, id)
	r.bindings[id] = t
	return t
}

func (r *Resolver) inferBinding(b *semantic.Binding) ResolvedTypeID {
	module := b.Scope == r.model.ModuleScope().ID
	decl := b.Decl
	switch b.Kind {
	case semantic.BindFunction:
		return r.functionType(decl, module)
	case semantic.BindClass:
		return r.global.Function
	case semantic.BindEnum:
		return r.global.Object
	case semantic.BindImport, semantic.BindType, semantic.BindCatch:
		return r.global.Unknown
	case semantic.BindParameter:
		return r.parameterType(b)
	}
	if decl == nil || decl.Kind() != "variable_declarator" {
		return r.global.Unknown
	}
	if ann, ok := decl.Slot("type"); ok {
		if t := r.annotation(ann.Text(), module); !r.IsUnknown(t) {
			return t
		}
	}
	// destructured names have no single initializer
	if name, ok := decl.Slot("name"); !ok || name != syntax.Element(b.Token) {
		return r.global.Unknown
	}
	if v, ok := decl.Slot("value"); ok {
		return r.infer(v, module)
	}
	return r.global.Undefined
}

func (r *Resolver) parameterType(b *semantic.Binding) ResolvedTypeID {
	if p := b.Token.Parent(); p != nil && (p.Kind() == "required_parameter" || p.Kind() == "optional_parameter") {
		if ann, ok := p.Slot("type"); ok {
			return r.annotation(ann.Text(), false)
		}
	}
	// callbacks passed to new Promise(...) and array methods take known shapes
	fn := syntax.AncestorOfKind(b.Token.Parent(), "arrow_function", "function_expression", "function")
	if fn == nil {
		return r.global.Unknown
	}
	idx := paramIndex(fn, b.Token)
	args := fn.Parent()
	if idx < 0 || args == nil || args.Kind() != "arguments" {
		return r.global.Unknown
	}
	var shape ResolvedTypeID
	switch call := args.Parent(); {
	case call == nil:
		return r.global.Unknown
	case call.Kind() == "new_expression" && call.SlotText("constructor") == "Promise":
		shape = r.global.PromiseExecutor
	case call.Kind() == "call_expression" && isArrayCallbackMethod(call):
		shape = r.global.ArrayCallback
	default:
		return r.global.Unknown
	}
	if ps := r.Resolve(shape).Params; idx < len(ps) {
		return ps[idx]
	}
	return r.global.Unknown
}

func paramIndex(fn *syntax.Node, tok *syntax.Token) int {
	if p, ok := fn.Slot("parameter"); ok {
		if p == syntax.Element(tok) {
			return 0
		}
		return -1
	}
	params := fn.SlotNode("parameters")
	if params == nil {
		return -1
	}
	i := 0
	for _, c := range params.Children() {
		if t, ok := c.(*syntax.Token); ok && (t.Kind() == "," || t.Kind() == "(" || t.Kind() == ")") {
			continue
		}
		if c.Range().Covers(tok.Range()) {
			return i
		}
		i++
	}
	return -1
}

var arrayCallbackMethods = map[string]bool{
	"map": true, "forEach": true, "filter": true, "some": true, "every": true,
	"find": true, "findIndex": true, "flatMap": true,
}

func isArrayCallbackMethod(call *syntax.Node) bool {
	fn := call.SlotNode("function")
	return fn != nil && fn.Kind() == "member_expression" && arrayCallbackMethods[fn.SlotText("property")]
}

func (r *Resolver) functionType(fn *syntax.Node, module bool) ResolvedTypeID {
	if fn == nil {
		return r.global.Function
	}
	if fn.ChildToken("async") != nil {
		return r.functionReturning(r.promiseOf(r.global.Unknown, module), module)
	}
	if ann, ok := fn.Slot("return_type"); ok {
		return r.functionReturning(r.annotation(ann.Text(), module), module)
	}
	if body := fn.SlotNode("body"); body != nil && body.Kind() != "statement_block" {
		return r.functionReturning(r.infer(body, module), module)
	}
	return r.functionReturning(r.returnType(fn, module), module)
}

// returnType takes the first return statement of the function body.
func (r *Resolver) returnType(fn *syntax.Node, module bool) ResolvedTypeID {
	body := fn.SlotNode("body")
	if body == nil {
		return r.global.Unknown
	}
	for n := range body.Descendants() {
		if n.Kind() != "return_statement" {
			continue
		}
		if owner := syntax.AncestorOfKind(n, "function_declaration", "generator_function_declaration",
			"function_expression", "function", "generator_function", "arrow_function", "method_definition"); owner != fn {
			continue
		}
		for _, c := range n.Children() {
			if _, ok := c.(*syntax.Node); ok {
				return r.infer(c, module)
			}
			if t, ok := c.(*syntax.Token); ok && t.Kind() != "return" && t.Kind() != ";" {
				return r.infer(c, module)
			}
		}
		return r.global.Undefined
	}
	return r.global.Undefined
}

// annotation maps a TypeScript annotation to a type. Only the shapes the
// catalog knows are recognized.
func (r *Resolver) annotation(text string, module bool) ResolvedTypeID {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), ":"))
	switch s {
	case "string":
		return r.global.String
	case "number":
		return r.global.Number
	case "boolean":
		return r.global.Boolean
	case "bigint":
		return r.global.BigInt
	case "symbol":
		return r.global.Symbol
	case "undefined", "void":
		return r.global.Undefined
	case "null":
		return r.global.Null
	case "object":
		return r.global.Object
	case "RegExp":
		return r.global.RegExp
	case "Promise":
		return r.global.Promise
	}
	switch {
	case strings.HasPrefix(s, "Promise<") && strings.HasSuffix(s, ">"):
		return r.promiseOf(r.annotation(s[len("Promise<"):len(s)-1], module), module)
	case strings.HasPrefix(s, "Array<") && strings.HasSuffix(s, ">"):
		return r.arrayOf(r.annotation(s[len("Array<"):len(s)-1], module), module)
	case strings.HasSuffix(s, "[]"):
		return r.arrayOf(r.annotation(strings.TrimSuffix(s, "[]"), module), module)
	}
	return r.global.Unknown
}
