package types

import "weblint/internal/syntax"

// TypeOf infers the type of an expression. Misses return Unknown.
func (r *Resolver) TypeOf(el syntax.Element) ResolvedTypeID {
	if el == nil {
		return r.global.Unknown
	}
	return r.infer(el, false)
}

func (r *Resolver) infer(el syntax.Element, module bool) ResolvedTypeID {
	switch e := el.(type) {
	case *syntax.Token:
		return r.inferToken(e)
	case *syntax.Node:
		if t, ok := r.exprs[e.ID()]; ok {
			return t
		}
		t := r.inferNode(e, module)
		r.exprs[e.ID()] = t
		return t
	}
	return r.global.Unknown
}

func (r *Resolver) inferToken(tok *syntax.Token) ResolvedTypeID {
	switch tok.Kind() {
	case "number":
		return r.global.Number
	case "string", "template_string":
		return r.global.String
	case "regex":
		return r.global.RegExp
	case "true", "false":
		return r.global.Boolean
	case "null":
		return r.global.Null
	case "undefined":
		return r.global.Undefined
	case "identifier", "shorthand_property_identifier":
		if ref, ok := r.model.ReferenceOf(tok); ok && ref.Resolved() {
			return r.TypeOfBinding(ref.Binding)
		}
		switch tok.Text() {
		case "undefined":
			return r.global.Undefined
		case "NaN", "Infinity":
			return r.global.Number
		}
	}
	return r.global.Unknown
}

func (r *Resolver) inferNode(n *syntax.Node, module bool) ResolvedTypeID {
	g := r.global
	switch n.Kind() {
	case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
		if c := firstOperand(n); c != nil {
			return r.infer(c, module)
		}
	case "array":
		return g.Array
	case "object":
		return g.Object
	case "template_string", "string":
		return g.String
	case "arrow_function", "function_expression", "function", "generator_function":
		return r.functionType(n, module)
	case "class":
		return g.Function
	case "await_expression":
		if c := firstOperand(n); c != nil {
			t := r.infer(c, module)
			if r.Kind(t) == KindPromise {
				return r.Resolve(t).Elem
			}
			return t
		}
	case "new_expression":
		switch n.SlotText("constructor") {
		case "Promise":
			return g.Promise
		case "RegExp":
			return g.RegExp
		case "Array":
			return g.Array
		}
		return g.Object
	case "call_expression":
		return r.callType(n, module)
	case "unary_expression":
		switch n.SlotText("operator") {
		case "typeof":
			return g.TypeofUnion
		case "!":
			return g.Boolean
		case "-", "+", "~":
			return g.Number
		case "void":
			return g.Undefined
		}
	case "binary_expression":
		return r.binaryType(n, module)
	case "ternary_expression":
		c, okc := n.Slot("consequence")
		a, oka := n.Slot("alternative")
		if okc && oka {
			return r.union(r.infer(c, module), r.infer(a, module))
		}
	case "assignment_expression":
		if v, ok := n.Slot("right"); ok {
			return r.infer(v, module)
		}
	case "sequence_expression":
		ch := n.Children()
		if len(ch) > 0 {
			return r.infer(ch[len(ch)-1], module)
		}
	}
	return g.Unknown
}

func firstOperand(n *syntax.Node) syntax.Element {
	for _, c := range n.Children() {
		switch c.Kind() {
		case "(", ")", "await", "as", "satisfies", "!":
			continue
		}
		return c
	}
	return nil
}

var promiseStatics = map[string]bool{
	"all": true, "allSettled": true, "any": true, "race": true, "resolve": true, "reject": true,
}

var arrayReturning = map[string]bool{
	"map": true, "filter": true, "slice": true, "concat": true, "flat": true, "flatMap": true,
	"toSorted": true, "toReversed": true, "toSpliced": true,
}

func (r *Resolver) callType(call *syntax.Node, module bool) ResolvedTypeID {
	g := r.global
	fn, ok := call.Slot("function")
	if !ok {
		return g.Unknown
	}
	if tok, ok := fn.(*syntax.Token); ok && tok.Kind() == "identifier" {
		if ref, ok := r.model.ReferenceOf(tok); ok && ref.Resolved() {
			if t := r.Resolve(r.TypeOfBinding(ref.Binding)); t.Kind == KindFunction {
				return t.Elem
			}
			return g.Unknown
		}
		switch tok.Text() {
		case "fetch":
			return g.Promise
		case "String":
			return g.String
		case "Number", "parseInt", "parseFloat":
			return g.Number
		case "Boolean", "isNaN", "isFinite":
			return g.Boolean
		case "BigInt":
			return g.BigInt
		case "Symbol":
			return g.Symbol
		case "Array":
			return g.Array
		}
		return g.Unknown
	}
	member, ok := fn.(*syntax.Node)
	if !ok || member.Kind() != "member_expression" {
		return g.Unknown
	}
	object, prop := member.SlotText("object"), member.SlotText("property")
	switch {
	case object == "Promise" && promiseStatics[prop]:
		return g.Promise
	case object == "Array" && (prop == "from" || prop == "of"):
		return g.Array
	case object == "JSON" && prop == "stringify":
		return g.String
	case object == "Object" && (prop == "keys" || prop == "entries" || prop == "values"):
		return g.Array
	case prop == "then" || prop == "catch" || prop == "finally":
		return g.Promise
	}
	if obj, ok := member.Slot("object"); ok && arrayReturning[prop] && r.IsArray(r.infer(obj, module)) {
		return g.Array
	}
	return g.Unknown
}

func (r *Resolver) binaryType(n *syntax.Node, module bool) ResolvedTypeID {
	g := r.global
	op := n.SlotText("operator")
	switch op {
	case "==", "!=", "===", "!==", "<", ">", "<=", ">=", "instanceof", "in":
		return g.Boolean
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		return g.Number
	case "+":
		left, lok := n.Slot("left")
		right, rok := n.Slot("right")
		if !lok || !rok {
			return g.Unknown
		}
		lt, rt := r.infer(left, module), r.infer(right, module)
		switch {
		case lt == g.String || rt == g.String:
			return g.String
		case lt == g.Number && rt == g.Number:
			return g.Number
		}
	case "&&", "||", "??":
		left, lok := n.Slot("left")
		right, rok := n.Slot("right")
		if lok && rok {
			return r.union(r.infer(left, module), r.infer(right, module))
		}
	}
	return g.Unknown
}
