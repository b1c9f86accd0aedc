package analyzer

import (
	"fmt"
	"slices"
	"strings"

	"weblint/internal/config"
	"weblint/internal/diag"
	"weblint/internal/semantic"
	"weblint/internal/source"
	"weblint/internal/syntax"
)

const suppressionPrefix = "biome-ignore"

type suppressionKind uint8

const (
	suppressNext suppressionKind = iota
	suppressAll
	suppressStart
	suppressEnd
)

// suppression is one category of a parsed pragma comment.
type suppression struct {
	kind     suppressionKind
	category diag.Category
	// value is the optional "(...)" argument; it is recorded but every
	// value matches.
	value   string
	comment syntax.TextRange
	rng     syntax.TextRange
	used    bool
}

func (s *suppression) matches(cat diag.Category, off uint32) bool {
	if !cat.HasPrefix(s.category) {
		return false
	}
	return s.rng.Contains(off) || (s.rng.Empty() && off == s.rng.Start)
}

// suppressions indexes the pragmas of one file.
type suppressions struct {
	items []*suppression
	diags []diag.Diagnostic
}

const (
	msgMissingReason = "Suppression is missing an explanation."
	msgTopLevel      = "Top level suppressions can only be used at the beginning of the file."
	msgUnused        = "Suppression comment has no effect. Remove the suppression or make sure you are suppressing the correct rule."
)

// parseSuppressions reads every pragma comment of the file. span converts a
// tree range into a diagnostic span.
func parseSuppressions(tree *syntax.Tree, comments *semantic.Comments, reg *Registry, span spanFunc) *suppressions {
	out := &suppressions{}
	var first *syntax.Token
	if toks := tree.Tokens(); len(toks) > 0 {
		first = toks[0]
	}
	eof := uint32(len(tree.Source()))
	var open []*suppression

	for _, c := range comments.All() {
		body := strings.TrimSpace(c.Body())
		body = strings.TrimSpace(strings.TrimLeft(body, "*"))
		if !strings.HasPrefix(body, suppressionPrefix) {
			continue
		}
		rest := body[len(suppressionPrefix):]
		kind := suppressNext
		switch {
		case strings.HasPrefix(rest, "-all"):
			kind, rest = suppressAll, rest[len("-all"):]
		case strings.HasPrefix(rest, "-start"):
			kind, rest = suppressStart, rest[len("-start"):]
		case strings.HasPrefix(rest, "-end"):
			kind, rest = suppressEnd, rest[len("-end"):]
		}
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != ':' {
			// biome-ignored, biome-ignore-foo...
			continue
		}
		where := span(c.Range())

		cats, reason, hasColon := strings.Cut(rest, ":")
		if kind != suppressEnd && (!hasColon || strings.TrimSpace(reason) == "") {
			out.diags = append(out.diags, diag.NewError(diag.CatSuppressionIncorrect, where, msgMissingReason).
				WithAdvice(diag.LogAdvice(diag.LogInfo, "Add an explanation after a colon: biome-ignore <category>: <explanation>")))
			continue
		}
		fields := strings.Fields(cats)
		if len(fields) == 0 {
			out.diags = append(out.diags, diag.NewError(diag.CatSuppressionIncorrect, where, "Suppression is missing a category."))
			continue
		}
		if kind == suppressAll && (first == nil || c.Token != first || !c.Leading) {
			out.diags = append(out.diags, diag.NewError(diag.CatSuppressionIncorrect, where, msgTopLevel))
			continue
		}

		for _, f := range fields {
			cat, value := f, ""
			if i := strings.IndexByte(f, '('); i > 0 && strings.HasSuffix(f, ")") {
				cat, value = f[:i], f[i+1:len(f)-1]
			}
			if d, ok := checkCategory(reg, cat, where); !ok {
				out.diags = append(out.diags, d)
				continue
			}
			s := &suppression{kind: kind, category: diag.Category(cat), value: value, comment: c.Range()}
			switch kind {
			case suppressAll:
				s.rng = syntax.TextRange{Start: 0, End: eof + 1}
			case suppressNext:
				s.rng = claimRange(tree, c)
			case suppressStart:
				s.rng = syntax.TextRange{Start: c.Range().End, End: eof + 1}
				open = append(open, s)
			case suppressEnd:
				// innermost start with the same category
				i := len(open) - 1
				for i >= 0 && open[i].category != s.category {
					i--
				}
				if i < 0 {
					out.diags = append(out.diags, diag.NewError(diag.CatSuppressionIncorrect, where,
						fmt.Sprintf("biome-ignore-end for `%s` has no matching biome-ignore-start.", cat)))
					continue
				}
				open[i].rng.End = c.Range().Start
				open = slices.Delete(open, i, i+1)
				continue
			}
			out.items = append(out.items, s)
		}
	}
	return out
}

// checkCategory validates "lint", "lint/<group>" and "lint/<group>/<rule>"
// against the registry. Other roots are accepted as written.
func checkCategory(reg *Registry, cat string, where source.Span) (diag.Diagnostic, bool) {
	segs := strings.Split(cat, "/")
	var rc RuleCategory
	switch segs[0] {
	case "lint":
		rc = CategoryLint
	case "assist":
		rc = CategoryAssist
	case "syntax":
		return diag.Diagnostic{}, true
	default:
		msg := fmt.Sprintf("Unknown suppression category `%s`.", segs[0])
		d := diag.NewWarning(diag.CatSuppressionUnknownGrp, where, msg)
		if s, ok := config.Suggest(segs[0], []string{"lint", "assist", "syntax"}); ok {
			d = d.WithAdvice(diag.LogAdvice(diag.LogInfo, fmt.Sprintf("Did you mean `%s`?", s)))
		}
		return d, false
	}
	if len(segs) >= 2 && !slices.Contains(groupsOf(rc), segs[1]) {
		d := diag.NewWarning(diag.CatSuppressionUnknownGrp, where, fmt.Sprintf("Unknown rule group `%s`.", segs[1]))
		if s, ok := config.Suggest(segs[1], groupsOf(rc)); ok {
			d = d.WithAdvice(diag.LogAdvice(diag.LogInfo, fmt.Sprintf("Did you mean `%s`?", s)))
		}
		return d, false
	}
	if len(segs) >= 3 {
		if _, ok := reg.Index(rc, segs[1], segs[2]); !ok {
			d := diag.NewWarning(diag.CatSuppressionUnknownRule, where, fmt.Sprintf("Unknown lint rule `%s/%s`.", segs[1], segs[2]))
			if s, ok := config.Suggest(segs[2], reg.RuleNames(rc, segs[1])); ok {
				d = d.WithAdvice(diag.LogAdvice(diag.LogInfo, fmt.Sprintf("Did you mean `%s/%s`?", segs[1], s)))
			}
			return d, false
		}
	}
	if len(segs) > 3 {
		return diag.NewWarning(diag.CatSuppressionUnknownRule, where, fmt.Sprintf("Invalid suppression category `%s`.", cat)), false
	}
	return diag.Diagnostic{}, true
}

// claimRange finds what a biome-ignore comment covers: the outermost node
// starting at the token after the comment, or the rest of that line.
func claimRange(tree *syntax.Tree, c semantic.Comment) syntax.TextRange {
	target := c.Token
	if !c.Leading {
		target = target.Next()
	}
	if target == nil || target.Kind() == syntax.KindEOF {
		return syntax.TextRange{Start: c.Range().End, End: c.Range().End}
	}
	var best *syntax.Node
	for n := target.Parent(); n != nil && n != tree.Root() && n.FirstToken() == target; n = n.Parent() {
		best = n
	}
	if best != nil {
		return best.Range()
	}
	src := tree.Source()
	end := target.Range().Start
	for end < uint32(len(src)) && src[end] != '\n' && src[end] != '\r' {
		end++
	}
	return syntax.TextRange{Start: target.Range().Start, End: end}
}

// suppress reports whether d is silenced and marks the suppression used.
func (s *suppressions) suppress(cat diag.Category, off uint32) bool {
	hit := false
	for _, it := range s.items {
		if it.matches(cat, off) {
			it.used = true
			hit = true
		}
	}
	return hit
}

// unused returns a warning per suppression that silenced nothing.
func (s *suppressions) unused(span spanFunc) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, it := range s.items {
		if it.used {
			continue
		}
		d := diag.NewWarning(diag.CatSuppressionUnused, span(it.comment), msgUnused).
			WithTags(diag.TagUnnecessary)
		out = append(out, d)
	}
	return out
}

// suppressionComment renders the pragma inserted by the suppression action.
func suppressionComment(lang syntax.Language, cat diag.Category, reason string) string {
	body := suppressionPrefix + " " + string(cat) + ": " + reason
	switch lang {
	case syntax.LangCSS:
		return "/* " + body + " */"
	case syntax.LangHTML:
		return "<!-- " + body + " -->"
	}
	return "// " + body
}
