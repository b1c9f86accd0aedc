package syntax

import "strings"

type TriviaKind uint8

const (
	TriviaWhitespace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	// TriviaSkipped holds source text the grammar did not attach to any token.
	TriviaSkipped
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaWhitespace:
		return "whitespace"
	case TriviaNewline:
		return "newline"
	case TriviaLineComment:
		return "line-comment"
	case TriviaBlockComment:
		return "block-comment"
	case TriviaSkipped:
		return "skipped"
	}
	return "unknown"
}

func (k TriviaKind) IsComment() bool {
	return k == TriviaLineComment || k == TriviaBlockComment
}

// Trivia is a run of whitespace or a comment attached to a token.
type Trivia struct {
	Kind  TriviaKind
	Start uint32
	Text  string
}

func (t Trivia) End() uint32 { return t.Start + uint32(len(t.Text)) }

func (t Trivia) Range() TextRange { return TextRange{t.Start, t.End()} }

// CommentBody strips comment delimiters: "// x" -> " x", "/* x */" -> " x ".
func (t Trivia) CommentBody() string {
	s := t.Text
	switch {
	case strings.HasPrefix(s, "//"):
		return s[2:]
	case strings.HasPrefix(s, "/*"):
		s = s[2:]
		return strings.TrimSuffix(s, "*/")
	case strings.HasPrefix(s, "<!--"):
		s = s[4:]
		return strings.TrimSuffix(s, "-->")
	}
	return s
}

// scanTrivia splits gap text into trivia pieces.
// - ' ', '\t', '\f', '\v', NBSP и BOM коалесцируются в один Whitespace
// - "\n", "\r\n", "\r" подряд коалесцируются в один Newline
// - //... до конца строки -> LineComment (кроме CSS и HTML)
// - /* ... */ -> BlockComment, <!-- ... --> в HTML
// - всё остальное до следующего пробела -> Skipped
func scanTrivia(lang Language, text string, base uint32) []Trivia {
	var out []Trivia
	i := 0
	for i < len(text) {
		start := i
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\f' || text[i] == '\v') {
				i++
			}
			out = append(out, Trivia{Kind: TriviaWhitespace, Start: base + uint32(start), Text: text[start:i]})
		case c == '\n' || c == '\r':
			for i < len(text) && (text[i] == '\n' || text[i] == '\r') {
				i++
			}
			out = append(out, Trivia{Kind: TriviaNewline, Start: base + uint32(start), Text: text[start:i]})
		case c == '/' && i+1 < len(text) && text[i+1] == '/' && lang != LangCSS && lang != LangHTML:
			for i < len(text) && text[i] != '\n' && text[i] != '\r' {
				i++
			}
			out = append(out, Trivia{Kind: TriviaLineComment, Start: base + uint32(start), Text: text[start:i]})
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				i = len(text)
			} else {
				i += 2 + end + 2
			}
			out = append(out, Trivia{Kind: TriviaBlockComment, Start: base + uint32(start), Text: text[start:i]})
		case lang == LangHTML && strings.HasPrefix(text[i:], "<!--"):
			end := strings.Index(text[i+4:], "-->")
			if end < 0 {
				i = len(text)
			} else {
				i += 4 + end + 3
			}
			out = append(out, Trivia{Kind: TriviaBlockComment, Start: base + uint32(start), Text: text[start:i]})
		case strings.HasPrefix(text[i:], "\u00a0") || strings.HasPrefix(text[i:], "\ufeff"):
			for i < len(text) {
				if strings.HasPrefix(text[i:], "\u00a0") {
					i += 2
				} else if strings.HasPrefix(text[i:], "\ufeff") {
					i += 3
				} else {
					break
				}
			}
			out = append(out, Trivia{Kind: TriviaWhitespace, Start: base + uint32(start), Text: text[start:i]})
		default:
			for i < len(text) && !isTriviaStart(text[i]) {
				i++
			}
			if i == start {
				i++
			}
			out = append(out, Trivia{Kind: TriviaSkipped, Start: base + uint32(start), Text: text[start:i]})
		}
	}
	return out
}

func isTriviaStart(c byte) bool {
	switch c {
	case ' ', '\t', '\f', '\v', '\n', '\r', '/':
		return true
	}
	return false
}

// splitTrailing divides the trivia between two tokens: pieces before the
// first newline trail the previous token, the rest lead the next one.
func splitTrailing(pieces []Trivia) (trailing, leading []Trivia) {
	for i, p := range pieces {
		if p.Kind == TriviaNewline || (p.Kind == TriviaBlockComment && strings.ContainsAny(p.Text, "\n\r")) {
			return pieces[:i], pieces[i:]
		}
	}
	return pieces, nil
}
