// Package parse turns source text into lossless syntax trees. Concrete
// grammars come from tree-sitter; this package only converts their trees.
package parse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"weblint/internal/diag"
	"weblint/internal/source"
	"weblint/internal/syntax"
)

// ErrUnsupportedLanguage is returned for languages without a grammar.
var ErrUnsupportedLanguage = errors.New("no parser available for language")

// Result is a parsed file.
type Result struct {
	Tree        *syntax.Tree
	Diagnostics []diag.Diagnostic
}

// Supported reports whether lang can be parsed.
func Supported(lang syntax.Language) bool {
	return grammar(lang) != nil
}

func grammar(lang syntax.Language) *sitter.Language {
	switch lang {
	case syntax.LangJavaScript, syntax.LangJSX:
		return javascript.GetLanguage()
	case syntax.LangTypeScript:
		return typescript.GetLanguage()
	case syntax.LangTSX:
		return tsx.GetLanguage()
	case syntax.LangCSS:
		return css.GetLanguage()
	case syntax.LangHTML:
		return html.GetLanguage()
	}
	return nil
}

// парсеры tree-sitter не потокобезопасны: держим пул на язык
var pools sync.Map // syntax.Language -> *sync.Pool

func acquire(lang syntax.Language) *sitter.Parser {
	v, _ := pools.LoadOrStore(lang, &sync.Pool{New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(grammar(lang))
		return p
	}})
	return v.(*sync.Pool).Get().(*sitter.Parser)
}

func release(lang syntax.Language, p *sitter.Parser) {
	if v, ok := pools.Load(lang); ok {
		v.(*sync.Pool).Put(p)
	}
}

// File parses a source file with the language derived from its path.
func File(ctx context.Context, f *source.File) (*Result, error) {
	return Text(ctx, syntax.LanguageFromPath(f.Path), f.ID, string(f.Content))
}

// Text parses text as lang. Diagnostics point into file.
func Text(ctx context.Context, lang syntax.Language, file source.FileID, text string) (*Result, error) {
	if grammar(lang) == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	p := acquire(lang)
	defer release(lang, p)

	src := []byte(text)
	tsTree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tsTree.Close()

	c := converter{
		lang: lang,
		file: file,
		b:    syntax.NewBuilder(lang, text),
		src:  text,
	}
	if root := tsTree.RootNode(); root != nil {
		c.root(root)
	}
	return &Result{Tree: c.b.Finish(), Diagnostics: c.diags}, nil
}
