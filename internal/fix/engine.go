package fix

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"weblint/internal/analyzer"
	"weblint/internal/diag"
	"weblint/internal/parse"
	"weblint/internal/source"
	"weblint/internal/syntax"
	"weblint/internal/trace"
)

// ErrNoFixes is returned by Write when the result changed nothing.
var ErrNoFixes = errors.New("no applicable fixes found")

// DefaultMaxIterations bounds the analyze/apply loop.
const DefaultMaxIterations = 10

// Mode determines which actions FixAll applies.
type Mode uint8

const (
	// SafeFixes applies actions with Always applicability.
	SafeFixes Mode = iota
	// SafeAndUnsafeFixes also applies MaybeIncorrect actions.
	SafeAndUnsafeFixes
	// ApplySuppressions inserts a suppression comment for every lint
	// diagnostic instead of fixing it.
	ApplySuppressions
)

func (m Mode) String() string {
	switch m {
	case SafeAndUnsafeFixes:
		return "unsafe"
	case ApplySuppressions:
		return "suppress"
	}
	return "safe"
}

// FixInput describes one file to fix.
type FixInput struct {
	File     *source.File
	Language syntax.Language
	Settings *analyzer.Settings
	Mode     Mode
	// MaxIterations defaults to DefaultMaxIterations.
	MaxIterations int
	// SuppressionReason is written after the colon of inserted suppressions.
	SuppressionReason string
	Filter            func(rule int) bool
	Fs                afero.Fs
}

// AppliedFix records an action that made it into the output.
type AppliedFix struct {
	Rule          string
	Category      string
	Message       string
	Applicability analyzer.Applicability
	Range         syntax.TextRange
	Iteration     int
}

// SkippedFix captures an action left for a later iteration or dropped.
type SkippedFix struct {
	Rule   string
	Reason string
}

// FixResult is the outcome of FixAll. Diagnostics come from the final
// analysis of Text.
type FixResult struct {
	Text        string
	Iterations  int
	Applied     []AppliedFix
	Skipped     []SkippedFix
	Diagnostics []diag.Diagnostic
	CapReached  bool
}

// Changed reports whether Text differs from the input.
func (r *FixResult) Changed() bool { return len(r.Applied) > 0 }

// FixAll analyzes the file, applies the selected actions and repeats on the
// new text until no action applies or the iteration cap is hit.
func FixAll(ctx context.Context, in FixInput) (FixResult, error) {
	if in.File == nil || in.Settings == nil {
		return FixResult{}, fmt.Errorf("fix: file and settings are required")
	}
	maxIter := in.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	logger := log.With().Str("component", "fix").Str("path", in.File.Path).Logger()

	text := string(in.File.Content)
	res := FixResult{Text: text}
	for iter := 0; ; iter++ {
		parsed, err := parse.Text(ctx, in.Language, in.File.ID, text)
		if err != nil {
			return res, fmt.Errorf("fix %s: %w", in.File.Path, err)
		}
		file := *in.File
		file.Content = []byte(text)
		out := analyzer.Analyze(ctx, analyzer.Input{
			Tree:              parsed.Tree,
			File:              &file,
			Settings:          in.Settings,
			Unsafe:            in.Mode != SafeFixes,
			Filter:            in.Filter,
			Fs:                in.Fs,
			Suppressions:      in.Mode == ApplySuppressions,
			SuppressionReason: in.SuppressionReason,
		})
		if out.Aborted {
			return res, ctx.Err()
		}
		res.Diagnostics = append(parsed.Diagnostics, out.Diagnostics...)

		selected, skipped := selectActions(out.Actions, in.Mode)
		if len(selected) == 0 {
			break
		}
		if iter == maxIter {
			res.CapReached = true
			res.Diagnostics = append(res.Diagnostics, capDiagnostic(in.File.ID, maxIter))
			logger.Warn().Int("iterations", maxIter).Msg("fix iteration cap reached")
			break
		}

		batch := syntax.NewBatchMutation(parsed.Tree)
		for _, act := range selected {
			batch.Extend(act.Mutation)
		}
		next, err := batch.Commit()
		if err != nil {
			return res, fmt.Errorf("fix %s: %w", in.File.Path, err)
		}
		for _, act := range selected {
			res.Applied = append(res.Applied, AppliedFix{
				Rule:          act.Key(),
				Category:      act.Category.String(),
				Message:       act.Message,
				Applicability: act.Applicability,
				Range:         act.Range,
				Iteration:     iter + 1,
			})
		}
		res.Skipped = append(res.Skipped, skipped...)
		res.Iterations = iter + 1
		trace.Point(trace.FromContext(ctx), trace.ScopePhase, "fix/"+in.Mode.String(),
			fmt.Sprintf("iteration %d: %d applied", iter+1, len(selected)), trace.ParentID(ctx))
		logger.Debug().Int("iteration", iter+1).Int("applied", len(selected)).Int("skipped", len(skipped)).Msg("fix pass")
		if next == text {
			break
		}
		text = next
	}
	res.Text = text
	return res, nil
}

// selectActions keeps the applicable actions in dispatch order, dropping
// those that touch a range an earlier pick already edits.
func selectActions(actions []analyzer.Action, mode Mode) ([]analyzer.Action, []SkippedFix) {
	var selected []analyzer.Action
	var skipped []SkippedFix
	var taken []syntax.TextRange
	inserted := make(map[string]bool)
	for _, act := range actions {
		switch {
		case mode == ApplySuppressions && !act.IsSuppression():
			continue
		case mode != ApplySuppressions && act.IsSuppression():
			continue
		case mode == SafeFixes && act.Applicability != analyzer.Always:
			continue
		}
		ranges := act.Mutation.Ranges()
		if act.IsSuppression() {
			// одна строка получает один комментарий на правило
			key := fmt.Sprintf("%d/%s", act.Range.Start, act.Key())
			if inserted[key] {
				continue
			}
			inserted[key] = true
		}
		if conflictsWithExisting(taken, ranges) {
			skipped = append(skipped, SkippedFix{Rule: act.Key(), Reason: "overlaps an earlier fix"})
			continue
		}
		taken = append(taken, ranges...)
		selected = append(selected, act)
	}
	return selected, skipped
}

func conflictsWithExisting(existing, edits []syntax.TextRange) bool {
	for _, prev := range existing {
		if slices.ContainsFunc(edits, func(r syntax.TextRange) bool { return spansConflict(prev, r) }) {
			return true
		}
	}
	return false
}

// spansConflict reports whether two edit ranges overlap. Two insertions
// never conflict; an insertion conflicts with a replacement it falls
// strictly inside of.
func spansConflict(a, b syntax.TextRange) bool {
	switch {
	case a.Empty() && b.Empty():
		return false
	case a.Empty():
		return b.Start < a.Start && a.Start < b.End
	case b.Empty():
		return a.Start < b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

func capDiagnostic(file source.FileID, n int) diag.Diagnostic {
	return diag.NewWarning(diag.CatFixCapReached, source.Span{File: file}, "The fixer stopped before reaching a stable result.").
		WithAdvice(diag.LogAdvice(diag.LogInfo, fmt.Sprintf("Fixes were applied %d times; some rules keep proposing changes.", n)))
}
