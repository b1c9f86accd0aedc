package fix

import (
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/afero"
)

// Write stores the fixed text at path, keeping the file mode of the original.
func Write(fsys afero.Fs, path string, res *FixResult) error {
	if !res.Changed() {
		return ErrNoFixes
	}
	mode := os.FileMode(0o644)
	if info, err := fsys.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := afero.WriteFile(fsys, path, []byte(res.Text), mode.Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DiffStat counts changed lines of a dry run.
type DiffStat struct {
	Added   int
	Removed int
}

// diffContext is the number of unchanged lines around each hunk.
const diffContext = 3

type diffLine struct {
	op   byte // ' ', '-' или '+'
	text string
}

// Diff renders a unified patch between the original and the fixed text.
// An empty string means nothing changed.
func Diff(path, before, after string) (string, DiffStat) {
	if before == after {
		return "", DiffStat{}
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var stat DiffStat
	var all []diffLine
	for _, d := range diffs {
		op := byte(' ')
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = '+'
		case diffmatchpatch.DiffDelete:
			op = '-'
		}
		for _, l := range splitLines(d.Text) {
			all = append(all, diffLine{op: op, text: l})
			switch op {
			case '+':
				stat.Added++
			case '-':
				stat.Removed++
			}
		}
	}
	if stat.Added == 0 && stat.Removed == 0 {
		return "", stat
	}

	var sb strings.Builder
	if path != "" {
		fmt.Fprintf(&sb, "--- %s\n+++ %s\n", path, path)
	}
	writeHunks(&sb, all)
	return sb.String(), stat
}

// writeHunks groups changed lines with their context into @@ hunks.
func writeHunks(sb *strings.Builder, all []diffLine) {
	oldLine, newLine := 1, 1
	for i := 0; i < len(all); {
		if all[i].op == ' ' {
			oldLine++
			newLine++
			i++
			continue
		}
		// начало ханка: до diffContext строк контекста перед изменением
		start := max(i-diffContext, 0)
		for start < i && all[start].op != ' ' {
			start++
		}
		oldStart, newStart := oldLine-(i-start), newLine-(i-start)
		end := i
		for end < len(all) {
			if all[end].op != ' ' {
				end++
				continue
			}
			run := end
			for run < len(all) && all[run].op == ' ' {
				run++
			}
			if run == len(all) || run-end > 2*diffContext {
				end = min(end+diffContext, run)
				break
			}
			end = run
		}
		var oldCount, newCount int
		for _, l := range all[start:end] {
			if l.op != '+' {
				oldCount++
			}
			if l.op != '-' {
				newCount++
			}
		}
		fmt.Fprintf(sb, "@@ -%s +%s @@\n", hunkRange(oldStart, oldCount), hunkRange(newStart, newCount))
		for _, l := range all[start:end] {
			sb.WriteByte(l.op)
			sb.WriteString(l.text)
			if !strings.HasSuffix(l.text, "\n") {
				sb.WriteString("\n\\ No newline at end of file\n")
			}
		}
		for _, l := range all[i:end] {
			if l.op != '+' {
				oldLine++
			}
			if l.op != '-' {
				newLine++
			}
		}
		i = end
	}
}

func hunkRange(start, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", start-1)
	}
	if count == 1 {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// splitLines keeps the line terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	out := strings.SplitAfter(s, "\n")
	if out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
