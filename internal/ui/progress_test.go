package ui

import (
	"fmt"
	"strings"
	"testing"

	"weblint/internal/workspace"
)

func TestProgressCountsFinishedFiles(t *testing.T) {
	m := NewProgressModel("linting", []string{"/p/a.js", "/p/b.css", "/p/c.ts"}, nil).(*lintProgress)

	m.apply(workspace.Event{File: "/p/a.js", Phase: workspace.PhaseParsing})
	if m.rows[0].phase != workspace.PhaseParsing {
		t.Fatalf("phase = %v", m.rows[0].phase)
	}
	m.apply(workspace.Event{File: "/p/a.js", Phase: workspace.PhaseDone, Diagnostics: 2})
	m.apply(workspace.Event{File: "/p/a.js", Phase: workspace.PhaseDone, Diagnostics: 2})
	m.apply(workspace.Event{File: "/p/b.css", Phase: workspace.PhaseFailed})
	m.apply(workspace.Event{File: "/p/other.js", Phase: workspace.PhaseDone})

	if m.finished != 2 || m.failed != 1 || m.problems != 2 {
		t.Fatalf("finished=%d failed=%d problems=%d", m.finished, m.failed, m.problems)
	}
	if got := m.header(); got != "linting 2/3, 2 problems, 1 failed" {
		t.Fatalf("header = %q", got)
	}
	m.close()
	if m.rows[2].phase != workspace.PhaseSkipped {
		t.Fatalf("unfinished file = %v", m.rows[2].phase)
	}
	if view := m.View(); !strings.Contains(view, "skipped") || !strings.Contains(view, "2!") {
		t.Fatalf("view:\n%s", view)
	}
}

func TestVisibleRowsPreferBusyFiles(t *testing.T) {
	files := make([]string, 20)
	for i := range files {
		files[i] = fmt.Sprintf("/p/f%02d.js", i)
	}
	m := NewProgressModel("linting", files, nil).(*lintProgress)
	for _, f := range files[:15] {
		m.apply(workspace.Event{File: f, Phase: workspace.PhaseDone})
	}
	m.apply(workspace.Event{File: files[19], Phase: workspace.PhaseAnalyzing})

	rows := m.visible()
	if len(rows) != maxRows || rows[0].path != files[19] || rows[1].path != files[14] {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("src/components/button.tsx", 10); got != "src/com..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a.js", 10); got != "a.js" {
		t.Fatalf("truncate = %q", got)
	}
}
