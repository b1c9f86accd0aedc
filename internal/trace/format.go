package trace

import (
	"bufio"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// Format selects how events are encoded.
type Format uint8

const (
	FormatAuto   Format = iota // по расширению файла
	FormatText                 // one indented line per event
	FormatNDJSON               // one JSON object per line
	FormatChrome               // chrome://tracing document
)

var formatNames = [...]string{"auto", "text", "ndjson", "chrome"}

var formatByExt = map[string]Format{".ndjson": FormatNDJSON, ".jsonl": FormatNDJSON, ".json": FormatChrome}

func (f Format) String() string { return lookup(formatNames[:], int(f)) }

// ParseFormat accepts a format name; the empty string means auto.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatAuto, nil
	}
	return parseName[Format]("trace format", formatNames[:], s)
}

// formatFor resolves FormatAuto from the output path.
func formatFor(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	return cmp.Or(formatByExt[strings.ToLower(filepath.Ext(path))], FormatText)
}

// framing is what surrounds and separates encoded events in one document.
type framing struct {
	open, sep, close string
}

func (f Format) framing() framing {
	if f == FormatChrome {
		return framing{open: "{\"traceEvents\":[\n", sep: ",\n", close: "\n]}\n"}
	}
	return framing{}
}

// FormatEvent encodes one event without framing.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		data, _ := json.Marshal(ev.record())
		return append(data, '\n')
	case FormatChrome:
		data, _ := json.Marshal(ev.chrome())
		return data
	}
	return ev.appendText(nil)
}

// writeEvents writes events as one framed document.
func writeEvents(w io.Writer, events []Event, format Format) error {
	fr := format.framing()
	bw := bufio.NewWriter(w)
	bw.WriteString(fr.open)
	for i := range events {
		if i > 0 {
			bw.WriteString(fr.sep)
		}
		bw.Write(FormatEvent(&events[i], format))
	}
	bw.WriteString(fr.close)
	return bw.Flush()
}

type record struct {
	Seq    uint64            `json:"seq"`
	Time   string            `json:"time"`
	Kind   string            `json:"kind"`
	Scope  string            `json:"scope"`
	Name   string            `json:"name"`
	Span   uint64            `json:"span_id,omitempty"`
	Parent uint64            `json:"parent_id,omitempty"`
	GID    uint64            `json:"gid,omitempty"`
	Detail string            `json:"detail,omitempty"`
	Extra  map[string]string `json:"extra,omitempty"`
}

func (ev *Event) record() record {
	return record{
		Seq:    ev.Seq,
		Time:   ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Kind:   ev.Kind.String(),
		Scope:  ev.Scope.String(),
		Name:   ev.Name,
		Span:   ev.SpanID,
		Parent: ev.ParentID,
		GID:    ev.GID,
		Detail: ev.Detail,
		Extra:  ev.Extra,
	}
}

// https://docs.google.com/document/d/1CvAClvFfyA5R-PhYUmn5OOQtYMH4h6I0nSsKchNAySU
type chromeEvent struct {
	Name  string            `json:"name"`
	Cat   string            `json:"cat"`
	Ph    string            `json:"ph"`
	Ts    int64             `json:"ts"`
	Pid   int               `json:"pid"`
	Tid   uint64            `json:"tid"`
	Scope string            `json:"s,omitempty"`
	Args  map[string]string `json:"args,omitempty"`
}

var chromePhases = map[Kind]string{KindSpanBegin: "B", KindSpanEnd: "E"}

func (ev *Event) chrome() chromeEvent {
	ce := chromeEvent{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		Ph:   cmp.Or(chromePhases[ev.Kind], "i"),
		Ts:   ev.Time.UnixMicro(),
		Pid:  1,
		Tid:  ev.GID,
	}
	if ce.Ph == "i" {
		ce.Scope = "t"
	}
	if ev.Detail != "" || len(ev.Extra) > 0 {
		ce.Args = maps.Clone(ev.Extra)
		if ce.Args == nil {
			ce.Args = make(map[string]string, 1)
		}
		if ev.Detail != "" {
			ce.Args["detail"] = ev.Detail
		}
	}
	return ce
}

// appendText renders "[time] <indent><glyph> name (detail) {k=v, ...}".
func (ev *Event) appendText(b []byte) []byte {
	b = append(b, '[')
	b = ev.Time.AppendFormat(b, "15:04:05.000000")
	b = append(b, "] "...)
	for range int(ev.Scope) - int(ScopeRun) {
		b = append(b, "  "...)
	}
	if int(ev.Kind) < len(kindGlyphs) && kindGlyphs[ev.Kind] != "" {
		b = append(b, kindGlyphs[ev.Kind]...)
		b = append(b, ' ')
	}
	b = append(b, ev.Name...)
	if ev.Detail != "" {
		b = fmt.Appendf(b, " (%s)", ev.Detail)
	}
	for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
		if i == 0 {
			b = append(b, " {"...)
		} else {
			b = append(b, ", "...)
		}
		b = append(b, k...)
		b = append(b, '=')
		b = append(b, ev.Extra[k]...)
	}
	if len(ev.Extra) > 0 {
		b = append(b, '}')
	}
	return append(b, '\n')
}
