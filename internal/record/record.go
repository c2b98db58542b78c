// Package record implements the optional JSON-lines run recorder named
// by spec.md §6's `--record path` option, plus a diff between two
// recordings for comparing runs across prover changes.
//
// Grounded on go-tony/system/logd's append-only structured log of
// operations for the recorder's shape (consulted for shape only — its
// own domain is tony's merge log, not proof search) and on
// go-tony/libdiff/string.go for the diff half, which reuses the
// teacher's own github.com/sergi/go-diff/diffmatchpatch dependency
// against each recording's rendered text form instead of tony IR nodes.
package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sirupsen/logrus"
)

// Event is a single recorded occurrence during a proof attempt: an
// axiom or conjecture loaded, a search step taken, an oracle or
// heuristic consultation, or the final status.
type Event struct {
	Seq    int    `json:"seq"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Recorder appends Events as JSON lines to an underlying file, guarded
// by a mutex since the pipeline's search/oracle/heuristic actors may
// all record concurrently.
type Recorder struct {
	mu   sync.Mutex
	w    io.Writer
	seq  int
	log  logrus.FieldLogger
}

// Open creates (or truncates) path and returns a Recorder writing to
// it; the caller is responsible for closing the returned io.Closer once
// the run completes.
func Open(path string, log logrus.FieldLogger) (*Recorder, io.Closer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("record: opening %s: %w", path, err)
	}
	return &Recorder{w: f, log: log}, f, nil
}

// Record appends one Event, numbering it sequentially.
func (r *Recorder) Record(kind, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ev := Event{Seq: r.seq, Kind: kind, Detail: detail}
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("record: marshalling event: %w", err)
	}
	if r.log != nil {
		r.log.WithFields(logrus.Fields{"seq": ev.Seq, "kind": ev.Kind}).Debug("recorded event")
	}
	_, err = fmt.Fprintf(r.w, "%s\n", line)
	return err
}

// ReadAll reads every Event from a recording file, in order.
func ReadAll(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("record: opening %s: %w", path, err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("record: parsing %s: %w", path, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("record: reading %s: %w", path, err)
	}
	return events, nil
}

func render(events []Event) string {
	var b strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&b, "%d\t%s\t%s\n", ev.Seq, ev.Kind, ev.Detail)
	}
	return b.String()
}

// Diff renders two recordings to text and returns a human-readable diff
// between them, in the style of go-tony's libdiff.DiffString: run
// diffmatchpatch's line-aware DiffMain (the recordings are naturally
// multi-line) followed by DiffCleanupSemantic, then render with
// DiffPrettyText.
func Diff(from, to []Event) string {
	dmp := diffpatch.New()
	a, b := render(from), render(to)
	diffs := dmp.DiffMain(a, b, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}
