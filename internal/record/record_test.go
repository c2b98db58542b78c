package record

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestRecordAndReadAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.jsonl")
	r, closer, err := Open(path, logrus.New())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Record("axiom", "p(a)"); err != nil {
		t.Fatal(err)
	}
	if err := r.Record("status", "Theorem"); err != nil {
		t.Fatal(err)
	}
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	events, err := ReadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Seq != 1 || events[0].Kind != "axiom" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Seq != 2 || events[1].Kind != "status" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}

func TestDiffHighlightsChangedDetail(t *testing.T) {
	from := []Event{{Seq: 1, Kind: "status", Detail: "TimeOut"}}
	to := []Event{{Seq: 1, Kind: "status", Detail: "Theorem"}}
	d := Diff(from, to)
	if !strings.Contains(d, "TimeOut") || !strings.Contains(d, "Theorem") {
		t.Fatalf("expected diff to mention both details, got %q", d)
	}
}

func TestDiffUnhighlightedForIdenticalRecordings(t *testing.T) {
	events := []Event{{Seq: 1, Kind: "axiom", Detail: "p(a)"}}
	d := Diff(events, events)
	if strings.Contains(d, "\x1b[") {
		t.Fatalf("expected no highlight escapes for identical recordings, got %q", d)
	}
}

func TestOpenRejectsMissingDirectory(t *testing.T) {
	_, _, err := Open(filepath.Join(t.TempDir(), "nonexistent-subdir", "run.jsonl"), nil)
	if err == nil {
		t.Fatal("expected an error opening a path in a missing directory")
	}
}
