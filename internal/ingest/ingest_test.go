package ingest

import (
	"bytes"
	"strings"
	"testing"

	"chatsentry/detector"
)

func TestReadActions(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"message","id":"m1","author":"alice","timestamp":1000,"content":"hello","menuParam":"p1"}`,
		``,
		`{"type":"message","id":"m2","author":"mod","timestamp":2000,"content":"hi","badges":["MODERATOR"],"menuParam":"p2"}`,
		`{"type":"support","author":"bob","timestamp":3000}`,
		`{"type":"retraction","author":"carol","timestamp":4000}`,
	}, "\n")

	actions, err := ReadActions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read actions: %v", err)
	}
	if len(actions) != 4 {
		t.Fatalf("expected 4 actions, got %d", len(actions))
	}

	msg, ok := actions[0].(detector.Message)
	if !ok || msg.ID != "m1" || msg.Author != "alice" || msg.TimestampMS != 1000 || msg.MenuParam != "p1" {
		t.Fatalf("unexpected first action %+v", actions[0])
	}
	badged, ok := actions[1].(detector.Message)
	if !ok || len(badged.Badges) != 1 || badged.Badges[0] != detector.BadgeModerator {
		t.Fatalf("unexpected badges %+v", actions[1])
	}
	if _, ok := actions[2].(detector.Support); !ok {
		t.Fatalf("expected support action, got %T", actions[2])
	}
	retraction, ok := actions[3].(detector.Retraction)
	if !ok || retraction.Author != "carol" || retraction.When() != 4000 {
		t.Fatalf("unexpected retraction %+v", actions[3])
	}
}

func TestReadActionsRejectsUnknownType(t *testing.T) {
	_, err := ReadActions(strings.NewReader(`{"type":"poll","author":"alice","timestamp":1}`))
	if err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestReadActionsRejectsMissingAuthor(t *testing.T) {
	_, err := ReadActions(strings.NewReader(`{"type":"message","id":"m1","timestamp":1}`))
	if err == nil {
		t.Fatalf("expected error for missing author")
	}
}

func TestWriteResults(t *testing.T) {
	results := []detector.ProcessingResult{
		{MessageID: "m1", Author: "alice", MenuParam: "p1", Reason: detector.Reason{Kind: detector.ReasonSlowMode}},
		{MessageID: "m2", Author: "bob", MenuParam: "p2", Reason: detector.Reason{Kind: detector.ReasonTooFast, AvgDelayMS: 250}},
	}

	var buf bytes.Buffer
	if err := WriteResults(&buf, results); err != nil {
		t.Fatalf("write results: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"slow_mode"`) {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], `"avgDelayMs":250`) {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}
