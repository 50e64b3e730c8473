// Package ingest decodes newline-delimited JSON chat actions for the CLI
// and encodes processing results back out.
package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"chatsentry/detector"
)

// envelope mirrors the wire shape of one chat action line.
type envelope struct {
	Type      string           `json:"type"`
	ID        string           `json:"id"`
	Author    string           `json:"author"`
	Timestamp int64            `json:"timestamp"`
	Content   string           `json:"content"`
	Badges    []detector.Badge `json:"badges"`
	MenuParam string           `json:"menuParam"`
}

func (e envelope) action() (detector.ChatAction, error) {
	if e.Author == "" {
		return nil, fmt.Errorf("missing author")
	}
	switch e.Type {
	case "message":
		return detector.Message{
			ID:          e.ID,
			Author:      e.Author,
			TimestampMS: e.Timestamp,
			Content:     e.Content,
			Badges:      e.Badges,
			MenuParam:   e.MenuParam,
		}, nil
	case "support":
		return detector.Support{Author: e.Author, TimestampMS: e.Timestamp}, nil
	case "retraction":
		return detector.Retraction{Author: e.Author, TimestampMS: e.Timestamp}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", e.Type)
	}
}

// ReadActions decodes one action per line, skipping blank lines.
func ReadActions(r io.Reader) ([]detector.ChatAction, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var actions []detector.ChatAction
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		action, err := env.action()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		actions = append(actions, action)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return actions, nil
}

// WriteResults encodes results one JSON object per line.
func WriteResults(w io.Writer, results []detector.ProcessingResult) error {
	encoder := json.NewEncoder(w)
	for _, result := range results {
		if err := encoder.Encode(result); err != nil {
			return err
		}
	}
	return nil
}
