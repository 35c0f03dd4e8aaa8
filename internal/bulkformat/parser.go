// Package bulkformat parses raw newline-delimited bulk input into operations.
//
// The format is one JSON action line per operation, followed by one JSON
// source line for index actions:
//
//	{"index":{"_index":"logs","_id":"1"}}
//	{"message":"hello"}
//	{"delete":{"_index":"logs","_id":"2"}}
//
// A trailing newline is optional. Blank lines between operations are ignored.
package bulkformat

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bft-labs/bulkship/internal/domain"
)

// Defaults supplies fallback values applied to actions that omit them.
type Defaults struct {
	// Index is used when an action line has no _index.
	Index string

	// Routing is used when an action line has no routing.
	Routing string
}

// actionMeta is the body of an action line.
type actionMeta struct {
	Index   string `json:"_index"`
	ID      string `json:"_id"`
	Routing string `json:"routing"`
}

// actionLine is one decoded action line. Exactly one field is set.
type actionLine struct {
	Index  *actionMeta `json:"index"`
	Delete *actionMeta `json:"delete"`
}

// Parse decodes bulk input into operations, applying defaults. If
// contentUnsafe is true the caller may reuse data after Parse returns, so
// source payloads are copied; otherwise they alias the input.
//
// Parse is all-or-nothing: any malformed line fails the whole fragment.
func Parse(data []byte, contentUnsafe bool, defaults Defaults) ([]domain.Operation, error) {
	var ops []domain.Operation

	lines := newLineReader(data)
	for {
		line, lineNo, ok := lines.next()
		if !ok {
			return ops, nil
		}

		var action actionLine
		if err := json.Unmarshal(line, &action); err != nil {
			return nil, fmt.Errorf("line %d: malformed action: %w", lineNo, err)
		}

		switch {
		case action.Index != nil:
			source, sourceNo, ok := lines.next()
			if !ok {
				return nil, fmt.Errorf("line %d: index action has no source line", lineNo)
			}
			if !json.Valid(source) {
				return nil, fmt.Errorf("line %d: malformed source", sourceNo)
			}
			if contentUnsafe {
				source = append([]byte(nil), source...)
			}
			op, err := makeOperation(domain.ActionIndex, *action.Index, source, defaults, lineNo)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)

		case action.Delete != nil:
			op, err := makeOperation(domain.ActionDelete, *action.Delete, nil, defaults, lineNo)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)

		default:
			return nil, fmt.Errorf("line %d: action must be index or delete", lineNo)
		}
	}
}

func makeOperation(kind domain.Action, meta actionMeta, source []byte, defaults Defaults, lineNo int) (domain.Operation, error) {
	if meta.Index == "" {
		meta.Index = defaults.Index
	}
	if meta.Routing == "" {
		meta.Routing = defaults.Routing
	}
	if meta.Index == "" {
		return domain.Operation{}, fmt.Errorf("line %d: no _index and no default index", lineNo)
	}
	if kind == domain.ActionDelete && meta.ID == "" {
		return domain.Operation{}, fmt.Errorf("line %d: delete action requires _id", lineNo)
	}

	return domain.Operation{
		Action:  kind,
		Index:   meta.Index,
		ID:      meta.ID,
		Routing: meta.Routing,
		Source:  source,
	}, nil
}

// lineReader iterates non-blank newline-delimited lines without copying.
// bufio.Scanner is avoided because source lines may exceed its default
// buffer limit.
type lineReader struct {
	data   []byte
	lineNo int
}

func newLineReader(data []byte) *lineReader {
	return &lineReader{data: data}
}

func (r *lineReader) next() ([]byte, int, bool) {
	for len(r.data) > 0 {
		line := r.data
		if i := bytes.IndexByte(r.data, '\n'); i >= 0 {
			line = r.data[:i]
			r.data = r.data[i+1:]
		} else {
			r.data = nil
		}
		r.lineNo++

		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			return line, r.lineNo, true
		}
	}
	return nil, r.lineNo, false
}
