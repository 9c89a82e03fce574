package plan

import (
	"encoding/json"
	"errors"
	"strings"
)

// ParseError reports EXPLAIN output that could not be decoded into a plan
// tree. Callers match it with errors.As to tell malformed input apart from
// connection or execution failures.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "invalid EXPLAIN JSON: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes EXPLAIN (FORMAT JSON) output. PostgreSQL wraps the result in
// a one-element array; a bare plan object is accepted too.
func Parse(data []byte) ([]ExplainOutput, error) {
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		var single ExplainOutput
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, &ParseError{Err: err}
		}
		return []ExplainOutput{single}, nil
	}

	var plans []ExplainOutput
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(plans) == 0 {
		return nil, &ParseError{Err: errors.New("empty EXPLAIN output")}
	}
	return plans, nil
}
