package engine

import (
	"database/sql"
	"fmt"
	"sort"
)

// Direction tells whether a parameter feeds the statement or receives a
// value from it.
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
)

// Param is the canonical parameter shape. Every caller-facing form is
// converted to this before it reaches a command.
type Param struct {
	Name      string
	Value     any
	Direction Direction
}

// ParamsFromPairs converts the flat pair form ([ [name, value], ... ]) into
// the canonical list. Names must be strings; direction defaults to input.
func ParamsFromPairs(pairs [][2]any) ([]Param, error) {
	params := make([]Param, 0, len(pairs))
	for i, pair := range pairs {
		name, ok := pair[0].(string)
		if !ok {
			return nil, fmt.Errorf("parameter %d: name is %T, want string", i, pair[0])
		}
		params = append(params, Param{Name: name, Value: pair[1]})
	}
	return params, nil
}

// ParamsFromMap converts the key/value form into the canonical list.
// Keys are sorted so binding order is deterministic; direction defaults
// to input.
func ParamsFromMap(kv map[string]any) []Param {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]Param, 0, len(keys))
	for _, k := range keys {
		params = append(params, Param{Name: k, Value: kv[k]})
	}
	return params
}

// bindArgs turns the canonical list into driver arguments. Input parameters
// bind by position; output parameters wrap their destination in sql.Out for
// drivers that support it.
func bindArgs(params []Param) []any {
	args := make([]any, 0, len(params))
	for _, p := range params {
		if p.Direction == DirectionOutput {
			args = append(args, sql.Out{Dest: p.Value})
			continue
		}
		args = append(args, p.Value)
	}
	return args
}
