// Package patch applies JSON Patch (RFC 6902) documents to the map
// representation of an entity. Operations run in order against a deep copy,
// so a failing operation leaves the caller's document untouched.
package patch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Operation is a single JSON Patch operation.
type Operation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value,omitempty"`
	From  string      `json:"from,omitempty"`
}

// Parse decodes a JSON Patch document and checks the required fields.
func Parse(data []byte) ([]Operation, error) {
	var ops []Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("invalid JSON Patch document: %w", err)
	}
	for i, op := range ops {
		switch op.Op {
		case "add", "remove", "replace", "move", "copy", "test":
		default:
			return nil, fmt.Errorf("operation %d: unknown op %q", i, op.Op)
		}
		if op.Path == "" {
			return nil, fmt.Errorf("operation %d: missing path", i)
		}
		if (op.Op == "move" || op.Op == "copy") && op.From == "" {
			return nil, fmt.Errorf("operation %d: missing from", i)
		}
	}
	return ops, nil
}

// Apply runs ops in order over a deep copy of doc and returns the result.
// The input document is never modified.
func Apply(doc map[string]interface{}, ops []Operation) (map[string]interface{}, error) {
	result := deepCopy(doc)

	for i, op := range ops {
		var err error
		switch op.Op {
		case "add":
			err = applyAdd(result, op.Path, op.Value)
		case "remove":
			_, err = applyRemove(result, op.Path)
		case "replace":
			err = applyReplace(result, op.Path, op.Value)
		case "move":
			err = applyMove(result, op.From, op.Path)
		case "copy":
			err = applyCopy(result, op.From, op.Path)
		case "test":
			err = applyTest(result, op.Path, op.Value)
		default:
			err = fmt.Errorf("unknown op %q", op.Op)
		}
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s %s): %w", i, op.Op, op.Path, err)
		}
	}
	return result, nil
}

func applyAdd(doc map[string]interface{}, path string, value interface{}) error {
	tokens, err := splitPointer(path)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return fmt.Errorf("cannot replace the root document")
	}
	_, err = setAt(doc, tokens, value, true)
	return err
}

func applyReplace(doc map[string]interface{}, path string, value interface{}) error {
	tokens, err := splitPointer(path)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return fmt.Errorf("cannot replace the root document")
	}
	_, err = setAt(doc, tokens, value, false)
	return err
}

func applyRemove(doc map[string]interface{}, path string) (interface{}, error) {
	tokens, err := splitPointer(path)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("cannot remove the root document")
	}
	_, removed, err := removeAt(doc, tokens)
	return removed, err
}

func applyMove(doc map[string]interface{}, from, path string) error {
	value, err := applyRemove(doc, from)
	if err != nil {
		return fmt.Errorf("move from %s: %w", from, err)
	}
	return applyAdd(doc, path, value)
}

func applyCopy(doc map[string]interface{}, from, path string) error {
	tokens, err := splitPointer(from)
	if err != nil {
		return err
	}
	value, err := getAt(doc, tokens)
	if err != nil {
		return fmt.Errorf("copy from %s: %w", from, err)
	}
	return applyAdd(doc, path, deepCopyValue(value))
}

func applyTest(doc map[string]interface{}, path string, expected interface{}) error {
	tokens, err := splitPointer(path)
	if err != nil {
		return err
	}
	actual, err := getAt(doc, tokens)
	if err != nil {
		return err
	}

	actualJSON, _ := json.Marshal(actual)
	expectedJSON, _ := json.Marshal(expected)
	if string(actualJSON) != string(expectedJSON) {
		return fmt.Errorf("test failed: expected %s, got %s", expectedJSON, actualJSON)
	}
	return nil
}

// setAt writes value at the token path below node, inserting (add) or
// overwriting an existing location (replace). It returns the possibly
// reallocated node so array growth propagates to the parent.
func setAt(node interface{}, tokens []string, value interface{}, insert bool) (interface{}, error) {
	tok := tokens[0]
	last := len(tokens) == 1

	switch n := node.(type) {
	case map[string]interface{}:
		if last {
			if !insert {
				if _, ok := n[tok]; !ok {
					return nil, fmt.Errorf("path not found: %s", tok)
				}
			}
			n[tok] = value
			return n, nil
		}
		child, ok := n[tok]
		if !ok {
			return nil, fmt.Errorf("path not found: %s", tok)
		}
		newChild, err := setAt(child, tokens[1:], value, insert)
		if err != nil {
			return nil, err
		}
		n[tok] = newChild
		return n, nil

	case []interface{}:
		if last && insert && tok == "-" {
			return append(n, value), nil
		}
		idx, err := arrayIndex(tok, len(n), last && insert)
		if err != nil {
			return nil, err
		}
		if last {
			if insert {
				n = append(n, nil)
				copy(n[idx+1:], n[idx:])
				n[idx] = value
				return n, nil
			}
			n[idx] = value
			return n, nil
		}
		newChild, err := setAt(n[idx], tokens[1:], value, insert)
		if err != nil {
			return nil, err
		}
		n[idx] = newChild
		return n, nil

	default:
		return nil, fmt.Errorf("cannot descend into non-container at %q", tok)
	}
}

// removeAt deletes the value at the token path, returning the updated node
// and the removed value.
func removeAt(node interface{}, tokens []string) (interface{}, interface{}, error) {
	tok := tokens[0]
	last := len(tokens) == 1

	switch n := node.(type) {
	case map[string]interface{}:
		child, ok := n[tok]
		if !ok {
			return nil, nil, fmt.Errorf("path not found: %s", tok)
		}
		if last {
			delete(n, tok)
			return n, child, nil
		}
		newChild, removed, err := removeAt(child, tokens[1:])
		if err != nil {
			return nil, nil, err
		}
		n[tok] = newChild
		return n, removed, nil

	case []interface{}:
		idx, err := arrayIndex(tok, len(n), false)
		if err != nil {
			return nil, nil, err
		}
		if last {
			removed := n[idx]
			return append(n[:idx], n[idx+1:]...), removed, nil
		}
		newChild, removed, err := removeAt(n[idx], tokens[1:])
		if err != nil {
			return nil, nil, err
		}
		n[idx] = newChild
		return n, removed, nil

	default:
		return nil, nil, fmt.Errorf("cannot descend into non-container at %q", tok)
	}
}

func getAt(node interface{}, tokens []string) (interface{}, error) {
	current := node
	for _, tok := range tokens {
		switch n := current.(type) {
		case map[string]interface{}:
			child, ok := n[tok]
			if !ok {
				return nil, fmt.Errorf("path not found: %s", tok)
			}
			current = child
		case []interface{}:
			idx, err := arrayIndex(tok, len(n), false)
			if err != nil {
				return nil, err
			}
			current = n[idx]
		default:
			return nil, fmt.Errorf("cannot descend into non-container at %q", tok)
		}
	}
	return current, nil
}

// arrayIndex parses tok as an index into an array of length n. allowEnd
// permits index == n for add-style insertion at the tail.
func arrayIndex(tok string, n int, allowEnd bool) (int, error) {
	idx, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("invalid array index %q", tok)
	}
	max := n - 1
	if allowEnd {
		max = n
	}
	if idx < 0 || idx > max {
		return 0, fmt.Errorf("array index %d out of bounds", idx)
	}
	return idx, nil
}

// splitPointer parses an RFC 6901 JSON Pointer into reference tokens,
// unescaping ~1 to / and ~0 to ~.
func splitPointer(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("invalid pointer %q: must start with /", path)
	}
	parts := strings.Split(path[1:], "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		p = strings.ReplaceAll(p, "~0", "~")
		parts[i] = p
	}
	return parts, nil
}

func deepCopy(m map[string]interface{}) map[string]interface{} {
	data, _ := json.Marshal(m)
	var result map[string]interface{}
	_ = json.Unmarshal(data, &result)
	if result == nil {
		result = map[string]interface{}{}
	}
	return result
}

func deepCopyValue(v interface{}) interface{} {
	data, _ := json.Marshal(v)
	var result interface{}
	_ = json.Unmarshal(data, &result)
	return result
}
