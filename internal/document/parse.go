package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Parse decodes a JSON document into an ordered object.
// The top-level value must be an object. Numbers are kept as json.Number.
func Parse(data []byte, file string) (*core.Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, parseError(data, file, dec, err)
	}
	obj, ok := v.(*core.Object)
	if !ok {
		return nil, &core.ParseError{File: file, Offset: 0, Line: 1, Column: 1,
			Msg: fmt.Sprintf("top-level value is %s, want object", describe(v))}
	}

	// Reject trailing content after the root object.
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected content after top-level object")
		}
		return nil, parseError(data, file, dec, err)
	}
	return obj, nil
}

// ParseNode decodes a JSON document into a layout node.
func ParseNode(data []byte, file string) (*core.Node, error) {
	obj, err := Parse(data, file)
	if err != nil {
		return nil, err
	}
	n, err := core.NodeFromObject(obj, file)
	if err != nil {
		return nil, &core.ParseError{File: file, Offset: -1, Msg: err.Error()}
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := core.NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %v, want string", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected %q", rune(delim))
	}
}

func parseError(data []byte, file string, dec *json.Decoder, err error) *core.ParseError {
	offset := dec.InputOffset()
	msg := err.Error()

	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		offset = int64(len(data))
		msg = "unexpected end of input"
	}

	line, col := position(data, offset)
	return &core.ParseError{File: file, Offset: offset, Line: line, Column: col, Msg: msg}
}

// position converts a byte offset to a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number:
		return "number"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
