package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

// reindentJSON formats a single JSON document the way json.Indent does, but
// writes strings with \uXXXX escapes decoded so Hangul labels stay readable.
// Object key order and the text of numbers are kept as received.
func reindentJSON(raw []byte, indent string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	type level struct {
		object bool
		count  int
		// a key was written and its value is next
		value bool
	}

	var (
		buf   bytes.Buffer
		stack []level
		root  bool
	)

	newline := func() {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(indent, len(stack)))
	}

	// separate writes whatever goes between the previous token and the next
	// key or value.
	separate := func() error {
		if len(stack) == 0 {
			if root {
				return errors.New("unexpected data after top-level value")
			}
			root = true
			return nil
		}
		top := &stack[len(stack)-1]
		if top.object && top.value {
			top.value = false
			return nil
		}
		if top.count > 0 {
			buf.WriteByte(',')
		}
		top.count++
		newline()
		return nil
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				if err := separate(); err != nil {
					return nil, err
				}
				buf.WriteByte(byte(d))
				stack = append(stack, level{object: d == '{'})
			case '}', ']':
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.count > 0 {
					newline()
				}
				buf.WriteByte(byte(d))
			}
			continue
		}

		isKey := len(stack) > 0 && stack[len(stack)-1].object && !stack[len(stack)-1].value
		if err := separate(); err != nil {
			return nil, err
		}

		switch v := tok.(type) {
		case string:
			if err := writeString(&buf, v); err != nil {
				return nil, err
			}
		case json.Number:
			buf.WriteString(v.String())
		case bool:
			buf.WriteString(strconv.FormatBool(v))
		case nil:
			buf.WriteString("null")
		}

		if isKey {
			buf.WriteString(": ")
			stack[len(stack)-1].value = true
		}
	}

	if !root || len(stack) > 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
