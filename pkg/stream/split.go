package stream

import "bufio"

// SplitJSONArray returns a bufio.SplitFunc that yields one token per element
// of a top-level JSON array streamed incrementally, e.g. Google's
// streamGenerateContent body:
//
//	[{
//	  "candidates": [...]
//	}
//	,
//	{"candidates": [...]}
//	]
//
// The opening "[", the "," separators, the closing "]" and any whitespace
// between elements are consumed without producing a token. Elements may span
// lines or share a line with the brackets. At EOF an incomplete element is
// returned as-is so that decoding it reports a failure.
//
// The returned function holds state (whether the array is open) and must not
// be shared between streams.
func SplitJSONArray() bufio.SplitFunc {
	open := false

	return func(data []byte, atEOF bool) (int, []byte, error) {
		start := 0
	skip:
		for start < len(data) {
			switch c := data[start]; {
			case isJSONSpace(c), c == ',':
			case c == '[' && !open:
				open = true
			case c == ']':
				open = false
			default:
				break skip
			}
			start++
		}

		if start == len(data) {
			return start, nil, nil
		}

		n, complete := scanJSONValue(data[start:])
		switch {
		case complete && n == 0:
			// A stray closing brace: hand it to the decoder as garbage.
			return start + 1, data[start : start+1], nil
		case complete:
			return start + n, data[start : start+n], nil
		case atEOF:
			return len(data), data[start:], nil
		default:
			return start, nil, nil
		}
	}
}

// scanJSONValue reports the length of the JSON value at the start of data
// and whether it is complete. Objects, arrays and strings end at their
// closing delimiter; bare scalars end at the next separator.
func scanJSONValue(data []byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i, c := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				if depth == 0 {
					return i + 1, true
				}
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
			if depth < 0 {
				return i, true
			}
		case depth == 0 && (c == ',' || isJSONSpace(c)):
			return i, true
		}
	}

	return len(data), false
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
