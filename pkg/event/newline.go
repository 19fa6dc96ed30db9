package event

import "bytes"

// The wire format accepts three line terminators: CRLF, a lone CR and a
// lone LF. Splitting and stripping treat all three identically so a
// payload written on any platform produces the same frame.

// splitLines breaks value into its lines. The scan is byte-wise, which
// is safe on UTF-8 input: multi-byte runes never contain CR or LF.
// An empty value yields a single empty line.
func splitLines(value []byte) [][]byte {
	lines := make([][]byte, 0, 1)
	start := 0
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\r':
			lines = append(lines, value[start:i])
			if i+1 < len(value) && value[i+1] == '\n' {
				i++
			}
			start = i + 1
		case '\n':
			lines = append(lines, value[start:i])
			start = i + 1
		}
	}
	return append(lines, value[start:])
}

// stripNewlines deletes every CR and LF from value. Single-token fields
// such as the event id must never span lines, and a split would change
// their meaning, so the terminators are removed instead.
func stripNewlines(value []byte) []byte {
	if bytes.IndexByte(value, '\r') < 0 && bytes.IndexByte(value, '\n') < 0 {
		return value
	}
	out := make([]byte, 0, len(value))
	for _, c := range value {
		if c != '\r' && c != '\n' {
			out = append(out, c)
		}
	}
	return out
}
