package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// Model responses are prose-wrapped JSON more often than not. Recovery
// contract, applied in order: strip markdown code fences, trim to the
// outermost bracketed span, strip trailing commas before a closing
// bracket or brace, then parse.

var reTrailingComma = regexp.MustCompile(`,\s*([\]}])`)

// CleanJSON strips markdown code fences and surrounding whitespace.
func CleanJSON(data []byte) []byte {
	s := bytes.TrimSpace(data)
	if len(s) == 0 {
		return s
	}
	if bytes.HasPrefix(s, []byte("```")) {
		// Strip opening fence line
		if idx := bytes.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		}
		// Strip closing fence
		if bytes.HasSuffix(s, []byte("```")) {
			s = s[:len(s)-3]
		}
		s = bytes.TrimSpace(s)
	}
	return s
}

// TrimToJSON trims to the outermost {...} or [...] span, discarding any
// surrounding prose. Whichever bracket opens first wins, so an array of
// objects is not truncated to its first element. Returns nil when no
// span exists.
func TrimToJSON(data []byte) []byte {
	objStart := bytes.IndexByte(data, '{')
	arrStart := bytes.IndexByte(data, '[')
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		if end := bytes.LastIndexByte(data, ']'); end > arrStart {
			return data[arrStart : end+1]
		}
	}
	if objStart != -1 {
		if end := bytes.LastIndexByte(data, '}'); end > objStart {
			return data[objStart : end+1]
		}
	}
	return nil
}

// StripTrailingCommas removes commas directly before a closing bracket
// or brace, a common model formatting slip.
func StripTrailingCommas(data []byte) []byte {
	return reTrailingComma.ReplaceAll(data, []byte("$1"))
}

// RecoverJSON applies the full recovery contract without parsing.
func RecoverJSON(data []byte) []byte {
	return StripTrailingCommas(TrimToJSON(CleanJSON(data)))
}

// DecodeJSON recovers and unmarshals a model response into T.
func DecodeJSON[T any](data []byte) (T, error) {
	var out T
	recovered := RecoverJSON(data)
	if len(recovered) == 0 {
		return out, fmt.Errorf("decode response: no JSON found")
	}
	if err := json.Unmarshal(recovered, &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
