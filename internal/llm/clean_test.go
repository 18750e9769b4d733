package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON_BareJSON(t *testing.T) {
	got := CleanJSON([]byte(`{"is_valid":true,"confidence_score":0.9}`))
	assert.True(t, json.Valid(got))
}

func TestCleanJSON_MarkdownCodeFence(t *testing.T) {
	got := CleanJSON([]byte("```json\n{\"is_valid\":true}\n```"))
	assert.Equal(t, `{"is_valid":true}`, string(got))
}

func TestCleanJSON_MarkdownNoLang(t *testing.T) {
	got := CleanJSON([]byte("```\n[\"Hemoglobin 10.2 g/dL (Low)\"]\n```"))
	assert.True(t, json.Valid(got))
}

func TestCleanJSON_EmptyInput(t *testing.T) {
	assert.Empty(t, CleanJSON([]byte("  \n ")))
}

func TestTrimToJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "prose wrapped object",
			in:   `Here is the result: {"summary":"ok"} hope that helps!`,
			want: `{"summary":"ok"}`,
		},
		{
			name: "prose wrapped array",
			in:   `Output: ["Hemoglobin 10.2 g/dL (Low)"]`,
			want: `["Hemoglobin 10.2 g/dL (Low)"]`,
		},
		{
			name: "array of objects keeps the array",
			in:   `sure: [{"name":"a"},{"name":"b"}]`,
			want: `[{"name":"a"},{"name":"b"}]`,
		},
		{
			name: "no json at all",
			in:   `I could not find any tests.`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(TrimToJSON([]byte(tt.in))))
		})
	}
}

func TestStripTrailingCommas(t *testing.T) {
	got := StripTrailingCommas([]byte(`{"issues_found":["a","b",],}`))
	assert.True(t, json.Valid(got), "got: %s", got)
}

func TestDecodeJSON_FullRecovery(t *testing.T) {
	type verdict struct {
		IsValid    bool    `json:"is_valid"`
		Confidence float32 `json:"confidence_score"`
	}
	raw := "Sure! Here you go:\n```json\n{\"is_valid\": true, \"confidence_score\": 0.85,}\n```\nLet me know."
	got, err := DecodeJSON[verdict]([]byte(raw))
	require.NoError(t, err)
	assert.True(t, got.IsValid)
	assert.InDelta(t, 0.85, got.Confidence, 1e-6)
}

func TestDecodeJSON_ArrayWithTrailingComma(t *testing.T) {
	got, err := DecodeJSON[[]string]([]byte("[\"Hemoglobin 10.2 g/dL (Low)\", \"WBC 11200 /uL (High)\",]"))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDecodeJSON_NoJSON(t *testing.T) {
	_, err := DecodeJSON[[]string]([]byte("nothing to see here"))
	assert.Error(t, err)
}
