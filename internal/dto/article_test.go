package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameListPatch_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		specified bool
		want      []string
	}{
		{name: "absent", body: `{}`, specified: false},
		{name: "null", body: `{"tags":null}`, specified: false},
		{name: "empty clears", body: `{"tags":[]}`, specified: true, want: []string{}},
		{name: "names", body: `{"tags":["go","web"]}`, specified: true, want: []string{"go", "web"}},
		{name: "normalized", body: `{"tags":[" go ","","go","web"]}`, specified: true, want: []string{"go", "web"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req ArticleUpdateRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			names, ok := req.Tags.Names()
			assert.Equal(t, tt.specified, ok)
			if tt.specified {
				assert.Equal(t, tt.want, names)
			}
			_, catOK := req.Categories.Names()
			assert.False(t, catOK)
		})
	}
}

func TestNameListPatch_RejectsNonArray(t *testing.T) {
	t.Parallel()
	var req ArticleUpdateRequest
	assert.Error(t, json.Unmarshal([]byte(`{"tags":"go"}`), &req))
}

func TestNameListPatch_MarshalJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Unspecified())
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(b))

	b, err = json.Marshal(ReplaceWith())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))

	b, err = json.Marshal(ReplaceWith("a", "b"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(b))
}
