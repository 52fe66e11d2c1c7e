package visit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestOptionsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "advance", opts: Options{Action: ActionAdvance}},
		{name: "replace", opts: Options{Action: ActionReplace}},
		{name: "restore", opts: Options{Action: ActionRestore}},
		{
			name: "with snapshot and response",
			opts: Options{
				Action:       ActionReplace,
				SnapshotHTML: strPtr("<html><body>cached</body></html>"),
				Response:     &Response{StatusCode: 422, ResponseHTML: strPtr("<p>invalid</p>")},
			},
		},
		{
			name: "response without html",
			opts: Options{Action: ActionAdvance, Response: &Response{StatusCode: 200}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.opts.JSON()
			require.NoError(t, err)

			parsed, err := ParseOptions(data)
			require.NoError(t, err)
			assert.Equal(t, tt.opts, *parsed)
		})
	}
}

func TestParseOptionsWireShape(t *testing.T) {
	data := `{"action":"replace","snapshotHTML":null,"response":{"statusCode":200,"responseHTML":"<p>ok</p>"},"unknown":42}`

	opts, err := ParseOptions(data)
	require.NoError(t, err)

	assert.Equal(t, ActionReplace, opts.Action)
	assert.Nil(t, opts.SnapshotHTML)
	require.NotNil(t, opts.Response)
	assert.Equal(t, 200, opts.Response.StatusCode)
	assert.Equal(t, "<p>ok</p>", *opts.Response.ResponseHTML)
}

func TestParseOptionsInvalid(t *testing.T) {
	for _, data := range []string{"", "   ", "{not json", `["advance"]`} {
		opts, err := ParseOptions(data)
		assert.Error(t, err, "payload %q", data)
		assert.Nil(t, opts)
		assert.Equal(t, DefaultOptions(), OptionsFromJSON(data))
	}
}

func TestParseOptionsDefaults(t *testing.T) {
	opts, err := ParseOptions(`{}`)
	require.NoError(t, err)
	assert.Equal(t, ActionAdvance, opts.Action)

	opts, err = ParseOptions(`{"action":"teleport"}`)
	require.NoError(t, err)
	assert.Equal(t, ActionAdvance, opts.Action)

	opts, err = ParseOptions(`{"action":"RESTORE"}`)
	require.NoError(t, err)
	assert.Equal(t, ActionRestore, opts.Action)
}

func TestOptionsHTML(t *testing.T) {
	assert.Empty(t, DefaultOptions().HTML())

	withSnapshot := Options{SnapshotHTML: strPtr("snapshot")}
	assert.Equal(t, "snapshot", withSnapshot.HTML())

	withBoth := Options{
		SnapshotHTML: strPtr("snapshot"),
		Response:     &Response{StatusCode: 200, ResponseHTML: strPtr("response")},
	}
	assert.Equal(t, "response", withBoth.HTML())
}
