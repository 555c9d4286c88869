package display

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_LatestOverwrites(t *testing.T) {
	m := NewMemory()

	m.SetStatus("Requesting upload URL...")
	m.SetStatus("Uploading to S3...")
	assert.Equal(t, "Uploading to S3...", m.Status())

	require.NoError(t, m.Show(json.RawMessage(`{}`)))
	assert.Equal(t, "{}", m.Output())

	require.NoError(t, m.Show(json.RawMessage(`{"labels":[{"name":"Cat","confidence":98.2}]}`)))
	assert.Equal(t, "{\n  \"labels\": [\n    {\n      \"name\": \"Cat\",\n      \"confidence\": 98.2\n    }\n  ]\n}", m.Output())

	assert.Error(t, m.Show(json.RawMessage(`{broken`)))
	assert.Contains(t, m.Output(), "Cat", "failed show leaves output untouched")
}

func TestTerminal_PlainStatusAndFlush(t *testing.T) {
	var status, out bytes.Buffer
	term := NewTerminal(&status, &out, NewRenderer(FormatJSON))

	term.SetStatus("Requesting upload URL...")
	term.SetStatus("Done. Results saved ✅")
	require.NoError(t, term.Show(json.RawMessage(`{}`)))
	require.NoError(t, term.Show(json.RawMessage(`{"a":1}`)))

	assert.Equal(t, "Requesting upload URL...\nDone. Results saved ✅\n", status.String())
	assert.Empty(t, out.String(), "output is held until Flush")

	require.NoError(t, term.Flush())
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out.String())

	require.NoError(t, term.Flush())
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out.String(), "second flush writes nothing")
}

func TestTerminal_TTYRewritesLine(t *testing.T) {
	var status, out bytes.Buffer
	term := NewTerminal(&status, &out, JSONRenderer{})
	term.tty = true

	term.SetStatus("one")
	term.SetStatus("two")
	term.Close()

	assert.Equal(t, "\r\033[2Kone\r\033[2Ktwo\n", status.String())
	assert.Empty(t, out.String())
}

func TestMarkdownRenderer_Labels(t *testing.T) {
	var buf bytes.Buffer
	err := MarkdownRenderer{}.Render(&buf, json.RawMessage(
		`{"analysisId":"a1","createdAt":"2026-01-02T03:04:05Z","labels":[{"name":"Cat","confidence":98.24},{"name":"Pet","confidence":90}]}`))
	require.NoError(t, err)

	got := buf.String()
	assert.Contains(t, got, "## Analysis")
	assert.Contains(t, got, "`a1`")
	assert.Contains(t, got, "2026-01-02T03:04:05Z")
	assert.Contains(t, got, "## Labels")
	assert.Contains(t, got, "Cat")
	assert.Contains(t, got, "98.2%")
	assert.Contains(t, got, "90.0%")
	assert.Less(t, strings.Index(got, "Cat"), strings.Index(got, "Pet"))
}

func TestMarkdownRenderer_NumericCreatedAtAndNoLabels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarkdownRenderer{}.Render(&buf, json.RawMessage(`{"createdAt":1767323045,"labels":[]}`)))

	assert.Contains(t, buf.String(), "1767323045")
	assert.Contains(t, buf.String(), "No labels detected.")
}

func TestMarkdownRenderer_FallsBackToCodeBlock(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarkdownRenderer{}.Render(&buf, json.RawMessage(`{"status":"ok"}`)))

	assert.Contains(t, buf.String(), "```json")
	assert.Contains(t, buf.String(), `"status": "ok"`)

	assert.Error(t, MarkdownRenderer{}.Render(&buf, json.RawMessage(`nope`)))
}

func TestNewRenderer(t *testing.T) {
	assert.IsType(t, MarkdownRenderer{}, NewRenderer(FormatMarkdown))
	assert.IsType(t, JSONRenderer{}, NewRenderer(FormatJSON))
	assert.IsType(t, JSONRenderer{}, NewRenderer("xml"))
}
