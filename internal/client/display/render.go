package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Renderer turns a result into text.
type Renderer interface {
	Render(w io.Writer, result json.RawMessage) error
}

// NewRenderer returns the renderer for format; unknown formats fall back to JSON.
func NewRenderer(format string) Renderer {
	if format == FormatMarkdown {
		return MarkdownRenderer{}
	}
	return JSONRenderer{}
}

// JSONRenderer prints the result verbatim with two-space indentation.
type JSONRenderer struct{}

func (JSONRenderer) Render(w io.Writer, result json.RawMessage) error {
	pretty, err := Pretty(result)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, pretty)
	return err
}

type labeledResult struct {
	AnalysisID string          `json:"analysisId"`
	Key        string          `json:"key"`
	CreatedAt  json.RawMessage `json:"createdAt"`
	Labels     *[]struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"labels"`
}

// MarkdownRenderer prints a label table when the result carries labels and
// a JSON code block otherwise.
type MarkdownRenderer struct{}

func (MarkdownRenderer) Render(w io.Writer, result json.RawMessage) error {
	pretty, err := Pretty(result)
	if err != nil {
		return err
	}

	md := markdown.NewMarkdown(w)

	var parsed labeledResult
	if json.Unmarshal(result, &parsed) != nil || parsed.Labels == nil {
		md.CodeBlocks(markdown.SyntaxHighlightJSON, pretty)
		return md.Build()
	}

	md.H2("Analysis")
	md.PlainText("")

	var rows [][]string
	if parsed.AnalysisID != "" {
		rows = append(rows, []string{"Analysis ID", "`" + parsed.AnalysisID + "`"})
	}
	if parsed.Key != "" {
		rows = append(rows, []string{"Key", "`" + parsed.Key + "`"})
	}
	if len(parsed.CreatedAt) > 0 {
		rows = append(rows, []string{"Created", strings.Trim(string(parsed.CreatedAt), `"`)})
	}
	if len(rows) > 0 {
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	md.H2("Labels")
	md.PlainText("")
	if len(*parsed.Labels) == 0 {
		md.PlainText("No labels detected.")
		return md.Build()
	}

	labelRows := make([][]string, 0, len(*parsed.Labels))
	for _, l := range *parsed.Labels {
		labelRows = append(labelRows, []string{l.Name, strconv.FormatFloat(l.Confidence, 'f', 1, 64) + "%"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Label", "Confidence"},
		Rows:   labelRows,
	})
	return md.Build()
}
