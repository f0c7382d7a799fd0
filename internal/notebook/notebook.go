// Package notebook reads Jupyter notebook files into a minimal cell model.
//
// Only the pieces the page renderer needs are extracted: the ordered cell
// list, cell sources, and code-cell outputs. The full nbformat schema is out
// of scope.
package notebook

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// Cell types as they appear in nbformat documents.
const (
	CellMarkdown = "markdown"
	CellCode     = "code"
	CellRaw      = "raw"
)

// Output types as they appear in nbformat documents.
const (
	OutputStream        = "stream"
	OutputExecuteResult = "execute_result"
	OutputDisplayData   = "display_data"
	OutputError         = "error"
)

// Notebook is the parsed document.
type Notebook struct {
	FormatMajor int
	FormatMinor int
	Language    string
	Cells       []Cell
}

// Cell is one notebook cell with its source joined into a single string.
type Cell struct {
	Type    string
	Source  string
	Outputs []Output
}

// Output is one code-cell output. Text carries stream and error text; Data
// maps mime types to their (joined) content for rich outputs.
type Output struct {
	Type string
	Text string
	Data map[string]string
}

// ReadFile parses the notebook at path. The file handle is scoped to this
// call and released on every exit path.
func ReadFile(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read notebook: %w", err)
	}
	nb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse notebook %s: %w", path, err)
	}
	return nb, nil
}

// Parse parses raw notebook JSON. Documents older than nbformat 4 are
// rejected; newer major versions are accepted on the assumption that the
// fields read here stay stable.
func Parse(data []byte) (*Notebook, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("notebook is not valid JSON")
	}
	doc := gjson.ParseBytes(data)

	major := doc.Get("nbformat")
	if !major.Exists() {
		return nil, fmt.Errorf("notebook has no nbformat version")
	}
	if major.Int() < 4 {
		return nil, fmt.Errorf("unsupported nbformat version %d (need 4 or later)", major.Int())
	}

	nb := &Notebook{
		FormatMajor: int(major.Int()),
		FormatMinor: int(doc.Get("nbformat_minor").Int()),
		Language:    doc.Get("metadata.kernelspec.language").String(),
	}

	for _, cell := range doc.Get("cells").Array() {
		c := Cell{
			Type:   cell.Get("cell_type").String(),
			Source: joinedText(cell.Get("source")),
		}
		if c.Type == CellCode {
			for _, out := range cell.Get("outputs").Array() {
				c.Outputs = append(c.Outputs, parseOutput(out))
			}
		}
		nb.Cells = append(nb.Cells, c)
	}
	return nb, nil
}

func parseOutput(out gjson.Result) Output {
	o := Output{Type: out.Get("output_type").String()}
	switch o.Type {
	case OutputStream:
		o.Text = joinedText(out.Get("text"))
	case OutputError:
		o.Text = out.Get("ename").String() + ": " + out.Get("evalue").String()
		if tb := out.Get("traceback"); tb.IsArray() {
			lines := make([]string, 0, len(tb.Array()))
			for _, l := range tb.Array() {
				lines = append(lines, l.String())
			}
			o.Text += "\n" + strings.Join(lines, "\n")
		}
	case OutputExecuteResult, OutputDisplayData:
		o.Data = map[string]string{}
		out.Get("data").ForEach(func(mime, value gjson.Result) bool {
			o.Data[mime.String()] = joinedText(value)
			return true
		})
	}
	return o
}

// joinedText flattens nbformat's string-or-string-list convention.
func joinedText(v gjson.Result) string {
	if v.IsArray() {
		var b strings.Builder
		for _, part := range v.Array() {
			b.WriteString(part.String())
		}
		return b.String()
	}
	return v.String()
}
