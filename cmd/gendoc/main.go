// Command gendoc regenerates docs/constraints.md, a reference table of the
// constraint catalog (kind, wire glyph, arity), from the sketch package's
// own constant and arity declarations. Run via `go generate`; never
// imported at runtime.
package main

import (
	"bytes"
	"io/ioutil"
	"log"
	"path/filepath"
	"text/template"

	"github.com/brepkit/kernel/sketch"
	"github.com/unixpickle/essentials"
)

//go:generate go run main.go

var allKinds = []sketch.ConstraintKind{
	sketch.Ground, sketch.Coincident, sketch.Horizontal, sketch.Vertical,
	sketch.Distance, sketch.EqualLength, sketch.Parallel, sketch.Perpendicular,
	sketch.Angle, sketch.PointOnLine, sketch.Midpoint, sketch.Tangent,
}

const docTemplate = `# Constraint catalog

Generated from the {{.pkg}} package's own constant declarations. Do not
hand-edit; run ` + "`go generate ./cmd/gendoc`" + ` instead.

| Kind | Glyph | Arity |
|------|-------|-------|
{{- range .rows}}
| {{.Kind}} | {{.Glyph}} | {{.Arity}} |
{{- end}}
`

type row struct {
	Kind  sketch.ConstraintKind
	Glyph string
	Arity int
}

func main() {
	GenerateConstraintTable()
}

// GenerateConstraintTable renders docs/constraints.md.
func GenerateConstraintTable() {
	// go generate runs this in cmd/gendoc; docs/ is at the module root.
	outPath := filepath.Join("..", "..", "docs", "constraints.md")
	log.Println("Creating", outPath, "...")

	rows := make([]row, len(allKinds))
	for i, k := range allKinds {
		rows[i] = row{Kind: k, Glyph: k.Glyph(), Arity: k.Arity()}
	}

	tmpl, err := template.New("constraints").Parse(docTemplate)
	essentials.Must(err)

	data := RenderTemplate(tmpl, map[string]interface{}{"pkg": "sketch", "rows": rows})
	essentials.Must(ioutil.WriteFile(outPath, []byte(data), 0644))
}

func RenderTemplate(t *template.Template, data interface{}) string {
	w := bytes.NewBuffer(nil)
	essentials.Must(t.Execute(w, data))
	return w.String()
}
