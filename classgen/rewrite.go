package classgen

import (
	"bytes"
	"go/format"
	"sort"

	"github.com/teranos/dynasty/errors"
)

// splice is a text insertion at a byte offset of the source.
type splice struct {
	offset int
	text   string
}

// injectBaseFields returns f's source with the base field spliced into
// every inheriting struct that lacks it, or nil if nothing changed.
func (g *Generator) injectBaseFields(f *File) ([]byte, error) {
	var edits []splice
	for _, d := range f.Decls {
		if d.Kind != KindInherit || d.HasBase {
			continue
		}
		// Right after '{' so the field is first regardless of the
		// existing layout. The explicit ';' keeps one-line structs valid;
		// gofmt below drops it and fixes indentation.
		opening := g.fset.Position(d.Struct.Fields.Opening).Offset
		edits = append(edits, splice{
			offset: opening + 1,
			text:   "\n" + g.opts.BaseField + " " + d.ParentSrc + ";",
		})
	}
	if len(edits) == 0 {
		return nil, nil
	}

	// Apply back to front so earlier offsets stay valid.
	sort.Slice(edits, func(i, j int) bool { return edits[i].offset > edits[j].offset })
	out := bytes.Clone(f.Src)
	for _, e := range edits {
		out = append(out[:e.offset], append([]byte(e.text), out[e.offset:]...)...)
	}

	formatted, err := format.Source(out)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to format rewritten %s", f.Path)
	}
	return formatted, nil
}
