package flatten

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// visitDump is the JSON form of one record in --dump-visits output.
type visitDump struct {
	ID             int    `json:"id"`
	Placeholder    string `json:"placeholder"`
	Key            string `json:"key"`
	Hint           string `json:"hint,omitzero"`
	Visits         int    `json:"visits"`
	Cyclic         bool   `json:"cyclic,omitzero"`
	OriginalLength int    `json:"originalLength"`
	Hoisted        bool   `json:"hoisted,omitzero"`
	Name           string `json:"name,omitzero"`
	Body           string `json:"body"`
}

type tableDump struct {
	Records []visitDump `json:"records"`
}

// WriteVisits writes the visit table as indented JSON. Call it after Emit so
// declared names are filled in.
func WriteVisits(w io.Writer, table *VisitTable, opts EmitOptions) error {
	out := tableDump{Records: make([]visitDump, 0, table.Len())}
	for _, r := range table.Records() {
		d := visitDump{
			ID:             r.ID,
			Placeholder:    r.Placeholder,
			Key:            r.Key,
			Hint:           r.Hint,
			Visits:         r.Visits,
			Cyclic:         r.Cyclic,
			OriginalLength: r.OriginalLength,
			Hoisted:        opts.Hoisted(r),
			Name:           r.name,
		}
		if r.Body != nil {
			d.Body = r.Body.String()
		}
		out.Records = append(out.Records, d)
	}
	if err := json.MarshalWrite(w, out, jsontext.WithIndent("  ")); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
