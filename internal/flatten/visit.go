package flatten

import "fmt"

// Record is the visit state of one distinct type key.
type Record struct {
	// ID is assigned in first-visit order, starting at 1.
	ID int
	// Key is the canonical type text used as identity.
	Key string
	// Placeholder is a synthetic name the type grammar cannot produce.
	Placeholder string
	// Hint is a readable name suggestion for a hoisted declaration.
	Hint string
	// Body is nil while the record is being expanded.
	Body *Expr
	// Visits counts the reference sites that resolved to Key.
	Visits int
	// Cyclic is set when Key is reached again while Body is still nil.
	Cyclic bool
	// OriginalLength is len(Key), the size heuristic for hoisting.
	OriginalLength int

	name string
}

// Done reports whether the record's body has been computed.
func (r *Record) Done() bool {
	return r.Body != nil
}

// Name returns the declared name assigned by the emission pass, or "" when
// the record was inlined everywhere.
func (r *Record) Name() string {
	return r.name
}

func (r *Record) setBody(e Expr) {
	if r.Body != nil {
		return
	}
	r.Body = &e
}

// VisitTable maps type keys to records for a single flattening run. It also
// owns the placeholder counter so independent runs never interfere.
type VisitTable struct {
	records map[string]*Record
	order   []*Record
	next    int
}

// NewVisitTable creates an empty table.
func NewVisitTable() *VisitTable {
	return &VisitTable{records: make(map[string]*Record)}
}

// Lookup returns the record for key.
func (t *VisitTable) Lookup(key string) (*Record, bool) {
	r, ok := t.records[key]
	return r, ok
}

// Reserve registers key with an in-progress record. The first visit counts
// as one reference. Reserving an existing key returns the existing record.
func (t *VisitTable) Reserve(key, hint string) *Record {
	if r, ok := t.records[key]; ok {
		return r
	}
	t.next++
	r := &Record{
		ID:             t.next,
		Key:            key,
		Placeholder:    fmt.Sprintf("$$$%d$$$", t.next),
		Hint:           hint,
		Visits:         1,
		OriginalLength: len(key),
	}
	t.records[key] = r
	t.order = append(t.order, r)
	return r
}

// Len returns the number of distinct keys visited.
func (t *VisitTable) Len() int {
	return len(t.order)
}

// Records returns all records in first-visit order.
func (t *VisitTable) Records() []*Record {
	return t.order
}
