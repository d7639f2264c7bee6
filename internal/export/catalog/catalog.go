// Package catalog holds the static, ordered registry of exportable bundles.
package catalog

// OutputKind is the artifact family a bundle encodes to.
type OutputKind string

const (
	KindTabular OutputKind = "tabular"
	KindArchive OutputKind = "archive"
	KindReport  OutputKind = "report"
)

// Extension returns the file extension used for artifacts of this kind.
func (k OutputKind) Extension() string {
	switch k {
	case KindArchive:
		return "zip"
	case KindReport:
		return "pdf"
	default:
		return "csv"
	}
}

// ContentType returns the MIME type of artifacts of this kind.
func (k OutputKind) ContentType() string {
	switch k {
	case KindArchive:
		return "application/zip"
	case KindReport:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Column declares one output column of a tabular bundle. Keys are candidate
// field names tried in order; a dotted key descends into nested objects.
type Column struct {
	Header string   `json:"header"`
	Keys   []string `json:"keys"`
}

// BundleDescriptor describes one independently exportable bundle.
type BundleDescriptor struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Kind         OutputKind `json:"kind"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	Columns      []Column   `json:"columns,omitempty"`
	SizeEstimate string     `json:"size_estimate"`
}

// Headers returns the declared column headers in order.
func (d BundleDescriptor) Headers() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Header
	}
	return out
}

// Catalog is an immutable ordered set of bundle descriptors.
type Catalog struct {
	bundles []BundleDescriptor
	index   map[string]int
}

// New builds a catalog from descriptors in the given order. Later duplicates
// of an id are ignored.
func New(bundles ...BundleDescriptor) *Catalog {
	c := &Catalog{index: make(map[string]int, len(bundles))}
	for _, b := range bundles {
		if _, dup := c.index[b.ID]; dup {
			continue
		}
		c.index[b.ID] = len(c.bundles)
		c.bundles = append(c.bundles, b)
	}
	return c
}

// Lookup returns the descriptor for id.
func (c *Catalog) Lookup(id string) (BundleDescriptor, bool) {
	i, ok := c.index[id]
	if !ok {
		return BundleDescriptor{}, false
	}
	return c.bundles[i], true
}

// All returns every descriptor in catalog order.
func (c *Catalog) All() []BundleDescriptor {
	out := make([]BundleDescriptor, len(c.bundles))
	copy(out, c.bundles)
	return out
}

// IDs returns every bundle id in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.bundles))
	for i, b := range c.bundles {
		out[i] = b.ID
	}
	return out
}

// Select resolves a caller's selection. Unknown ids are dropped, repeated ids
// collapse to their first occurrence, and selection order is kept.
func (c *Catalog) Select(ids []string) []BundleDescriptor {
	seen := make(map[string]bool, len(ids))
	out := make([]BundleDescriptor, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		b, ok := c.Lookup(id)
		if !ok {
			continue
		}
		seen[id] = true
		out = append(out, b)
	}
	return out
}
