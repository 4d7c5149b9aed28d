package route

import "fmt"

// SpecificityKey orders routes for matching. Fewer captures rank first; among
// equal capture counts, fewer untyped captures rank first.
type SpecificityKey struct {
	Captures int
	Untyped  int
}

// Less reports whether k sorts strictly before o.
func (k SpecificityKey) Less(o SpecificityKey) bool {
	if k.Captures != o.Captures {
		return k.Captures < o.Captures
	}
	return k.Untyped < o.Untyped
}

func (k SpecificityKey) String() string {
	return fmt.Sprintf("(%d,%d)", k.Captures, k.Untyped)
}
