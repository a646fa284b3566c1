package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
	// MaxOffset bounds how far a caller may page into a listing.
	MaxOffset = 1 << 30
)

// Page holds normalized offset pagination inputs for repositories.
type Page struct {
	Limit  int
	Offset int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeOffset clamps negative or runaway offsets.
func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > MaxOffset {
		return MaxOffset
	}
	return offset
}

// Normalize builds a Page from raw query inputs.
func Normalize(limit, offset int) Page {
	return Page{
		Limit:  NormalizeLimit(limit),
		Offset: NormalizeOffset(offset),
	}
}
