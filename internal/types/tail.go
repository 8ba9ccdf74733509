package types

// TailStatus classifies the outcome of a tail resolution.
type TailStatus int

const (
	// TailPosition means the final record is mapped; RefID and Pos carry
	// its placement.
	TailPosition TailStatus = iota
	// TailUnmapped means the final record carries the unmapped sentinel.
	TailUnmapped
	// TailEmpty means the file holds a header section but no alignment
	// records.
	TailEmpty
)

// String returns the status name used in machine-readable output.
func (s TailStatus) String() string {
	switch s {
	case TailPosition:
		return "position"
	case TailUnmapped:
		return "unmapped"
	case TailEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// TailResult is the terminal output of a tail resolution. RefID and Pos
// are meaningful only when Status is TailPosition.
type TailResult struct {
	Status TailStatus
	RefID  int32
	Pos    int32
}
