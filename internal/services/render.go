package services

import (
	"fmt"

	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// FormatTail renders a resolved tail through the reference catalog.
// Mapped positions display 1-based as "<name>:<pos+1>".
func FormatTail(res types.TailResult, refs []types.Reference) (string, error) {
	switch res.Status {
	case types.TailPosition:
		if res.RefID < 0 || int(res.RefID) >= len(refs) {
			return "", fmt.Errorf("reference id %d outside catalog of %d entries: %w", res.RefID, len(refs), types.ErrInvalidFile)
		}
		return fmt.Sprintf("%s:%d", refs[res.RefID].Name, res.Pos+1), nil
	case types.TailUnmapped:
		return "unmapped", nil
	case types.TailEmpty:
		return "no alignments", nil
	default:
		return "", fmt.Errorf("unknown tail status %d", res.Status)
	}
}

// TailReport is the machine-readable result for one file.
type TailReport struct {
	File      string `json:"file"`
	Status    string `json:"status"`
	Reference string `json:"reference,omitempty"`
	Position  int64  `json:"position,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ReportTail builds the report for one file from its resolution outcome.
func ReportTail(file string, res types.TailResult, refs []types.Reference, err error) TailReport {
	if err != nil {
		return TailReport{File: file, Status: "error", Error: err.Error()}
	}
	report := TailReport{File: file, Status: res.Status.String()}
	if res.Status == types.TailPosition {
		if res.RefID < 0 || int(res.RefID) >= len(refs) {
			return TailReport{
				File:   file,
				Status: "error",
				Error:  fmt.Sprintf("reference id %d outside catalog of %d entries", res.RefID, len(refs)),
			}
		}
		report.Reference = refs[res.RefID].Name
		report.Position = int64(res.Pos) + 1
	}
	return report
}
