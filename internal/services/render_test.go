package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-bamtail/internal/types"
)

func TestFormatTailPosition(t *testing.T) {
	res := types.TailResult{Status: types.TailPosition, RefID: 1, Pos: 99}

	out, err := FormatTail(res, testRefs)
	require.NoError(t, err)
	// Display positions are 1-based.
	assert.Equal(t, "chr2:100", out)
}

func TestFormatTailUnmapped(t *testing.T) {
	out, err := FormatTail(types.TailResult{Status: types.TailUnmapped}, testRefs)
	require.NoError(t, err)
	assert.Equal(t, "unmapped", out)
}

func TestFormatTailEmpty(t *testing.T) {
	out, err := FormatTail(types.TailResult{Status: types.TailEmpty}, nil)
	require.NoError(t, err)
	assert.Equal(t, "no alignments", out)
}

func TestFormatTailRefIDOutsideCatalog(t *testing.T) {
	res := types.TailResult{Status: types.TailPosition, RefID: 7, Pos: 10}

	_, err := FormatTail(res, testRefs)
	assert.ErrorIs(t, err, types.ErrInvalidFile)
}

func TestReportTailPosition(t *testing.T) {
	res := types.TailResult{Status: types.TailPosition, RefID: 0, Pos: 41}

	report := ReportTail("sample.bam", res, testRefs, nil)
	assert.Equal(t, "sample.bam", report.File)
	assert.Equal(t, "position", report.Status)
	assert.Equal(t, "chr1", report.Reference)
	assert.Equal(t, int64(42), report.Position)
	assert.Empty(t, report.Error)
}

func TestReportTailUnmapped(t *testing.T) {
	report := ReportTail("sample.bam", types.TailResult{Status: types.TailUnmapped}, testRefs, nil)
	assert.Equal(t, "unmapped", report.Status)
	assert.Empty(t, report.Reference)
	assert.Zero(t, report.Position)
}

func TestReportTailError(t *testing.T) {
	report := ReportTail("broken.bam", types.TailResult{}, nil, errors.New("boom"))
	assert.Equal(t, "error", report.Status)
	assert.Equal(t, "boom", report.Error)
}

func TestReportTailRefIDOutsideCatalog(t *testing.T) {
	res := types.TailResult{Status: types.TailPosition, RefID: 9, Pos: 1}

	report := ReportTail("sample.bam", res, testRefs, nil)
	assert.Equal(t, "error", report.Status)
	assert.NotEmpty(t, report.Error)
}
