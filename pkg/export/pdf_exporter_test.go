package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporterRenderSmoke(t *testing.T) {
	data := Dataset{
		Headers: []string{"Day", "Period 1", "Period 2"},
		Rows: []map[string]string{
			{"Day": "Monday", "Period 1": "CS201 @ r1", "Period 2": "CS201 @ r1"},
		},
	}

	payload, err := NewPDFExporter().Render(data, "Timetable CSE-3A")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
	assert.Greater(t, len(payload), 500)
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "empty")
	require.Error(t, err)
}

func TestColumnWidthsPinDayColumn(t *testing.T) {
	widths := columnWidths([]string{"Day", "Period 1", "Period 2"})
	require.Len(t, widths, 3)
	assert.Equal(t, pdfDayColWidth, widths[0])
	assert.Equal(t, widths[1], widths[2])
	assert.InDelta(t, pdfPageWidth-2*pdfMargin, widths[0]+widths[1]+widths[2], 0.001)
}
