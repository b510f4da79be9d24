package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statement() Dataset {
	return Dataset{
		Headers: []string{"Date", "Type", "Amount", "Description"},
		Rows: []map[string]string{
			{"Date": "2024-05-01", "Type": "earn", "Amount": "+20", "Description": "Taught Go basics"},
			{"Date": "2024-05-02", "Type": "spend", "Amount": "-15", "Description": "Booked Spanish, \"A1\""},
		},
		Summary: []string{"Total earned: 20", "Total spent: 15"},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(statement())
	require.NoError(t, err)

	expected := "Date,Type,Amount,Description\n" +
		"2024-05-01,earn,+20,Taught Go basics\n" +
		"2024-05-02,spend,-15,\"Booked Spanish, \"\"A1\"\"\"\n" +
		"\n" +
		"Total earned: 20\n" +
		"Total spent: 15\n"
	assert.Equal(t, expected, string(out))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)

	_, err = NewPDFExporter().Render(Dataset{}, "Wallet")
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := &PDFExporter{Widths: []float64{30, 25, 25, 110}}
	out, err := exporter.Render(statement(), "CircleEd wallet statement")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
