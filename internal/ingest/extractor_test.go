package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractWorkbook(t *testing.T) {
	data := buildWorkbook(t, "Sökord", [][]any{
		{"Keyword", "Position", "Search volume"},
		{"tandläkare stockholm", 3, 2400},
		{"akut tandvård", 7, 880},
	})

	tables, err := Extract("ranking.xlsx", data)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "Sökord", tables[0].Name)
	assert.Equal(t, []string{"Keyword", "Position", "Search volume"}, tables[0].Headers)
	require.Len(t, tables[0].Rows, 2)
	assert.Equal(t, "tandläkare stockholm", tables[0].Rows[0]["Keyword"])
}

func TestExtractCSV(t *testing.T) {
	data := []byte("Date,Impressions,Clicks\n2026-01-01,900,21\n2026-01-02,1200,34\n")

	tables, err := Extract("search-console.csv", data)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "search-console", tables[0].Name)
	require.Len(t, tables[0].Rows, 2)
	assert.Equal(t, "900", tables[0].Rows[0]["Impressions"])
}

func TestExtractCSVPadsShortRows(t *testing.T) {
	data := []byte("Keyword,Position,Group\nseo byrå,5\n")

	tables, err := Extract("keywords.csv", data)

	require.NoError(t, err)
	require.Len(t, tables[0].Rows, 1)
	assert.Equal(t, "", tables[0].Rows[0]["Group"])
}

func TestExtractHTML(t *testing.T) {
	data := []byte(`<html><body>
		<table>
			<caption>Kanaler</caption>
			<tr><th>Källa</th><th>Sessioner</th></tr>
			<tr><td> Organic </td><td>3 200</td></tr>
		</table>
		<table>
			<tr><th>Metric</th><th>Value</th></tr>
			<tr><td>Sessions</td><td>8000</td></tr>
		</table>
	</body></html>`)

	tables, err := Extract("export.html", data)

	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "Kanaler", tables[0].Name)
	assert.Equal(t, []string{"Källa", "Sessioner"}, tables[0].Headers)
	// Cell text is trimmed on extraction.
	assert.Equal(t, "Organic", tables[0].Rows[0]["Källa"])
	// Tables without a caption get a positional name.
	assert.Equal(t, "table-2", tables[1].Name)
}

func TestExtractPDF(t *testing.T) {
	_, err := Extract("report.pdf", []byte("%PDF-1.7"))

	assert.ErrorIs(t, err, ErrPDFNotSupported)
}

func TestExtractUnknownExtensionFallsBackToHTML(t *testing.T) {
	data := []byte(`<table><tr><th>Keyword</th></tr><tr><td>seo</td></tr></table>`)

	tables, err := Extract("export.dat", data)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "seo", tables[0].Rows[0]["Keyword"])
}

func TestExtractUndecodable(t *testing.T) {
	_, err := Extract("export.bin", []byte{0x00, 0x01, 0x02})

	assert.ErrorIs(t, err, ErrCannotDecode)
}
