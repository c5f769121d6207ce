package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/synlig/seo-portal-api/internal/domain"
)

func TestClassifyKeywordTable(t *testing.T) {
	table := NormalizedTable{
		Name:    "Sökord",
		Headers: []string{"Sökord", "Grupp", "Startposition", "Position", "Sökvolym"},
		Rows: []Row{
			{"Sökord": "tandläkare stockholm", "Grupp": "Tjänster", "Startposition": "14", "Position": "3", "Sökvolym": "2 400"},
			{"Sökord": "", "Grupp": "Tjänster", "Startposition": "", "Position": "", "Sökvolym": ""},
			{"Sökord": "akut tandvård", "Grupp": "", "Startposition": "ej rankad", "Position": "7,5", "Sökvolym": "880"},
		},
	}

	payload := Classify(table)

	assert.Len(t, payload.Keywords, 2)

	first := payload.Keywords[0]
	assert.Equal(t, "tandläkare stockholm", first.Keyword)
	assert.Equal(t, "Tjänster", first.Group)
	assert.Equal(t, 3.0, first.Position)
	if assert.NotNil(t, first.Baseline) {
		assert.Equal(t, 14.0, *first.Baseline)
	}
	if assert.NotNil(t, first.SearchVolume) {
		assert.Equal(t, 2400.0, *first.SearchVolume)
	}

	second := payload.Keywords[1]
	assert.Equal(t, "akut tandvård", second.Keyword)
	assert.Equal(t, 7.5, second.Position)
	// "ej rankad" is not a number, so the baseline stays unset.
	assert.Nil(t, second.Baseline)
}

func TestClassifyTimelineTable(t *testing.T) {
	table := NormalizedTable{
		Name:    "Search Console",
		Headers: []string{"Date", "Impressions", "Clicks"},
		Rows: []Row{
			{"Date": "2026-01-03", "Impressions": "1200", "Clicks": "34"},
			{"Date": "2026-01-01", "Impressions": "900", "Clicks": "21"},
			{"Date": "totalt", "Impressions": "2100", "Clicks": "55"},
		},
	}

	payload := Classify(table)

	// The summary row has no parseable date and is dropped; the rest sort by date.
	assert.Len(t, payload.TrafficTimeline, 2)
	assert.Equal(t, "2026-01-01", payload.TrafficTimeline[0].Date)
	assert.Equal(t, "2026-01-03", payload.TrafficTimeline[1].Date)
	assert.Equal(t, 900.0, payload.TrafficTimeline[0].Impressions)
	if assert.NotNil(t, payload.TrafficTimeline[0].Clicks) {
		assert.Equal(t, 21.0, *payload.TrafficTimeline[0].Clicks)
	}
}

func TestClassifyChannelTable(t *testing.T) {
	tests := []struct {
		name     string
		table    NormalizedTable
		channels int
	}{
		{
			name: "medium plus sessions is a channel breakdown",
			table: NormalizedTable{
				Headers: []string{"Källa", "Sessioner", "Konverteringar"},
				Rows: []Row{
					{"Källa": "Organic", "Sessioner": "3 200", "Konverteringar": "48"},
					{"Källa": "Direct", "Sessioner": "1 100", "Konverteringar": "12"},
					{"Källa": "", "Sessioner": "99", "Konverteringar": "0"},
				},
			},
			channels: 2,
		},
		{
			name: "a date column disqualifies the table as a channel breakdown",
			table: NormalizedTable{
				Headers: []string{"Källa", "Sessioner", "Datum"},
				Rows: []Row{
					{"Källa": "Organic", "Sessioner": "100", "Datum": "2026-01-01"},
				},
			},
			channels: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Classify(tt.table)

			assert.Len(t, payload.Channels, tt.channels)
			if tt.channels > 0 {
				// Medium is stored lower-cased.
				assert.Equal(t, "organic", payload.Channels[0].Medium)
				assert.Equal(t, 3200.0, payload.Channels[0].Sessions)
				assert.Equal(t, 48.0, payload.Channels[0].Conversions)
			}
		})
	}
}

func TestClassifyKPITable(t *testing.T) {
	table := NormalizedTable{
		Name:    "KPI",
		Headers: []string{"Nyckeltal", "Värde", "Förändring"},
		Rows: []Row{
			{"Nyckeltal": "Visningar", "Värde": "125 000", "Förändring": "12,5%"},
			{"Nyckeltal": "Klick", "Värde": "3 400", "Förändring": "-2%"},
			{"Nyckeltal": "CTR", "Värde": "2,7%", "Förändring": "0,3"},
			{"Nyckeltal": "Okänt mätvärde", "Värde": "1", "Förändring": "0"},
		},
	}

	payload := Classify(table)

	assert.Len(t, payload.KPIs, 3)
	assert.Equal(t, 125000.0, payload.KPIs[domain.KPIImpressions].Value)
	assert.Equal(t, 12.5, payload.KPIs[domain.KPIImpressions].DeltaPercent)
	assert.Equal(t, 3400.0, payload.KPIs[domain.KPIClicks].Value)
	assert.Equal(t, -2.0, payload.KPIs[domain.KPIClicks].DeltaPercent)
	assert.Equal(t, 2.7, payload.KPIs[domain.KPICTR].Value)
}

func TestClassifyKPIPatternOrder(t *testing.T) {
	// The pattern list is checked in a fixed order, so "Conversion rate"
	// lands on conversions before the conversionRate pattern is reached.
	table := NormalizedTable{
		Headers: []string{"Metric", "Value"},
		Rows: []Row{
			{"Metric": "Conversion rate", "Value": "3,2"},
		},
	}

	payload := Classify(table)

	assert.Contains(t, payload.KPIs, domain.KPIConversions)
	assert.NotContains(t, payload.KPIs, domain.KPIConversionRate)
}

func TestClassifyIrrelevantTable(t *testing.T) {
	table := NormalizedTable{
		Name:    "Anteckningar",
		Headers: []string{"Kommentar", "Ansvarig"},
		Rows: []Row{
			{"Kommentar": "Bygg fler länkar", "Ansvarig": "Anna"},
		},
	}

	payload := Classify(table)

	assert.True(t, payload.IsEmpty())
}

func TestClassifyAllMergesContributions(t *testing.T) {
	tables := []NormalizedTable{
		{
			Headers: []string{"Keyword", "Position"},
			Rows:    []Row{{"Keyword": "seo byrå", "Position": "5"}},
		},
		{
			Headers: []string{"Metric", "Value"},
			Rows:    []Row{{"Metric": "Sessions", "Value": "8 000"}},
		},
		{
			Headers: []string{"Irrelevant"},
			Rows:    []Row{{"Irrelevant": "x"}},
		},
	}

	payload := ClassifyAll(tables)

	assert.Len(t, payload.Keywords, 1)
	assert.Equal(t, 8000.0, payload.KPIs[domain.KPISessions].Value)
	assert.Empty(t, payload.Channels)
	assert.Empty(t, payload.TrafficTimeline)
}

func TestCellFloatOK(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected float64
		ok       bool
	}{
		{name: "plain number", value: "42", expected: 42, ok: true},
		{name: "decimal comma", value: "7,5", expected: 7.5, ok: true},
		{name: "space thousands separator", value: "2 400", expected: 2400, ok: true},
		{name: "non-breaking space separator", value: "12\u00a0500", expected: 12500, ok: true},
		{name: "trailing percent", value: "12,5%", expected: 12.5, ok: true},
		{name: "float cell", value: float64(3.25), expected: 3.25, ok: true},
		{name: "empty string", value: "", ok: false},
		{name: "text", value: "ej rankad", ok: false},
		{name: "nil", value: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := cellFloatOK(tt.value)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}
