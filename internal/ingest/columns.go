package ingest

import "strings"

// Semantic field names resolvable by FindColumn.
const (
	FieldKeyword      = "keyword"
	FieldPosition     = "position"
	FieldGroup        = "group"
	FieldBaseline     = "baseline"
	FieldSearchVolume = "searchVolume"
	FieldDate         = "date"
	FieldImpressions  = "impressions"
	FieldClicks       = "clicks"
	FieldSessions     = "sessions"
	FieldMedium       = "medium"
	FieldConversions  = "conversions"
	FieldMetricName   = "metricName"
	FieldMetricValue  = "metricValue"
	FieldDelta        = "delta"
)

// columnSynonyms maps each semantic field to substrings accepted in uploaded
// headers. Customers export from Swedish and English tools, so both are
// listed.
var columnSynonyms = map[string][]string{
	FieldKeyword:      {"keyword", "sökord", "nyckelord", "query", "fråga"},
	FieldPosition:     {"position", "placering", "ranking", "rank"},
	FieldGroup:        {"group", "grupp", "kategori", "category"},
	FieldBaseline:     {"baseline", "startposition", "utgångsläge"},
	FieldSearchVolume: {"search volume", "sökvolym", "volym", "volume"},
	FieldDate:         {"date", "datum", "day", "dag"},
	FieldImpressions:  {"impression", "visningar", "exponeringar"},
	FieldClicks:       {"click", "klick"},
	FieldSessions:     {"session", "sessioner", "besök", "visits"},
	FieldMedium:       {"medium", "källa", "kanal", "channel", "source"},
	FieldConversions:  {"conversion", "konvertering", "mål", "goal"},
	FieldMetricName:   {"metric", "kpi", "nyckeltal", "mätvärde"},
	FieldMetricValue:  {"value", "värde", "resultat"},
	FieldDelta:        {"delta", "förändring", "change", "+/-"},
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

// FindColumn resolves the header carrying the given semantic field. Matching
// is case-insensitive and whitespace-trimmed, in two passes: a header equal
// to a synonym wins over one merely containing it, so "Position" beats
// "Position change" regardless of header order. Within a pass the first
// header in source order wins. A miss returns ("", false) and means the field
// is absent from the table, not an error.
func FindColumn(headers []string, field string) (string, bool) {
	synonyms, ok := columnSynonyms[field]
	if !ok {
		return "", false
	}

	for _, header := range headers {
		normalized := normalizeHeader(header)
		for _, synonym := range synonyms {
			if normalized == synonym {
				return header, true
			}
		}
	}

	for _, header := range headers {
		normalized := normalizeHeader(header)
		for _, synonym := range synonyms {
			if strings.Contains(normalized, synonym) {
				return header, true
			}
		}
	}

	return "", false
}
