package ingest

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/synlig/seo-portal-api/internal/domain"
)

// Payload holds the partial report fields extracted from one upload. Fields
// left empty are absent from the upload and must survive the merge untouched.
type Payload struct {
	Keywords        []domain.KeywordRank  `json:"keywords,omitempty"`
	TrafficTimeline []domain.TrafficPoint `json:"traffic_timeline,omitempty"`
	Channels        []domain.ChannelStat  `json:"channels,omitempty"`
	KPIs            domain.KPISet         `json:"kpis,omitempty"`
}

// IsEmpty reports whether no table produced anything.
func (p *Payload) IsEmpty() bool {
	return len(p.Keywords) == 0 &&
		len(p.TrafficTimeline) == 0 &&
		len(p.Channels) == 0 &&
		len(p.KPIs) == 0
}

func (p *Payload) merge(other Payload) {
	p.Keywords = append(p.Keywords, other.Keywords...)
	p.TrafficTimeline = append(p.TrafficTimeline, other.TrafficTimeline...)
	p.Channels = append(p.Channels, other.Channels...)
	if len(other.KPIs) > 0 {
		if p.KPIs == nil {
			p.KPIs = domain.KPISet{}
		}
		for key, value := range other.KPIs {
			p.KPIs[key] = value
		}
	}
}

// kpiPatterns match metric-name cells of vertical KPI tables against the
// canonical KPI keys. Checked in this fixed order, first match wins per row.
var kpiPatterns = []struct {
	key     string
	pattern *regexp.Regexp
}{
	{domain.KPIImpressions, regexp.MustCompile(`(?i)impression|visning|exponering`)},
	{domain.KPIUniqueVisitors, regexp.MustCompile(`(?i)unique|unika|besökare|visitors`)},
	{domain.KPIConversions, regexp.MustCompile(`(?i)conversion|konvertering|mål`)},
	{domain.KPIAvgPosition, regexp.MustCompile(`(?i)position|placering`)},
	{domain.KPIClicks, regexp.MustCompile(`(?i)click|klick`)},
	{domain.KPICTR, regexp.MustCompile(`(?i)\bctr\b|klickfrekvens`)},
	{domain.KPISessions, regexp.MustCompile(`(?i)session`)},
	{domain.KPIConversionRate, regexp.MustCompile(`(?i)conversion rate|konverteringsgrad`)},
}

// ClassifyAll runs Classify over every extracted table and folds the results
// into one payload.
func ClassifyAll(tables []NormalizedTable) Payload {
	var payload Payload
	for _, table := range tables {
		contribution := Classify(table)
		payload.merge(contribution)
	}
	return payload
}

// Classify inspects a table's matched columns and maps its rows into the
// payload shapes it satisfies. The four classifications are independent; a
// table matching none of them contributes nothing and is not an error, since
// uploaded workbooks routinely contain irrelevant sheets.
func Classify(table NormalizedTable) Payload {
	var payload Payload

	if keywords, ok := mapKeywordTable(table); ok {
		payload.Keywords = keywords
	}
	if timeline, ok := mapTimelineTable(table); ok {
		payload.TrafficTimeline = timeline
	}
	if channels, ok := mapChannelTable(table); ok {
		payload.Channels = channels
	}
	if kpis, ok := mapKPITable(table); ok {
		payload.KPIs = kpis
	}

	return payload
}

// mapKeywordTable requires both a keyword and a position column. Rows without
// a non-empty keyword are dropped.
func mapKeywordTable(table NormalizedTable) ([]domain.KeywordRank, bool) {
	keywordCol, ok := FindColumn(table.Headers, FieldKeyword)
	if !ok {
		return nil, false
	}
	positionCol, ok := FindColumn(table.Headers, FieldPosition)
	if !ok {
		return nil, false
	}

	groupCol, hasGroup := FindColumn(table.Headers, FieldGroup)
	baselineCol, hasBaseline := FindColumn(table.Headers, FieldBaseline)
	volumeCol, hasVolume := FindColumn(table.Headers, FieldSearchVolume)

	keywords := make([]domain.KeywordRank, 0, len(table.Rows))
	for _, row := range table.Rows {
		keyword := strings.TrimSpace(cellString(row[keywordCol]))
		if keyword == "" {
			continue
		}

		rank := domain.KeywordRank{
			Keyword:  keyword,
			Position: cellFloat(row[positionCol]),
		}
		if hasGroup {
			rank.Group = strings.TrimSpace(cellString(row[groupCol]))
		}
		if hasBaseline {
			if v, ok := cellFloatOK(row[baselineCol]); ok {
				rank.Baseline = &v
			}
		}
		if hasVolume {
			if v, ok := cellFloatOK(row[volumeCol]); ok {
				rank.SearchVolume = &v
			}
		}

		keywords = append(keywords, rank)
	}

	return keywords, true
}

// mapTimelineTable requires a date column plus at least one of impressions or
// clicks. Rows whose date cell cannot be parsed are dropped individually.
func mapTimelineTable(table NormalizedTable) ([]domain.TrafficPoint, bool) {
	dateCol, ok := FindColumn(table.Headers, FieldDate)
	if !ok {
		return nil, false
	}

	impressionsCol, hasImpressions := FindColumn(table.Headers, FieldImpressions)
	clicksCol, hasClicks := FindColumn(table.Headers, FieldClicks)
	if !hasImpressions && !hasClicks {
		return nil, false
	}
	sessionsCol, hasSessions := FindColumn(table.Headers, FieldSessions)

	timeline := make([]domain.TrafficPoint, 0, len(table.Rows))
	for _, row := range table.Rows {
		date, ok := normalizeDateCell(row[dateCol])
		if !ok {
			continue
		}

		point := domain.TrafficPoint{Date: date}
		if hasImpressions {
			point.Impressions = cellFloat(row[impressionsCol])
		}
		if hasClicks {
			if v, ok := cellFloatOK(row[clicksCol]); ok {
				point.Clicks = &v
			}
		}
		if hasSessions {
			if v, ok := cellFloatOK(row[sessionsCol]); ok {
				point.Sessions = &v
			}
		}

		timeline = append(timeline, point)
	}

	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Date < timeline[j].Date
	})

	return timeline, true
}

// mapChannelTable requires medium and sessions columns and the absence of a
// date column. The date exclusion keeps traffic timelines, which often carry
// a source column as well, from being misread as channel breakdowns.
func mapChannelTable(table NormalizedTable) ([]domain.ChannelStat, bool) {
	if _, hasDate := FindColumn(table.Headers, FieldDate); hasDate {
		return nil, false
	}
	mediumCol, ok := FindColumn(table.Headers, FieldMedium)
	if !ok {
		return nil, false
	}
	sessionsCol, ok := FindColumn(table.Headers, FieldSessions)
	if !ok {
		return nil, false
	}
	conversionsCol, hasConversions := FindColumn(table.Headers, FieldConversions)

	channels := make([]domain.ChannelStat, 0, len(table.Rows))
	for _, row := range table.Rows {
		medium := strings.ToLower(strings.TrimSpace(cellString(row[mediumCol])))
		if medium == "" {
			continue
		}

		stat := domain.ChannelStat{
			Medium:   medium,
			Sessions: cellFloat(row[sessionsCol]),
		}
		if hasConversions {
			stat.Conversions = cellFloat(row[conversionsCol])
		}

		channels = append(channels, stat)
	}

	return channels, true
}

// mapKPITable handles vertical KPI sheets: one metric per row, matched
// against the canonical keys by name. An optional delta column feeds the
// percent change.
func mapKPITable(table NormalizedTable) (domain.KPISet, bool) {
	nameCol, ok := FindColumn(table.Headers, FieldMetricName)
	if !ok {
		return nil, false
	}
	valueCol, ok := FindColumn(table.Headers, FieldMetricValue)
	if !ok {
		return nil, false
	}
	deltaCol, hasDelta := FindColumn(table.Headers, FieldDelta)

	kpis := domain.KPISet{}
	for _, row := range table.Rows {
		name := strings.TrimSpace(cellString(row[nameCol]))
		if name == "" {
			continue
		}

		for _, candidate := range kpiPatterns {
			if !candidate.pattern.MatchString(name) {
				continue
			}

			value := domain.KPIValue{Value: cellFloat(row[valueCol])}
			if hasDelta {
				value.DeltaPercent = cellFloat(row[deltaCol])
			}
			kpis[candidate.key] = value
			break
		}
	}

	if len(kpis) == 0 {
		return nil, false
	}
	return kpis, true
}

func cellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// cellFloat parses numeric cells from Swedish and English exports: thousands
// separated by spaces, decimal commas, trailing percent signs.
func cellFloat(value any) float64 {
	v, _ := cellFloatOK(value)
	return v
}

func cellFloatOK(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		s = strings.ReplaceAll(s, "\u00a0", "")
		s = strings.ReplaceAll(s, " ", "")
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", ".")
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
