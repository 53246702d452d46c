package leads

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// ApplyFilter returns the leads matching criteria in their original order.
// The search text matches case-insensitively against name or email.
func ApplyFilter(records []Lead, criteria FilterCriteria) []Lead {
	search := strings.ToLower(criteria.SearchText)
	status := criteria.StatusFilter()
	out := make([]Lead, 0, len(records))
	for _, lead := range records {
		if search != "" &&
			!strings.Contains(strings.ToLower(lead.Name), search) &&
			!strings.Contains(strings.ToLower(lead.Email), search) {
			continue
		}
		if status != StatusAll && string(lead.Status) != status {
			continue
		}
		out = append(out, lead)
	}
	return out
}

// GroupByStatus counts leads per status in first-encounter order.
func GroupByStatus(records []Lead) []StatusDatum {
	index := make(map[string]int)
	out := make([]StatusDatum, 0, len(KnownStatuses))
	for _, lead := range records {
		key := string(lead.Status)
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, StatusDatum{Status: key, Count: 1, Color: StatusColor(key)})
	}
	return out
}

// SumValueByAgent totals value per agent, largest first. Ties keep
// first-encounter order.
func SumValueByAgent(records []Lead) []AgentDatum {
	index := make(map[string]int)
	out := make([]AgentDatum, 0, len(AgentColors))
	for _, lead := range records {
		if i, ok := index[lead.AssignedAgent]; ok {
			out[i].TotalValue += lead.Value
			continue
		}
		index[lead.AssignedAgent] = len(out)
		out = append(out, AgentDatum{
			Agent:      lead.AssignedAgent,
			TotalValue: lead.Value,
			Color:      AgentColor(lead.AssignedAgent),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalValue > out[j].TotalValue
	})
	return out
}

// BucketActivityByDay counts leads per calendar day of last activity,
// ascending. The day is taken in the timestamp's own offset.
func BucketActivityByDay(records []Lead) []ActivityDatum {
	counts := make(map[string]int)
	for _, lead := range records {
		counts[activityDay(lead.LastActivity)]++
	}
	out := make([]ActivityDatum, 0, len(counts))
	for day, count := range counts {
		out = append(out, ActivityDatum{Day: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

func activityDay(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Summarize computes the header KPI cards.
func Summarize(records []Lead) KPISummary {
	summary := KPISummary{TotalLeads: len(records)}
	for _, lead := range records {
		switch lead.Status {
		case StatusNew:
			summary.NewLeads++
		case StatusQualified:
			summary.QualifiedLeads++
		}
		summary.PortfolioValue += lead.Value
	}
	return summary
}

// SortField selects the table ordering column.
type SortField string

const (
	SortByValue        SortField = "value"
	SortByLastActivity SortField = "last_activity"
	SortByName         SortField = "name"
)

// SortOrder configures table ordering.
type SortOrder struct {
	Field      SortField `json:"field"`
	Descending bool      `json:"descending"`
}

// DefaultSortOrder lists the most valuable leads first.
var DefaultSortOrder = SortOrder{Field: SortByValue, Descending: true}

// ParseSortField resolves a sort column, falling back to value.
func ParseSortField(raw string) SortField {
	switch SortField(strings.ToLower(strings.TrimSpace(raw))) {
	case SortByLastActivity, "lastactivity", "last-activity":
		return SortByLastActivity
	case SortByName:
		return SortByName
	default:
		return SortByValue
	}
}

// ParseSortOrder reads the sort query parameters. An empty field selects
// DefaultSortOrder; an unparsable desc flag means ascending.
func ParseSortOrder(field, desc string) SortOrder {
	if strings.TrimSpace(field) == "" {
		return DefaultSortOrder
	}
	descending, _ := strconv.ParseBool(strings.TrimSpace(desc))
	return SortOrder{Field: ParseSortField(field), Descending: descending}
}

// SortLeads returns a stably sorted copy of records.
func SortLeads(records []Lead, order SortOrder) []Lead {
	out := append([]Lead(nil), records...)
	less := func(a, b Lead) bool {
		switch order.Field {
		case SortByLastActivity:
			return a.LastActivity.Before(b.LastActivity)
		case SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		default:
			return a.Value < b.Value
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order.Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// LeadIDs returns the ids of records in order.
func LeadIDs(records []Lead) []string {
	ids := make([]string, len(records))
	for i, lead := range records {
		ids[i] = lead.ID
	}
	return ids
}
