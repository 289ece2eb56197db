// Package dashboard filters and orders synced task rows for presentation.
package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status is the lifecycle state of a task row, owned by the sync sink.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Row is one persisted task across the corpus.
type Row struct {
	ID         string     `json:"id"`
	Status     Status     `json:"status"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	DocumentID string     `json:"document_id"`
	SectionID  string     `json:"section_id,omitempty"`
}

// StatusFilter narrows rows by status.
type StatusFilter string

const (
	FilterAll    StatusFilter = "all"
	FilterOpen   StatusFilter = "open"
	FilterClosed StatusFilter = "closed"
)

// SortKey orders rows.
type SortKey string

const (
	SortNewest         SortKey = "newest"
	SortOldest         SortKey = "oldest"
	SortRecentlyClosed SortKey = "recently_closed"
)

// Query holds the two independent view parameters.
type Query struct {
	Status StatusFilter
	Sort   SortKey
}

// View is the ordered row sequence plus its count.
type View struct {
	Rows  []Row `json:"rows"`
	Count int   `json:"count"`
}

// ParseStatusFilter parses a status filter; empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterOpen, FilterClosed:
		return f, nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

// ParseSortKey parses a sort key; empty means newest.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest, SortRecentlyClosed:
		return k, nil
	case "recentlyclosed", "recently-closed":
		return SortRecentlyClosed, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Aggregate filters and sorts rows. The input slice is not modified.
func Aggregate(rows []Row, q Query) View {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if matches(r, q.Status) {
			out = append(out, r)
		}
	}

	switch q.Sort {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case SortRecentlyClosed:
		sort.SliceStable(out, func(i, j int) bool { return closedAt(out[i]).After(closedAt(out[j])) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return View{Rows: out, Count: len(out)}
}

func matches(r Row, f StatusFilter) bool {
	switch f {
	case FilterOpen:
		return r.Status == StatusOpen
	case FilterClosed:
		return r.Status == StatusClosed
	}
	return true
}

// closedAt treats a missing closed timestamp as the oldest possible time.
func closedAt(r Row) time.Time {
	if r.ClosedAt == nil {
		return time.Time{}
	}
	return *r.ClosedAt
}
