package service

import (
	"context"
	"sort"
	"strings"

	"dataset-feedback/backend/internal/auth"
	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/internal/repository"
)

// SortKey orders the unified feedback listing.
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortDatasetAsc   SortKey = "dataset_asc"
	SortDatasetDesc  SortKey = "dataset_desc"
	SortResourceAsc  SortKey = "resource_asc"
	SortResourceDesc SortKey = "resource_desc"
)

// ListFeedbacksQuery filters the unified listing. Values within one group
// are ORed, the groups are ANDed together. Empty groups impose no
// restriction.
type ListFeedbacksQuery struct {
	OrgNames  []string
	Types     []models.FeedbackType
	Approvals []bool
	Sort      SortKey
	Limit     int
	Offset    int
}

// FacetCounts holds per-value match counts for the filter UI. Each group is
// counted with every other group's filter applied but its own ignored, so
// the numbers tell the user what selecting a value would yield.
type FacetCounts struct {
	ByType     map[models.FeedbackType]int `json:"by_type"`
	ByOrg      map[string]int              `json:"by_org"`
	ByApproval map[bool]int                `json:"by_approval"`
}

// FeedbackPage is one page of the unified listing.
type FeedbackPage struct {
	Items  []models.FeedbackItem `json:"items"`
	Total  int                   `json:"total"`
	Facets FacetCounts           `json:"facets"`
}

// FeedbackQueryEngine produces the admin moderation listing. The three
// feedback kinds are fetched per kind with org scoping pushed into SQL,
// then merged, filtered, sorted and paginated in memory. The admin listing
// is small and bounded by the caller's organizations, so the in-memory
// merge keeps the per-kind queries trivial.
type FeedbackQueryEngine struct {
	store repository.Store
}

func NewFeedbackQueryEngine(store repository.Store) *FeedbackQueryEngine {
	return &FeedbackQueryEngine{store: store}
}

// ListFeedbacks returns the page of feedback the caller may moderate.
// Callers with no admin role anywhere get the existence-hiding 404.
func (e *FeedbackQueryEngine) ListFeedbacks(ctx context.Context, caller auth.Caller, q ListFeedbacksQuery) (*FeedbackPage, error) {
	if err := auth.RequireAnyAdmin(caller); err != nil {
		return nil, err
	}

	scope := repository.FeedbackScope{Orgs: caller.ScopeOrgs()}

	items, err := e.fetchAll(ctx, scope)
	if err != nil {
		return nil, err
	}

	facets := computeFacets(items, q)
	matched := filterItems(items, q)
	sortItems(matched, q.Sort)

	total := len(matched)
	page := paginate(matched, q.Offset, q.Limit)

	return &FeedbackPage{Items: page, Total: total, Facets: facets}, nil
}

// ListOrganizations returns the organizations whose feedback the caller may
// moderate, for the filter dropdown.
func (e *FeedbackQueryEngine) ListOrganizations(ctx context.Context, caller auth.Caller) ([]models.Organization, error) {
	if err := auth.RequireAnyAdmin(caller); err != nil {
		return nil, err
	}
	return e.store.Catalog().ListOrganizations(ctx, caller.ScopeOrgs())
}

// fetchAll always pulls all three kinds; the type filter is applied in
// memory afterwards because the type facet counts need the unfiltered set.
func (e *FeedbackQueryEngine) fetchAll(ctx context.Context, scope repository.FeedbackScope) ([]models.FeedbackItem, error) {
	fb := e.store.Feedback()

	comments, err := fb.ListResourceCommentItems(ctx, scope)
	if err != nil {
		return nil, err
	}
	utils, err := fb.ListUtilizationItems(ctx, scope)
	if err != nil {
		return nil, err
	}
	utilComments, err := fb.ListUtilizationCommentItems(ctx, scope)
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedbackItem, 0, len(comments)+len(utils)+len(utilComments))
	items = append(items, comments...)
	items = append(items, utils...)
	items = append(items, utilComments...)
	return items, nil
}

func matchesGroup(item models.FeedbackItem, q ListFeedbacksQuery, skip string) bool {
	if skip != "type" && len(q.Types) > 0 {
		if !containsType(q.Types, item.Type) {
			return false
		}
	}
	if skip != "org" && len(q.OrgNames) > 0 {
		if !containsString(q.OrgNames, item.GroupName) {
			return false
		}
	}
	if skip != "approval" && len(q.Approvals) > 0 {
		if !containsBool(q.Approvals, item.IsApproved) {
			return false
		}
	}
	return true
}

func filterItems(items []models.FeedbackItem, q ListFeedbacksQuery) []models.FeedbackItem {
	out := make([]models.FeedbackItem, 0, len(items))
	for _, item := range items {
		if matchesGroup(item, q, "") {
			out = append(out, item)
		}
	}
	return out
}

func computeFacets(items []models.FeedbackItem, q ListFeedbacksQuery) FacetCounts {
	facets := FacetCounts{
		ByType:     make(map[models.FeedbackType]int),
		ByOrg:      make(map[string]int),
		ByApproval: make(map[bool]int),
	}
	for _, item := range items {
		if matchesGroup(item, q, "type") {
			facets.ByType[item.Type]++
		}
		if matchesGroup(item, q, "org") {
			facets.ByOrg[item.GroupName]++
		}
		if matchesGroup(item, q, "approval") {
			facets.ByApproval[item.IsApproved]++
		}
	}
	return facets
}

// sortItems orders the merged set. Name sorts are case-insensitive and
// break ties by newest first, so the listing stays stable as feedback
// accumulates on the same dataset.
func sortItems(items []models.FeedbackItem, key SortKey) {
	less := func(i, j int) bool {
		return items[i].Created.After(items[j].Created)
	}

	switch key {
	case SortOldest:
		less = func(i, j int) bool {
			return items[i].Created.Before(items[j].Created)
		}
	case SortDatasetAsc:
		less = nameLess(items, func(it models.FeedbackItem) string { return it.PackageName }, false)
	case SortDatasetDesc:
		less = nameLess(items, func(it models.FeedbackItem) string { return it.PackageName }, true)
	case SortResourceAsc:
		less = nameLess(items, func(it models.FeedbackItem) string { return it.ResourceName }, false)
	case SortResourceDesc:
		less = nameLess(items, func(it models.FeedbackItem) string { return it.ResourceName }, true)
	}

	sort.SliceStable(items, less)
}

func nameLess(items []models.FeedbackItem, field func(models.FeedbackItem) string, desc bool) func(i, j int) bool {
	return func(i, j int) bool {
		a := strings.ToLower(field(items[i]))
		b := strings.ToLower(field(items[j]))
		if a != b {
			if desc {
				return a > b
			}
			return a < b
		}
		return items[i].Created.After(items[j].Created)
	}
}

func paginate(items []models.FeedbackItem, offset, limit int) []models.FeedbackItem {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []models.FeedbackItem{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func containsType(values []models.FeedbackType, v models.FeedbackType) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsBool(values []bool, v bool) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
