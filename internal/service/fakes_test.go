package service

import (
	"context"
	"sort"
	"time"

	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/internal/repository"
)

// fakeStore is an in-memory Store for service tests. It mirrors the
// relational semantics the SQL layer provides: one-way approval updates,
// idempotent summary creation and full recomputes.
type fakeStore struct {
	resources map[string]models.ResourceContext

	comments  map[string]*models.ResourceComment
	replies   map[string]*models.ResourceCommentReply
	reactions map[string]*models.ResourceCommentReaction // keyed by comment id

	utilizations map[string]*models.Utilization
	utilComments map[string]*models.UtilizationComment
	resolutions  map[string]*models.IssueResolution

	commentSummaries    map[string]*models.ResourceCommentSummary
	utilSummaries       map[string]*models.UtilizationSummary
	resolutionSummaries map[string]*models.IssueResolutionSummary
	downloadSummaries   map[string]*models.DownloadSummary
	likeSummaries       map[string]*models.ResourceLikeSummary

	moralLogs []models.MoralCheckLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		resources:           make(map[string]models.ResourceContext),
		comments:            make(map[string]*models.ResourceComment),
		replies:             make(map[string]*models.ResourceCommentReply),
		reactions:           make(map[string]*models.ResourceCommentReaction),
		utilizations:        make(map[string]*models.Utilization),
		utilComments:        make(map[string]*models.UtilizationComment),
		resolutions:         make(map[string]*models.IssueResolution),
		commentSummaries:    make(map[string]*models.ResourceCommentSummary),
		utilSummaries:       make(map[string]*models.UtilizationSummary),
		resolutionSummaries: make(map[string]*models.IssueResolutionSummary),
		downloadSummaries:   make(map[string]*models.DownloadSummary),
		likeSummaries:       make(map[string]*models.ResourceLikeSummary),
	}
}

func (s *fakeStore) addResource(resourceID, resourceName, datasetID, datasetName, orgID, orgName string) {
	s.resources[resourceID] = models.ResourceContext{
		Resource:     models.Resource{ID: resourceID, DatasetID: datasetID, Name: resourceName, State: "active"},
		Dataset:      models.Dataset{ID: datasetID, Name: datasetName, Title: datasetName, OwnerOrg: orgID, State: "active"},
		Organization: models.Organization{ID: orgID, Name: orgName, Title: orgName},
	}
}

func (s *fakeStore) Comments() repository.CommentRepository { return s }

func (s *fakeStore) Utilizations() repository.UtilizationRepository { return s }

func (s *fakeStore) Summaries() repository.SummaryRepository { return s }

func (s *fakeStore) Catalog() repository.CatalogRepository { return s }

func (s *fakeStore) MoralCheckLogs() repository.MoralCheckRepository { return s }

func (s *fakeStore) Feedback() repository.FeedbackRepository { return s }

func (s *fakeStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

// CommentRepository

func (s *fakeStore) CreateComment(_ context.Context, comment *models.ResourceComment) error {
	c := *comment
	s.comments[c.ID] = &c
	return nil
}

func (s *fakeStore) GetComment(_ context.Context, id string) (*models.ResourceComment, error) {
	if c, ok := s.comments[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) GetCommentsByIDs(_ context.Context, ids []string) ([]models.ResourceComment, error) {
	var out []models.ResourceComment
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeStore) ListComments(_ context.Context, resourceID string, filter models.ApprovalFilter) ([]models.ResourceComment, error) {
	var out []models.ResourceComment
	for _, c := range s.comments {
		if c.ResourceID == resourceID && approvalMatches(c.Approval, filter) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out, nil
}

func (s *fakeStore) ApproveComments(_ context.Context, ids []string, userID string, at time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		if c, ok := s.comments[id]; ok && !c.Approval {
			c.Approval = true
			c.Approved = &at
			c.ApprovalUserID = &userID
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) DeleteComments(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := s.comments[id]; ok {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) ResourceIDsForComments(_ context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, id := range ids {
		if c, ok := s.comments[id]; ok && !seen[c.ResourceID] {
			seen[c.ResourceID] = true
			out = append(out, c.ResourceID)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateReply(_ context.Context, reply *models.ResourceCommentReply) error {
	r := *reply
	s.replies[r.ID] = &r
	return nil
}

func (s *fakeStore) GetReply(_ context.Context, id string) (*models.ResourceCommentReply, error) {
	if r, ok := s.replies[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) ListReplies(_ context.Context, commentID string, filter models.ApprovalFilter) ([]models.ResourceCommentReply, error) {
	var out []models.ResourceCommentReply
	for _, r := range s.replies {
		if r.ResourceCommentID == commentID && approvalMatches(r.Approval, filter) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) ApproveReply(_ context.Context, id, userID string, at time.Time) error {
	if r, ok := s.replies[id]; ok && !r.Approval {
		r.Approval = true
		r.Approved = &at
		r.ApprovalUserID = &userID
	}
	return nil
}

func (s *fakeStore) UpsertReaction(_ context.Context, reaction *models.ResourceCommentReaction) error {
	r := *reaction
	s.reactions[r.ResourceCommentID] = &r
	return nil
}

func (s *fakeStore) GetReaction(_ context.Context, commentID string) (*models.ResourceCommentReaction, error) {
	if r, ok := s.reactions[commentID]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

// UtilizationRepository

func (s *fakeStore) CreateUtilization(_ context.Context, util *models.Utilization) error {
	u := *util
	s.utilizations[u.ID] = &u
	return nil
}

func (s *fakeStore) GetUtilization(_ context.Context, id string) (*models.Utilization, error) {
	if u, ok := s.utilizations[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) GetUtilizationsByIDs(_ context.Context, ids []string) ([]models.Utilization, error) {
	var out []models.Utilization
	for _, id := range ids {
		if u, ok := s.utilizations[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeStore) ListUtilizations(_ context.Context, resourceID, keyword string, filter models.ApprovalFilter) ([]models.Utilization, error) {
	var out []models.Utilization
	for _, u := range s.utilizations {
		if resourceID != "" && u.ResourceID != resourceID {
			continue
		}
		if !approvalMatches(u.Approval, filter) {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (s *fakeStore) UpdateUtilization(_ context.Context, id, title, url, description string, at time.Time) error {
	if u, ok := s.utilizations[id]; ok {
		u.Title = title
		u.URL = url
		u.Description = description
		u.Updated = &at
	}
	return nil
}

func (s *fakeStore) ApproveUtilizations(_ context.Context, ids []string, userID string, at time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		if u, ok := s.utilizations[id]; ok && !u.Approval {
			u.Approval = true
			u.Approved = &at
			u.ApprovalUserID = &userID
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) DeleteUtilizations(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := s.utilizations[id]; ok {
			delete(s.utilizations, id)
			n++
			for cid, c := range s.utilComments {
				if c.UtilizationID == id {
					delete(s.utilComments, cid)
				}
			}
		}
	}
	return n, nil
}

func (s *fakeStore) ResourceIDsForUtilizations(_ context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, id := range ids {
		if u, ok := s.utilizations[id]; ok && !seen[u.ResourceID] {
			seen[u.ResourceID] = true
			out = append(out, u.ResourceID)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateUtilizationComment(_ context.Context, comment *models.UtilizationComment) error {
	c := *comment
	s.utilComments[c.ID] = &c
	return nil
}

func (s *fakeStore) GetUtilizationComment(_ context.Context, id string) (*models.UtilizationComment, error) {
	if c, ok := s.utilComments[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) GetUtilizationCommentsByIDs(_ context.Context, ids []string) ([]models.UtilizationComment, error) {
	var out []models.UtilizationComment
	for _, id := range ids {
		if c, ok := s.utilComments[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeStore) ListUtilizationComments(_ context.Context, utilizationID string, filter models.ApprovalFilter) ([]models.UtilizationComment, error) {
	var out []models.UtilizationComment
	for _, c := range s.utilComments {
		if c.UtilizationID == utilizationID && approvalMatches(c.Approval, filter) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeStore) ApproveUtilizationComments(_ context.Context, ids []string, userID string, at time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		if c, ok := s.utilComments[id]; ok && !c.Approval {
			c.Approval = true
			c.Approved = &at
			c.ApprovalUserID = &userID
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) DeleteUtilizationComments(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := s.utilComments[id]; ok {
			delete(s.utilComments, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) UtilizationIDsForComments(_ context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, id := range ids {
		if c, ok := s.utilComments[id]; ok && !seen[c.UtilizationID] {
			seen[c.UtilizationID] = true
			out = append(out, c.UtilizationID)
		}
	}
	return out, nil
}

func (s *fakeStore) RefreshUtilizationCommentCount(_ context.Context, utilizationID string) error {
	if u, ok := s.utilizations[utilizationID]; ok {
		count := 0
		for _, c := range s.utilComments {
			if c.UtilizationID == utilizationID && c.Approval {
				count++
			}
		}
		u.CommentCount = count
	}
	return nil
}

func (s *fakeStore) CreateIssueResolution(_ context.Context, res *models.IssueResolution) error {
	r := *res
	s.resolutions[r.ID] = &r
	return nil
}

func (s *fakeStore) ListIssueResolutions(_ context.Context, utilizationID string) ([]models.IssueResolution, error) {
	var out []models.IssueResolution
	for _, r := range s.resolutions {
		if r.UtilizationID == utilizationID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// SummaryRepository

func (s *fakeStore) EnsureCommentSummary(_ context.Context, resourceID string) error {
	if _, ok := s.commentSummaries[resourceID]; !ok {
		s.commentSummaries[resourceID] = &models.ResourceCommentSummary{
			ID: "sum-" + resourceID, ResourceID: resourceID, Created: time.Now(), Updated: time.Now(),
		}
	}
	return nil
}

func (s *fakeStore) RefreshCommentSummary(_ context.Context, resourceID string) error {
	count, ratedCount, total := 0, 0, 0
	for _, c := range s.comments {
		if c.ResourceID == resourceID && c.Approval {
			count++
			if c.Rating != nil {
				ratedCount++
				total += *c.Rating
			}
		}
	}
	rating := 0.0
	if ratedCount > 0 {
		rating = float64(total) / float64(ratedCount)
	}
	s.commentSummaries[resourceID] = &models.ResourceCommentSummary{
		ID:                 "sum-" + resourceID,
		ResourceID:         resourceID,
		CommentCount:       count,
		RatingCommentCount: ratedCount,
		Rating:             rating,
		Updated:            time.Now(),
	}
	return nil
}

func (s *fakeStore) GetCommentSummary(_ context.Context, resourceID string) (*models.ResourceCommentSummary, error) {
	if sum, ok := s.commentSummaries[resourceID]; ok {
		copied := *sum
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) EnsureUtilizationSummary(_ context.Context, resourceID string) error {
	if _, ok := s.utilSummaries[resourceID]; !ok {
		s.utilSummaries[resourceID] = &models.UtilizationSummary{
			ID: "usum-" + resourceID, ResourceID: resourceID, Created: time.Now(), Updated: time.Now(),
		}
	}
	return nil
}

func (s *fakeStore) RefreshUtilizationSummary(_ context.Context, resourceID string) error {
	count := 0
	for _, u := range s.utilizations {
		if u.ResourceID == resourceID && u.Approval {
			count++
		}
	}
	s.utilSummaries[resourceID] = &models.UtilizationSummary{
		ID: "usum-" + resourceID, ResourceID: resourceID, UtilizationCount: count, Updated: time.Now(),
	}
	return nil
}

func (s *fakeStore) GetUtilizationSummary(_ context.Context, resourceID string) (*models.UtilizationSummary, error) {
	if sum, ok := s.utilSummaries[resourceID]; ok {
		copied := *sum
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) EnsureIssueResolutionSummary(_ context.Context, utilizationID string) error {
	if _, ok := s.resolutionSummaries[utilizationID]; !ok {
		s.resolutionSummaries[utilizationID] = &models.IssueResolutionSummary{
			ID: "rsum-" + utilizationID, UtilizationID: utilizationID, Created: time.Now(), Updated: time.Now(),
		}
	}
	return nil
}

func (s *fakeStore) RefreshIssueResolutionSummary(_ context.Context, utilizationID string) error {
	count := 0
	for _, r := range s.resolutions {
		if r.UtilizationID == utilizationID {
			count++
		}
	}
	s.resolutionSummaries[utilizationID] = &models.IssueResolutionSummary{
		ID: "rsum-" + utilizationID, UtilizationID: utilizationID, IssueResolutionCount: count, Updated: time.Now(),
	}
	return nil
}

func (s *fakeStore) GetIssueResolutionSummary(_ context.Context, utilizationID string) (*models.IssueResolutionSummary, error) {
	if sum, ok := s.resolutionSummaries[utilizationID]; ok {
		copied := *sum
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) IncrementDownloadCount(_ context.Context, resourceID string) error {
	sum, ok := s.downloadSummaries[resourceID]
	if !ok {
		sum = &models.DownloadSummary{ID: "dsum-" + resourceID, ResourceID: resourceID, Created: time.Now()}
		s.downloadSummaries[resourceID] = sum
	}
	sum.DownloadCount++
	sum.Updated = time.Now()
	return nil
}

func (s *fakeStore) GetDownloadSummary(_ context.Context, resourceID string) (*models.DownloadSummary, error) {
	if sum, ok := s.downloadSummaries[resourceID]; ok {
		copied := *sum
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) IncrementLikeCount(_ context.Context, resourceID string, delta int) error {
	sum, ok := s.likeSummaries[resourceID]
	if !ok {
		sum = &models.ResourceLikeSummary{ID: "lsum-" + resourceID, ResourceID: resourceID, Created: time.Now()}
		s.likeSummaries[resourceID] = sum
	}
	sum.LikeCount += delta
	if sum.LikeCount < 0 {
		sum.LikeCount = 0
	}
	sum.Updated = time.Now()
	return nil
}

func (s *fakeStore) GetLikeSummary(_ context.Context, resourceID string) (*models.ResourceLikeSummary, error) {
	if sum, ok := s.likeSummaries[resourceID]; ok {
		copied := *sum
		return &copied, nil
	}
	return nil, nil
}

// CatalogRepository

func (s *fakeStore) GetResourceContext(_ context.Context, resourceID string) (*models.ResourceContext, error) {
	if rc, ok := s.resources[resourceID]; ok {
		return &rc, nil
	}
	return nil, nil
}

func (s *fakeStore) GetOrganization(_ context.Context, id string) (*models.Organization, error) {
	for _, rc := range s.resources {
		if rc.Organization.ID == id {
			org := rc.Organization
			return &org, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetOrganizationByName(_ context.Context, name string) (*models.Organization, error) {
	for _, rc := range s.resources {
		if rc.Organization.Name == name {
			org := rc.Organization
			return &org, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListOrganizations(_ context.Context, ids []string) ([]models.Organization, error) {
	seen := make(map[string]bool)
	var out []models.Organization
	for _, rc := range s.resources {
		org := rc.Organization
		if seen[org.ID] {
			continue
		}
		if ids != nil && !containsString(ids, org.ID) {
			continue
		}
		seen[org.ID] = true
		out = append(out, org)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MoralCheckRepository

func (s *fakeStore) CreateLog(_ context.Context, log *models.MoralCheckLog) error {
	s.moralLogs = append(s.moralLogs, *log)
	return nil
}

func (s *fakeStore) ListLogs(_ context.Context, parentID string, kind models.MoralCheckParentKind) ([]models.MoralCheckLog, error) {
	var out []models.MoralCheckLog
	for _, l := range s.moralLogs {
		if l.ParentID == parentID && l.ParentKind == kind {
			out = append(out, l)
		}
	}
	return out, nil
}

// FeedbackRepository

func (s *fakeStore) ListResourceCommentItems(_ context.Context, scope repository.FeedbackScope) ([]models.FeedbackItem, error) {
	var out []models.FeedbackItem
	for _, c := range s.comments {
		rc, ok := s.resources[c.ResourceID]
		if !ok || !s.inScope(scope, rc) {
			continue
		}
		id := c.ID
		out = append(out, models.FeedbackItem{
			Type:         models.FeedbackResourceComment,
			CommentID:    &id,
			ResourceID:   c.ResourceID,
			ResourceName: rc.Resource.Name,
			PackageName:  rc.Dataset.Name,
			PackageTitle: rc.Dataset.Title,
			OwnerOrg:     rc.Organization.ID,
			GroupName:    rc.Organization.Name,
			Content:      c.Content,
			Created:      c.Created,
			IsApproved:   c.Approval,
		})
	}
	return out, nil
}

func (s *fakeStore) ListUtilizationItems(_ context.Context, scope repository.FeedbackScope) ([]models.FeedbackItem, error) {
	var out []models.FeedbackItem
	for _, u := range s.utilizations {
		rc, ok := s.resources[u.ResourceID]
		if !ok || !s.inScope(scope, rc) {
			continue
		}
		id := u.ID
		out = append(out, models.FeedbackItem{
			Type:          models.FeedbackUtilization,
			UtilizationID: &id,
			ResourceID:    u.ResourceID,
			ResourceName:  rc.Resource.Name,
			PackageName:   rc.Dataset.Name,
			PackageTitle:  rc.Dataset.Title,
			OwnerOrg:      rc.Organization.ID,
			GroupName:     rc.Organization.Name,
			Content:       u.Title,
			Created:       u.Created,
			IsApproved:    u.Approval,
		})
	}
	return out, nil
}

func (s *fakeStore) ListUtilizationCommentItems(_ context.Context, scope repository.FeedbackScope) ([]models.FeedbackItem, error) {
	var out []models.FeedbackItem
	for _, c := range s.utilComments {
		u, ok := s.utilizations[c.UtilizationID]
		if !ok {
			continue
		}
		rc, ok := s.resources[u.ResourceID]
		if !ok || !s.inScope(scope, rc) {
			continue
		}
		cid := c.ID
		uid := c.UtilizationID
		out = append(out, models.FeedbackItem{
			Type:          models.FeedbackUtilizationComment,
			CommentID:     &cid,
			UtilizationID: &uid,
			ResourceID:    u.ResourceID,
			ResourceName:  rc.Resource.Name,
			PackageName:   rc.Dataset.Name,
			PackageTitle:  rc.Dataset.Title,
			OwnerOrg:      rc.Organization.ID,
			GroupName:     rc.Organization.Name,
			Content:       c.Content,
			Created:       c.Created,
			IsApproved:    c.Approval,
		})
	}
	return out, nil
}

func (s *fakeStore) inScope(scope repository.FeedbackScope, rc models.ResourceContext) bool {
	if scope.Orgs == nil {
		return true
	}
	return containsString(scope.Orgs, rc.Organization.ID)
}

func approvalMatches(approved bool, filter models.ApprovalFilter) bool {
	switch filter {
	case models.OnlyApproved:
		return approved
	case models.OnlyUnapproved:
		return !approved
	}
	return true
}
