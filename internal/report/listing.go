package report

import (
	"context"
	"strings"

	"citizenpulse/backend/internal/analysis"
	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/auth"
	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/models"
	"citizenpulse/backend/internal/storage"
)

// View is a report as shown to a particular actor. Status is omitted for compliments,
// and the author is hidden on anonymous reports unless the viewer is staff or the owner.
type View struct {
	*models.Report
	Status *models.ReportStatus `json:"status,omitempty"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// Detail is a report with its update log, oldest entry first.
type Detail struct {
	Report  View                  `json:"report"`
	Updates []models.ReportUpdate `json:"updates"`
}

// AdminQuery filters the staff report listing. Status "" or "all" means any status.
type AdminQuery struct {
	Status string
	Q      string
	Page   int
}

// UserQuery filters the staff citizen listing.
type UserQuery struct {
	Q    string
	Page int
}

func present(r *models.Report, actor *auth.Actor) View {
	v := View{Report: r}
	if r.HasWorkflow() {
		status := r.Status
		v.Status = &status
	}
	if r.IsAnonymous && !actor.IsStaff() && (r.UserID == nil || *r.UserID != actor.ID()) {
		r.UserID = nil
		r.Author = nil
		r.ContactPhone = nil
		r.ContactEmail = nil
	}
	return v
}

func pageOffset(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * size
}

// Feed returns the public feed, newest first.
func (s *Service) Feed(ctx context.Context, actor *auth.Actor, page int) (*Page[View], error) {
	page, offset := pageOffset(page, config.FeedPageSize)
	reports, total, err := s.Storage.ListReports(ctx, storage.ReportFilter{Limit: config.FeedPageSize, Offset: offset})
	if err != nil {
		return nil, err
	}

	if err := s.markUpvoted(ctx, actor, reports); err != nil {
		return nil, err
	}

	items := make([]View, 0, len(reports))
	for i := range reports {
		if !actor.IsStaff() {
			// contact details are for staff only
			reports[i].ContactPhone = nil
			reports[i].ContactEmail = nil
		}
		items = append(items, present(&reports[i], actor))
	}
	return &Page[View]{Items: items, Total: total, Page: page, PageSize: config.FeedPageSize}, nil
}

func (s *Service) markUpvoted(ctx context.Context, actor *auth.Actor, reports []models.Report) error {
	if actor == nil || len(reports) == 0 {
		return nil
	}
	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	upvoted, err := s.Storage.UpvotedReportIDs(ctx, actor.UserID, ids)
	if err != nil {
		return err
	}
	for i := range reports {
		reports[i].UserHasUpvoted = upvoted[reports[i].ID]
	}
	return nil
}

// Detail returns one report with its update log.
func (s *Service) Detail(ctx context.Context, actor *auth.Actor, reportID string) (*Detail, error) {
	r, err := s.Storage.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	updates, err := s.Storage.ListUpdates(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if actor != nil {
		if r.UserHasUpvoted, err = s.Storage.HasUpvoted(ctx, reportID, actor.UserID); err != nil {
			return nil, err
		}
	}
	if !actor.IsStaff() && (r.UserID == nil || *r.UserID != actor.ID()) {
		r.ContactPhone = nil
		r.ContactEmail = nil
	}
	for i := range updates {
		if updates[i].Author != nil {
			// only username and role are public
			updates[i].Author = &models.Profile{
				ID:        updates[i].Author.ID,
				Username:  updates[i].Author.Username,
				FullName:  updates[i].Author.FullName,
				AvatarURL: updates[i].Author.AvatarURL,
				Role:      updates[i].Author.Role,
			}
		}
	}
	return &Detail{Report: present(r, actor), Updates: updates}, nil
}

// AdminList is the staff report listing with status and free-text filters.
func (s *Service) AdminList(ctx context.Context, actor *auth.Actor, q AdminQuery) (*Page[View], error) {
	if err := auth.RequireStaff(actor); err != nil {
		return nil, err
	}

	filter := storage.ReportFilter{Search: strings.TrimSpace(q.Q), Limit: config.AdminPageSize}
	if q.Status != "" && q.Status != "all" {
		status := models.ReportStatus(q.Status)
		if !status.Valid() {
			return nil, apperr.Invalid("status", "is not a known status")
		}
		filter.Status = status
	}
	var page int
	page, filter.Offset = pageOffset(q.Page, config.AdminPageSize)

	reports, total, err := s.Storage.ListReports(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]View, 0, len(reports))
	for i := range reports {
		items = append(items, present(&reports[i], actor))
	}
	return &Page[View]{Items: items, Total: total, Page: page, PageSize: config.AdminPageSize}, nil
}

// Users lists citizen profiles for staff.
func (s *Service) Users(ctx context.Context, actor *auth.Actor, q UserQuery) (*Page[models.Profile], error) {
	if err := auth.RequireStaff(actor); err != nil {
		return nil, err
	}
	page, offset := pageOffset(q.Page, config.AdminPageSize)
	profiles, total, err := s.Storage.ListProfiles(ctx, storage.ProfileFilter{
		Role:   models.RoleCitizen,
		Search: strings.TrimSpace(q.Q),
		Limit:  config.AdminPageSize,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return &Page[models.Profile]{Items: profiles, Total: total, Page: page, PageSize: config.AdminPageSize}, nil
}

// Stats returns the staff dashboard counters.
func (s *Service) Stats(ctx context.Context, actor *auth.Actor) (*analysis.DashboardStats, error) {
	if err := auth.RequireStaff(actor); err != nil {
		return nil, err
	}
	return analysis.Dashboard(ctx, s.Storage)
}
