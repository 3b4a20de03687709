package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/auth"
	"github.com/visitordesk/visitor-service/internal/domain"
	"github.com/visitordesk/visitor-service/internal/events"
	"github.com/visitordesk/visitor-service/internal/repository"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

const (
	searchLimit       = 50
	recentActiveLimit = 10
	statsRecentLimit  = 10
)

// VisitorService records visitor check-ins and check-outs.
type VisitorService struct {
	visitors   repository.VisitorRepository
	staff      *StaffService
	dispatcher events.Dispatcher
	location   *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// VisitorInput carries a new check-in.
type VisitorInput struct {
	VisitorName         string
	PhoneNumber         string
	VisitorProfile      domain.VisitorProfile
	VisitorProfileOther *string
	StaffID             int64
}

// VisitorPatch carries a partial update. Nil fields are left unchanged.
type VisitorPatch struct {
	VisitorName         *string
	PhoneNumber         *string
	VisitorProfile      *domain.VisitorProfile
	VisitorProfileOther *string
	StaffID             *int64
}

// VisitorListParams are the raw listing parameters.
type VisitorListParams struct {
	IncludeCheckedOut bool
	DateFrom          string
	DateTo            string
	TimeRange         string
	VisitorProfile    string
	Search            string
	Limit             int
	Offset            int
	ExportAll         bool
}

func NewVisitorService(visitors repository.VisitorRepository, staff *StaffService, dispatcher events.Dispatcher, location *time.Location, logger *zap.Logger) *VisitorService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisitorService{
		visitors:   visitors,
		staff:      staff,
		dispatcher: dispatcher,
		location:   location,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock overrides the clock used for check-outs and time ranges.
func (s *VisitorService) WithClock(now func() time.Time) *VisitorService {
	s.now = now
	return s
}

// Location is the zone used for presets and table rendering.
func (s *VisitorService) Location() *time.Location {
	return s.location
}

// Create checks a visitor in and notifies the host.
func (s *VisitorService) Create(ctx context.Context, actor *auth.Identity, input VisitorInput) (*domain.Visitor, error) {
	if !input.VisitorProfile.Valid() {
		return nil, apperrors.NewBadRequest("visitor_profile must be one of Player, Visitor, Other", "")
	}
	hasOther := input.VisitorProfileOther != nil && strings.TrimSpace(*input.VisitorProfileOther) != ""
	if input.VisitorProfile == domain.VisitorProfileOther && !hasOther {
		return nil, apperrors.NewBadRequest("visitor_profile_other is required when profile is Other", "")
	}
	if input.VisitorProfile != domain.VisitorProfileOther && hasOther {
		return nil, apperrors.NewBadRequest("visitor_profile_other should only be filled when profile is Other", "")
	}
	if !validPhone(input.PhoneNumber) {
		return nil, apperrors.NewBadRequest("Invalid phone number format", "")
	}
	host, err := s.staff.activeHost(ctx, input.StaffID)
	if err != nil {
		return nil, err
	}

	visitor := &domain.Visitor{
		VisitorName:    strings.TrimSpace(input.VisitorName),
		PhoneNumber:    input.PhoneNumber,
		VisitorProfile: input.VisitorProfile,
		StaffID:        &host.ID,
	}
	if hasOther {
		visitor.VisitorProfileOther = input.VisitorProfileOther
	}
	if err := s.visitors.Create(ctx, visitor); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventVisitorCheckedIn, actorOf(actor), events.VisitorCheckedInPayload{
		VisitorID:      visitor.ID,
		VisitorName:    visitor.VisitorName,
		VisitorPhone:   visitor.PhoneNumber,
		VisitorProfile: visitor.VisitorProfile,
		StaffID:        host.ID,
		StaffName:      host.Name,
		StaffPhone:     host.PhoneNumber,
		StaffEmail:     host.Email,
		CheckedInAt:    visitor.CreatedAt,
	}))
	return visitor, nil
}

func (s *VisitorService) Get(ctx context.Context, id int64) (*domain.Visitor, error) {
	visitor, err := s.visitors.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Visitor", id)
	}
	return visitor, nil
}

// Update applies patch. A profile other than Other clears the free-text detail.
func (s *VisitorService) Update(ctx context.Context, id int64, patch VisitorPatch) (*domain.Visitor, error) {
	visitor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.VisitorProfile != nil {
		if !patch.VisitorProfile.Valid() {
			return nil, apperrors.NewBadRequest("visitor_profile must be one of Player, Visitor, Other", "")
		}
		if *patch.VisitorProfile == domain.VisitorProfileOther && (patch.VisitorProfileOther == nil || strings.TrimSpace(*patch.VisitorProfileOther) == "") {
			return nil, apperrors.NewBadRequest("visitor_profile_other is required when profile is Other", "")
		}
	}
	if patch.PhoneNumber != nil && !validPhone(*patch.PhoneNumber) {
		return nil, apperrors.NewBadRequest("Invalid phone number format", "")
	}
	if patch.StaffID != nil {
		if _, err := s.staff.activeHost(ctx, *patch.StaffID); err != nil {
			return nil, err
		}
	}

	if err := copier.CopyWithOption(visitor, &patch, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if visitor.VisitorProfile != domain.VisitorProfileOther {
		visitor.VisitorProfileOther = nil
	}
	visitor.VisitorName = strings.TrimSpace(visitor.VisitorName)

	if err := s.visitors.Update(ctx, visitor); err != nil {
		return nil, mapRepoError(err, "Visitor", id)
	}
	return visitor, nil
}

// CheckOut stamps the departure time once.
func (s *VisitorService) CheckOut(ctx context.Context, actor *auth.Identity, id int64) (*domain.Visitor, error) {
	visitor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if visitor.CheckedOut() {
		return nil, apperrors.NewBadRequest("Visitor already checked out", "")
	}

	visitor, err = s.visitors.CheckOut(ctx, id, s.now())
	if err != nil {
		return nil, mapRepoError(err, "Visitor", id)
	}

	s.publish(ctx, events.NewEvent(events.EventVisitorCheckedOut, actorOf(actor), events.VisitorCheckedOutPayload{
		VisitorID:    visitor.ID,
		VisitorName:  visitor.VisitorName,
		CheckedOutAt: *visitor.CheckedOutAt,
	}))
	return visitor, nil
}

func (s *VisitorService) Delete(ctx context.Context, id int64) error {
	if err := s.visitors.Delete(ctx, id); err != nil {
		return mapRepoError(err, "Visitor", id)
	}
	return nil
}

// List resolves the time range and filters visitors. ExportAll ignores paging.
func (s *VisitorService) List(ctx context.Context, params VisitorListParams) ([]domain.Visitor, error) {
	filter, err := s.filterFor(params)
	if err != nil {
		return nil, err
	}
	visitors, err := s.visitors.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return visitors, nil
}

func (s *VisitorService) filterFor(params VisitorListParams) (repository.VisitorFilter, error) {
	rng, err := ResolveTimeRange(params.TimeRange, params.DateFrom, params.DateTo, s.now(), s.location)
	if err != nil {
		return repository.VisitorFilter{}, err
	}
	includeCheckedOut := params.IncludeCheckedOut
	filter := repository.VisitorFilter{
		From:              rng.From,
		To:                rng.To,
		Search:            strings.TrimSpace(params.Search),
		IncludeCheckedOut: &includeCheckedOut,
	}
	// Unknown profiles are ignored rather than rejected.
	if profile := domain.VisitorProfile(params.VisitorProfile); profile.Valid() {
		filter.Profile = &profile
	}
	if !params.ExportAll {
		filter.Limit = params.Limit
		filter.Offset = params.Offset
	}
	return filter, nil
}

// Search matches visitor name, phone or host name.
func (s *VisitorService) Search(ctx context.Context, query string) ([]domain.Visitor, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewBadRequest("Search query is required", "")
	}
	include := true
	visitors, err := s.visitors.List(ctx, repository.VisitorFilter{Search: query, IncludeCheckedOut: &include, Limit: searchLimit})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return visitors, nil
}

// GetByPhone returns the latest visit for phone.
func (s *VisitorService) GetByPhone(ctx context.Context, phone string) (*domain.Visitor, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, apperrors.NewBadRequest("Phone number is required", "")
	}
	visitor, err := s.visitors.GetLatestByPhone(ctx, phone)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("Visitor with phone number %s not found", phone), "")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return visitor, nil
}

// RecentActive lists visitors still on site, newest first.
func (s *VisitorService) RecentActive(ctx context.Context, limit int) ([]domain.Visitor, error) {
	if limit <= 0 {
		limit = recentActiveLimit
	}
	active := false
	visitors, err := s.visitors.List(ctx, repository.VisitorFilter{IncludeCheckedOut: &active, Limit: limit})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return visitors, nil
}

// Stats summarises traffic in the requested range.
func (s *VisitorService) Stats(ctx context.Context, preset, dateFrom, dateTo string) (*domain.VisitorStats, error) {
	rng, err := ResolveTimeRange(preset, dateFrom, dateTo, s.now(), s.location)
	if err != nil {
		return nil, err
	}
	stats, err := s.visitors.Stats(ctx, rng.From, rng.To, statsRecentLimit)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return stats, nil
}

func (s *VisitorService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish visitor event", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
