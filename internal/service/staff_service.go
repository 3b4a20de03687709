package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"

	"github.com/visitordesk/visitor-service/internal/domain"
	"github.com/visitordesk/visitor-service/internal/repository"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

// StaffService manages the hosts visitors come to see.
type StaffService struct {
	staff repository.StaffRepository
}

// StaffInput carries a new staff member.
type StaffInput struct {
	Name        string
	PhoneNumber string
	Email       *string
}

// StaffPatch carries a partial update. Nil fields are left unchanged.
type StaffPatch struct {
	Name        *string
	PhoneNumber *string
	Email       *string
	Active      *bool
}

// StaffListFilters define listing parameters.
type StaffListFilters struct {
	IncludeInactive bool
	Search          string
	Limit           int
	Offset          int
}

func NewStaffService(staff repository.StaffRepository) *StaffService {
	return &StaffService{staff: staff}
}

func (s *StaffService) Create(ctx context.Context, input StaffInput) (*domain.StaffMember, error) {
	if !validPhone(input.PhoneNumber) {
		return nil, apperrors.NewBadRequest("Invalid phone number format", "")
	}
	member := &domain.StaffMember{
		Name:        strings.TrimSpace(input.Name),
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		Active:      true,
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return member, nil
}

func (s *StaffService) Get(ctx context.Context, id int64) (*domain.StaffMember, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Staff", id)
	}
	return member, nil
}

// Update applies the non-nil fields of patch.
func (s *StaffService) Update(ctx context.Context, id int64, patch StaffPatch) (*domain.StaffMember, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.PhoneNumber != nil && !validPhone(*patch.PhoneNumber) {
		return nil, apperrors.NewBadRequest("Invalid phone number format", "")
	}
	if err := copier.CopyWithOption(member, &patch, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	member.Name = strings.TrimSpace(member.Name)
	if err := s.staff.Update(ctx, member); err != nil {
		return nil, mapRepoError(err, "Staff", id)
	}
	return member, nil
}

// Deactivate soft deletes a staff member. Past visits keep their host.
func (s *StaffService) Deactivate(ctx context.Context, id int64) (*domain.StaffMember, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	member, err := s.staff.SetActive(ctx, id, false)
	if err != nil {
		return nil, mapRepoError(err, "Staff", id)
	}
	return member, nil
}

// ListActive returns active staff ordered by name, for host pickers.
func (s *StaffService) ListActive(ctx context.Context) ([]domain.StaffMember, error) {
	active := true
	members, err := s.staff.List(ctx, repository.StaffFilter{Active: &active})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return members, nil
}

func (s *StaffService) List(ctx context.Context, filters StaffListFilters) ([]domain.StaffMember, error) {
	filter := repository.StaffFilter{Search: filters.Search, Limit: filters.Limit, Offset: filters.Offset}
	if !filters.IncludeInactive {
		active := true
		filter.Active = &active
	}
	members, err := s.staff.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return members, nil
}

// ValidateName reports whether an active staff member carries exactly name.
func (s *StaffService) ValidateName(ctx context.Context, name string) (*domain.StaffMember, bool, error) {
	member, err := s.staff.GetActiveByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, apperrors.NewInternalError(err)
	}
	return member, true, nil
}

// activeHost returns the staff member when it exists and is active.
func (s *StaffService) activeHost(ctx context.Context, id int64) (*domain.StaffMember, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil && !repository.IsNotFound(err) {
		return nil, apperrors.NewInternalError(err)
	}
	if err != nil || !member.Active {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("Staff with ID %d not found or inactive", id), "")
	}
	return member, nil
}
