package service

import (
	"errors"
	"regexp"

	"github.com/visitordesk/visitor-service/internal/repository"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

var phonePattern = regexp.MustCompile(`^[0-9+()-]+$`)

// mapRepoError converts repository failures into domain errors.
func mapRepoError(err error, entity string, reference any) error {
	if err == nil {
		return nil
	}
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return de
	}
	if repository.IsNotFound(err) {
		return apperrors.NewEntityNotFound(entity, reference)
	}
	return apperrors.NewInternalError(err)
}

func validPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
