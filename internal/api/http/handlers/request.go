package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/visitordesk/visitor-service/internal/auth"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

// requiredField pairs a body field name with whether the request carried it.
type requiredField struct {
	name    string
	present bool
}

func field(name string, value string) requiredField {
	return requiredField{name: name, present: strings.TrimSpace(value) != ""}
}

func idField(name string, value int64) requiredField {
	return requiredField{name: name, present: value != 0}
}

// checkRequired reports the first missing field as MISSING_INFO.
func checkRequired(entity string, fields ...requiredField) error {
	for _, f := range fields {
		if !f.present {
			return apperrors.NewMissingInfo(entity, f.name)
		}
	}
	return nil
}

// parseBody decodes the JSON body; an empty body is MISSING_BODY_ERROR.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return apperrors.NewMissingBody()
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewBadRequest("Invalid request body", "")
	}
	return nil
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil {
		return 0, apperrors.NewBadParamID()
	}
	return id, nil
}

func currentIdentity(c *fiber.Ctx) (*auth.Identity, error) {
	identity, ok := auth.IdentityFromFiber(c)
	if !ok || identity.Anonymous {
		return nil, apperrors.NewForbidden("Refer to the code", auth.CodeNoAuthData)
	}
	return identity, nil
}

// respond writes the {http_code, data, message} envelope.
func respond(c *fiber.Ctx, data any, message string) error {
	return c.JSON(fiber.Map{
		"http_code": fiber.StatusOK,
		"data":      data,
		"message":   message,
	})
}

func respondList[T any](c *fiber.Ctx, data []T, message string) error {
	return c.JSON(fiber.Map{
		"http_code": fiber.StatusOK,
		"data":      data,
		"count":     len(data),
		"message":   message,
	})
}
