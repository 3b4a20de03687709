package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/visitordesk/visitor-service/internal/api/dto"
	"github.com/visitordesk/visitor-service/internal/service"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

// StaffHandler exposes staff endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staffService}
}

// Active handles GET /staff/active.
func (h *StaffHandler) Active(c *fiber.Ctx) error {
	members, err := h.staff.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, dto.NewStaffOptions(members), "Staff list retrieved")
}

// Validate handles GET /staff/validate?name=.
func (h *StaffHandler) Validate(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return apperrors.NewBadRequest("Staff name is required", "")
	}
	member, ok, err := h.staff.ValidateName(c.UserContext(), name)
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(fiber.Map{
			"http_code": fiber.StatusOK,
			"valid":     false,
			"message":   fmt.Sprintf("Staff %q not found or inactive", name),
		})
	}
	return c.JSON(fiber.Map{
		"http_code": fiber.StatusOK,
		"valid":     true,
		"staff":     dto.NewStaffOption(member),
	})
}

// List handles GET /staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	members, err := h.staff.List(c.UserContext(), service.StaffListFilters{
		IncludeInactive: c.QueryBool("includeInactive", false),
		Search:          c.Query("search"),
		Limit:           c.QueryInt("limit", 0),
		Offset:          c.QueryInt("offset", 0),
	})
	if err != nil {
		return err
	}
	return respondList(c, dto.NewStaffList(members), "Staff list retrieved")
}

// Create handles POST /staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	var req dto.StaffRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkRequired("staff", field("name", req.Name), field("phone_number", req.PhoneNumber)); err != nil {
		return err
	}
	member, err := h.staff.Create(c.UserContext(), service.StaffInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"http_code": fiber.StatusCreated,
		"data":      dto.NewStaffResponse(member),
		"message":   "Staff created successfully",
	})
}

// Get handles GET /staff/:id.
func (h *StaffHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	member, err := h.staff.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, dto.NewStaffResponse(member), "Staff retrieved successfully")
}

// Update handles PUT /staff/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.StaffPatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Name != nil {
		if err := checkRequired("staff", field("name", *req.Name)); err != nil {
			return err
		}
	}
	member, err := h.staff.Update(c.UserContext(), id, service.StaffPatch{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Active:      req.Active,
	})
	if err != nil {
		return err
	}
	return respond(c, dto.NewStaffResponse(member), "Staff updated successfully")
}

// Delete handles DELETE /staff/:id.
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	member, err := h.staff.Deactivate(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, dto.NewStaffResponse(member), "Staff deleted successfully")
}
