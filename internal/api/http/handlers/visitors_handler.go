package handlers

import (
	"bytes"
	"encoding/csv"

	"github.com/gofiber/fiber/v2"

	"github.com/visitordesk/visitor-service/internal/api/dto"
	"github.com/visitordesk/visitor-service/internal/auth"
	"github.com/visitordesk/visitor-service/internal/domain"
	"github.com/visitordesk/visitor-service/internal/service"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

const exportFilename = "visitors_export.csv"

// VisitorsHandler manages visitor check-in endpoints.
type VisitorsHandler struct {
	visitors *service.VisitorService
}

func NewVisitorsHandler(visitorService *service.VisitorService) *VisitorsHandler {
	return &VisitorsHandler{visitors: visitorService}
}

// Create handles POST /visitors/create.
func (h *VisitorsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateVisitorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkRequired("visitor",
		field("visitor_name", req.VisitorName),
		field("phone_number", req.PhoneNumber),
		field("visitor_profile", req.VisitorProfile),
		idField("staff_id", req.StaffID),
	); err != nil {
		return err
	}

	identity, _ := auth.IdentityFromFiber(c)
	visitor, err := h.visitors.Create(c.UserContext(), identity, service.VisitorInput{
		VisitorName:         req.VisitorName,
		PhoneNumber:         req.PhoneNumber,
		VisitorProfile:      domain.VisitorProfile(req.VisitorProfile),
		VisitorProfileOther: req.VisitorProfileOther,
		StaffID:             req.StaffID,
	})
	if err != nil {
		return err
	}
	return respond(c, h.row(visitor), "Visitor created successfully")
}

// Get handles GET /visitors/:id.
func (h *VisitorsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	visitor, err := h.visitors.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, h.row(visitor), "Visitor retrieved successfully")
}

// List handles GET /visitors/all.
func (h *VisitorsHandler) List(c *fiber.Ctx) error {
	params := listParams(c)
	visitors, err := h.visitors.List(c.UserContext(), params)
	if err != nil {
		return err
	}
	message := "Visitors retrieved successfully"
	if params.ExportAll {
		message = "All visitors data for export"
	}
	return respondList(c, h.rows(visitors), message)
}

// Export handles GET /visitors/export with the same filters as List,
// always including checked-out visitors and ignoring paging.
func (h *VisitorsHandler) Export(c *fiber.Ctx) error {
	params := listParams(c)
	params.IncludeCheckedOut = true
	params.ExportAll = true
	visitors, err := h.visitors.List(c.UserContext(), params)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(dto.CSVHeader); err != nil {
		return apperrors.NewInternalError(err)
	}
	for _, row := range h.rows(visitors) {
		if err := w.Write(row.CSVRecord()); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+exportFilename)
	return c.Send(buf.Bytes())
}

// Update handles PUT /visitors/:id.
func (h *VisitorsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateVisitorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	patch := service.VisitorPatch{
		VisitorName:         req.VisitorName,
		PhoneNumber:         req.PhoneNumber,
		VisitorProfileOther: req.VisitorProfileOther,
		StaffID:             req.StaffID,
	}
	if req.VisitorProfile != nil {
		profile := domain.VisitorProfile(*req.VisitorProfile)
		patch.VisitorProfile = &profile
	}
	visitor, err := h.visitors.Update(c.UserContext(), id, patch)
	if err != nil {
		return err
	}
	return respond(c, h.row(visitor), "Visitor updated successfully")
}

// CheckOut handles POST /visitors/:id/checkout.
func (h *VisitorsHandler) CheckOut(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromFiber(c)
	visitor, err := h.visitors.CheckOut(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return respond(c, h.row(visitor), "Visitor checked out successfully")
}

// Delete handles DELETE /visitors/:id.
func (h *VisitorsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.visitors.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, nil, "Visitor deleted successfully")
}

// Stats handles GET /visitors/stats.
func (h *VisitorsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.visitors.Stats(c.UserContext(), c.Query("timeRange"), c.Query("dateFrom"), c.Query("dateTo"))
	if err != nil {
		return err
	}
	return respond(c, dto.NewVisitorStatsResponse(stats, h.visitors.Location()), "Stats retrieved successfully")
}

// ByPhone handles GET /visitors/phone?phone=.
func (h *VisitorsHandler) ByPhone(c *fiber.Ctx) error {
	visitor, err := h.visitors.GetByPhone(c.UserContext(), c.Query("phone"))
	if err != nil {
		return err
	}
	return respond(c, h.row(visitor), "Visitor retrieved successfully")
}

// Search handles GET /visitors/search?query=.
func (h *VisitorsHandler) Search(c *fiber.Ctx) error {
	visitors, err := h.visitors.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return err
	}
	return respondList(c, h.rows(visitors), "Search results retrieved")
}

// RecentActive handles GET /visitors/recent-active.
func (h *VisitorsHandler) RecentActive(c *fiber.Ctx) error {
	visitors, err := h.visitors.RecentActive(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return respondList(c, h.rows(visitors), "Recent active visitors retrieved")
}

func (h *VisitorsHandler) row(visitor *domain.Visitor) dto.VisitorRow {
	return dto.NewVisitorRow(visitor, h.visitors.Location())
}

func (h *VisitorsHandler) rows(visitors []domain.Visitor) []dto.VisitorRow {
	return dto.NewVisitorRows(visitors, h.visitors.Location())
}

func listParams(c *fiber.Ctx) service.VisitorListParams {
	return service.VisitorListParams{
		IncludeCheckedOut: c.QueryBool("includeCheckedOut", true),
		DateFrom:          c.Query("dateFrom"),
		DateTo:            c.Query("dateTo"),
		TimeRange:         c.Query("timeRange"),
		VisitorProfile:    c.Query("visitorProfile"),
		Search:            c.Query("search"),
		Limit:             c.QueryInt("limit", 0),
		Offset:            c.QueryInt("offset", 0),
		ExportAll:         c.QueryBool("exportAll", false),
	}
}
