package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

// ======================================================
// FILTER
// ======================================================

type auditLogFilter struct {
	action    string
	entity    string
	entityID  uint
	userID    uint
	requestID string

	// from is inclusive, until exclusive (day after "to").
	from  *time.Time
	until *time.Time

	page  int
	limit int
}

func parseAuditLogFilter(c *gin.Context) (*auditLogFilter, string) {
	f := &auditLogFilter{
		action:    c.Query("action"),
		entity:    c.Query("entity"),
		requestID: c.Query("request_id"),
		page:      1,
		limit:     auditDefaultLimit,
	}

	var ok bool
	if f.entityID, ok = queryUint(c, "entity_id"); !ok {
		return nil, "invalid_entity_id"
	}
	if f.userID, ok = queryUint(c, "user_id"); !ok {
		return nil, "invalid_user_id"
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(timezone.DateLayout, raw)
		if err != nil {
			return nil, "invalid_from"
		}
		f.from = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(timezone.DateLayout, raw)
		if err != nil {
			return nil, "invalid_to"
		}
		until := to.AddDate(0, 0, 1)
		f.until = &until
	}

	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		f.page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= auditMaxLimit {
		f.limit = l
	}

	return f, ""
}

func (f *auditLogFilter) apply(q *gorm.DB) *gorm.DB {
	if f.action != "" {
		q = q.Where("action = ?", f.action)
	}
	if f.entity != "" {
		q = q.Where("entity = ?", f.entity)
	}
	if f.entityID != 0 {
		q = q.Where("entity_id = ?", f.entityID)
	}
	if f.userID != 0 {
		q = q.Where("user_id = ?", f.userID)
	}
	if f.requestID != "" {
		q = q.Where("request_id = ?", f.requestID)
	}
	if f.from != nil {
		q = q.Where("created_at >= ?", *f.from)
	}
	if f.until != nil {
		q = q.Where("created_at < ?", *f.until)
	}
	return q
}

func (f *auditLogFilter) offset() int {
	return (f.page - 1) * f.limit
}

// ======================================================
// LIST
// ======================================================

// List pages through the organization's audit trail, newest first.
func (h *AuditLogsHandler) List(c *gin.Context) {
	who := callerFrom(c)

	f, code := parseAuditLogFilter(c)
	if code != "" {
		httperr.BadRequest(c, code, "Invalid audit log filter.")
		return
	}

	q := f.apply(h.db.
		Model(&models.AuditLog{}).
		Where("organization_id = ?", who.OrganizationID))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Could not count audit logs.")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(f.limit).
		Offset(f.offset()).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":  f.page,
		"limit": f.limit,
		"total": total,
		"logs":  logs,
	})
}
