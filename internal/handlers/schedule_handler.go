package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/domain/availability"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

// ScheduleHandler administers working hours. The availability engine only
// ever reads what is written here.
type ScheduleHandler struct {
	db *gorm.DB
}

func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{db: db}
}

// --------- Requests ---------

type BreakConfig struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

type ScheduleBlockConfig struct {
	Active     bool          `json:"active"`
	StartTime  string        `json:"start_time"`
	EndTime    string        `json:"end_time"`
	BreakStart string        `json:"break_start"`
	BreakEnd   string        `json:"break_end"`
	Breaks     []BreakConfig `json:"breaks"`
}

type WeeklyDayConfig struct {
	DayOfWeek *int `json:"day_of_week" binding:"required,min=0,max=6"`
	ScheduleBlockConfig
}

type ReplaceWeeklyRequest struct {
	ProfessionalID uint              `json:"professional_id"`
	Days           []WeeklyDayConfig `json:"days" binding:"required,dive"`
}

type CreateExceptionRequest struct {
	ProfessionalID uint   `json:"professional_id"`
	Date           string `json:"date" binding:"required"`
	ScheduleBlockConfig
}

// --------- Validation ---------

func validClock(hm string) bool {
	_, err := time.Parse("15:04", hm)
	return err == nil
}

// validate returns an error code, or "" when the block is usable.
func (b ScheduleBlockConfig) validate() string {
	if !b.Active {
		return ""
	}
	if !validClock(b.StartTime) || !validClock(b.EndTime) {
		return "invalid_time"
	}
	start, end := availability.TimeToMinutes(b.StartTime), availability.TimeToMinutes(b.EndTime)
	if end <= start {
		return "invalid_time_range"
	}

	if (b.BreakStart == "") != (b.BreakEnd == "") {
		return "invalid_break"
	}
	if b.BreakStart != "" {
		if code := validBreak(b.BreakStart, b.BreakEnd, start, end); code != "" {
			return code
		}
	}
	for _, br := range b.Breaks {
		if code := validBreak(br.StartTime, br.EndTime, start, end); code != "" {
			return code
		}
	}
	return ""
}

func validBreak(startHM, endHM string, blockStart, blockEnd int) string {
	if !validClock(startHM) || !validClock(endHM) {
		return "invalid_break"
	}
	s, e := availability.TimeToMinutes(startHM), availability.TimeToMinutes(endHM)
	if e <= s || s < blockStart || e > blockEnd {
		return "invalid_break"
	}
	return ""
}

func (b ScheduleBlockConfig) toModel(organizationID, professionalID uint) models.WorkSchedule {
	ws := models.WorkSchedule{
		OrganizationID: organizationID,
		ProfessionalID: professionalID,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		BreakStart:     b.BreakStart,
		BreakEnd:       b.BreakEnd,
		Active:         b.Active,
	}
	for i, br := range b.Breaks {
		order := br.SortOrder
		if order == 0 {
			order = i
		}
		ws.Breaks = append(ws.Breaks, models.ScheduleBreak{
			Name:      br.Name,
			StartTime: br.StartTime,
			EndTime:   br.EndTime,
			Active:    true,
			SortOrder: order,
		})
	}
	return ws
}

// --------- Handlers ---------

func (h *ScheduleHandler) Get(c *gin.Context) {
	who := callerFrom(c)

	requested, ok := queryUint(c, "professional_id")
	if !ok {
		httperr.BadRequest(c, "invalid_professional_id", "professional_id must be a number.")
		return
	}
	professionalID := targetProfessional(who, requested)

	var schedules []models.WorkSchedule
	if err := h.db.
		Preload("Breaks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, start_time ASC") }).
		Where("organization_id = ? AND professional_id = ?", who.OrganizationID, professionalID).
		Order("kind ASC, day_of_week ASC, exception_date ASC").
		Find(&schedules).Error; err != nil {

		httperr.Internal(c, "failed_to_get_schedules", "Could not load schedules.")
		return
	}

	regular := make([]models.WorkSchedule, 0, 7)
	exceptions := make([]models.WorkSchedule, 0)
	for _, s := range schedules {
		if s.Kind == models.ScheduleKindException {
			exceptions = append(exceptions, s)
			continue
		}
		regular = append(regular, s)
	}

	c.JSON(http.StatusOK, gin.H{
		"professional_id": professionalID,
		"regular":         regular,
		"exceptions":      exceptions,
	})
}

// ReplaceWeekly swaps the whole weekly pattern of a professional.
func (h *ScheduleHandler) ReplaceWeekly(c *gin.Context) {
	who := callerFrom(c)

	var req ReplaceWeeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	seen := map[int]bool{}
	for _, d := range req.Days {
		if seen[*d.DayOfWeek] {
			httperr.BadRequest(c, "duplicate_day", "Each day_of_week may appear once.")
			return
		}
		seen[*d.DayOfWeek] = true

		if code := d.validate(); code != "" {
			httperr.BadRequest(c, code, "Invalid schedule for day_of_week.")
			return
		}
	}

	professionalID := targetProfessional(who, req.ProfessionalID)

	var created []models.WorkSchedule
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var old []uint
		if err := tx.Model(&models.WorkSchedule{}).
			Where("organization_id = ? AND professional_id = ? AND kind = ?",
				who.OrganizationID, professionalID, models.ScheduleKindRegular).
			Pluck("id", &old).Error; err != nil {
			return err
		}

		if len(old) > 0 {
			if err := tx.Where("work_schedule_id IN ?", old).Delete(&models.ScheduleBreak{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", old).Delete(&models.WorkSchedule{}).Error; err != nil {
				return err
			}
		}

		for _, d := range req.Days {
			ws := d.toModel(who.OrganizationID, professionalID)
			ws.Kind = models.ScheduleKindRegular
			day := *d.DayOfWeek
			ws.DayOfWeek = &day
			created = append(created, ws)
		}

		if len(created) == 0 {
			return nil
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_schedules", "Could not save schedules.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"professional_id": professionalID,
		"regular":         created,
	})
}

func (h *ScheduleHandler) CreateException(c *gin.Context) {
	who := callerFrom(c)

	var req CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	date, err := time.Parse(timezone.DateLayout, req.Date)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "date must be YYYY-MM-DD.")
		return
	}

	if code := req.validate(); code != "" {
		httperr.BadRequest(c, code, "Invalid exception schedule.")
		return
	}

	ws := req.toModel(who.OrganizationID, targetProfessional(who, req.ProfessionalID))
	ws.Kind = models.ScheduleKindException
	ws.ExceptionDate = &date

	if err := h.db.Create(&ws).Error; err != nil {
		httperr.Internal(c, "failed_to_create_exception", "Could not create the exception.")
		return
	}

	c.JSON(http.StatusCreated, ws)
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	who := callerFrom(c)

	ws, ok := h.find(c, who)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_schedule_id = ?", ws.ID).Delete(&models.ScheduleBreak{}).Error; err != nil {
			return err
		}
		return tx.Delete(ws).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_delete_schedule", "Could not delete the schedule.")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ScheduleHandler) AddBreak(c *gin.Context) {
	who := callerFrom(c)

	var req BreakConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	ws, ok := h.find(c, who)
	if !ok {
		return
	}

	start, end := availability.TimeToMinutes(ws.StartTime), availability.TimeToMinutes(ws.EndTime)
	if code := validBreak(req.StartTime, req.EndTime, start, end); code != "" {
		httperr.BadRequest(c, code, "The break must lie inside the schedule.")
		return
	}

	br := models.ScheduleBreak{
		WorkScheduleID: ws.ID,
		Name:           req.Name,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Active:         true,
		SortOrder:      req.SortOrder,
	}
	if err := h.db.Create(&br).Error; err != nil {
		httperr.Internal(c, "failed_to_create_break", "Could not create the break.")
		return
	}

	c.JSON(http.StatusCreated, br)
}

// find loads the schedule in :id, restricted to the caller's own schedules
// unless the caller is an admin.
func (h *ScheduleHandler) find(c *gin.Context, who caller) (*models.WorkSchedule, bool) {
	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid schedule id.")
		return nil, false
	}

	q := h.db.Where("id = ? AND organization_id = ?", id, who.OrganizationID)
	if !who.IsAdmin() {
		q = q.Where("professional_id = ?", who.UserID)
	}

	var ws models.WorkSchedule
	if err := q.First(&ws).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "schedule_not_found", "Schedule not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_schedule", "Could not load the schedule.")
		return nil, false
	}
	return &ws, true
}
