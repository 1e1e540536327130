package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ialiagadev/physia-scheduler/internal/middleware"
	"github.com/ialiagadev/physia-scheduler/internal/models"
)

type caller struct {
	UserID         uint
	OrganizationID uint
	Role           string
}

func (c caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

func callerFrom(c *gin.Context) caller {
	return caller{
		UserID:         c.MustGet(middleware.ContextUserID).(uint),
		OrganizationID: c.MustGet(middleware.ContextOrganizationID).(uint),
		Role:           c.GetString(middleware.ContextUserRole),
	}
}

// targetProfessional is the professional a staff request acts on: the
// caller unless an admin names another one.
func targetProfessional(who caller, requested uint) uint {
	if requested != 0 && (who.IsAdmin() || requested == who.UserID) {
		return requested
	}
	return who.UserID
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func queryUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
