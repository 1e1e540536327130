package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	who := callerFrom(c)

	var user models.User
	if err := h.db.Preload("Organization").
		Where("id = ? AND organization_id = ?", who.UserID, who.OrganizationID).
		First(&user).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         userView(&user),
		"organization": organizationView(&user.Organization),
	})
}

func userView(u *models.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"name":            u.Name,
		"email":           u.Email,
		"phone":           u.Phone,
		"role":            u.Role,
		"organization_id": u.OrganizationID,
	}
}

func organizationView(o *models.Organization) gin.H {
	return gin.H{
		"id":                  o.ID,
		"name":                o.Name,
		"slug":                o.Slug,
		"phone":               o.Phone,
		"address":             o.Address,
		"timezone":            o.Timezone,
		"min_advance_minutes": o.MinAdvanceMinutes,
	}
}
