package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/httpresp"
	"github.com/ialiagadev/physia-scheduler/internal/models"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

func (h *ClientHandler) List(c *gin.Context) {
	who := callerFrom(c)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("organization_id = ?", who.OrganizationID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Find(&clients).Error; err != nil {

		httperr.Internal(c, "failed_to_list_clients", "Could not list clients.")
		return
	}

	httpresp.List(c, clients)
}
