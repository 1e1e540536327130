package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/config"
	"github.com/ialiagadev/physia-scheduler/internal/httperr"
	"github.com/ialiagadev/physia-scheduler/internal/models"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
	"github.com/ialiagadev/physia-scheduler/internal/validators"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config

	// emailDomainOK is swapped in tests to avoid DNS lookups.
	emailDomainOK func(email string) bool
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		db:            db,
		config:        cfg,
		emailDomainOK: validators.IsEmailDomainValid,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	OrganizationName    string `json:"organization_name" binding:"required"`
	OrganizationSlug    string `json:"organization_slug" binding:"required"`
	OrganizationPhone   string `json:"organization_phone"`
	OrganizationAddress string `json:"organization_address"`
	Timezone            string `json:"timezone"`

	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateProfessionalRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"omitempty,oneof=admin professional"`
}

// --------- Handlers ---------

// Register creates an organization together with its first admin.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.OrganizationSlug))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !validators.IsSlug(slug) {
		httperr.BadRequest(c, "invalid_slug", "Slug must be lowercase letters, digits and single hyphens.")
		return
	}

	tz := req.Timezone
	if tz == "" {
		tz = timezone.Default()
	}
	if !timezone.IsValid(tz) {
		httperr.BadRequest(c, "invalid_timezone", "Unknown IANA timezone.")
		return
	}

	if !h.emailDomainOK(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not look valid.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not process the password.")
		return
	}

	org := models.Organization{
		Name:     req.OrganizationName,
		Slug:     slug,
		Phone:    req.OrganizationPhone,
		Address:  req.OrganizationAddress,
		Timezone: tz,
	}
	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         models.RoleAdmin,
		Active:       true,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Organization{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return httperr.ErrBusiness("slug_already_exists")
		}
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return httperr.ErrBusiness("email_already_exists")
		}

		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		user.OrganizationID = org.ID
		return tx.Create(&user).Error
	})
	if err != nil {
		if code := httperr.BusinessCode(err); code != "" {
			httperr.Conflict(c, code, "Already registered.")
			return
		}
		httperr.Internal(c, "failed_to_register", "Could not register the organization.")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not issue a token.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":         userView(&user),
		"organization": organizationView(&org),
		"token":        token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.Preload("Organization").
		Where("email = ? AND active = ?", email, true).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
			return
		}
		httperr.Internal(c, "internal_error", "Unexpected error.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not issue a token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         userView(&user),
		"organization": organizationView(&user.Organization),
		"token":        token,
	})
}

// ListProfessionals returns the organization's active staff.
func (h *AuthHandler) ListProfessionals(c *gin.Context) {
	who := callerFrom(c)

	var users []models.User
	if err := h.db.
		Where("organization_id = ? AND active = ?", who.OrganizationID, true).
		Order("id ASC").
		Find(&users).Error; err != nil {
		httperr.Internal(c, "failed_to_list_professionals", "Could not list professionals.")
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userView(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// CreateProfessional adds a staff member to the caller's organization. Admin only.
func (h *AuthHandler) CreateProfessional(c *gin.Context) {
	who := callerFrom(c)

	var req CreateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleProfessional
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not process the password.")
		return
	}

	user := models.User{
		OrganizationID: who.OrganizationID,
		Name:           req.Name,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:   string(hashed),
		Phone:          req.Phone,
		Role:           role,
		Active:         true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		if httperr.IsExclusionConflict(err) {
			httperr.Conflict(c, "email_already_exists", "Email already registered.")
			return
		}
		httperr.Internal(c, "failed_to_create_professional", "Could not create the professional.")
		return
	}

	c.JSON(http.StatusCreated, userView(&user))
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":            user.ID,
		"organizationId": user.OrganizationID,
		"role":           user.Role,
		"exp":            now.Add(tokenTTL).Unix(),
		"iat":            now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
