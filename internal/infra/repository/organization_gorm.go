package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/models"
)

type OrganizationGormRepository struct {
	db *gorm.DB
}

func NewOrganizationGormRepository(db *gorm.DB) *OrganizationGormRepository {
	return &OrganizationGormRepository{db: db}
}

func (r *OrganizationGormRepository) GetOrganizationBySlug(
	ctx context.Context,
	slug string,
) (*models.Organization, error) {

	var org models.Organization
	if err := r.db.WithContext(ctx).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
