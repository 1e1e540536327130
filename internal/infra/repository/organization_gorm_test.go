package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ialiagadev/physia-scheduler/internal/models"
)

func TestGetOrganizationBySlug(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationGormRepository(db)

	seed(t, db, &models.Organization{Name: "Fisio Centro", Slug: "fisio-centro"})

	org, err := repo.GetOrganizationBySlug(context.Background(), "  Fisio-Centro ")
	require.NoError(t, err)
	assert.Equal(t, "Fisio Centro", org.Name)

	_, err = repo.GetOrganizationBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
