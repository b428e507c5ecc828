package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dataset-feedback/backend/internal/models"
)

// catalogRepository reads the projected catalog tables. Deleted or draft
// datasets and resources are filtered out so feedback never attaches to
// content the portal no longer shows.
type catalogRepository struct {
	db *gorm.DB
}

func (r *catalogRepository) GetResourceContext(ctx context.Context, resourceID string) (*models.ResourceContext, error) {
	var rc models.ResourceContext
	err := r.db.WithContext(ctx).
		First(&rc.Resource, "id = ? AND state = ?", resourceID, "active").Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		First(&rc.Dataset, "id = ? AND state = ?", rc.Resource.DatasetID, "active").Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).First(&rc.Organization, "id = ?", rc.Dataset.OwnerOrg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *catalogRepository) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *catalogRepository) GetOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).First(&org, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// ListOrganizations returns the named organizations, or all of them when
// ids is nil.
func (r *catalogRepository) ListOrganizations(ctx context.Context, ids []string) ([]models.Organization, error) {
	var orgs []models.Organization
	q := r.db.WithContext(ctx).Order("name ASC")
	if ids != nil {
		q = q.Where("id IN ?", ids)
	}
	err := q.Find(&orgs).Error
	return orgs, err
}
