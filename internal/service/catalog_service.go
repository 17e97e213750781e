package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sitecontent/internal/db"
	"gorm.io/gorm"
)

var ErrServiceNotFound = errors.New("service not found")

const (
	serviceNameMaxLen = 100
	serviceIconMaxLen = 100
)

// CatalogService handles CRUD for the services shown on the site.
type CatalogService struct {
	db *gorm.DB
}

// ServiceInput carries submitted fields; nil means the field was not submitted.
type ServiceInput struct {
	Name        *string
	Icon        *string
	Description *string
	Order       *int
	IsActive    *bool
}

// NewCatalogService creates a CatalogService instance.
func NewCatalogService(gdb *gorm.DB) *CatalogService {
	return &CatalogService{db: gdb}
}

// List returns services ordered by display order then id.
func (s *CatalogService) List(ctx context.Context, filter ListFilter) ([]db.Service, error) {
	query := s.db.WithContext(ctx).Model(&db.Service{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	items := make([]db.Service, 0)
	if err := query.Order("display_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a service by id.
func (s *CatalogService) Get(ctx context.Context, id uint) (*db.Service, error) {
	var item db.Service
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ValidateServiceInput checks submitted fields. creating enforces required fields.
func ValidateServiceInput(input ServiceInput, creating bool) *ValidationError {
	errs := NewValidationError()
	validateText(errs, "name", input.Name, true, creating, serviceNameMaxLen)
	validateText(errs, "icon", input.Icon, true, creating, serviceIconMaxLen)
	return errs
}

// Create inserts a new service.
func (s *CatalogService) Create(ctx context.Context, input ServiceInput) (*db.Service, error) {
	if err := ValidateServiceInput(input, true).errOrNil(); err != nil {
		return nil, err
	}

	item := db.Service{
		Name:        trimmedOrEmpty(input.Name),
		Icon:        trimmedOrEmpty(input.Icon),
		Description: trimmedOrEmpty(input.Description),
		Order:       intOrDefault(input.Order, 0),
		IsActive:    boolOrDefault(input.IsActive, true),
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update applies a partial update; only submitted fields change.
func (s *CatalogService) Update(ctx context.Context, id uint, input ServiceInput) (*db.Service, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ValidateServiceInput(input, false).errOrNil(); err != nil {
		return nil, err
	}

	columns := make([]string, 0, 6)
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
		columns = append(columns, "Name")
	}
	if input.Icon != nil {
		item.Icon = strings.TrimSpace(*input.Icon)
		columns = append(columns, "Icon")
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
		columns = append(columns, "Description")
	}
	if input.Order != nil {
		item.Order = *input.Order
		columns = append(columns, "Order")
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
		columns = append(columns, "IsActive")
	}

	if len(columns) == 0 {
		return item, nil
	}
	columns = append(columns, "UpdatedAt")

	if err := s.db.WithContext(ctx).Model(item).Select(columns).Updates(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a service.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.Service{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	return nil
}
