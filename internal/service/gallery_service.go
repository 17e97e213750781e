package service

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/sitecontent/internal/db"
	"github.com/sitecontent/internal/media"
	"gorm.io/gorm"
)

var ErrGalleryNotFound = errors.New("gallery image not found")

const (
	galleryTitleMaxLen = 200
	galleryMediaDir    = "gallery"
)

// GalleryService handles gallery CRUD.
type GalleryService struct {
	db     *gorm.DB
	store  media.Store
	logger *slog.Logger
}

// GalleryInput carries submitted fields; nil means the field was not submitted.
type GalleryInput struct {
	Title       *string
	Description *string
	Order       *int
	IsActive    *bool
	Image       *multipart.FileHeader
}

// NewGalleryService creates a GalleryService instance.
func NewGalleryService(gdb *gorm.DB, store media.Store, logger *slog.Logger) *GalleryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GalleryService{db: gdb, store: store, logger: logger}
}

// List returns gallery images ordered by display order then id.
func (s *GalleryService) List(ctx context.Context, filter ListFilter) ([]db.GalleryImage, error) {
	query := s.db.WithContext(ctx).Model(&db.GalleryImage{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	items := make([]db.GalleryImage, 0)
	if err := query.Order("display_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a gallery image by id.
func (s *GalleryService) Get(ctx context.Context, id uint) (*db.GalleryImage, error) {
	var item db.GalleryImage
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ValidateGalleryInput checks submitted fields. creating enforces required fields.
func ValidateGalleryInput(input GalleryInput, creating bool) *ValidationError {
	errs := NewValidationError()
	validateText(errs, "title", input.Title, true, creating, galleryTitleMaxLen)
	if creating && input.Image == nil {
		errs.Add("image", MsgRequired)
	}
	return errs
}

// Create stores the uploaded image and inserts a new gallery record.
func (s *GalleryService) Create(ctx context.Context, input GalleryInput) (*db.GalleryImage, error) {
	if err := ValidateGalleryInput(input, true).errOrNil(); err != nil {
		return nil, err
	}

	item := db.GalleryImage{
		Title:       trimmedOrEmpty(input.Title),
		Description: trimmedOrEmpty(input.Description),
		Order:       intOrDefault(input.Order, 0),
		IsActive:    boolOrDefault(input.IsActive, true),
	}

	stored, err := s.saveImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}
	item.Image = stored.Path
	item.ImageWidth = stored.Width
	item.ImageHeight = stored.Height

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		s.removeFile(stored.Path)
		return nil, err
	}
	return &item, nil
}

// Update applies a partial update; only submitted fields change.
func (s *GalleryService) Update(ctx context.Context, id uint, input GalleryInput) (*db.GalleryImage, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ValidateGalleryInput(input, false).errOrNil(); err != nil {
		return nil, err
	}

	columns := make([]string, 0, 6)
	if input.Title != nil {
		item.Title = strings.TrimSpace(*input.Title)
		columns = append(columns, "Title")
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

	previousImage := item.Image
	var stored media.StoredFile
	if input.Image != nil {
		stored, err = s.saveImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		item.Image = stored.Path
		item.ImageWidth = stored.Width
		item.ImageHeight = stored.Height
		columns = append(columns, "Image", "ImageWidth", "ImageHeight")
	}

	if len(columns) == 0 {
		return item, nil
	}
	columns = append(columns, "UpdatedAt")

	if err := s.db.WithContext(ctx).Model(item).Select(columns).Updates(item).Error; err != nil {
		if stored.Path != "" {
			s.removeFile(stored.Path)
		}
		return nil, err
	}

	if stored.Path != "" && previousImage != "" && previousImage != stored.Path {
		s.removeFile(previousImage)
	}
	return item, nil
}

// Delete removes a gallery image and its stored file.
func (s *GalleryService) Delete(ctx context.Context, id uint) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&db.GalleryImage{}, item.ID).Error; err != nil {
		return err
	}
	s.removeFile(item.Image)
	return nil
}

func (s *GalleryService) saveImage(ctx context.Context, file *multipart.FileHeader) (media.StoredFile, error) {
	stored, err := s.store.Save(ctx, galleryMediaDir, file)
	if err != nil {
		if errors.Is(err, media.ErrNotImage) {
			errs := NewValidationError()
			errs.Add("image", MsgInvalidImage)
			return media.StoredFile{}, errs
		}
		return media.StoredFile{}, err
	}
	return stored, nil
}

func (s *GalleryService) removeFile(path string) {
	if path == "" {
		return
	}
	if err := s.store.Remove(path); err != nil {
		s.logger.Warn("failed to remove gallery file", "path", path, "error", err)
	}
}
