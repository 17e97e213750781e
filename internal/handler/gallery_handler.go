package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitecontent/internal/service"
)

const (
	msgImageUploaded = "Image uploaded successfully"
	msgImageUpdated  = "Image updated successfully"
	msgImageDeleted  = "Image deleted successfully"
	msgImageNotFound = "Image not found"
)

// galleryInputFrom 读取请求体中的作品字段，并收集类型转换错误。
func galleryInputFrom(c *gin.Context) (service.GalleryInput, *service.ValidationError) {
	p := payloadFrom(c)
	errs := service.NewValidationError()
	input := service.GalleryInput{
		Title:       p.text("title", errs),
		Description: p.text("description", errs),
		Order:       p.integer("order", errs),
		IsActive:    p.boolean("is_active", errs),
		Image:       p.file("image", errs),
	}
	return input, errs
}

// PublicGallery returns active gallery images for the public site.
func (a *API) PublicGallery(c *gin.Context) {
	items, err := a.gallery.List(c.Request.Context(), service.ListFilter{ActiveOnly: true})
	if err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.presentGalleryImages(c, items))
}

// AdminGalleryList returns all gallery images, including inactive ones.
func (a *API) AdminGalleryList(c *gin.Context) {
	items, err := a.gallery.List(c.Request.Context(), service.ListFilter{})
	if err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.presentGalleryImages(c, items))
}

// CreateGalleryImage uploads a new gallery image.
func (a *API) CreateGalleryImage(c *gin.Context) {
	input, errs := galleryInputFrom(c)
	if errs.Merge(service.ValidateGalleryInput(input, true)).HasErrors() {
		respondValidation(c, errs)
		return
	}

	item, err := a.gallery.Create(c.Request.Context(), input)
	if err != nil {
		a.respondServiceError(c, err, nil, "")
		return
	}

	a.logMutation(c, "gallery image created", item.ID)
	respondData(c, http.StatusCreated, a.presentGalleryImage(c, item), msgImageUploaded)
}

// UpdateGalleryImage applies a partial update to a gallery image.
func (a *API) UpdateGalleryImage(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, http.StatusNotFound, msgImageNotFound)
		return
	}
	if _, err := a.gallery.Get(c.Request.Context(), id); err != nil {
		a.respondServiceError(c, err, service.ErrGalleryNotFound, msgImageNotFound)
		return
	}

	input, errs := galleryInputFrom(c)
	if errs.Merge(service.ValidateGalleryInput(input, false)).HasErrors() {
		respondValidation(c, errs)
		return
	}

	item, err := a.gallery.Update(c.Request.Context(), id, input)
	if err != nil {
		a.respondServiceError(c, err, service.ErrGalleryNotFound, msgImageNotFound)
		return
	}

	a.logMutation(c, "gallery image updated", item.ID)
	respondData(c, http.StatusOK, a.presentGalleryImage(c, item), msgImageUpdated)
}

// DeleteGalleryImage removes a gallery image.
func (a *API) DeleteGalleryImage(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, http.StatusNotFound, msgImageNotFound)
		return
	}

	if err := a.gallery.Delete(c.Request.Context(), id); err != nil {
		a.respondServiceError(c, err, service.ErrGalleryNotFound, msgImageNotFound)
		return
	}

	a.logMutation(c, "gallery image deleted", id)
	respondMessage(c, msgImageDeleted)
}

func (a *API) logMutation(c *gin.Context, message string, id uint) {
	username := ""
	if account := currentAdmin(c); account != nil {
		username = account.Username
	}
	a.logger.InfoContext(c.Request.Context(), message, "id", id, "admin", username)
}
