package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitecontent/internal/service"
)

const (
	msgServiceCreated  = "Service created successfully"
	msgServiceUpdated  = "Service updated successfully"
	msgServiceDeleted  = "Service deleted successfully"
	msgServiceNotFound = "Service not found"
)

func serviceInputFrom(c *gin.Context) (service.ServiceInput, *service.ValidationError) {
	p := payloadFrom(c)
	errs := service.NewValidationError()
	input := service.ServiceInput{
		Name:        p.text("name", errs),
		Icon:        p.text("icon", errs),
		Description: p.text("description", errs),
		Order:       p.integer("order", errs),
		IsActive:    p.boolean("is_active", errs),
	}
	return input, errs
}

// PublicServices returns active services for the public site.
func (a *API) PublicServices(c *gin.Context) {
	items, err := a.catalog.List(c.Request.Context(), service.ListFilter{ActiveOnly: true})
	if err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentServices(items))
}

// AdminServiceList returns all services, including inactive ones.
func (a *API) AdminServiceList(c *gin.Context) {
	items, err := a.catalog.List(c.Request.Context(), service.ListFilter{})
	if err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentServices(items))
}

// CreateService creates a new service.
func (a *API) CreateService(c *gin.Context) {
	input, errs := serviceInputFrom(c)
	if errs.Merge(service.ValidateServiceInput(input, true)).HasErrors() {
		respondValidation(c, errs)
		return
	}

	item, err := a.catalog.Create(c.Request.Context(), input)
	if err != nil {
		a.respondServiceError(c, err, nil, "")
		return
	}

	a.logMutation(c, "service created", item.ID)
	respondData(c, http.StatusCreated, presentService(item), msgServiceCreated)
}

// UpdateService applies a partial update to a service.
func (a *API) UpdateService(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, http.StatusNotFound, msgServiceNotFound)
		return
	}
	if _, err := a.catalog.Get(c.Request.Context(), id); err != nil {
		a.respondServiceError(c, err, service.ErrServiceNotFound, msgServiceNotFound)
		return
	}

	input, errs := serviceInputFrom(c)
	if errs.Merge(service.ValidateServiceInput(input, false)).HasErrors() {
		respondValidation(c, errs)
		return
	}

	item, err := a.catalog.Update(c.Request.Context(), id, input)
	if err != nil {
		a.respondServiceError(c, err, service.ErrServiceNotFound, msgServiceNotFound)
		return
	}

	a.logMutation(c, "service updated", item.ID)
	respondData(c, http.StatusOK, presentService(item), msgServiceUpdated)
}

// DeleteService removes a service.
func (a *API) DeleteService(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, http.StatusNotFound, msgServiceNotFound)
		return
	}

	if err := a.catalog.Delete(c.Request.Context(), id); err != nil {
		a.respondServiceError(c, err, service.ErrServiceNotFound, msgServiceNotFound)
		return
	}

	a.logMutation(c, "service deleted", id)
	respondMessage(c, msgServiceDeleted)
}
