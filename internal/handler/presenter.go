package handler

import (
	"bytes"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sitecontent/internal/db"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type galleryImageView struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Image           *string   `json:"image"`
	ImageURL        *string   `json:"image_url"`
	ImageWidth      int       `json:"image_width"`
	ImageHeight     int       `json:"image_height"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html"`
	Order           int       `json:"order"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

type serviceView struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Icon            string    `json:"icon"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html"`
	Order           int       `json:"order"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func (a *API) presentGalleryImage(c *gin.Context, item *db.GalleryImage) galleryImageView {
	view := galleryImageView{
		ID:              item.ID,
		Title:           item.Title,
		ImageWidth:      item.ImageWidth,
		ImageHeight:     item.ImageHeight,
		Description:     item.Description,
		DescriptionHTML: renderDescription(item.Description),
		Order:           item.Order,
		IsActive:        item.IsActive,
		CreatedAt:       item.CreatedAt,
	}
	if item.Image != "" {
		path := a.media.URLPath(item.Image)
		absolute := a.absoluteURL(c, path)
		view.Image = &path
		view.ImageURL = &absolute
	}
	return view
}

func (a *API) presentGalleryImages(c *gin.Context, items []db.GalleryImage) []galleryImageView {
	views := make([]galleryImageView, 0, len(items))
	for i := range items {
		views = append(views, a.presentGalleryImage(c, &items[i]))
	}
	return views
}

func presentService(item *db.Service) serviceView {
	return serviceView{
		ID:              item.ID,
		Name:            item.Name,
		Icon:            item.Icon,
		Description:     item.Description,
		DescriptionHTML: renderDescription(item.Description),
		Order:           item.Order,
		IsActive:        item.IsActive,
		CreatedAt:       item.CreatedAt,
	}
}

func presentServices(items []db.Service) []serviceView {
	views := make([]serviceView, 0, len(items))
	for i := range items {
		views = append(views, presentService(&items[i]))
	}
	return views
}

// absoluteURL 以 SITE_BASE_URL 或请求的 scheme+host 拼出绝对地址。
// X-Forwarded-Proto 仅在请求来自可信代理时采纳。
func (a *API) absoluteURL(c *gin.Context, path string) string {
	base := a.siteBaseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		} else if a.fromTrustedProxy(c.RemoteIP()) && strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return strings.TrimRight(base, "/") + path
}

func renderDescription(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return sanitizer.Sanitize(content)
	}
	return strings.TrimSpace(string(sanitizer.SanitizeBytes(buf.Bytes())))
}
