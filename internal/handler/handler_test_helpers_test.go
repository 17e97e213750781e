package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitecontent/internal/auth"
	"github.com/sitecontent/internal/db"
	"github.com/sitecontent/internal/logging"
	"github.com/sitecontent/internal/media"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminUser = "admin"
	testAdminPass = "secret123"
	testSecret    = "handler-test-secret"
)

type testEnv struct {
	api    *API
	db     *gorm.DB
	engine *gin.Engine
	token  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	api := NewAPI(Options{
		DB:             gdb,
		Credentials:    auth.NewEnvCredentialStore(gdb, testAdminUser, testAdminPass),
		Tokens:         auth.NewTokenManager(testSecret),
		Media:          media.NewLocalStore(t.TempDir(), "/media/"),
		Logger:         logging.NewWithWriter(io.Discard, "error", "json"),
		SiteBaseURL:    "https://api.example.com",
		MaxUploadBytes: 1 << 20,
	})

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(MethodNotAllowed)
	engine.GET("/gallery/", api.PublicGallery)
	engine.GET("/services/", api.PublicServices)
	engine.POST("/admin/login/", api.BindPayload(), api.Login)
	engine.POST("/admin/token/refresh/", api.BindPayload(), api.RefreshToken)

	admin := engine.Group("/admin", api.AuthRequired())
	admin.GET("/gallery/", api.AdminGalleryList)
	admin.POST("/gallery/create/", api.BindPayload(), api.CreateGalleryImage)
	admin.PUT("/gallery/:id/update/", api.BindPayload(), api.UpdateGalleryImage)
	admin.PATCH("/gallery/:id/update/", api.BindPayload(), api.UpdateGalleryImage)
	admin.DELETE("/gallery/:id/delete/", api.DeleteGalleryImage)
	admin.GET("/services/", api.AdminServiceList)
	admin.POST("/services/create/", api.BindPayload(), api.CreateService)
	admin.PUT("/services/:id/update/", api.BindPayload(), api.UpdateService)
	admin.PATCH("/services/:id/update/", api.BindPayload(), api.UpdateService)
	admin.DELETE("/services/:id/delete/", api.DeleteService)

	env := &testEnv{api: api, db: gdb, engine: engine}
	env.token = env.login(t)
	return env
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rr := e.doJSON(t, http.MethodPost, "/admin/login/", "", map[string]any{
		"username": testAdminUser,
		"password": testAdminPass,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rr, &resp)
	return resp.Token
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.do(req, token)
}

func (e *testEnv) doMultipart(t *testing.T, method, path, token string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	t.Helper()
	return e.doMultipartNamed(t, method, path, token, fields, "upload.png", image)
}

func (e *testEnv) doMultipartNamed(t *testing.T, method, path, token string, fields map[string]string, filename string, image []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("failed to write image: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.do(req, token)
}

func newFormRequest(method, path, body string) *http.Request {
	return newRawRequest(method, path, "application/x-www-form-urlencoded", body)
}

func newRawRequest(method, path, contentType, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

func (e *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.engine.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, rr.Body.String())
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func idPath(format string, id uint) string {
	return fmt.Sprintf(format, id)
}
