package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sitecontent/internal/config"
	"github.com/sitecontent/internal/db"
	"github.com/sitecontent/internal/logging"
	"gorm.io/gorm"
)

// 示例数据生成器
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	gdb, err := db.Open(cfg.DatabaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	ctx := context.Background()
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if _, err := db.EnsureAdmin(ctx, gdb, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("创建管理员失败: %v", err)
		}
		logger.Info("admin account ready", "username", cfg.AdminUsername)
	}

	services, err := seedServices(ctx, gdb)
	if err != nil {
		log.Fatalf("生成服务数据失败: %v", err)
	}
	images, err := seedGallery(ctx, gdb, cfg.MediaRoot)
	if err != nil {
		log.Fatalf("生成作品数据失败: %v", err)
	}

	logger.Info("seed complete", "services", services, "gallery_images", images)
}

type serviceSeed struct {
	name, icon, description string
	active                  bool
}

var sampleServices = []serviceSeed{
	{name: "Web Development", icon: "code", description: "Marketing sites and **web apps** built to last.", active: true},
	{name: "Brand Identity", icon: "palette", description: "Logos, colour systems and typography.", active: true},
	{name: "Photography", icon: "camera", description: "Product and event shoots.\nEditing included.", active: true},
	{name: "Consulting", icon: "briefcase", description: "Technical reviews and roadmaps.", active: false},
}

type gallerySeed struct {
	title, description string
	width, height      int
	tint               color.RGBA
	active             bool
}

var sampleGallery = []gallerySeed{
	{title: "Harbour at dusk", description: "Long exposure, _30s_.", width: 48, height: 32, tint: color.RGBA{R: 30, G: 60, B: 120, A: 255}, active: true},
	{title: "Studio portrait", description: "Single softbox.", width: 32, height: 48, tint: color.RGBA{R: 180, G: 140, B: 120, A: 255}, active: true},
	{title: "Tile study", description: "", width: 40, height: 40, tint: color.RGBA{R: 20, G: 140, B: 90, A: 255}, active: true},
	{title: "Unreleased draft", description: "Hidden until launch.", width: 48, height: 27, tint: color.RGBA{R: 90, G: 90, B: 90, A: 255}, active: false},
}

// seedServices 仅在表为空时写入示例服务，返回新建条数。
func seedServices(ctx context.Context, gdb *gorm.DB) (int, error) {
	var count int64
	if err := gdb.WithContext(ctx).Model(&db.Service{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	items := make([]db.Service, 0, len(sampleServices))
	for i, seed := range sampleServices {
		items = append(items, db.Service{
			Name:        seed.name,
			Icon:        seed.icon,
			Description: seed.description,
			Order:       i + 1,
			IsActive:    seed.active,
		})
	}
	if err := gdb.WithContext(ctx).Create(&items).Error; err != nil {
		return 0, err
	}
	return len(items), nil
}

// seedGallery 生成纯色 PNG 写入媒体目录并插入对应记录，表非空时跳过。
func seedGallery(ctx context.Context, gdb *gorm.DB, mediaRoot string) (int, error) {
	var count int64
	if err := gdb.WithContext(ctx).Model(&db.GalleryImage{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	dir := filepath.Join(mediaRoot, "gallery")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	items := make([]db.GalleryImage, 0, len(sampleGallery))
	for i, seed := range sampleGallery {
		name := fmt.Sprintf("seed-%02d.png", i+1)
		if err := writeSolidPNG(filepath.Join(dir, name), seed.width, seed.height, seed.tint); err != nil {
			return 0, err
		}
		items = append(items, db.GalleryImage{
			Title:       seed.title,
			Image:       "gallery/" + name,
			ImageWidth:  seed.width,
			ImageHeight: seed.height,
			Description: seed.description,
			Order:       i + 1,
			IsActive:    seed.active,
		})
	}
	if err := gdb.WithContext(ctx).Create(&items).Error; err != nil {
		return 0, err
	}
	return len(items), nil
}

func writeSolidPNG(path string, width, height int, tint color.RGBA) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, tint)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
