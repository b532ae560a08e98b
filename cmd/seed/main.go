package main

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/constants"
	"github.com/tinythreads/internal/logger"
	"github.com/tinythreads/internal/models"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type categorySeed struct {
	Slug        string
	Name        string
	Gender      string
	Description string
	ImageURL    string
}

type productSeed struct {
	Category    string
	Name        string
	Description string
	Price       string
	Stock       int
	Sizes       []string
	Images      []string
	Trending    bool
}

var categorySeeds = []categorySeed{
	{Slug: "girls-dresses", Name: "Girls Dresses", Gender: constants.GenderGirls, Description: "Twirl-ready dresses for every occasion.", ImageURL: "/uploads/seed/girls-dresses.jpg"},
	{Slug: "boys-tops", Name: "Boys Tops", Gender: constants.GenderBoys, Description: "Tees, polos and shirts that survive the playground.", ImageURL: "/uploads/seed/boys-tops.jpg"},
	{Slug: "outerwear", Name: "Outerwear", Gender: constants.GenderUnisex, Description: "Jackets and hoodies for chilly mornings.", ImageURL: "/uploads/seed/outerwear.jpg"},
	{Slug: "sleepwear", Name: "Sleepwear", Gender: constants.GenderUnisex, Description: "Soft cotton pyjamas and sleep sacks."},
}

var productSeeds = []productSeed{
	{Category: "girls-dresses", Name: "Floral Sundress", Description: "Lightweight cotton sundress with a floral print.", Price: "29.90", Stock: 24, Sizes: []string{"1-3", "3-6", "6-9"}, Images: []string{"/uploads/seed/floral-sundress.jpg"}, Trending: true},
	{Category: "girls-dresses", Name: "Velvet Party Dress", Description: "Velvet bodice with a tulle skirt.", Price: "45.00", Stock: 8, Sizes: []string{"6-9", "9-12"}, Images: []string{"/uploads/seed/velvet-dress.jpg", "/uploads/seed/velvet-dress-back.jpg"}},
	{Category: "boys-tops", Name: "Striped Polo", Description: "Pique cotton polo with contrast stripes.", Price: "18.50", Stock: 40, Sizes: []string{"3-6", "6-9", "9-12"}, Images: []string{"/uploads/seed/striped-polo.jpg"}, Trending: true},
	{Category: "boys-tops", Name: "Dino Graphic Tee", Description: "Organic cotton tee with a glow-in-the-dark print.", Price: "14.00", Stock: 55, Sizes: []string{"1-3", "3-6"}, Images: []string{"/uploads/seed/dino-tee.jpg"}},
	{Category: "outerwear", Name: "Cozy Fleece Hoodie", Description: "Brushed fleece hoodie with kangaroo pocket.", Price: "32.00", Stock: 16, Sizes: []string{"6-9", "9-12", "12-15"}, Images: []string{"/uploads/seed/fleece-hoodie.jpg"}, Trending: true},
	{Category: "outerwear", Name: "Rain Puddle Jacket", Description: "Waterproof shell with taped seams.", Price: "49.90", Stock: 0, Sizes: []string{"3-6", "6-9"}, Images: []string{"/uploads/seed/rain-jacket.jpg"}},
	{Category: "sleepwear", Name: "Star Print Pyjamas", Description: "Two-piece pyjama set in soft jersey.", Price: "21.00", Stock: 30, Sizes: []string{"0-1", "1-3", "3-6"}},
}

func main() {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production") {
		if err := godotenv.Overload(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("dotenv load failed: %v", err)
		}
	}

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBOptions{
		Pool: models.DBPoolConfig{
			MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		},
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	categoryIDs, err := seedCategories(models.DB, stdLog)
	if err != nil {
		stdLog.Fatalf("Failed to seed categories: %v", err)
	}
	created, err := seedProducts(models.DB, categoryIDs, stdLog)
	if err != nil {
		stdLog.Fatalf("Failed to seed products: %v", err)
	}
	stdLog.Printf("Seed finished: %d categories, %d new products", len(categoryIDs), created)
}

// seedCategories 按 slug 幂等写入，返回 slug 到 ID 的映射
func seedCategories(db *gorm.DB, stdLog *log.Logger) (map[string]string, error) {
	ids := make(map[string]string, len(categorySeeds))
	for _, seed := range categorySeeds {
		var existing models.Category
		err := db.Where("slug = ?", seed.Slug).First(&existing).Error
		if err == nil {
			stdLog.Printf("Category already exists: %s", seed.Slug)
			ids[seed.Slug] = existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		category := models.Category{
			Name:        seed.Name,
			Slug:        seed.Slug,
			Gender:      seed.Gender,
			Description: seed.Description,
			ImageURL:    seed.ImageURL,
		}
		if err := db.Create(&category).Error; err != nil {
			return nil, err
		}
		stdLog.Printf("Created category: %s", seed.Slug)
		ids[seed.Slug] = category.ID
	}
	return ids, nil
}

// seedProducts 同分类下同名商品视为已存在
func seedProducts(db *gorm.DB, categoryIDs map[string]string, stdLog *log.Logger) (int, error) {
	created := 0
	for _, seed := range productSeeds {
		categoryID, ok := categoryIDs[seed.Category]
		if !ok {
			stdLog.Printf("Skip product %q: category %s missing", seed.Name, seed.Category)
			continue
		}
		var count int64
		if err := db.Model(&models.Product{}).
			Where("category_id = ? AND LOWER(name) = ?", categoryID, strings.ToLower(seed.Name)).
			Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			stdLog.Printf("Product already exists: %s", seed.Name)
			continue
		}

		price, err := decimal.NewFromString(seed.Price)
		if err != nil {
			return created, err
		}
		product := models.Product{
			Name:          seed.Name,
			Description:   seed.Description,
			Price:         models.NewMoneyFromDecimal(price),
			StockQuantity: seed.Stock,
			CategoryID:    categoryID,
			ImageURLs:     models.StringArray(seed.Images),
			Sizes:         models.StringArray(seed.Sizes),
			IsTrending:    seed.Trending,
		}
		if len(seed.Images) > 0 {
			product.ImageURL = seed.Images[0]
		}
		if err := db.Create(&product).Error; err != nil {
			return created, err
		}
		created++
		stdLog.Printf("Created product: %s", seed.Name)
	}
	return created, nil
}
