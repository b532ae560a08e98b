package service

import (
	"context"
	"strings"
	"time"

	"github.com/tinythreads/internal/cache"
	"github.com/tinythreads/internal/constants"
	"github.com/tinythreads/internal/logger"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/repository"
	"github.com/tinythreads/internal/slug"
)

const publicCategoriesTTL = 5 * time.Minute

// CategoryInvalidMessage 分类校验失败提示
const CategoryInvalidMessage = "Invalid fields for category."

var categoryFieldRules = fieldRules{
	"name": {
		"":    "Category name must be at least 2 characters.",
		"max": "Category name must be at most 100 characters.",
	},
	"description": {
		"": "Description must be at most 500 characters.",
	},
	"image_url": {
		"": "Image URL must be a valid URL.",
	},
	"gender": {
		"": "Gender must be boys, girls or unisex.",
	},
}

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Name        string `json:"name" validate:"min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
	ImageURL    string `json:"image_url" validate:"omitempty,imageref"`
	Gender      string `json:"gender" validate:"omitempty,oneof=boys girls unisex"`
}

func (in CategoryInput) normalize() CategoryInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	if in.Gender == "" {
		in.Gender = constants.GenderUnisex
	}
	return in
}

// validate 校验输入并生成 slug
func (in CategoryInput) validate() (string, error) {
	fields := collectFieldErrors(in, categoryFieldRules)
	categorySlug := slug.Generate(in.Name)
	if _, exists := fields["name"]; !exists && categorySlug == "" {
		fields["name"] = "Category name must contain letters or numbers."
	}
	return categorySlug, toValidationError(CategoryInvalidMessage, fields)
}

// List 后台分类列表
func (s *CategoryService) List(filter repository.CategoryListFilter) ([]models.Category, error) {
	return s.repo.List(filter)
}

// ListPublic 前台分类列表，Redis 可用时缓存
func (s *CategoryService) ListPublic(ctx context.Context, gender string) ([]models.Category, error) {
	gender = strings.ToLower(strings.TrimSpace(gender))
	key := publicCategoriesKey(gender)

	var cached []models.Category
	hit, err := cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warnw("category_cache_read_failed", "key", key, "error", err)
	}
	if hit {
		return cached, nil
	}

	categories, err := s.repo.List(repository.CategoryListFilter{Gender: gender})
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, key, categories, publicCategoriesTTL); err != nil {
		logger.Warnw("category_cache_write_failed", "key", key, "error", err)
	}
	return categories, nil
}

// Get 获取分类
func (s *CategoryService) Get(id string) (*models.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrCategoryIDMissing
	}
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	input = input.normalize()
	categorySlug, err := input.validate()
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(categorySlug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	category := models.Category{
		Name:        input.Name,
		Slug:        categorySlug,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Gender:      input.Gender,
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, err
	}
	s.invalidatePublic(ctx)
	return &category, nil
}

// Update 更新分类，名称变更时同步 slug
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*models.Category, error) {
	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	input = input.normalize()
	categorySlug, err := input.validate()
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountBySlug(categorySlug, &category.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	category.Name = input.Name
	category.Slug = categorySlug
	category.Description = input.Description
	category.ImageURL = input.ImageURL
	category.Gender = input.Gender

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	s.invalidatePublic(ctx)
	return category, nil
}

// Delete 删除分类，仍有商品关联时拒绝
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	category, err := s.Get(id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountProducts(category.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.repo.Delete(category.ID); err != nil {
		return err
	}
	s.invalidatePublic(ctx)
	return nil
}

// ResolveCategoryID 把 slug 或名称解析为分类 ID，找不到时返回空串
func (s *CategoryService) ResolveCategoryID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	category, err := s.repo.GetBySlug(strings.ToLower(ref))
	if err != nil {
		return "", err
	}
	if category != nil {
		return category.ID, nil
	}

	name := slug.Humanize(ref)
	if category, err = s.repo.GetByName(name, false); err != nil {
		return "", err
	}
	if category != nil {
		return category.ID, nil
	}
	if category, err = s.repo.GetByName(name, true); err != nil {
		return "", err
	}
	if category == nil {
		logger.Debugw("category_ref_unresolved", "ref", ref)
		return "", nil
	}
	return category.ID, nil
}

func (s *CategoryService) invalidatePublic(ctx context.Context) {
	keys := []string{publicCategoriesKey("")}
	for _, gender := range []string{constants.GenderBoys, constants.GenderGirls, constants.GenderUnisex} {
		keys = append(keys, publicCategoriesKey(gender))
	}
	if err := cache.Del(ctx, keys...); err != nil {
		logger.Warnw("category_cache_invalidate_failed", "error", err)
	}
}

func publicCategoriesKey(gender string) string {
	if gender == "" {
		return constants.CacheKeyPublicCategories + ":all"
	}
	return constants.CacheKeyPublicCategories + ":" + gender
}
