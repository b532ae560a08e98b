package service

import (
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/constants"
	"github.com/tinythreads/internal/logger"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	uploadURLRoot   = "/uploads"
	sniffHeaderSize = 512
)

var allowedUploadScenes = map[string]struct{}{
	constants.UploadSceneCommon:   {},
	constants.UploadSceneProduct:  {},
	constants.UploadSceneCategory: {},
}

// imageVariant 派生图规格，宽度不足时保留原尺寸
type imageVariant struct {
	suffix  string
	width   int
	quality int
	assign  func(*UploadResult, string)
}

// UploadResult 上传结果，派生图生成失败时对应地址为空
type UploadResult struct {
	Success      bool   `json:"success"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	MediumURL    string `json:"medium_url,omitempty"`
}

// UploadService 商品与分类图片上传
type UploadService struct {
	cfg *config.UploadConfig
	now func() time.Time
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg *config.UploadConfig) *UploadService {
	return &UploadService{cfg: cfg, now: time.Now}
}

// SaveFile 校验并保存上传的图片，同时生成 _thumb / _medium 两种 JPEG 派生图
// 保存路径为 <dir>/<scene>/<yyyy>/<mm>/<uuid><ext>
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (*UploadResult, error) {
	if file == nil {
		return nil, ErrUploadFileMissing
	}
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return nil, fmt.Errorf("%w: max %d MB", ErrUploadTooLarge, s.cfg.MaxSize/1024/1024)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.AllowedExtensions) > 0 && !isAllowedExtension(ext, s.cfg.AllowedExtensions) {
		return nil, fmt.Errorf("%w: extension %q", ErrUploadType, ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	contentType, err := s.sniffContentType(src)
	if err != nil {
		return nil, err
	}
	isImage := strings.HasPrefix(contentType, "image/")
	if isImage {
		if err := s.checkDimensions(src); err != nil {
			return nil, err
		}
	}

	now := s.now()
	relDir := path.Join(normalizeUploadScene(scene), now.Format("2006"), now.Format("01"))
	baseName := uuid.NewString()
	savePath := filepath.Join(s.baseDir(), filepath.FromSlash(relDir), baseName+ext)
	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if err := writeFile(savePath, src); err != nil {
		return nil, err
	}

	result := &UploadResult{Success: true, URL: uploadURL(relDir, baseName+ext)}
	if isImage {
		s.writeVariants(savePath, relDir, baseName, result)
	}
	return result, nil
}

// sniffContentType 按文件头识别类型，不信任客户端声明
func (s *UploadService) sniffContentType(src io.ReadSeeker) (string, error) {
	header := make([]byte, sniffHeaderSize)
	n, err := io.ReadFull(src, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	contentType := http.DetectContentType(header[:n])
	if len(s.cfg.AllowedTypes) > 0 && !containsFold(s.cfg.AllowedTypes, contentType) {
		return "", fmt.Errorf("%w: %s", ErrUploadType, contentType)
	}
	return contentType, nil
}

func (s *UploadService) checkDimensions(src io.ReadSeeker) error {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	cfg, format, err := image.DecodeConfig(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadType, err)
	}
	if s.cfg.MaxWidth > 0 && cfg.Width > s.cfg.MaxWidth {
		return fmt.Errorf("%w: %s width %d > %d", ErrUploadDimensions, format, cfg.Width, s.cfg.MaxWidth)
	}
	if s.cfg.MaxHeight > 0 && cfg.Height > s.cfg.MaxHeight {
		return fmt.Errorf("%w: %s height %d > %d", ErrUploadDimensions, format, cfg.Height, s.cfg.MaxHeight)
	}
	return nil
}

func (s *UploadService) baseDir() string {
	if dir := strings.TrimSpace(s.cfg.Dir); dir != "" {
		return dir
	}
	return "uploads"
}

func (s *UploadService) variants() []imageVariant {
	return []imageVariant{
		{
			suffix:  "_thumb",
			width:   positiveOrDefault(s.cfg.ThumbnailWidth, 300),
			quality: 60,
			assign:  func(r *UploadResult, url string) { r.ThumbnailURL = url },
		},
		{
			suffix:  "_medium",
			width:   positiveOrDefault(s.cfg.MediumWidth, 800),
			quality: 75,
			assign:  func(r *UploadResult, url string) { r.MediumURL = url },
		},
	}
}

// writeVariants 生成派生图；失败只记录日志，原图仍然可用
func (s *UploadService) writeVariants(original, relDir, baseName string, result *UploadResult) {
	img, err := imaging.Open(original, imaging.AutoOrientation(true))
	if err != nil {
		logger.Warnw("upload_variant_decode_failed", "path", original, "error", err)
		return
	}
	for _, variant := range s.variants() {
		resized := img
		if img.Bounds().Dx() > variant.width {
			resized = imaging.Resize(img, variant.width, 0, imaging.Lanczos)
		}
		name := baseName + variant.suffix + ".jpg"
		target := filepath.Join(filepath.Dir(original), name)
		if err := imaging.Save(resized, target, imaging.JPEGQuality(variant.quality)); err != nil {
			logger.Warnw("upload_variant_save_failed", "path", target, "error", err)
			continue
		}
		variant.assign(result, uploadURL(relDir, name))
	}
}

func uploadURL(relDir, name string) string {
	return path.Join(uploadURLRoot, relDir, name)
}

func writeFile(target string, src io.Reader) error {
	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(target)
		return err
	}
	return dst.Close()
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}

func positiveOrDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func normalizeUploadScene(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := allowedUploadScenes[value]; ok {
		return value
	}
	return constants.UploadSceneCommon
}

// isAllowedExtension 配置中的扩展名可带或不带点
func isAllowedExtension(ext string, allowed []string) bool {
	if ext == "" {
		return false
	}
	for _, item := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(item))
		if normalized != "" && "."+strings.TrimPrefix(normalized, ".") == ext {
			return true
		}
	}
	return false
}
