package service

import "errors"

var (
	// 通用
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrQueueUnavailable = errors.New("queue unavailable")

	// 认证
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrTokenInvalid       = errors.New("token invalid")

	// 验证码
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")

	// 分类
	ErrCategoryIDMissing = errors.New("category id missing")
	ErrSlugExists        = errors.New("slug already exists")
	ErrCategoryInUse     = errors.New("category in use")

	// 商品
	ErrProductIDMissing       = errors.New("product id missing")
	ErrProductCategoryInvalid = errors.New("product category invalid")

	// 购物车
	ErrCartItemInvalid = errors.New("cart item invalid")
	ErrCartUnavailable = errors.New("cart unavailable")

	// 询价
	ErrInquiryStatusInvalid = errors.New("inquiry status invalid")

	// 邮件
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")

	// 上传
	ErrUploadFileMissing = errors.New("upload file missing")
	ErrUploadTooLarge    = errors.New("upload too large")
	ErrUploadType        = errors.New("upload type not allowed")
	ErrUploadDimensions  = errors.New("upload dimensions exceeded")
)
