package constants

// 询价单状态
const (
	InquiryStatusNew       = "new"
	InquiryStatusRead      = "read"
	InquiryStatusResponded = "responded"
	InquiryStatusResolved  = "resolved"
	InquiryStatusArchived  = "archived"
)

// InquiryStatuses 允许的询价单状态，按处理流程排列
var InquiryStatuses = []string{
	InquiryStatusNew,
	InquiryStatusRead,
	InquiryStatusResponded,
	InquiryStatusResolved,
	InquiryStatusArchived,
}

// 分类适用性别
const (
	GenderBoys   = "boys"
	GenderGirls  = "girls"
	GenderUnisex = "unisex"
)

// ProductSizes 商品尺码（年龄段）
var ProductSizes = []string{"0-1", "1-3", "3-6", "6-9", "9-12", "12-15"}

// 异步任务类型
const (
	TaskInquiryNotifyStaff = "inquiry:notify_staff"
	TaskInquiryAckCustomer = "inquiry:ack_customer"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 验证码类型
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码场景
const (
	CaptchaSceneLogin   = "login"
	CaptchaSceneInquiry = "inquiry"
)

// 上传场景
const (
	UploadSceneCommon   = "common"
	UploadSceneProduct  = "product"
	UploadSceneCategory = "category"
)

// 缓存键
const (
	CacheKeyPublicCategories = "public:categories"
	CacheKeyAdminAuthFmt     = "auth:admin:%d"
	CacheKeyCartFmt          = "cart:%s"
)
