package i18n

var messagesEN = map[string]string{
	// 通用
	"error.bad_request":            "Invalid request.",
	"error.not_found":              "Resource not found.",
	"error.internal":               "An unexpected error occurred.",
	"error.unauthorized":           "Unauthorized.",
	"error.forbidden":              "You do not have permission to perform this action.",
	"error.save_failed":            "Failed to save.",
	"error.delete_failed":          "Failed to delete.",
	"error.rate_limit_unavailable": "Rate limiting is temporarily unavailable.",
	"error.too_many_requests":      "Too many requests, please retry in %d seconds.",

	// 认证
	"error.jwt_secret_missing":    "Authentication is not configured.",
	"error.token_invalid":         "Invalid or expired token.",
	"error.token_revoked":         "Token has been revoked, please sign in again.",
	"error.auth_header_missing":   "Authorization header is required.",
	"error.auth_header_invalid":   "Authorization header must be a Bearer token.",
	"error.admin_login_invalid":   "Invalid username or password.",
	"error.admin_login_throttled": "Too many login attempts, please retry in %d seconds.",
	"error.admin_not_found":       "Admin not found.",
	"error.admin_id_invalid":      "Invalid admin id.",
	"error.admin_id_type_invalid": "Admin id has an unexpected type.",
	"error.login_failed":          "Sign in failed, please retry later.",
	"error.password_old_invalid":  "Current password is incorrect.",
	"error.password_too_short":    "Password must be at least %d characters.",
	"error.password_too_long":     "Password must be at most %d bytes.",
	"error.password_need_upper":   "Password must contain an uppercase letter.",
	"error.password_need_lower":   "Password must contain a lowercase letter.",
	"error.password_need_number":  "Password must contain a number.",
	"error.password_need_special": "Password must contain a special character.",
	"msg.password_updated":        "Password updated successfully.",

	// 验证码
	"error.captcha_required":        "Captcha is required.",
	"error.captcha_invalid":         "Captcha is incorrect or expired.",
	"error.captcha_config":          "Captcha is not configured.",
	"error.captcha_unavailable":     "Captcha verification is unavailable.",
	"error.captcha_generate_failed": "Failed to generate captcha.",

	// 分类
	"error.category_id_missing":   "Category ID is missing for deletion.",
	"error.category_not_found":    "Category not found.",
	"error.category_fetch_failed": "Failed to load categories.",
	"error.category_invalid":      "Invalid fields for category.",
	"error.category_slug_taken":   "A category with this name already exists.",
	"error.category_in_use":       "Database Error: This category cannot be deleted because it is linked to existing products.",
	"msg.category_created":        "Category \"%s\" created successfully!",
	"msg.category_updated":        "Category \"%s\" updated successfully!",
	"msg.category_deleted":        "Category deleted successfully.",

	// 商品
	"error.product_id_missing":   "Product ID is missing.",
	"error.product_not_found":    "Product not found.",
	"error.product_fetch_failed": "Failed to load products.",
	"error.product_invalid":      "Invalid fields for product.",
	"error.product_category":     "A valid category must be selected.",
	"msg.product_created":        "Product \"%s\" created successfully.",
	"msg.product_updated":        "Product \"%s\" updated successfully.",
	"msg.product_deleted":        "Product deleted successfully.",

	// 购物车
	"error.cart_item_invalid": "Cart item is invalid.",
	"error.cart_unavailable":  "Cart storage is unavailable.",
	"error.cart_item_missing": "Product not found for cart item.",
	"msg.cart_cleared":        "Cart cleared.",

	// 询价
	"error.inquiry_not_found":    "Inquiry not found.",
	"error.inquiry_fetch_failed": "Failed to load inquiries.",
	"error.inquiry_invalid":      "Invalid fields for inquiry.",
	"error.inquiry_status":       "Invalid status: %s.",
	"error.inquiry_submit":       "An unexpected error occurred while submitting the inquiry.",
	"error.inquiry_status_fail":  "An unexpected error occurred while updating the inquiry status.",
	"msg.inquiry_submitted":      "Inquiry submitted successfully!",
	"msg.inquiry_status_updated": "Inquiry status updated successfully!",

	// 上传
	"error.upload_file_missing": "No file provided in form data.",
	"error.upload_too_large":    "File is too large.",
	"error.upload_type":         "File type is not allowed.",
	"error.upload_dimensions":   "Image dimensions exceed the allowed limit.",
	"error.upload_failed":       "Image upload failed.",

	// 权限
	"error.role_invalid":          "Invalid role name.",
	"error.role_immutable":        "Built-in role cannot be modified.",
	"error.policy_invalid":        "Invalid policy.",
	"error.policy_object_invalid": "Policy object must be an admin API path.",
	"error.role_not_found":        "Role not found.",
	"error.authz_failed":          "Authorization check failed.",
	"msg.authz_role_saved":        "Role saved.",
	"msg.authz_role_delete":       "Role deleted.",

	// 仪表盘
	"error.dashboard_fetch_failed":  "Failed to load dashboard.",
	"error.dashboard_range_invalid": "Range must look like 7d and be between 1d and 90d.",

	// 邮件
	"email.inquiry_staff.subject": "New inquiry: %s",
	"email.inquiry_staff.body":    "From: %s <%s>\nSubject: %s\n\n%s",
	"email.inquiry_staff.phone":   "Phone: %s",
	"email.inquiry_staff.cart":    "Cart items:",
	"email.inquiry_ack.subject":   "We received your inquiry - %s",
	"email.inquiry_ack.body":      "Hi %s,\n\nThank you for reaching out about \"%s\". Our team will get back to you shortly.\n\n%s",
}
