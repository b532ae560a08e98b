package inquiry

import (
	"errors"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator 返回共享的校验器，字段名取 JSON 名称
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("imageref", validateImageRef)
	})
	return validate
}

// uploadPathPrefix 本地上传文件的访问前缀
const uploadPathPrefix = "/uploads/"

// validateImageRef 图片地址：http(s) 绝对地址，或上传接口返回的 /uploads/ 路径
func validateImageRef(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if strings.HasPrefix(raw, uploadPathPrefix) {
		return !strings.Contains(raw, "..") && len(raw) > len(uploadPathPrefix)
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

// fieldMessages 按字段、规则给出提示，缺省取 "" 规则
var fieldMessages = map[Field]map[string]string{
	FieldFirstName: {
		"":    "First name is required.",
		"max": "First name must be at most 100 characters.",
	},
	FieldLastName: {
		"":    "Last name is required.",
		"max": "Last name must be at most 100 characters.",
	},
	FieldEmail: {
		"":    "Invalid email address.",
		"max": "Email must be at most 255 characters.",
	},
	FieldPhone: {
		"": "Phone number must be at most 30 characters.",
	},
	FieldSubject: {
		"":    "Subject must be at least 3 characters.",
		"max": "Subject must be at most 255 characters.",
	},
	FieldMessage: {
		"":    "Message must be at least 10 characters.",
		"max": "Message must be at most 2000 characters.",
	},
	FieldCartItems: {
		"": "Cart items are invalid.",
	},
}

// Validate 校验表单，返回每个出错字段的第一条提示；通过时返回 nil
func Validate(form Form) FieldErrors {
	err := Validator().Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{FieldMessage: err.Error()}
	}
	out := make(FieldErrors)
	for _, fe := range verrs {
		field := topLevelField(fe.Namespace())
		if _, exists := out[field]; exists {
			continue
		}
		out[field] = messageFor(field, fe.Tag())
	}
	return out
}

// topLevelField 把 "Form.cartItems[0].name" 归到 cartItems
func topLevelField(namespace string) Field {
	parts := strings.Split(namespace, ".")
	if len(parts) < 2 {
		return Field(namespace)
	}
	name := parts[1]
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return Field(name)
}

func messageFor(field Field, tag string) string {
	rules, ok := fieldMessages[field]
	if !ok {
		return "Invalid value."
	}
	if msg, ok := rules[tag]; ok {
		return msg
	}
	return rules[""]
}
