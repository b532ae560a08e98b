package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tinythreads/internal/inquiry"

	"github.com/go-playground/validator/v10"
)

// FieldErrors 字段 -> 第一条错误提示
type FieldErrors map[string]string

// ValidationError 输入校验失败
type ValidationError struct {
	Message string
	Fields  FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(keys, ","))
}

// Is 便于 errors.Is(err, ErrInvalidInput)
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// AsValidationError 提取校验错误
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// fieldRules 字段级提示，"" 为缺省，其余按 validator tag 覆盖
type fieldRules map[string]map[string]string

// collectFieldErrors 用共享校验器校验结构体，通过时返回空 map
func collectFieldErrors(input any, rules fieldRules) FieldErrors {
	fields := make(FieldErrors)
	err := inquiry.Validator().Struct(input)
	if err == nil {
		return fields
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["input"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		name := rootField(fe.Namespace())
		if _, exists := fields[name]; exists {
			continue
		}
		fields[name] = rules.message(name, fe.Tag())
	}
	return fields
}

// toValidationError 有字段错误时返回 *ValidationError
func toValidationError(message string, fields FieldErrors) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Message: message, Fields: fields}
}

func (r fieldRules) message(field, tag string) string {
	byTag, ok := r[field]
	if !ok {
		return "Invalid value."
	}
	if msg, ok := byTag[tag]; ok {
		return msg
	}
	return byTag[""]
}

// rootField "Input.image_urls[1]" -> image_urls
func rootField(namespace string) string {
	parts := strings.Split(namespace, ".")
	name := parts[len(parts)-1]
	if len(parts) > 1 {
		name = parts[1]
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}
