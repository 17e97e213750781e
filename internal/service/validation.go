package service

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	MsgRequired      = "This field is required."
	MsgBlank         = "This field may not be blank."
	MsgNull          = "This field may not be null."
	MsgInvalidString = "Not a valid string."
	MsgInvalidInt    = "A valid integer is required."
	MsgInvalidBool   = "Must be a valid boolean."
	MsgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgMaxLengthTmpl = "Ensure this field has no more than %d characters."
)

// ValidationError 汇总按字段分组的校验错误，序列化后形如 {"title": ["..."]}。
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError 创建一个空的 ValidationError。
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// Add 为字段追加一条错误信息。
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Merge 合并另一组错误，other 可为 nil。已有错误的字段保留原错误。
func (e *ValidationError) Merge(other *ValidationError) *ValidationError {
	if other == nil {
		return e
	}
	for field, messages := range other.Fields {
		if len(e.Fields[field]) > 0 {
			continue
		}
		for _, message := range messages {
			e.Add(field, message)
		}
	}
	return e
}

// HasErrors 判断是否存在任何字段错误。
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// errOrNil 在没有错误时返回 nil，避免返回带类型的 nil 接口。
func (e *ValidationError) errOrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// validateText 检查文本字段：创建时必填字段缺失报 required，提交空白报 blank，超长报 max length。
func validateText(errs *ValidationError, field string, value *string, required, creating bool, maxLen int) {
	if value == nil {
		if required && creating {
			errs.Add(field, MsgRequired)
		}
		return
	}
	trimmed := strings.TrimSpace(*value)
	if required && trimmed == "" {
		errs.Add(field, MsgBlank)
		return
	}
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		errs.Add(field, fmt.Sprintf(msgMaxLengthTmpl, maxLen))
	}
}

// ListFilter 描述列表查询条件。
type ListFilter struct {
	ActiveOnly bool
}

// boolOrDefault 返回指针值，nil 时返回 fallback。
func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func intOrDefault(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func trimmedOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
