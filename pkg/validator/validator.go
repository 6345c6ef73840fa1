package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s不能为空", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s至少%s个字符", field, fe.Param())
		}
		return fmt.Sprintf("%s最小为%s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s最多%s个字符", field, fe.Param())
		}
		return fmt.Sprintf("%s最大为%s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s取值无效", field)
	case "datetime":
		return fmt.Sprintf("%s日期格式无效", field)
	default:
		return fmt.Sprintf("%s无效", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Username": "用户名",
		"Password": "密码",
		"Name":     "姓名",
		"Content":  "内容",
		"Category": "分类",
		"Status":   "状态",
		"Date":     "日期",
		"Urgency":  "紧急程度",
		"PersonID": "人物",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
