package handler

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"educareer/backend/internal/api/middleware"
	"educareer/backend/pkg/response"
)

var (
	hhmmPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

	weekdays = map[string]bool{
		"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
		"friday": true, "saturday": true, "sunday": true,
	}

	registerOnce sync.Once
)

// RegisterValidators 向 gin 的 validator 引擎注册自定义规则：
//   - hhmm     24 小时制 HH:MM（小时允许一位）
//   - weekday  英文星期全称，大小写不敏感
//
// 并让字段错误使用 json 标签名
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return hhmmPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			return weekdays[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
		})
	})
}

// bindJSON 解析并校验请求体；失败时写入 400 / 413 响应并返回 false
func bindJSON(c *gin.Context, req any) bool {
	return handleBindError(c, c.ShouldBindJSON(req))
}

// bindQuery 解析并校验查询参数
func bindQuery(c *gin.Context, req any) bool {
	return handleBindError(c, c.ShouldBindQuery(req))
}

func handleBindError(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, middleware.CodePayloadTooLarge, "Request body too large")
		return false
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]response.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, response.FieldError{
				Field: fieldPath(fe.Namespace()),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
		response.ValidationFailed(c, fields)
		return false
	}

	response.BadRequest(c, response.CodeValidation, "Invalid request body")
	return false
}

// fieldPath 去掉顶层结构体名：RegisterRequest.password -> password
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
