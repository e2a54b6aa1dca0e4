package utils

import (
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"counselor_recommend/models"
)

// WriteFormattedJSON 格式化JSON输出，使其更易读
func WriteFormattedJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ") // 使用4个空格缩进
	encoder.Encode(data)
}

// WriteSuccessResponse 写入成功响应
func WriteSuccessResponse(w http.ResponseWriter, data interface{}) {
	WriteFormattedJSON(w, http.StatusOK, models.NewSuccessResponse(data))
}

// WriteErrorResponse 写入错误响应，HTTP状态码由业务码推导
func WriteErrorResponse(w http.ResponseWriter, code int, data interface{}) {
	WriteFormattedJSON(w, HTTPStatus(code), models.NewErrorResponse(code, data))
}

// WriteCustomErrorResponse 写入自定义错误消息的响应
func WriteCustomErrorResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	WriteFormattedJSON(w, HTTPStatus(code), models.NewCustomErrorResponse(code, message, data))
}

// HTTPStatus 业务码对应的HTTP状态码
func HTTPStatus(code int) int {
	switch code {
	case models.CodeSuccess:
		return http.StatusOK
	case models.CodeInvalidParams, models.CodeMissingParams, models.CodeScheduleNotSet:
		return http.StatusBadRequest
	case models.CodeCounselorNotFound:
		return http.StatusNotFound
	case models.CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ParseID 解析路径中的正整数ID，失败时直接写入错误响应
func ParseID(w http.ResponseWriter, name, raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{
			"param": name,
		})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{
			"param": name,
			"value": raw,
		})
		return 0, false
	}
	return id, true
}
