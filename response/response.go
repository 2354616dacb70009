package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// Response HTTP 接口统一响应结构
type Response struct {
	Code int         `json:"code"`           // 业务状态码
	Msg  string      `json:"msg"`            // 提示消息
	Data interface{} `json:"data,omitempty"` // 响应数据
}

// 业务状态码定义
// 使用说明：
// - HTTP 中间件层：使用 HTTP 状态码（401/403/500）
// - 业务层：HTTP 200 + 业务状态码；Discord 回复同样带 code，便于日志检索
const (
	CodeSuccess         = 0     // 成功
	CodeParamError      = 10001 // 参数错误
	CodeMemberNotFound  = 10002 // 成员不存在
	CodeTokenInvalid    = 10004 // Token 无效
	CodePermissionDeny  = 10005 // 权限不足（调用者或机器人）
	CodeAlreadyJailed   = 20001 // 已在关押中
	CodeNotJailed       = 20002 // 未被关押
	CodeRoleNotFound    = 20003 // 关押角色不存在
	CodeInvalidDuration = 20004 // 时长无效
	CodeBusy            = 20005 // 同一用户的操作进行中
	CodePlatformError   = 30001 // Discord 接口失败
	CodeInternalError   = 99999 // 内部错误
)

// Success 成功响应
func Success(data interface{}, args ...string) *Response {
	msg := "success"
	for _, arg := range args {
		msg = arg
	}
	return &Response{
		Code: CodeSuccess,
		Msg:  msg,
		Data: data,
	}
}

// Error 错误响应
func Error(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}

// WriteJSON 写入 JSON 响应（默认 HTTP 200）
func (r *Response) WriteJSON(w http.ResponseWriter) {
	r.WriteJSONWithStatus(w, http.StatusOK)
}

// WriteJSONWithStatus 写入 JSON 响应（指定 HTTP 状态码）
func (r *Response) WriteJSONWithStatus(w http.ResponseWriter, httpStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(r); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
