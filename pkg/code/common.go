package code

import "net/http"

var (
	Success       = NewSuss(1, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate = NewSuss(2, lang{en: "Created successfully", zh_cn: "创建成功"})
	SuccessUpdate = NewSuss(3, lang{en: "Updated successfully", zh_cn: "更新成功"})
	SuccessDelete = NewSuss(4, lang{en: "Deleted successfully", zh_cn: "删除成功"})

	ErrorServerInternal   = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误"}, http.StatusInternalServerError)
	ErrorInvalidParams    = NewError(400, lang{en: "Invalid parameters", zh_cn: "参数错误"}, http.StatusBadRequest)
	ErrorNotFoundAPI      = NewError(404, lang{en: "API not found", zh_cn: "接口不存在"}, http.StatusNotFound)
	ErrorRequestTimeout   = NewError(408, lang{en: "Request timeout", zh_cn: "请求超时"}, http.StatusRequestTimeout)
	ErrorTooManyRequests  = NewError(429, lang{en: "Too many requests", zh_cn: "请求过多"}, http.StatusTooManyRequests)
	ErrorNoteNotFound     = NewError(430, lang{en: "Note does not exist", zh_cn: "笔记不存在"}, http.StatusNotFound)
	ErrorTagNotFound      = NewError(431, lang{en: "Tag does not exist", zh_cn: "标签不存在"}, http.StatusNotFound)
	ErrorTagNameExists    = NewError(432, lang{en: "Tag name already exists", zh_cn: "标签名称已存在"}, http.StatusConflict)
	ErrorStorage          = NewError(530, lang{en: "Storage failure", zh_cn: "存储失败"}, http.StatusInternalServerError)
	ErrorStorageRetryable = NewError(531, lang{en: "Storage busy, try again", zh_cn: "存储繁忙，请重试"}, http.StatusServiceUnavailable)
)
