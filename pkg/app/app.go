// Package app 提供 HTTP 响应、分页和参数校验工具
package app

import (
	"strings"

	"github.com/dontknow492/Notes/pkg/code"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Ctx *gin.Context
}

type Pager struct {
	Page      int `json:"page"`      // 页码
	PageSize  int `json:"pageSize"`  // 每页数量
	TotalRows int `json:"totalRows"` // 总行数
}

type ListRes struct {
	List  interface{} `json:"list"`  // 数据清单
	Pager Pager       `json:"pager"` // 翻页信息
}

// Res 统一响应结构：Code/Status/Msg/Data
// Details 和 TraceID 为空时不序列化
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message interface{} `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
	TraceID string      `json:"traceId,omitempty"`
}

// TraceIDKey gin.Context 中存储 Trace ID 的键
const TraceIDKey = "trace_id"

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// GetRequestIP 获取客户端 ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

// ToResponse 以 code 对应的 HTTP 状态输出 Res
func (r *Response) ToResponse(codeObj *code.Code) {
	r.Ctx.Set("status_code", codeObj.StatusCode())

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
		TraceID: r.Ctx.GetString(TraceIDKey),
	}

	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}

	r.send(codeObj.StatusCode(), content)
}

// ToResponseList 输出列表响应，Data 为 ListRes
func (r *Response) ToResponseList(codeObj *code.Code, list interface{}, pager Pager) {
	r.Ctx.Set("status_code", codeObj.StatusCode())

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data: ListRes{
			List:  list,
			Pager: pager,
		},
		TraceID: r.Ctx.GetString(TraceIDKey),
	}

	r.send(codeObj.StatusCode(), content)
}

func (r *Response) send(statusCode int, content interface{}) {
	r.Ctx.JSON(statusCode, content)
}
