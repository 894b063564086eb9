package code

import (
	"fmt"
	"net/http"
)

// Code is a registered response/error code. It implements error so services
// can return it directly and handlers can render it as-is.
// Code 已注册的响应/错误码，实现 error 接口
type Code struct {
	code       int
	status     bool
	httpStatus int
	Lang       lang

	data     interface{}
	haveData bool

	details     []string
	haveDetails bool

	cause error
}

var codes = map[int]string{}
var sussCodes = map[int]string{}

// NewError registers a failure code. Registering the same number twice panics.
// NewError 注册错误码，重复注册会 panic
func NewError(code int, l lang, httpStatus int) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("error code %d already exists", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: false, httpStatus: httpStatus, Lang: l}
}

// NewSuss registers a success code.
// NewSuss 注册成功码
func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("success code %d already exists", code))
	}
	sussCodes[code] = l.GetMessage()
	return &Code{code: code, status: true, httpStatus: http.StatusOK, Lang: l}
}

// Clone returns a copy without data, details or cause.
// Clone 返回不含 data/details/cause 的副本
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		status:     e.status,
		httpStatus: e.httpStatus,
		Lang:       e.Lang,
	}
}

func (e *Code) Error() string {
	if e.cause != nil {
		return e.Msg() + ": " + e.cause.Error()
	}
	return e.Msg()
}

// Unwrap exposes the storage or validation error this code was built from.
func (e *Code) Unwrap() error {
	return e.cause
}

// Is matches two codes by number so errors.Is(err, code.ErrorNoteNotFound) works
// on clones carrying details.
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// WithData returns a clone carrying data. The registered code is never mutated.
// WithData 返回携带 data 的副本，不修改已注册的码
func (e *Code) WithData(data interface{}) *Code {
	c := e.derive()
	c.haveData = true
	c.data = data
	return c
}

// WithDetails returns a clone carrying details.
// WithDetails 返回携带详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.derive()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// WithCause returns a clone wrapping err.
func (e *Code) WithCause(err error) *Code {
	c := e.derive()
	c.cause = err
	return c
}

func (e *Code) derive() *Code {
	c := *e
	return &c
}

func (e *Code) StatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusOK
	}
	return e.httpStatus
}
