// Package dto 定义 HTTP 请求与响应结构
package dto

// NoteListRequest 笔记列表查询参数
type NoteListRequest struct {
	Query     string `form:"query" binding:"max=255"`
	TagID     string `form:"tagId"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" binding:"omitempty,min=1"`
}

// NoteTagRequest 按名称或 id 引用标签，名称优先（不存在则创建），名称为空时 id 必须指向已有标签
type NoteTagRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name" binding:"max=255"`
}

// NoteRequest 新建或整体更新笔记
type NoteRequest struct {
	Heading   string           `json:"heading" binding:"required,max=100"`
	Title     *string          `json:"title" binding:"omitempty,max=100"`
	Body      *string          `json:"body"`
	Image     *string          `json:"image"`
	Color     *string          `json:"color"`
	IsPinned  bool             `json:"isPinned"`
	ThemeID   int              `json:"themeId"`
	CreatedAt int64            `json:"createdAt"`
	UpdatedAt int64            `json:"updatedAt"`
	Tags      []NoteTagRequest `json:"tags" binding:"dive"`
}

// NotePatchRequest 部分更新，nil 字段保持不变，标签关联不变
type NotePatchRequest struct {
	Heading  *string `json:"heading" binding:"omitempty,min=1,max=100"`
	Title    *string `json:"title" binding:"omitempty,max=100"`
	Body     *string `json:"body"`
	Image    *string `json:"image"`
	Color    *string `json:"color"`
	IsPinned *bool   `json:"isPinned"`
	ThemeID  *int    `json:"themeId"`
}

// NoteDTO 笔记响应
type NoteDTO struct {
	ID        int64   `json:"id"`
	Heading   string  `json:"heading"`
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	Image     *string `json:"image"`
	Color     *string `json:"color"`
	IsPinned  bool    `json:"isPinned"`
	ThemeID   int     `json:"themeId"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

// NoteDetailDTO 笔记及其标签
type NoteDetailDTO struct {
	NoteDTO
	Tags []TagDTO `json:"tags"`
}

// NoteCreatedDTO 新建笔记返回的 id
type NoteCreatedDTO struct {
	ID int64 `json:"id"`
}
