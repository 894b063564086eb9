package dto

// TagDTO 标签响应
type TagDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TagRenameRequest 重命名标签
type TagRenameRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// TagOrphansDTO 孤立标签统计
type TagOrphansDTO struct {
	Count int64 `json:"count"`
}
