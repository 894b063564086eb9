package logger

// 统一的日志字段命名常量
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldTagID 标签 ID 字段
	FieldTagID = "tagId"

	FieldTags = "tags"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	FieldOffset = "offset"
	FieldLimit  = "limit"

	// FieldLane 写队列通道字段
	FieldLane = "lane"
)
