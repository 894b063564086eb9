package model

const TableNameNote = "notes"

// Note mapped from table <notes>
type Note struct {
	ID        int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	Heading   string  `gorm:"column:heading;not null;index:idx_notes_heading" json:"heading" form:"heading"`
	Title     *string `gorm:"column:title;index:idx_notes_title" json:"title" form:"title"`
	Body      *string `gorm:"column:body" json:"body" form:"body"`
	CreatedAt int64   `gorm:"column:created_at;not null;index:idx_notes_created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt int64   `gorm:"column:updated_at;not null;index:idx_notes_updated_at;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
	Image     *string `gorm:"column:image" json:"image" form:"image"`
	Color     *string `gorm:"column:color" json:"color" form:"color"`
	IsPinned  bool    `gorm:"column:is_pinned;not null;default:false" json:"isPinned" form:"isPinned"`
	ThemeID   int     `gorm:"column:theme_id;not null;default:0" json:"themeId" form:"themeId"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
