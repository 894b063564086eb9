package model

const TableNameTag = "tags"

// Tag mapped from table <tags>
type Tag struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	Name string `gorm:"column:name;type:varchar(255);not null;uniqueIndex:idx_tags_name" json:"name" form:"name"`
}

// TableName Tag's table name
func (*Tag) TableName() string {
	return TableNameTag
}
