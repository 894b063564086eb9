// Package domain 定义领域模型和接口
package domain

// Note is a user note. Timestamps are epoch milliseconds.
type Note struct {
	ID        int64
	Heading   string
	Title     *string
	Body      *string
	CreatedAt int64
	UpdatedAt int64
	Image     *string
	Color     *string
	IsPinned  bool
	ThemeID   int
}

// Tag is a unique label.
type Tag struct {
	ID   int64
	Name string
}

// NoteWithTags is a note joined with its tags in link order.
type NoteWithTags struct {
	Note Note
	Tags []Tag
}

// TagNames returns the names of t in order.
func (n *NoteWithTags) TagNames() []string {
	names := make([]string, 0, len(n.Tags))
	for _, t := range n.Tags {
		names = append(names, t.Name)
	}
	return names
}

// String returns a pointer to s, or nil for the empty string.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns *s or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
