package domain

import "strings"

// SortBy selects the primary ordering column of a note listing.
type SortBy string

const (
	SortByTitle     SortBy = "title"
	SortByHeading   SortBy = "heading"
	SortByUpdatedAt SortBy = "updated_at"
	SortByCreatedAt SortBy = "created_at"
)

// SortOrder is the direction of a listing.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

const (
	DefaultSortBy    = SortByCreatedAt
	DefaultSortOrder = SortOrderDesc
)

// ParseSortBy accepts the column names above and their camelCase forms
// (updatedAt, createdAt), case-insensitively. Unknown values are returned
// as-is so the query layer falls back to id ordering.
func ParseSortBy(s string) SortBy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultSortBy
	case "title":
		return SortByTitle
	case "heading":
		return SortByHeading
	case "updated_at", "updatedat":
		return SortByUpdatedAt
	case "created_at", "createdat":
		return SortByCreatedAt
	}
	return SortBy(s)
}

// ParseSortOrder accepts asc/desc case-insensitively. Anything else is DESC.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortOrderAsc)) {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// Valid reports whether s names a sortable column.
func (s SortBy) Valid() bool {
	switch s {
	case SortByTitle, SortByHeading, SortByUpdatedAt, SortByCreatedAt:
		return true
	}
	return false
}

// NoteFilter selects and orders notes for a listing.
type NoteFilter struct {
	// Query matches title or heading as a case-insensitive substring; nil or
	// empty disables the predicate.
	Query *string
	// TagID restricts the listing to notes linked to this tag.
	TagID     *int64
	SortBy    SortBy
	SortOrder SortOrder
}

// DefaultNoteFilter is the listing a fresh client starts with.
func DefaultNoteFilter() NoteFilter {
	return NoteFilter{SortBy: DefaultSortBy, SortOrder: DefaultSortOrder}
}
