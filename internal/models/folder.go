package models

import "time"

// Visibility is a folder's access tier.
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityDepartment Visibility = "department"
)

// Valid reports whether v is a known visibility tier.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityDepartment
}

// Folder is a node in the content tree. ParentID is nil for roots.
// Department is set only for department-scoped folders.
type Folder struct {
	ID         string      `db:"id" json:"id"`
	Name       string      `db:"name" json:"name"`
	ParentID   *string     `db:"parent_id" json:"parent_id"`
	Visibility Visibility  `db:"visibility" json:"visibility"`
	Department *Department `db:"department" json:"department"`
	CreatedBy  string      `db:"created_by" json:"created_by"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

// CreateFolderRequest holds the payload for creating a folder.
type CreateFolderRequest struct {
	Name       string      `json:"name" validate:"required,max=255"`
	ParentID   *string     `json:"parent_id" validate:"omitempty,uuid"`
	Visibility Visibility  `json:"visibility" validate:"required,oneof=public department"`
	Department *Department `json:"department" validate:"omitempty,oneof=frontend backend sales hr product"`
}
