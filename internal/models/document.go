package models

import "time"

// Document belongs to exactly one folder and goes away with it. ViewCount
// only ever increments, through an explicit record-view operation.
type Document struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	FolderID   string    `db:"folder_id" json:"folder_id"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	ModifiedBy *string   `db:"modified_by" json:"modified_by,omitempty"`
	ViewCount  int       `db:"view_count" json:"view_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PopularDocument is a document joined with the owning folder's access
// scope, so popularity listings can be filtered per identity without a
// second round-trip. The scope fields must survive serialization: the
// popularity cache stores this type as JSON and filters after the fact.
type PopularDocument struct {
	Document
	FolderName       string      `db:"folder_name" json:"folder_name"`
	FolderVisibility Visibility  `db:"folder_visibility" json:"folder_visibility"`
	FolderDepartment *Department `db:"folder_department" json:"folder_department,omitempty"`
}

// CreateDocumentRequest holds the payload for creating a document.
type CreateDocumentRequest struct {
	Title    string `json:"title" validate:"required,max=500"`
	Content  string `json:"content" validate:"required"`
	FolderID string `json:"folder_id" validate:"required,uuid"`
}

// UpdateDocumentRequest holds the payload for updating a document.
type UpdateDocumentRequest struct {
	Title   string `json:"title" validate:"required,max=500"`
	Content string `json:"content" validate:"required"`
}
