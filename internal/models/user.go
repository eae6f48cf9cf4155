package models

import "time"

// Department enumerates the organisational units a user belongs to.
type Department string

const (
	DepartmentFrontend Department = "frontend"
	DepartmentBackend  Department = "backend"
	DepartmentSales    Department = "sales"
	DepartmentHR       Department = "hr"
	DepartmentProduct  Department = "product"
)

// Departments lists every valid department, in the order the registration
// form presents them.
func Departments() []Department {
	return []Department{
		DepartmentFrontend,
		DepartmentBackend,
		DepartmentSales,
		DepartmentHR,
		DepartmentProduct,
	}
}

// Valid reports whether d is one of the known departments.
func (d Department) Valid() bool {
	switch d {
	case DepartmentFrontend, DepartmentBackend, DepartmentSales, DepartmentHR, DepartmentProduct:
		return true
	}
	return false
}

// User represents an application user stored in the users table. The
// password hash never serialises into API responses.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	DisplayName  string     `db:"display_name" json:"display_name"`
	Department   Department `db:"department" json:"department"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Info returns the hash-free projection handed to API callers.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Department:  u.Department,
		CreatedAt:   u.CreatedAt,
	}
}

// UserInfo describes a user in responses.
type UserInfo struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Department  Department `json:"department"`
	CreatedAt   time.Time  `json:"created_at"`
}
