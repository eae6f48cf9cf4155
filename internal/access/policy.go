// Package access evaluates whether an identity may read or write a folder
// or the documents inside it. The model is deliberately two-tier: public
// resources are open to every authenticated identity, department-scoped
// resources only to members of that department. There is no role hierarchy
// and no per-document ACL; documents inherit the owning folder's scope.
package access

import (
	"github.com/simpleconf/simpleconf-api/internal/models"
)

// CanRead reports whether the identity may read a resource with the given
// visibility and department tag.
func CanRead(claims *models.Claims, visibility models.Visibility, department *models.Department) bool {
	if claims == nil {
		return false
	}
	if visibility == models.VisibilityPublic {
		return true
	}
	if department == nil {
		// A department-scoped resource without a tag is unreadable; the
		// repository rejects such rows at creation, so this only guards
		// against corrupt data.
		return false
	}
	return claims.Department == *department
}

// CanWrite reports whether the identity may mutate the resource. Writes
// require read access; department-scoped resources additionally require
// membership, which CanRead already establishes. Public resources are
// writable by any authenticated identity.
func CanWrite(claims *models.Claims, visibility models.Visibility, department *models.Department) bool {
	return CanRead(claims, visibility, department)
}

// CanReadFolder applies CanRead to a folder record.
func CanReadFolder(claims *models.Claims, folder *models.Folder) bool {
	if folder == nil {
		return false
	}
	return CanRead(claims, folder.Visibility, folder.Department)
}

// CanWriteFolder applies CanWrite to a folder record.
func CanWriteFolder(claims *models.Claims, folder *models.Folder) bool {
	if folder == nil {
		return false
	}
	return CanWrite(claims, folder.Visibility, folder.Department)
}
