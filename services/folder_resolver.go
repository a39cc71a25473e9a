package services

import (
	"context"

	"workdrive/models"
	"workdrive/repositories"

	"gorm.io/gorm"
)

type folderResolver struct {
	folders repositories.FolderRepository
}

// resolveOptionalFolder maps a nil folder id to the root level and otherwise
// loads the active folder, scoped to the owner. Errors pass through so callers
// can map gorm.ErrRecordNotFound to a 404.
func (r folderResolver) resolveOptionalFolder(ctx context.Context, tx *gorm.DB, ownerID uint, folderID *uint) (*models.Folder, error) {
	if folderID == nil {
		return nil, nil
	}
	folder, err := r.folders.GetActiveByIDAndOwner(ctx, tx, *folderID, ownerID)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// breadcrumbs walks parent pointers from folder up to a root and returns the
// chain root-first, ending with folder itself. The walk terminates because
// moves never create cycles (see isSelfOrDescendant).
func (r folderResolver) breadcrumbs(ctx context.Context, tx *gorm.DB, ownerID uint, folder *models.Folder) ([]models.Folder, error) {
	if folder == nil {
		return []models.Folder{}, nil
	}

	chain := []models.Folder{*folder}
	current := *folder
	for current.ParentID != nil {
		parent, err := r.folders.GetByIDAndOwner(ctx, tx, *current.ParentID, ownerID)
		if err != nil {
			return nil, err
		}
		chain = append([]models.Folder{parent}, chain...)
		current = parent
	}
	return chain, nil
}

// isSelfOrDescendant reports whether target is folder itself or lies anywhere
// in folder's subtree. Walks upward from target; this check is the sole
// mechanism keeping the tree acyclic and must run before every folder move.
func (r folderResolver) isSelfOrDescendant(ctx context.Context, tx *gorm.DB, ownerID uint, folderID uint, target models.Folder) (bool, error) {
	current := target
	for {
		if current.ID == folderID {
			return true, nil
		}
		if current.ParentID == nil {
			return false, nil
		}
		parent, err := r.folders.GetByIDAndOwner(ctx, tx, *current.ParentID, ownerID)
		if err != nil {
			return false, err
		}
		current = parent
	}
}
