package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"workdrive/models"
	"workdrive/repositories"

	"gorm.io/gorm"
)

type NavigationOutput struct {
	CurrentFolder *models.Folder  `json:"current_folder"`
	Folders       []models.Folder `json:"folders"`
	Files         []models.File   `json:"files"`
	Breadcrumbs   []models.Folder `json:"breadcrumbs"`
}

type FolderService interface {
	Browse(ctx context.Context, ownerID uint, folderID *uint) (NavigationOutput, error)
	CreateFolder(ctx context.Context, ownerID uint, name string, parentID *uint) (models.Folder, error)
	RenameFolder(ctx context.Context, ownerID uint, folderID uint, name string) (models.Folder, error)
	MoveFolder(ctx context.Context, ownerID uint, folderID uint, targetID *uint) error
	DeleteFolder(ctx context.Context, ownerID uint, folderID uint) (models.Folder, error)
}

type folderService struct {
	txm      TxManager
	folders  repositories.FolderRepository
	files    repositories.FileRepository
	resolver folderResolver
}

func NewFolderService(txm TxManager, folders repositories.FolderRepository, files repositories.FileRepository) FolderService {
	return &folderService{
		txm:      txm,
		folders:  folders,
		files:    files,
		resolver: folderResolver{folders: folders},
	}
}

func (s *folderService) Browse(ctx context.Context, ownerID uint, folderID *uint) (NavigationOutput, error) {
	current, err := s.resolver.resolveOptionalFolder(ctx, nil, ownerID, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NavigationOutput{}, newAppError(http.StatusNotFound, "folder not found", nil)
		}
		return NavigationOutput{}, newAppError(http.StatusInternalServerError, "failed to resolve folder", err)
	}

	var parentID *uint
	if current != nil {
		parentID = &current.ID
	}

	folders, err := s.folders.ListChildren(ctx, nil, ownerID, parentID)
	if err != nil {
		return NavigationOutput{}, newAppError(http.StatusInternalServerError, "failed to list folders", err)
	}

	files, err := s.files.ListByFolder(ctx, nil, ownerID, parentID)
	if err != nil {
		return NavigationOutput{}, newAppError(http.StatusInternalServerError, "failed to list files", err)
	}

	breadcrumbs, err := s.resolver.breadcrumbs(ctx, nil, ownerID, current)
	if err != nil {
		return NavigationOutput{}, newAppError(http.StatusInternalServerError, "failed to build breadcrumbs", err)
	}

	return NavigationOutput{
		CurrentFolder: current,
		Folders:       folders,
		Files:         files,
		Breadcrumbs:   breadcrumbs,
	}, nil
}

func (s *folderService) CreateFolder(ctx context.Context, ownerID uint, name string, parentID *uint) (models.Folder, error) {
	parent, err := s.resolver.resolveOptionalFolder(ctx, nil, ownerID, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newAppError(http.StatusNotFound, "parent folder not found", nil)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to resolve parent folder", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Folder{}, newFieldError(http.StatusBadRequest, "name", "folder name is required")
	}

	var resolvedParentID *uint
	if parent != nil {
		resolvedParentID = &parent.ID
	}

	count, err := s.folders.CountSiblingsByName(ctx, nil, ownerID, resolvedParentID, name, 0)
	if err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to check folder name", err)
	}
	if count > 0 {
		return models.Folder{}, newFieldError(http.StatusBadRequest, "name",
			"a folder with this name already exists in this directory")
	}

	folder := models.Folder{
		Name:     name,
		OwnerID:  ownerID,
		ParentID: resolvedParentID,
	}
	if err := s.folders.Create(ctx, nil, &folder); err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to create folder", err)
	}

	return folder, nil
}

func (s *folderService) RenameFolder(ctx context.Context, ownerID uint, folderID uint, name string) (models.Folder, error) {
	folder, err := s.folders.GetActiveByIDAndOwner(ctx, nil, folderID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newAppError(http.StatusNotFound, "folder not found", nil)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to load folder", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Folder{}, newFieldError(http.StatusBadRequest, "name", "folder name is required")
	}

	count, err := s.folders.CountSiblingsByName(ctx, nil, ownerID, folder.ParentID, name, folder.ID)
	if err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to check folder name", err)
	}
	if count > 0 {
		return models.Folder{}, newAppError(http.StatusConflict,
			"a folder with this name already exists in this directory", nil)
	}

	if err := s.folders.UpdateByID(ctx, nil, folder.ID, map[string]interface{}{"name": name}); err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to rename folder", err)
	}

	folder.Name = name
	return folder, nil
}

func (s *folderService) MoveFolder(ctx context.Context, ownerID uint, folderID uint, targetID *uint) error {
	// The cycle check and the reparenting have to see the same tree.
	return s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		folder, err := s.folders.GetActiveByIDAndOwner(ctx, tx, folderID, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newAppError(http.StatusNotFound, "folder not found", nil)
			}
			return newAppError(http.StatusInternalServerError, "failed to load folder", err)
		}

		target, err := s.resolver.resolveOptionalFolder(ctx, tx, ownerID, targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newAppError(http.StatusNotFound, "target folder not found", nil)
			}
			return newAppError(http.StatusInternalServerError, "failed to resolve target folder", err)
		}

		var newParentID *uint
		if target != nil {
			cyclic, err := s.resolver.isSelfOrDescendant(ctx, tx, ownerID, folder.ID, *target)
			if err != nil {
				return newAppError(http.StatusInternalServerError, "failed to check folder hierarchy", err)
			}
			if cyclic {
				return newAppError(http.StatusConflict,
					"cannot move a folder into itself or its own subtree", nil)
			}
			newParentID = &target.ID
		}

		count, err := s.folders.CountSiblingsByName(ctx, tx, ownerID, newParentID, folder.Name, folder.ID)
		if err != nil {
			return newAppError(http.StatusInternalServerError, "failed to check folder name", err)
		}
		if count > 0 {
			return newAppError(http.StatusConflict,
				fmt.Sprintf("a folder named %q already exists in the destination", folder.Name), nil)
		}

		updates := map[string]interface{}{"parent_id": nil}
		if newParentID != nil {
			updates["parent_id"] = *newParentID
		}
		if err := s.folders.UpdateByID(ctx, tx, folder.ID, updates); err != nil {
			return newAppError(http.StatusInternalServerError, "failed to move folder", err)
		}

		return nil
	})
}

// DeleteFolder soft-deletes the folder itself only. Children keep their flags
// and simply become unreachable through navigation (shallow soft delete).
func (s *folderService) DeleteFolder(ctx context.Context, ownerID uint, folderID uint) (models.Folder, error) {
	folder, err := s.folders.GetActiveByIDAndOwner(ctx, nil, folderID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newAppError(http.StatusNotFound, "folder not found", nil)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to load folder", err)
	}

	if err := s.folders.SoftDeleteByID(ctx, nil, folder.ID, time.Now()); err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "failed to delete folder", err)
	}

	return folder, nil
}
