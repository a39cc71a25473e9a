package repositories

import (
	"context"
	"time"

	"workdrive/models"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserRepository interface {
	CountByUsername(ctx context.Context, username string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (models.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uint) (models.User, error)
	GetByProviderIdentity(ctx context.Context, tx *gorm.DB, provider string, providerID string) (models.User, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, userID uint, updates map[string]interface{}) error
}

// FolderRepository scopes every lookup by owner; a foreign id behaves exactly
// like a missing one (gorm.ErrRecordNotFound). "Active" methods additionally
// exclude soft-deleted rows.
type FolderRepository interface {
	GetActiveByIDAndOwner(ctx context.Context, tx *gorm.DB, folderID uint, ownerID uint) (models.Folder, error)
	GetByIDAndOwner(ctx context.Context, tx *gorm.DB, folderID uint, ownerID uint) (models.Folder, error)
	Create(ctx context.Context, tx *gorm.DB, folder *models.Folder) error
	ListChildren(ctx context.Context, tx *gorm.DB, ownerID uint, parentID *uint) ([]models.Folder, error)
	CountSiblingsByName(ctx context.Context, tx *gorm.DB, ownerID uint, parentID *uint, name string, excludeID uint) (int64, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, folderID uint, updates map[string]interface{}) error
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, folderID uint, at time.Time) error
	HardDeleteByID(ctx context.Context, tx *gorm.DB, folderID uint) error
}

type FileRepository interface {
	GetActiveByIDAndUploader(ctx context.Context, tx *gorm.DB, fileID uint, uploaderID uint) (models.File, error)
	Create(ctx context.Context, tx *gorm.DB, file *models.File) error
	ListByFolder(ctx context.Context, tx *gorm.DB, uploaderID uint, folderID *uint) ([]models.File, error)
	CountInFolderByName(ctx context.Context, tx *gorm.DB, uploaderID uint, folderID *uint, name string, excludeID uint) (int64, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, fileID uint, updates map[string]interface{}) error
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, fileID uint, at time.Time) error
}

// OAuthStateRepository stores short-lived login state nonces.
type OAuthStateRepository interface {
	Save(ctx context.Context, state string, provider string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (string, error)
}

type Container struct {
	TxManager   TxManager
	Users       UserRepository
	Folders     FolderRepository
	Files       FileRepository
	OAuthStates OAuthStateRepository
}
