package repositories

import (
	"context"
	"time"

	"workdrive/models"

	"gorm.io/gorm"
)

type GormFolderRepository struct {
	db *gorm.DB
}

func NewGormFolderRepository(db *gorm.DB) *GormFolderRepository {
	return &GormFolderRepository{db: db}
}

func (r *GormFolderRepository) GetActiveByIDAndOwner(_ context.Context, tx *gorm.DB, folderID uint, ownerID uint) (models.Folder, error) {
	var folder models.Folder
	err := useTx(r.db, tx).
		Where("id = ? AND owner_id = ? AND is_deleted = ?", folderID, ownerID, false).
		First(&folder).Error
	return folder, err
}

func (r *GormFolderRepository) GetByIDAndOwner(_ context.Context, tx *gorm.DB, folderID uint, ownerID uint) (models.Folder, error) {
	var folder models.Folder
	err := useTx(r.db, tx).Where("id = ? AND owner_id = ?", folderID, ownerID).First(&folder).Error
	return folder, err
}

func (r *GormFolderRepository) Create(_ context.Context, tx *gorm.DB, folder *models.Folder) error {
	return useTx(r.db, tx).Create(folder).Error
}

func (r *GormFolderRepository) ListChildren(_ context.Context, tx *gorm.DB, ownerID uint, parentID *uint) ([]models.Folder, error) {
	db := useTx(r.db, tx).Model(&models.Folder{}).
		Where("owner_id = ? AND is_deleted = ?", ownerID, false)
	db = whereParent(db, "parent_id", parentID)

	var folders []models.Folder
	err := db.Order("name ASC").Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) CountSiblingsByName(_ context.Context, tx *gorm.DB, ownerID uint, parentID *uint, name string, excludeID uint) (int64, error) {
	db := useTx(r.db, tx).Model(&models.Folder{}).
		Where("owner_id = ? AND is_deleted = ? AND LOWER(name) = LOWER(?)", ownerID, false, name)
	db = whereParent(db, "parent_id", parentID)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count, err
}

func (r *GormFolderRepository) UpdateByID(_ context.Context, tx *gorm.DB, folderID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.Folder{}).Where("id = ?", folderID).Updates(updates).Error
}

func (r *GormFolderRepository) SoftDeleteByID(_ context.Context, tx *gorm.DB, folderID uint, at time.Time) error {
	return useTx(r.db, tx).Model(&models.Folder{}).Where("id = ?", folderID).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": at}).Error
}

func (r *GormFolderRepository) HardDeleteByID(_ context.Context, tx *gorm.DB, folderID uint) error {
	return useTx(r.db, tx).Where("id = ?", folderID).Delete(&models.Folder{}).Error
}
