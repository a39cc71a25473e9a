package repositories

import (
	"context"
	"time"

	"workdrive/models"

	"gorm.io/gorm"
)

type GormFileRepository struct {
	db *gorm.DB
}

func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

func (r *GormFileRepository) GetActiveByIDAndUploader(_ context.Context, tx *gorm.DB, fileID uint, uploaderID uint) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).
		Where("id = ? AND uploader_id = ? AND is_deleted = ?", fileID, uploaderID, false).
		First(&file).Error
	return file, err
}

func (r *GormFileRepository) Create(_ context.Context, tx *gorm.DB, file *models.File) error {
	return useTx(r.db, tx).Create(file).Error
}

func (r *GormFileRepository) ListByFolder(_ context.Context, tx *gorm.DB, uploaderID uint, folderID *uint) ([]models.File, error) {
	db := useTx(r.db, tx).Model(&models.File{}).
		Where("uploader_id = ? AND is_deleted = ?", uploaderID, false)
	db = whereParent(db, "folder_id", folderID)

	var files []models.File
	err := db.Order("name ASC").Find(&files).Error
	return files, err
}

func (r *GormFileRepository) CountInFolderByName(_ context.Context, tx *gorm.DB, uploaderID uint, folderID *uint, name string, excludeID uint) (int64, error) {
	db := useTx(r.db, tx).Model(&models.File{}).
		Where("uploader_id = ? AND is_deleted = ? AND LOWER(name) = LOWER(?)", uploaderID, false, name)
	db = whereParent(db, "folder_id", folderID)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count, err
}

func (r *GormFileRepository) UpdateByID(_ context.Context, tx *gorm.DB, fileID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.File{}).Where("id = ?", fileID).Updates(updates).Error
}

func (r *GormFileRepository) SoftDeleteByID(_ context.Context, tx *gorm.DB, fileID uint, at time.Time) error {
	return useTx(r.db, tx).Model(&models.File{}).Where("id = ?", fileID).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": at}).Error
}
