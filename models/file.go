package models

import "time"

// File is uploaded-file metadata. The bytes live in the blob store under
// StoredPath; Name is the display name and may differ from the stored one.
// FolderID is nil for root-level files.
type File struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	StoredPath string     `gorm:"type:varchar(1000);not null" json:"-"`
	Size       int64      `gorm:"not null" json:"size"`
	MimeType   string     `gorm:"type:varchar(100)" json:"mime_type"`
	FolderID   *uint      `gorm:"index:idx_uploader_folder" json:"folder_id"`
	UploaderID uint       `gorm:"not null;index:idx_uploader_folder" json:"uploader_id"`
	UploadedAt time.Time  `gorm:"autoCreateTime" json:"uploaded_at"`
	IsDeleted  bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}
