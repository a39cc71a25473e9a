package models

import "time"

// Folder is a node in the per-user workspace tree. ParentID is nil for
// root-level folders; the parent chain is kept acyclic by the move service,
// not by the schema.
type Folder struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID   uint       `gorm:"not null;index:idx_owner_parent" json:"owner_id"`
	ParentID  *uint      `gorm:"index:idx_owner_parent" json:"parent_id"`
	CreatedAt time.Time  `json:"created_at"`
	IsDeleted bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
