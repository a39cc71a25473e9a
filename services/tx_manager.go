package services

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs fn inside a single database transaction. The handle it
// yields is passed down to the repository calls of a multi-step operation so
// they all observe and mutate one consistent state; fn returning an error
// rolls everything back.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
