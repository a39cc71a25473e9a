package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"workdrive/config"
	"workdrive/repositories"

	"gorm.io/gorm"
)

// sanitizeFilename strips directory components and neutralizes characters
// unsafe for path construction. An emptied name becomes "unnamed" so the
// storage path stays well-formed.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	replacer := strings.NewReplacer("..", "_", "/", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", "\x00", "_")
	name = strings.TrimSpace(replacer.Replace(name))
	if name == "" || name == "." {
		return "unnamed"
	}
	return name
}

func isExtensionAllowed(fileName string) bool {
	allowed := config.AppConfig.Upload.AllowedExtensions
	if len(allowed) == 0 {
		return true
	}

	fileExt := strings.ToLower(filepath.Ext(fileName))
	for _, ext := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "*" {
			return true
		}
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if normalized == fileExt {
			return true
		}
	}

	return false
}

// allowedExtensionsLabel renders the allow-list for user-facing messages,
// e.g. "PDF, TXT, DOC".
func allowedExtensionsLabel() string {
	exts := config.AppConfig.Upload.AllowedExtensions
	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			parts = append(parts, ext)
		}
	}
	return strings.Join(parts, ", ")
}

func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// uniqueFileName appends " (N)" before the extension until the name no longer
// collides case-insensitively with a non-deleted file in the same scope.
func uniqueFileName(ctx context.Context, tx *gorm.DB, files repositories.FileRepository, uploaderID uint, folderID *uint, name string) (string, error) {
	base, ext := splitExt(name)
	candidate := name
	counter := 1
	for {
		count, err := files.CountInFolderByName(ctx, tx, uploaderID, folderID, candidate, 0)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s (%d)%s", base, counter, ext)
		counter++
	}
}

// uniqueFolderName is the sibling-folder counterpart of uniqueFileName.
func uniqueFolderName(ctx context.Context, tx *gorm.DB, folders repositories.FolderRepository, ownerID uint, parentID *uint, name string) (string, error) {
	candidate := name
	counter := 1
	for {
		count, err := folders.CountSiblingsByName(ctx, tx, ownerID, parentID, candidate, 0)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s (%d)", name, counter)
		counter++
	}
}

// storagePathFor derives the deterministic blob path:
// workspace/user_<uploader>/<folder_<id>|root>/<sanitized name>.
// Name uniqueness is checked against active rows only, so a new upload may
// take over the path of a soft-deleted file with the same name and overwrite
// its blob; the deleted row's metadata keeps pointing at the reused path.
func storagePathFor(uploaderID uint, folderID *uint, name string) string {
	folderPart := "root"
	if folderID != nil {
		folderPart = fmt.Sprintf("folder_%d", *folderID)
	}
	return fmt.Sprintf("workspace/user_%d/%s/%s", uploaderID, folderPart, sanitizeFilename(name))
}
