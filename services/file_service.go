package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"workdrive/config"
	"workdrive/logger"
	"workdrive/models"
	"workdrive/repositories"
	"workdrive/storage"

	"gorm.io/gorm"
)

type BatchResult struct {
	Uploaded  []models.File `json:"uploaded"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Messages  []Message     `json:"messages"`
}

type FileService interface {
	UploadFiles(ctx context.Context, uploaderID uint, folderID *uint, headers []*multipart.FileHeader) (BatchResult, error)
	RenameFile(ctx context.Context, uploaderID uint, fileID uint, name string) (models.File, error)
	MoveFile(ctx context.Context, uploaderID uint, fileID uint, targetID *uint) error
	DeleteFile(ctx context.Context, uploaderID uint, fileID uint) (models.File, error)
	Download(ctx context.Context, uploaderID uint, fileID uint) (models.File, io.ReadCloser, error)
}

type fileService struct {
	folders  repositories.FolderRepository
	files    repositories.FileRepository
	store    storage.Storage
	resolver folderResolver
}

func NewFileService(folders repositories.FolderRepository, files repositories.FileRepository, store storage.Storage) FileService {
	return &fileService{
		folders:  folders,
		files:    files,
		store:    store,
		resolver: folderResolver{folders: folders},
	}
}

func (s *fileService) UploadFiles(ctx context.Context, uploaderID uint, folderID *uint, headers []*multipart.FileHeader) (BatchResult, error) {
	if len(headers) == 0 {
		return BatchResult{}, newAppError(http.StatusBadRequest, "no files were uploaded", nil)
	}

	folder, err := s.resolver.resolveOptionalFolder(ctx, nil, uploaderID, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BatchResult{}, newAppError(http.StatusNotFound, "destination folder not found", nil)
		}
		return BatchResult{}, newAppError(http.StatusInternalServerError, "failed to resolve destination folder", err)
	}

	var destID *uint
	if folder != nil {
		destID = &folder.ID
	}

	result := BatchResult{}
	var failures []string
	for _, header := range headers {
		file, err := s.storeOne(ctx, uploaderID, destID, header)
		if err != nil {
			result.Failed++
			failures = append(failures, err.Error())
			continue
		}
		result.Succeeded++
		result.Uploaded = append(result.Uploaded, file)
	}

	result.Messages = summarizeBatch(result.Succeeded, failures)
	return result, nil
}

func (s *fileService) storeOne(ctx context.Context, uploaderID uint, folderID *uint, header *multipart.FileHeader) (models.File, error) {
	return storeUploadedFile(ctx, s.files, s.store, uploaderID, folderID, header)
}

// storeUploadedFile validates, names, stores and records a single uploaded
// file; the folder-tree upload path shares it. The returned error text is
// user-facing; storage detail goes to the debug log.
func storeUploadedFile(ctx context.Context, files repositories.FileRepository, store storage.Storage, uploaderID uint, folderID *uint, header *multipart.FileHeader) (models.File, error) {
	if err := validateUpload(header); err != nil {
		return models.File{}, err
	}

	name, err := uniqueFileName(ctx, nil, files, uploaderID, folderID, sanitizeFilename(header.Filename))
	if err != nil {
		logger.Debugf("unique name resolution for %q failed: %v", header.Filename, err)
		return models.File{}, fmt.Errorf("failed to store %q", header.Filename)
	}

	src, err := header.Open()
	if err != nil {
		logger.Debugf("open upload %q failed: %v", header.Filename, err)
		return models.File{}, fmt.Errorf("failed to read %q", header.Filename)
	}
	defer src.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	storedPath := storagePathFor(uploaderID, folderID, name)
	if err := store.Save(ctx, storedPath, src, header.Size, mimeType); err != nil {
		logger.Debugf("save blob %q failed: %v", storedPath, err)
		return models.File{}, fmt.Errorf("failed to store %q", header.Filename)
	}

	file := models.File{
		Name:       name,
		StoredPath: storedPath,
		Size:       header.Size,
		MimeType:   mimeType,
		FolderID:   folderID,
		UploaderID: uploaderID,
	}
	if err := files.Create(ctx, nil, &file); err != nil {
		if removeErr := store.Remove(ctx, storedPath); removeErr != nil {
			logger.Errorf("orphaned blob %q could not be removed: %v", storedPath, removeErr)
		}
		logger.Debugf("create file row for %q failed: %v", header.Filename, err)
		return models.File{}, fmt.Errorf("failed to store %q", header.Filename)
	}

	return file, nil
}

func validateUpload(header *multipart.FileHeader) error {
	if !isExtensionAllowed(header.Filename) {
		ext := strings.ToLower(strings.TrimPrefix(extOf(header.Filename), "."))
		if ext == "" {
			ext = "none"
		}
		return fmt.Errorf("invalid file %q: the %q format is not allowed, only %s are accepted",
			header.Filename, ext, allowedExtensionsLabel())
	}
	maxSize := config.AppConfig.Upload.MaxFileSize
	if header.Size > maxSize {
		return fmt.Errorf("file %q exceeds the %d MB limit", header.Filename, maxSize/(1024*1024))
	}
	return nil
}

func extOf(name string) string {
	_, ext := splitExt(name)
	return ext
}

// summarizeBatch turns per-file outcomes into flash messages: a pluralized
// success count, at most MaxFailureMessages itemized failures and a summary
// count for the rest. Partial failure is a normal outcome here.
func summarizeBatch(succeeded int, failures []string) []Message {
	var messages []Message
	if succeeded == 1 {
		messages = append(messages, Message{Level: MessageSuccess, Text: "1 file uploaded successfully"})
	} else if succeeded > 1 {
		messages = append(messages, Message{Level: MessageSuccess, Text: fmt.Sprintf("%d files uploaded successfully", succeeded)})
	}

	bound := config.AppConfig.Upload.MaxFailureMessages
	for i, failure := range failures {
		if i == bound {
			break
		}
		messages = append(messages, Message{Level: MessageError, Text: failure})
	}
	if remaining := len(failures) - bound; remaining > 0 {
		messages = append(messages, Message{Level: MessageWarning, Text: fmt.Sprintf("%d more files failed to upload", remaining)})
	}

	return messages
}

func (s *fileService) RenameFile(ctx context.Context, uploaderID uint, fileID uint, name string) (models.File, error) {
	file, err := s.files.GetActiveByIDAndUploader(ctx, nil, fileID, uploaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "failed to load file", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return models.File{}, newFieldError(http.StatusBadRequest, "name", "file name is required")
	}

	count, err := s.files.CountInFolderByName(ctx, nil, uploaderID, file.FolderID, name, file.ID)
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "failed to check file name", err)
	}
	if count > 0 {
		return models.File{}, newAppError(http.StatusConflict,
			"a file with this name already exists in this directory", nil)
	}

	if err := s.files.UpdateByID(ctx, nil, file.ID, map[string]interface{}{"name": name}); err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "failed to rename file", err)
	}

	file.Name = name
	return file, nil
}

func (s *fileService) MoveFile(ctx context.Context, uploaderID uint, fileID uint, targetID *uint) error {
	file, err := s.files.GetActiveByIDAndUploader(ctx, nil, fileID, uploaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "file not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "failed to load file", err)
	}

	target, err := s.resolver.resolveOptionalFolder(ctx, nil, uploaderID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "target folder not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "failed to resolve target folder", err)
	}

	var destID *uint
	if target != nil {
		destID = &target.ID
	}

	count, err := s.files.CountInFolderByName(ctx, nil, uploaderID, destID, file.Name, file.ID)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to check file name", err)
	}
	if count > 0 {
		return newAppError(http.StatusConflict,
			fmt.Sprintf("a file named %q already exists in the destination", file.Name), nil)
	}

	updates := map[string]interface{}{"folder_id": nil}
	if destID != nil {
		updates["folder_id"] = *destID
	}
	if err := s.files.UpdateByID(ctx, nil, file.ID, updates); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to move file", err)
	}

	return nil
}

func (s *fileService) DeleteFile(ctx context.Context, uploaderID uint, fileID uint) (models.File, error) {
	file, err := s.files.GetActiveByIDAndUploader(ctx, nil, fileID, uploaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "failed to load file", err)
	}

	if err := s.files.SoftDeleteByID(ctx, nil, file.ID, time.Now()); err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "failed to delete file", err)
	}

	return file, nil
}

func (s *fileService) Download(ctx context.Context, uploaderID uint, fileID uint) (models.File, io.ReadCloser, error) {
	file, err := s.files.GetActiveByIDAndUploader(ctx, nil, fileID, uploaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, nil, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return models.File{}, nil, newAppError(http.StatusInternalServerError, "failed to load file", err)
	}

	rc, err := s.store.Open(ctx, file.StoredPath)
	if err != nil {
		logger.Debugf("open blob %q failed: %v", file.StoredPath, err)
		return models.File{}, nil, newAppError(http.StatusInternalServerError, "failed to open file", err)
	}

	return file, rc, nil
}
