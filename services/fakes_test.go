package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"testing"
	"time"

	"workdrive/config"
	"workdrive/models"

	"gorm.io/gorm"
)

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	countByUsername map[string]int64
	usersByID       map[uint]models.User
	usersByName     map[string]models.User
	nextID          uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		countByUsername: map[string]int64{},
		usersByID:       map[uint]models.User{},
		usersByName:     map[string]models.User{},
		nextID:          1,
	}
}

func (r *fakeUserRepo) CountByUsername(_ context.Context, username string) (int64, error) {
	if c, ok := r.countByUsername[username]; ok {
		return c, nil
	}
	if _, ok := r.usersByName[username]; ok {
		return 1, nil
	}
	return 0, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}
	r.usersByID[user.ID] = *user
	r.usersByName[user.Username] = *user
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, _ *gorm.DB, username string) (models.User, error) {
	user, ok := r.usersByName[username]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uint) (models.User, error) {
	user, ok := r.usersByID[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByProviderIdentity(_ context.Context, _ *gorm.DB, provider string, providerID string) (models.User, error) {
	for _, user := range r.usersByID {
		if user.Provider == provider && user.ProviderID == providerID {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateByID(_ context.Context, _ *gorm.DB, userID uint, updates map[string]interface{}) error {
	user, ok := r.usersByID[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["nickname"]; ok {
		user.Nickname = v.(string)
	}
	if v, ok := updates["avatar_url"]; ok {
		user.AvatarURL = v.(string)
	}
	r.usersByID[userID] = user
	r.usersByName[user.Username] = user
	return nil
}

type fakeFolderRepo struct {
	folders   map[uint]models.Folder
	nextID    uint
	createErr error
	countErr  error
	updateErr error

	hardDeleted []uint
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: map[uint]models.Folder{}, nextID: 1}
}

func (r *fakeFolderRepo) add(folder models.Folder) models.Folder {
	if folder.ID == 0 {
		folder.ID = r.nextID
	}
	if folder.ID >= r.nextID {
		r.nextID = folder.ID + 1
	}
	r.folders[folder.ID] = folder
	return folder
}

func (r *fakeFolderRepo) GetActiveByIDAndOwner(_ context.Context, _ *gorm.DB, folderID uint, ownerID uint) (models.Folder, error) {
	folder, ok := r.folders[folderID]
	if !ok || folder.OwnerID != ownerID || folder.IsDeleted {
		return models.Folder{}, gorm.ErrRecordNotFound
	}
	return folder, nil
}

func (r *fakeFolderRepo) GetByIDAndOwner(_ context.Context, _ *gorm.DB, folderID uint, ownerID uint) (models.Folder, error) {
	folder, ok := r.folders[folderID]
	if !ok || folder.OwnerID != ownerID {
		return models.Folder{}, gorm.ErrRecordNotFound
	}
	return folder, nil
}

func (r *fakeFolderRepo) Create(_ context.Context, _ *gorm.DB, folder *models.Folder) error {
	if r.createErr != nil {
		return r.createErr
	}
	*folder = r.add(*folder)
	return nil
}

func sameParent(a *uint, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeFolderRepo) ListChildren(_ context.Context, _ *gorm.DB, ownerID uint, parentID *uint) ([]models.Folder, error) {
	out := make([]models.Folder, 0)
	for _, folder := range r.folders {
		if folder.OwnerID != ownerID || folder.IsDeleted {
			continue
		}
		if sameParent(folder.ParentID, parentID) {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFolderRepo) CountSiblingsByName(_ context.Context, _ *gorm.DB, ownerID uint, parentID *uint, name string, excludeID uint) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	var count int64
	for _, folder := range r.folders {
		if folder.OwnerID != ownerID || folder.IsDeleted || folder.ID == excludeID {
			continue
		}
		if sameParent(folder.ParentID, parentID) && strings.EqualFold(folder.Name, name) {
			count++
		}
	}
	return count, nil
}

func (r *fakeFolderRepo) UpdateByID(_ context.Context, _ *gorm.DB, folderID uint, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	folder, ok := r.folders[folderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "name":
			folder.Name = value.(string)
		case "parent_id":
			if value == nil {
				folder.ParentID = nil
			} else {
				parentID := value.(uint)
				folder.ParentID = &parentID
			}
		}
	}
	r.folders[folderID] = folder
	return nil
}

func (r *fakeFolderRepo) SoftDeleteByID(_ context.Context, _ *gorm.DB, folderID uint, at time.Time) error {
	folder, ok := r.folders[folderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	folder.IsDeleted = true
	folder.DeletedAt = &at
	r.folders[folderID] = folder
	return nil
}

func (r *fakeFolderRepo) HardDeleteByID(_ context.Context, _ *gorm.DB, folderID uint) error {
	delete(r.folders, folderID)
	r.hardDeleted = append(r.hardDeleted, folderID)
	return nil
}

type fakeFileRepo struct {
	files     map[uint]models.File
	nextID    uint
	createErr error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: map[uint]models.File{}, nextID: 1}
}

func (r *fakeFileRepo) add(file models.File) models.File {
	if file.ID == 0 {
		file.ID = r.nextID
	}
	if file.ID >= r.nextID {
		r.nextID = file.ID + 1
	}
	r.files[file.ID] = file
	return file
}

func (r *fakeFileRepo) GetActiveByIDAndUploader(_ context.Context, _ *gorm.DB, fileID uint, uploaderID uint) (models.File, error) {
	file, ok := r.files[fileID]
	if !ok || file.UploaderID != uploaderID || file.IsDeleted {
		return models.File{}, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (r *fakeFileRepo) Create(_ context.Context, _ *gorm.DB, file *models.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	*file = r.add(*file)
	return nil
}

func (r *fakeFileRepo) ListByFolder(_ context.Context, _ *gorm.DB, uploaderID uint, folderID *uint) ([]models.File, error) {
	out := make([]models.File, 0)
	for _, file := range r.files {
		if file.UploaderID != uploaderID || file.IsDeleted {
			continue
		}
		if sameParent(file.FolderID, folderID) {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFileRepo) CountInFolderByName(_ context.Context, _ *gorm.DB, uploaderID uint, folderID *uint, name string, excludeID uint) (int64, error) {
	var count int64
	for _, file := range r.files {
		if file.UploaderID != uploaderID || file.IsDeleted || file.ID == excludeID {
			continue
		}
		if sameParent(file.FolderID, folderID) && strings.EqualFold(file.Name, name) {
			count++
		}
	}
	return count, nil
}

func (r *fakeFileRepo) UpdateByID(_ context.Context, _ *gorm.DB, fileID uint, updates map[string]interface{}) error {
	file, ok := r.files[fileID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "name":
			file.Name = value.(string)
		case "folder_id":
			if value == nil {
				file.FolderID = nil
			} else {
				folderID := value.(uint)
				file.FolderID = &folderID
			}
		}
	}
	r.files[fileID] = file
	return nil
}

func (r *fakeFileRepo) SoftDeleteByID(_ context.Context, _ *gorm.DB, fileID uint, at time.Time) error {
	file, ok := r.files[fileID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	file.IsDeleted = true
	file.DeletedAt = &at
	r.files[fileID] = file
	return nil
}

type fakeStorage struct {
	blobs   map[string][]byte
	saveErr error
	removed []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: map[string][]byte{}}
}

func (s *fakeStorage) Save(_ context.Context, relPath string, r io.Reader, _ int64, _ string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.blobs[relPath] = data
	return nil
}

func (s *fakeStorage) Open(_ context.Context, relPath string) (io.ReadCloser, error) {
	data, ok := s.blobs[relPath]
	if !ok {
		return nil, errors.New("blob not found: " + relPath)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Remove(_ context.Context, relPath string) error {
	delete(s.blobs, relPath)
	s.removed = append(s.removed, relPath)
	return nil
}

// testUploadConfig installs the defaults most upload tests rely on.
func testUploadConfig() {
	config.AppConfig = &config.Config{
		Upload: config.UploadConfig{
			MaxFileSize:        10 * 1024 * 1024,
			AllowedExtensions:  []string{".pdf", ".txt", ".doc", ".docx", ".xls", ".xlsx", ".xlsm", ".csv"},
			MaxFailureMessages: 3,
		},
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
	}
}

// makeFileHeader builds a real multipart.FileHeader by writing and re-parsing
// a form, so header.Open works the same way it does for live requests.
func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close form writer: %v", err)
	}

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	headers := form.File["files"]
	if len(headers) != 1 {
		t.Fatalf("expected one file header, got %d", len(headers))
	}
	return headers[0]
}
