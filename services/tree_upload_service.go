package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"time"

	"workdrive/logger"
	"workdrive/models"
	"workdrive/repositories"
	"workdrive/storage"

	"gorm.io/gorm"
)

// TreeFile is one uploaded file together with the relative path the client
// captured from the picked directory, e.g. "proj/sub/b.csv".
type TreeFile struct {
	RelativePath string
	Header       *multipart.FileHeader
}

type TreeUploadInput struct {
	Name     string
	ParentID *uint
	Files    []TreeFile
}

type TreeUploadResult struct {
	RootFolder *models.Folder `json:"root_folder,omitempty"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Messages   []Message      `json:"messages"`
}

type TreeUploadService interface {
	UploadTree(ctx context.Context, uploaderID uint, in TreeUploadInput) (TreeUploadResult, error)
}

type treeUploadService struct {
	folders  repositories.FolderRepository
	files    repositories.FileRepository
	store    storage.Storage
	resolver folderResolver
}

func NewTreeUploadService(folders repositories.FolderRepository, files repositories.FileRepository, store storage.Storage) TreeUploadService {
	return &treeUploadService{
		folders:  folders,
		files:    files,
		store:    store,
		resolver: folderResolver{folders: folders},
	}
}

// UploadTree reconstructs an uploaded directory tree: it creates a root
// folder, materializes the intermediate folders implied by the relative
// paths breadth-first, and runs every file through the regular upload
// pipeline. The only cleanup is compensating: if nothing could be stored the
// just-created root is removed again; subfolders materialized before a later
// failure are left in place.
func (s *treeUploadService) UploadTree(ctx context.Context, uploaderID uint, in TreeUploadInput) (TreeUploadResult, error) {
	if len(in.Files) == 0 {
		return TreeUploadResult{}, newAppError(http.StatusBadRequest, "no files were uploaded", nil)
	}

	parent, err := s.resolver.resolveOptionalFolder(ctx, nil, uploaderID, in.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TreeUploadResult{}, newAppError(http.StatusNotFound, "destination folder not found", nil)
		}
		return TreeUploadResult{}, newAppError(http.StatusInternalServerError, "failed to resolve destination folder", err)
	}

	var parentID *uint
	if parent != nil {
		parentID = &parent.ID
	}

	topSegment := commonTopSegment(in.Files)
	rootName := strings.TrimSpace(in.Name)
	if rootName == "" {
		rootName = topSegment
	}
	if rootName == "" {
		rootName = "upload-" + time.Now().Format("20060102-150405")
	}

	rootName, err = uniqueFolderName(ctx, nil, s.folders, uploaderID, parentID, rootName)
	if err != nil {
		return TreeUploadResult{}, newAppError(http.StatusInternalServerError, "failed to resolve folder name", err)
	}

	root := models.Folder{Name: rootName, OwnerID: uploaderID, ParentID: parentID}
	if err := s.folders.Create(ctx, nil, &root); err != nil {
		return TreeUploadResult{}, newAppError(http.StatusInternalServerError, "failed to create folder", err)
	}

	dirIDs, dirErrs := s.materializeDirs(ctx, uploaderID, root.ID, topSegment, in.Files)

	result := TreeUploadResult{}
	var failures []string
	attempted := 0
	for _, tf := range in.Files {
		if tf.Header == nil {
			continue
		}
		attempted++

		targetID := root.ID
		dirKey := dirKeyFor(tf.RelativePath, topSegment)
		if dirKey != "" {
			if dirErr, ok := dirErrs[dirKey]; ok {
				result.Failed++
				failures = append(failures, fmt.Sprintf("failed to store %q: %s", tf.Header.Filename, dirErr))
				continue
			}
			if id, ok := dirIDs[dirKey]; ok {
				targetID = id
			}
		}

		if _, err := storeUploadedFile(ctx, s.files, s.store, uploaderID, &targetID, tf.Header); err != nil {
			result.Failed++
			failures = append(failures, err.Error())
			continue
		}
		result.Succeeded++
	}

	if attempted == 0 || result.Succeeded == 0 {
		// Compensating action, not a transaction: only the root goes away.
		if err := s.folders.HardDeleteByID(ctx, nil, root.ID); err != nil {
			logger.Errorf("rollback of folder %d failed: %v", root.ID, err)
		}
		if attempted == 0 {
			result.Messages = []Message{{Level: MessageError, Text: "folder upload failed: no files could be processed"}}
			return result, nil
		}
		result.Messages = boundedFailures(failures)
		return result, nil
	}

	result.RootFolder = &root
	if result.Failed == 0 {
		result.Messages = []Message{{
			Level: MessageSuccess,
			Text:  fmt.Sprintf("folder %q uploaded successfully", root.Name),
		}}
		return result, nil
	}

	// Mixed outcome: keep the root and whatever succeeded, no success banner.
	result.Messages = boundedFailures(failures)
	return result, nil
}

// materializeDirs creates (or reuses) every intermediate folder implied by
// the relative paths, shallowest level first. It returns the folder id per
// directory key plus an error text per directory that could not be created.
func (s *treeUploadService) materializeDirs(ctx context.Context, ownerID uint, rootID uint, topSegment string, files []TreeFile) (map[string]uint, map[string]string) {
	type dirPath struct {
		key  string
		segs []string
	}

	seen := map[string]bool{}
	var dirs []dirPath
	for _, tf := range files {
		if tf.Header == nil {
			continue
		}
		segs := dirSegments(tf.RelativePath, topSegment)
		for i := 1; i <= len(segs); i++ {
			prefix := segs[:i]
			key := strings.ToLower(strings.Join(prefix, "/"))
			if !seen[key] {
				seen[key] = true
				dirs = append(dirs, dirPath{key: key, segs: prefix})
			}
		}
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		return len(dirs[i].segs) < len(dirs[j].segs)
	})

	dirIDs := map[string]uint{}
	dirErrs := map[string]string{}
	for _, d := range dirs {
		parentID := rootID
		if len(d.segs) > 1 {
			parentKey := strings.ToLower(strings.Join(d.segs[:len(d.segs)-1], "/"))
			if errText, failed := dirErrs[parentKey]; failed {
				dirErrs[d.key] = errText
				continue
			}
			parentID = dirIDs[parentKey]
		}

		folder, err := s.ensureChildFolder(ctx, ownerID, parentID, d.segs[len(d.segs)-1])
		if err != nil {
			logger.Debugf("materialize folder %q failed: %v", d.key, err)
			dirErrs[d.key] = "could not create its folder"
			continue
		}
		dirIDs[d.key] = folder.ID
	}

	return dirIDs, dirErrs
}

// ensureChildFolder reuses an existing non-deleted child of the same name
// (case-insensitively) instead of duplicating it.
func (s *treeUploadService) ensureChildFolder(ctx context.Context, ownerID uint, parentID uint, name string) (models.Folder, error) {
	children, err := s.folders.ListChildren(ctx, nil, ownerID, &parentID)
	if err != nil {
		return models.Folder{}, err
	}
	for _, child := range children {
		if strings.EqualFold(child.Name, name) {
			return child, nil
		}
	}

	folder := models.Folder{Name: name, OwnerID: ownerID, ParentID: &parentID}
	if err := s.folders.Create(ctx, nil, &folder); err != nil {
		return models.Folder{}, err
	}
	return folder, nil
}

func boundedFailures(failures []string) []Message {
	return summarizeBatch(0, failures)
}

// commonTopSegment infers the uploaded tree's own top directory: the
// unanimous first path segment, or failing that the most frequent one.
// Files without a directory component don't vote.
func commonTopSegment(files []TreeFile) string {
	counts := map[string]int{}
	var order []string
	for _, tf := range files {
		segs := splitRelPath(tf.RelativePath)
		if len(segs) < 2 {
			continue
		}
		seg := segs[0]
		key := strings.ToLower(seg)
		if counts[key] == 0 {
			order = append(order, seg)
		}
		counts[key]++
	}

	best := ""
	bestCount := 0
	for _, seg := range order {
		if c := counts[strings.ToLower(seg)]; c > bestCount {
			best = seg
			bestCount = c
		}
	}
	return best
}

func splitRelPath(relPath string) []string {
	relPath = strings.ReplaceAll(relPath, "\\", "/")
	var segs []string
	for _, seg := range strings.Split(relPath, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		segs = append(segs, seg)
	}
	return segs
}

// dirSegments returns the intermediate directories for a file, with the
// inferred top segment stripped when it matches.
func dirSegments(relPath string, topSegment string) []string {
	segs := splitRelPath(relPath)
	if len(segs) == 0 {
		return nil
	}
	dirs := segs[:len(segs)-1]
	if len(dirs) > 0 && topSegment != "" && strings.EqualFold(dirs[0], topSegment) {
		dirs = dirs[1:]
	}
	return dirs
}

func dirKeyFor(relPath string, topSegment string) string {
	return strings.ToLower(strings.Join(dirSegments(relPath, topSegment), "/"))
}
