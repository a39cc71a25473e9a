package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"workdrive/logger"
	"workdrive/services"
	"workdrive/utils"

	"github.com/gin-gonic/gin"
)

// optionalFolderForm reads an optional folder id form field; absence means
// the workspace root.
func optionalFolderForm(c *gin.Context, key string) (*uint, bool) {
	raw := c.PostForm(key)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.Error(c, http.StatusBadRequest, "invalid folder id")
		return nil, false
	}
	folderID := uint(id)
	return &folderID, true
}

// UploadFiles accepts a multipart batch under the "files" field and stores
// each one into the optional "folder" destination. Per-file failures are
// reported in the result, not as a request error.
func UploadFiles(c *gin.Context) {
	userID := c.GetUint("user_id")

	form, err := c.MultipartForm()
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid multipart request")
		return
	}

	folderID, ok := optionalFolderForm(c, "folder")
	if !ok {
		return
	}

	result, err := getServices().Files.UploadFiles(c.Request.Context(), userID, folderID, form.File["files"])
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, result)
}

// UploadTree accepts a picked directory: one "files" part per file plus a
// parallel "relative_paths" field carrying each file's path inside the
// directory. An optional "name" overrides the root folder name and "parent"
// selects where the tree lands.
func UploadTree(c *gin.Context) {
	userID := c.GetUint("user_id")

	form, err := c.MultipartForm()
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid multipart request")
		return
	}

	parentID, ok := optionalFolderForm(c, "parent")
	if !ok {
		return
	}

	headers := form.File["files"]
	relPaths := form.Value["relative_paths"]

	treeFiles := make([]services.TreeFile, 0, len(headers))
	for i, header := range headers {
		relPath := header.Filename
		if i < len(relPaths) && relPaths[i] != "" {
			relPath = relPaths[i]
		}
		treeFiles = append(treeFiles, services.TreeFile{RelativePath: relPath, Header: header})
	}

	result, err := getServices().TreeUpload.UploadTree(c.Request.Context(), userID, services.TreeUploadInput{
		Name:     c.PostForm("name"),
		ParentID: parentID,
		Files:    treeFiles,
	})
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, result)
}

func RenameFile(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	file, err := getServices().Files.RenameFile(c.Request.Context(), userID, fileID, req.Name)
	if respondServiceError(c, err) {
		return
	}

	utils.SuccessWithMessage(c, "file renamed", file)
}

func DeleteFile(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	file, err := getServices().Files.DeleteFile(c.Request.Context(), userID, fileID)
	if respondServiceError(c, err) {
		return
	}

	utils.SuccessWithMessage(c, "file deleted", gin.H{"id": file.ID, "name": file.Name})
}

func DownloadFile(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	file, rc, err := getServices().Files.Download(c.Request.Context(), userID, fileID)
	if respondServiceError(c, err) {
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Header("Content-Type", file.MimeType)
	c.Header("Content-Length", strconv.FormatInt(file.Size, 10))
	if _, err := io.Copy(c.Writer, rc); err != nil {
		logger.Debugf("stream file %d failed: %v", file.ID, err)
	}
}
