package handlers

import (
	"net/http"
	"strconv"

	"workdrive/utils"

	"github.com/gin-gonic/gin"
)

type CreateFolderRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	ParentID *uint  `json:"parent_id"`
}

type RenameRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type MoveItemRequest struct {
	ItemType string `json:"item_type" binding:"required,oneof=folder file"`
	ItemID   uint   `json:"item_id" binding:"required"`
	TargetID *uint  `json:"target_id"`
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// optionalFolderQuery reads an optional folder id query parameter; absence
// means the workspace root.
func optionalFolderQuery(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
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

// BrowseWorkspace lists a folder's contents together with its breadcrumb
// trail. Without a folder parameter it shows the root level.
func BrowseWorkspace(c *gin.Context) {
	userID := c.GetUint("user_id")

	folderID, ok := optionalFolderQuery(c, "folder")
	if !ok {
		return
	}

	out, err := getServices().Folders.Browse(c.Request.Context(), userID, folderID)
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, out)
}

func CreateFolder(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folders.CreateFolder(c.Request.Context(), userID, req.Name, req.ParentID)
	if respondServiceError(c, err) {
		return
	}

	utils.SuccessWithMessage(c, "folder created", folder)
}

func RenameFolder(c *gin.Context) {
	userID := c.GetUint("user_id")
	folderID, ok := pathID(c)
	if !ok {
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folders.RenameFolder(c.Request.Context(), userID, folderID, req.Name)
	if respondServiceError(c, err) {
		return
	}

	utils.SuccessWithMessage(c, "folder renamed", folder)
}

func DeleteFolder(c *gin.Context) {
	userID := c.GetUint("user_id")
	folderID, ok := pathID(c)
	if !ok {
		return
	}

	folder, err := getServices().Folders.DeleteFolder(c.Request.Context(), userID, folderID)
	if respondServiceError(c, err) {
		return
	}

	utils.SuccessWithMessage(c, "folder deleted", gin.H{"id": folder.ID, "name": folder.Name})
}

// MoveItem relocates a folder or a file to another parent. A null target
// moves the item to the root level.
func MoveItem(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req MoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	var err error
	switch req.ItemType {
	case "folder":
		err = getServices().Folders.MoveFolder(c.Request.Context(), userID, req.ItemID, req.TargetID)
	case "file":
		err = getServices().Files.MoveFile(c.Request.Context(), userID, req.ItemID, req.TargetID)
	}
	if respondServiceError(c, err) {
		return
	}

	utils.SuccessWithMessage(c, req.ItemType+" moved", gin.H{
		"item_type": req.ItemType,
		"item_id":   req.ItemID,
		"target_id": req.TargetID,
	})
}
