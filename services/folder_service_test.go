package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"workdrive/models"
)

func TestFolderServiceCreateFolderAtRoot(t *testing.T) {
	folders := newFakeFolderRepo()
	files := newFakeFileRepo()
	svc := NewFolderService(fakeTxManager{}, folders, files)

	folder, err := svc.CreateFolder(context.Background(), 1, "Documents", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folder.ID == 0 {
		t.Fatalf("expected folder id to be assigned")
	}
	if folder.ParentID != nil {
		t.Fatalf("expected root-level folder, got parent %v", *folder.ParentID)
	}
}

func TestFolderServiceCreateFolderDuplicateNameCaseInsensitive(t *testing.T) {
	folders := newFakeFolderRepo()
	folders.add(models.Folder{ID: 1, Name: "Docs", OwnerID: 1})

	svc := NewFolderService(fakeTxManager{}, folders, newFakeFileRepo())
	_, err := svc.CreateFolder(context.Background(), 1, "docs", nil)
	if err == nil {
		t.Fatalf("expected duplicate-name error")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.HTTPCode != http.StatusBadRequest {
		t.Fatalf("expected HTTP 400, got %d", appErr.HTTPCode)
	}
	if appErr.Field != "name" {
		t.Fatalf("expected field name, got %q", appErr.Field)
	}
}

func TestFolderServiceCreateFolderSameNameDifferentOwner(t *testing.T) {
	folders := newFakeFolderRepo()
	folders.add(models.Folder{ID: 1, Name: "Docs", OwnerID: 1})

	svc := NewFolderService(fakeTxManager{}, folders, newFakeFileRepo())
	folder, err := svc.CreateFolder(context.Background(), 2, "Docs", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folder.OwnerID != 2 {
		t.Fatalf("expected folder owned by user 2, got %d", folder.OwnerID)
	}
}

func TestFolderServiceCreateFolderForeignParent(t *testing.T) {
	folders := newFakeFolderRepo()
	folders.add(models.Folder{ID: 1, Name: "Private", OwnerID: 2})

	svc := NewFolderService(fakeTxManager{}, folders, newFakeFileRepo())
	parentID := uint(1)
	_, err := svc.CreateFolder(context.Background(), 1, "Sneaky", &parentID)
	if err == nil {
		t.Fatalf("expected error for foreign parent")
	}
	appErr, ok := err.(*AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.HTTPCode != http.StatusNotFound {
		t.Fatalf("expected HTTP 404, got %d", appErr.HTTPCode)
	}
}

func TestFolderServiceMoveFolderIntoOwnSubtreeRejected(t *testing.T) {
	folders := newFakeFolderRepo()
	parentID := uint(1)
	childID := uint(2)
	folders.add(models.Folder{ID: parentID, Name: "a", OwnerID: 1})
	folders.add(models.Folder{ID: childID, Name: "b", OwnerID: 1, ParentID: &parentID})
	grandchild := folders.add(models.Folder{ID: 3, Name: "c", OwnerID: 1, ParentID: &childID})

	svc := NewFolderService(fakeTxManager{}, folders, newFakeFileRepo())
	err := svc.MoveFolder(context.Background(), 1, parentID, &grandchild.ID)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	appErr, ok := err.(*AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.HTTPCode != http.StatusConflict {
		t.Fatalf("expected HTTP 409, got %d", appErr.HTTPCode)
	}
	if got := folders.folders[parentID].ParentID; got != nil {
		t.Fatalf("expected folder to stay at root, got parent %v", *got)
	}
}

func TestFolderServiceMoveFolderToRoot(t *testing.T) {
	folders := newFakeFolderRepo()
	parentID := uint(1)
	folders.add(models.Folder{ID: parentID, Name: "a", OwnerID: 1})
	folders.add(models.Folder{ID: 2, Name: "b", OwnerID: 1, ParentID: &parentID})

	svc := NewFolderService(fakeTxManager{}, folders, newFakeFileRepo())
	if err := svc.MoveFolder(context.Background(), 1, 2, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := folders.folders[2].ParentID; got != nil {
		t.Fatalf("expected parent to be cleared, got %v", *got)
	}
}

func TestFolderServiceMoveFolderNameCollisionInDestination(t *testing.T) {
	folders := newFakeFolderRepo()
	destID := uint(1)
	folders.add(models.Folder{ID: destID, Name: "dest", OwnerID: 1})
	folders.add(models.Folder{ID: 2, Name: "Report", OwnerID: 1, ParentID: &destID})
	folders.add(models.Folder{ID: 3, Name: "report", OwnerID: 1})

	svc := NewFolderService(fakeTxManager{}, folders, newFakeFileRepo())
	err := svc.MoveFolder(context.Background(), 1, 3, &destID)
	if err == nil {
		t.Fatalf("expected collision error")
	}
	appErr, ok := err.(*AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.HTTPCode != http.StatusConflict {
		t.Fatalf("expected HTTP 409, got %d", appErr.HTTPCode)
	}
}

func TestFolderServiceRenameFolderConflict(t *testing.T) {
	folders := newFakeFolderRepo()
	folders.add(models.Folder{ID: 1, Name: "alpha", OwnerID: 1})
	folders.add(models.Folder{ID: 2, Name: "beta", OwnerID: 1})

	svc := NewFolderService(fakeTxManager{}, folders, newFakeFileRepo())
	_, err := svc.RenameFolder(context.Background(), 1, 2, "Alpha")
	if err == nil {
		t.Fatalf("expected conflict error")
	}
	appErr, ok := err.(*AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.HTTPCode != http.StatusConflict {
		t.Fatalf("expected HTTP 409, got %d", appErr.HTTPCode)
	}
}

func TestFolderServiceRenameFolderKeepOwnName(t *testing.T) {
	folders := newFakeFolderRepo()
	folders.add(models.Folder{ID: 1, Name: "alpha", OwnerID: 1})

	svc := NewFolderService(fakeTxManager{}, folders, newFakeFileRepo())
	folder, err := svc.RenameFolder(context.Background(), 1, 1, "Alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folder.Name != "Alpha" {
		t.Fatalf("expected renamed to Alpha, got %s", folder.Name)
	}
}

func TestFolderServiceDeleteFolderIsShallow(t *testing.T) {
	folders := newFakeFolderRepo()
	parentID := uint(1)
	folders.add(models.Folder{ID: parentID, Name: "a", OwnerID: 1})
	folders.add(models.Folder{ID: 2, Name: "b", OwnerID: 1, ParentID: &parentID})

	files := newFakeFileRepo()
	files.add(models.File{ID: 1, Name: "x.txt", UploaderID: 1, FolderID: &parentID})

	svc := NewFolderService(fakeTxManager{}, folders, files)
	if _, err := svc.DeleteFolder(context.Background(), 1, parentID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !folders.folders[parentID].IsDeleted {
		t.Fatalf("expected folder to be soft-deleted")
	}
	if folders.folders[2].IsDeleted {
		t.Fatalf("expected child folder to keep its flag")
	}
	if files.files[1].IsDeleted {
		t.Fatalf("expected contained file to keep its flag")
	}
}

func TestFolderServiceDeleteFolderTwice(t *testing.T) {
	folders := newFakeFolderRepo()
	folders.add(models.Folder{ID: 1, Name: "a", OwnerID: 1})

	svc := NewFolderService(fakeTxManager{}, folders, newFakeFileRepo())
	if _, err := svc.DeleteFolder(context.Background(), 1, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.DeleteFolder(context.Background(), 1, 1)
	if err == nil {
		t.Fatalf("expected not-found on second delete")
	}
	appErr, ok := err.(*AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.HTTPCode != http.StatusNotFound {
		t.Fatalf("expected HTTP 404, got %d", appErr.HTTPCode)
	}
}

func TestFolderServiceBrowseBreadcrumbsRootFirst(t *testing.T) {
	folders := newFakeFolderRepo()
	topID := uint(1)
	midID := uint(2)
	folders.add(models.Folder{ID: topID, Name: "top", OwnerID: 1})
	folders.add(models.Folder{ID: midID, Name: "mid", OwnerID: 1, ParentID: &topID})
	leaf := folders.add(models.Folder{ID: 3, Name: "leaf", OwnerID: 1, ParentID: &midID})

	svc := NewFolderService(fakeTxManager{}, folders, newFakeFileRepo())
	out, err := svc.Browse(context.Background(), 1, &leaf.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.CurrentFolder == nil || out.CurrentFolder.ID != leaf.ID {
		t.Fatalf("unexpected current folder: %+v", out.CurrentFolder)
	}
	if len(out.Breadcrumbs) != 3 {
		t.Fatalf("expected 3 breadcrumbs, got %d", len(out.Breadcrumbs))
	}
	want := []string{"top", "mid", "leaf"}
	for i, name := range want {
		if out.Breadcrumbs[i].Name != name {
			t.Fatalf("breadcrumb %d: expected %s, got %s", i, name, out.Breadcrumbs[i].Name)
		}
	}
}

func TestFolderServiceBrowseRootListsOnlyActive(t *testing.T) {
	folders := newFakeFolderRepo()
	folders.add(models.Folder{ID: 1, Name: "visible", OwnerID: 1})
	folders.add(models.Folder{ID: 2, Name: "gone", OwnerID: 1, IsDeleted: true})
	folders.add(models.Folder{ID: 3, Name: "foreign", OwnerID: 2})

	files := newFakeFileRepo()
	files.add(models.File{ID: 1, Name: "a.txt", UploaderID: 1})
	files.add(models.File{ID: 2, Name: "b.txt", UploaderID: 1, IsDeleted: true})

	svc := NewFolderService(fakeTxManager{}, folders, files)
	out, err := svc.Browse(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.CurrentFolder != nil {
		t.Fatalf("expected nil current folder at root")
	}
	if len(out.Folders) != 1 || out.Folders[0].Name != "visible" {
		t.Fatalf("unexpected folder list: %#v", out.Folders)
	}
	if len(out.Files) != 1 || out.Files[0].Name != "a.txt" {
		t.Fatalf("unexpected file list: %#v", out.Files)
	}
	if len(out.Breadcrumbs) != 0 {
		t.Fatalf("expected no breadcrumbs at root, got %d", len(out.Breadcrumbs))
	}
}
