package services

import (
	"workdrive/repositories"
	"workdrive/storage"
)

type Container struct {
	Auth       AuthService
	OAuth      OAuthService
	Folders    FolderService
	Files      FileService
	TreeUpload TreeUploadService
}

func NewContainer(repos repositories.Container, store storage.Storage) *Container {
	return &Container{
		Auth:       NewAuthService(repos.Users),
		OAuth:      NewOAuthService(repos.Users, repos.OAuthStates),
		Folders:    NewFolderService(repos.TxManager, repos.Folders, repos.Files),
		Files:      NewFileService(repos.Folders, repos.Files, store),
		TreeUpload: NewTreeUploadService(repos.Folders, repos.Files, store),
	}
}
