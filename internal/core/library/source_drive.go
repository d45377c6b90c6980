// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"

	"github.com/taibuivan/comicreader/internal/platform/drive"
)

// DriveClient is the part of [drive.Client] the source relies on.
type DriveClient interface {
	RootID() string
	ListFolders(ctx context.Context, parentID string) ([]drive.File, error)
	ListFiles(ctx context.Context, folderID string) ([]drive.File, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// DriveSource adapts a Google Drive client to [Source].
type DriveSource struct {
	client DriveClient
}

// NewDriveSource wraps client.
func NewDriveSource(client DriveClient) *DriveSource {
	return &DriveSource{client: client}
}

// Root returns the configured Drive folder.
func (source *DriveSource) Root() string {
	return source.client.RootID()
}

// ListFolders returns the sub-folders of parentID.
func (source *DriveSource) ListFolders(context context.Context, parentID string) ([]Folder, error) {
	files, err := source.client.ListFolders(context, parentID)
	if err != nil {
		return nil, err
	}

	folders := make([]Folder, 0, len(files))
	for _, file := range files {
		folders = append(folders, Folder{ID: file.ID, Name: file.Name})
	}
	return folders, nil
}

// ListArchives returns the archives in folderID, ignoring other files.
func (source *DriveSource) ListArchives(context context.Context, folderID string) ([]ArchiveFile, error) {
	files, err := source.client.ListFiles(context, folderID)
	if err != nil {
		return nil, err
	}

	var archives []ArchiveFile
	for _, file := range files {
		if file.IsFolder || !IsArchiveName(file.Name) {
			continue
		}
		archives = append(archives, ArchiveFile{ID: file.ID, Name: file.Name, Size: file.Size})
	}
	return archives, nil
}

// DownloadArchive fetches the archive bytes.
func (source *DriveSource) DownloadArchive(context context.Context, fileID string) ([]byte, error) {
	data, err := source.client.Download(context, fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	return data, nil
}
