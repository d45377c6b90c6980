// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirSource serves a library from a local directory tree. Folder and file IDs
// are URL-safe encodings of the slash-separated path below the root, so they
// can travel in URL paths and page IDs unchanged.
type DirSource struct {
	root string
}

// NewDirSource returns a [Source] rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: filepath.Clean(dir)}
}

// Root returns the ID of the top-level directory.
func (source *DirSource) Root() string {
	return ""
}

// ListFolders returns the visible sub-directories of parentID.
func (source *DirSource) ListFolders(context context.Context, parentID string) ([]Folder, error) {
	entries, err := source.readDir(parentID)
	if err != nil {
		return nil, err
	}

	parent, _ := decodeID(parentID)
	var folders []Folder
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		folders = append(folders, Folder{
			ID:   encodeID(joinRel(parent, entry.Name())),
			Name: entry.Name(),
		})
	}
	return folders, context.Err()
}

// ListArchives returns the archive files directly inside folderID.
func (source *DirSource) ListArchives(context context.Context, folderID string) ([]ArchiveFile, error) {
	entries, err := source.readDir(folderID)
	if err != nil {
		return nil, err
	}

	folder, _ := decodeID(folderID)
	var files []ArchiveFile
	for _, entry := range entries {
		if entry.IsDir() || !IsArchiveName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, ArchiveFile{
			ID:   encodeID(joinRel(folder, entry.Name())),
			Name: entry.Name(),
			Size: info.Size(),
		})
	}
	return files, context.Err()
}

// DownloadArchive reads the whole archive file.
func (source *DirSource) DownloadArchive(context context.Context, fileID string) ([]byte, error) {
	if err := context.Err(); err != nil {
		return nil, err
	}

	fullPath, err := source.resolve(fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	return data, nil
}

func (source *DirSource) readDir(id string) ([]os.DirEntry, error) {
	fullPath, err := source.resolve(id)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("library: read %q: %w", id, err)
	}
	return entries, nil
}

// resolve maps an ID to a path below the root, refusing escapes.
func (source *DirSource) resolve(id string) (string, error) {
	rel, err := decodeID(id)
	if err != nil {
		return "", fmt.Errorf("library: invalid id %q: %w", id, err)
	}
	if rel == "" {
		return source.root, nil
	}

	local, err := filepath.Localize(rel)
	if err != nil {
		return "", fmt.Errorf("library: invalid id %q: %w", id, err)
	}
	return filepath.Join(source.root, local), nil
}

func joinRel(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func encodeID(rel string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(rel))
}

func decodeID(id string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	return string(raw), err
}
