// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package drive is a thin client over the Google Drive v3 API for browsing
comic folders and downloading archives.

Shared drives are included in every listing. Authentication is by API key
(public folders), by an OAuth access token obtained elsewhere, or by a
service-account credentials file.
*/
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	listPageSize   = 1000
	listFields     = "nextPageToken, files(id, name, size, mimeType)"
)

// ErrNoCredentials is returned when no authentication method is configured.
var ErrNoCredentials = errors.New("drive: no API key, access token or credentials file configured")

// Credentials selects how requests are authenticated. The first non-empty
// field wins, in declaration order.
type Credentials struct {
	APIKey          string
	AccessToken     string
	CredentialsFile string
}

// File is a Drive file or folder.
type File struct {
	ID       string
	Name     string
	Size     int64
	IsFolder bool
}

// Client wraps a Drive service rooted at one folder.
type Client struct {
	service *drive.Service
	rootID  string
	logger  *slog.Logger
}

// NewClient authenticates against Drive. Extra options are appended after the
// credential option, which lets tests point the client at a fake endpoint.
func NewClient(ctx context.Context, rootID string, credentials Credentials, logger *slog.Logger, extra ...option.ClientOption) (*Client, error) {
	var options []option.ClientOption
	switch {
	case credentials.APIKey != "":
		options = append(options, option.WithAPIKey(credentials.APIKey))
	case credentials.AccessToken != "":
		tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credentials.AccessToken, TokenType: "Bearer"})
		options = append(options, option.WithTokenSource(tokenSource))
	case credentials.CredentialsFile != "":
		options = append(options, option.WithCredentialsFile(credentials.CredentialsFile), option.WithScopes(drive.DriveReadonlyScope))
	case len(extra) == 0:
		return nil, ErrNoCredentials
	}
	options = append(options, extra...)

	service, err := drive.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("drive: create service: %w", err)
	}

	return &Client{service: service, rootID: rootID, logger: logger}, nil
}

// RootID returns the folder the library is listed from.
func (client *Client) RootID() string {
	return client.rootID
}

// ListFolders returns the non-trashed sub-folders of parentID.
func (client *Client) ListFolders(ctx context.Context, parentID string) ([]File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", escape(parentID), folderMimeType)
	return client.list(ctx, query)
}

// ListFiles returns the non-folder, non-trashed children of folderID.
func (client *Client) ListFiles(ctx context.Context, folderID string) ([]File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false", escape(folderID), folderMimeType)
	return client.list(ctx, query)
}

// Download fetches the full content of fileID. Non-2xx responses are errors.
func (client *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	response, err := client.service.Files.Get(fileID).
		SupportsAllDrives(true).
		Context(ctx).
		Download()
	if err != nil {
		return nil, fmt.Errorf("drive: download %s: %w", fileID, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("drive: read %s: %w", fileID, err)
	}

	client.logger.DebugContext(ctx, "drive_file_downloaded",
		slog.String("file_id", fileID),
		slog.Int("bytes", len(data)),
	)
	return data, nil
}

func (client *Client) list(ctx context.Context, query string) ([]File, error) {
	var files []File

	err := client.service.Files.List().
		Q(query).
		Fields(listFields).
		PageSize(listPageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, file := range page.Files {
				files = append(files, File{
					ID:       file.Id,
					Name:     file.Name,
					Size:     file.Size,
					IsFolder: file.MimeType == folderMimeType,
				})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("drive: list: %w", err)
	}

	return files, nil
}

// escape quotes an ID for a Drive query string literal.
func escape(id string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(id)
}
