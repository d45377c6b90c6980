// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package drive_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/taibuivan/comicreader/internal/platform/drive"
)

// newFakeDrive serves the two Drive endpoints the client uses.
func newFakeDrive(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(writer http.ResponseWriter, request *http.Request) {
		query := request.URL.Query()
		assert.Equal(t, "true", query.Get("supportsAllDrives"))
		assert.Equal(t, "true", query.Get("includeItemsFromAllDrives"))

		var files []map[string]any
		q := query.Get("q")
		switch {
		case strings.Contains(q, "'root' in parents") && strings.Contains(q, "mimeType = "):
			files = []map[string]any{
				{"id": "series-1", "name": "Berserk", "mimeType": "application/vnd.google-apps.folder"},
			}
		case strings.Contains(q, "'series-1' in parents"):
			if query.Get("pageToken") == "" {
				writer.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(writer).Encode(map[string]any{
					"nextPageToken": "p2",
					"files":         []map[string]any{{"id": "v1", "name": "Vol 1.cbz", "size": "2048", "mimeType": "application/zip"}},
				})
				return
			}
			files = []map[string]any{{"id": "v2", "name": "Vol 2.cbz", "size": "4096", "mimeType": "application/zip"}}
		}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]any{"files": files})
	})
	mux.HandleFunc("/files/v1", func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "media", request.URL.Query().Get("alt"))
		_, _ = writer.Write([]byte("PK-archive"))
	})
	mux.HandleFunc("/files/gone", func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, `{"error":{"code":404,"message":"File not found"}}`, http.StatusNotFound)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T, server *httptest.Server) *drive.Client {
	t.Helper()
	client, err := drive.NewClient(context.Background(), "root", drive.Credentials{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return client
}

/*
TestClient_Listing walks folders and paginated file listings.
*/
func TestClient_Listing(t *testing.T) {
	client := newClient(t, newFakeDrive(t))
	ctx := context.Background()

	folders, err := client.ListFolders(ctx, client.RootID())
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, drive.File{ID: "series-1", Name: "Berserk", IsFolder: true}, folders[0])

	files, err := client.ListFiles(ctx, "series-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "Vol 1.cbz", files[0].Name)
	assert.EqualValues(t, 2048, files[0].Size)
	assert.Equal(t, "v2", files[1].ID)
}

/*
TestClient_Download returns bytes on success and an error on a non-2xx status.
*/
func TestClient_Download(t *testing.T) {
	client := newClient(t, newFakeDrive(t))

	data, err := client.Download(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "PK-archive", string(data))

	_, err = client.Download(context.Background(), "gone")
	assert.Error(t, err)
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := drive.NewClient(context.Background(), "root", drive.Credentials{}, slog.Default())
	assert.ErrorIs(t, err, drive.ErrNoCredentials)
}
