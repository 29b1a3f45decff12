package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/semmidev/dbhook/internal/domain"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const gdriveChunkSize = 8 * 1024 * 1024

// GDriveStorage stores each archive as a file named after its key inside
// one folder.
type GDriveStorage struct {
	service   *drive.Service
	folderID  string
	chunkSize int
}

func NewGDrive(ctx context.Context, credentialsFile, folderID string) (*GDriveStorage, error) {
	return newGDrive(ctx, folderID, option.WithCredentialsFile(credentialsFile))
}

func newGDrive(ctx context.Context, folderID string, opts ...option.ClientOption) (*GDriveStorage, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GDriveStorage{
		service:   service,
		folderID:  folderID,
		chunkSize: gdriveChunkSize,
	}, nil
}

func (g *GDriveStorage) Name() string {
	return "gdrive"
}

// Upload uses a resumable upload, so only one chunk is held in memory.
// Archives smaller than a chunk go up in a single multipart request.
func (g *GDriveStorage) Upload(ctx context.Context, key string, body io.Reader) error {
	fileMetadata := &drive.File{
		Name:    key,
		Parents: []string{g.folderID},
	}

	_, err := g.service.Files.Create(fileMetadata).
		Media(body, googleapi.ChunkSize(g.chunkSize)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to upload to gdrive: %w", err)
	}

	return nil
}

func (g *GDriveStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	fileList, err := g.service.Files.List().
		Q(g.nameQuery(key)).
		Fields("files(id, createdTime)").
		OrderBy("createdTime desc").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to find file: %w", err)
	}

	if len(fileList.Files) == 0 {
		return nil, fmt.Errorf("gdrive %s: %w", key, domain.ErrBackupNotFound)
	}

	resp, err := g.service.Files.Get(fileList.Files[0].Id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download from gdrive: %w", err)
	}

	return resp.Body, nil
}

func (g *GDriveStorage) nameQuery(key string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(key)
	return fmt.Sprintf("'%s' in parents and name='%s' and trashed=false", g.folderID, escaped)
}
