package port

import "context"

type FileStorage interface {
	Bucket() string
	FileExists(ctx context.Context, key string) (bool, error)
	UploadFile(ctx context.Context, key, path, contentType string) error
}

// ArchiveExtractor copies one book file out of its archive into destDir.
type ArchiveExtractor interface {
	Extract(ctx context.Context, archiveName, member, destDir string) (string, error)
}
