package gateway

import (
	"book-search/domain"
	"book-search/driver"
	"context"
	"errors"
	"fmt"
)

type ObjectStorageDriver interface {
	Bucket() string
	ObjectExists(ctx context.Context, key string) (bool, error)
	UploadFile(ctx context.Context, key, path, contentType string) error
}

type FileStorageGateway struct {
	driver ObjectStorageDriver
}

func NewFileStorageGateway(driver ObjectStorageDriver) *FileStorageGateway {
	return &FileStorageGateway{
		driver: driver,
	}
}

func (g *FileStorageGateway) Bucket() string {
	return g.driver.Bucket()
}

func (g *FileStorageGateway) FileExists(ctx context.Context, key string) (bool, error) {
	exists, err := g.driver.ObjectExists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return exists, nil
}

func (g *FileStorageGateway) UploadFile(ctx context.Context, key, path, contentType string) error {
	if err := g.driver.UploadFile(ctx, key, path, contentType); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

type ArchiveDriver interface {
	ExtractMember(archiveName, member, destDir string) (string, error)
}

// ArchiveGateway turns archive lookup failures into invalid-book errors.
type ArchiveGateway struct {
	driver ArchiveDriver
}

func NewArchiveGateway(driver ArchiveDriver) *ArchiveGateway {
	return &ArchiveGateway{
		driver: driver,
	}
}

func (g *ArchiveGateway) Extract(ctx context.Context, archiveName, member, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := g.driver.ExtractMember(archiveName, member, destDir)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, driver.ErrArchiveNotFound):
		return "", domain.NewInvalidBookError("Архив не найден: " + archiveName)
	case errors.Is(err, driver.ErrArchiveInvalid):
		return "", domain.NewInvalidBookError("Неподдерживаемый формат архива: " + archiveName)
	case errors.Is(err, driver.ErrMemberNotFound):
		return "", domain.NewInvalidBookError("Файл не найден в архиве: " + member)
	case errors.Is(err, driver.ErrMemberInvalid):
		return "", domain.NewInvalidBookError("Недопустимое имя файла в архиве: " + member)
	default:
		return "", &domain.RepositoryError{Op: "ExtractArchive", Err: err.Error()}
	}
}
