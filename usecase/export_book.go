package usecase

import (
	"book-search/domain"
	"book-search/logger"
	"book-search/port"
	appOtel "book-search/utils/otel"
	"context"
	"mime"
	"os"
	"path/filepath"
	"time"
)

type ExportBookUsecase struct {
	books    port.BookRepository
	storage  port.FileStorage
	archives port.ArchiveExtractor
}

func NewExportBookUsecase(books port.BookRepository, storage port.FileStorage, archives port.ArchiveExtractor) *ExportBookUsecase {
	return &ExportBookUsecase{
		books:    books,
		storage:  storage,
		archives: archives,
	}
}

// Execute copies the book file into object storage unless an object with its key already exists.
func (u *ExportBookUsecase) Execute(ctx context.Context, id int64) (*domain.ExportResult, error) {
	start := time.Now()
	ctx = logger.WithBookID(logger.WithOperation(ctx, "export_book"), id)

	book, err := u.books.ReadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book.ArchiveName == "" {
		return nil, domain.NewInvalidBookError("У книги отсутствует archive_name")
	}
	if book.FileName == "" {
		return nil, domain.NewInvalidBookError("У книги отсутствует file_name")
	}

	key := BuildObjectKey(book)
	existed, err := u.storage.FileExists(ctx, key)
	if err != nil {
		logger.GlobalContext.LogError(ctx, "export_book", err)
		return nil, err
	}

	if !existed {
		if err := u.upload(ctx, book, key); err != nil {
			logger.GlobalContext.LogError(ctx, "export_book", err)
			return nil, err
		}
	}

	appOtel.RecordExport(ctx, existed)
	logger.GlobalContext.LogDurationTime(ctx, "export_book", time.Since(start))

	return &domain.ExportResult{
		Bucket:  u.storage.Bucket(),
		Key:     key,
		Existed: existed,
	}, nil
}

func (u *ExportBookUsecase) upload(ctx context.Context, book *domain.Book, key string) error {
	tmpDir, err := os.MkdirTemp("", "book_export_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	path, err := u.archives.Extract(ctx, book.ArchiveName, book.FileName, tmpDir)
	if err != nil {
		return err
	}

	return u.storage.UploadFile(ctx, key, path, mime.TypeByExtension(filepath.Ext(path)))
}
