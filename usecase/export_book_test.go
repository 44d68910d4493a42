package usecase

import (
	"book-search/domain"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportableBook() *domain.Book {
	size := 1.5
	return &domain.Book{
		ID:          1,
		Author:      "Акунин Борис",
		Title:       "Азазель",
		ArchiveName: "/old/path/fb2-000001.zip",
		FileName:    "1.fb2",
		FileSizeMB:  &size,
	}
}

func TestExportBookUsecase_Execute(t *testing.T) {
	const key = "1_akunin-boris_azazel_1_5.fb2"

	t.Run("uploads when missing", func(t *testing.T) {
		storage := &mockFileStorage{}
		archives := &mockArchiveExtractor{}
		u := NewExportBookUsecase(newMockBookRepository(exportableBook()), storage, archives)

		res, err := u.Execute(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, &domain.ExportResult{Bucket: "library", Key: key, Existed: false}, res)
		require.Len(t, storage.uploads, 1)
		assert.Equal(t, key, storage.uploads[0].key)
		assert.Contains(t, storage.uploads[0].path, "1.fb2")
		assert.Equal(t, 1, archives.calls)
	})

	t.Run("skips upload when present", func(t *testing.T) {
		storage := &mockFileStorage{existing: map[string]bool{key: true}}
		archives := &mockArchiveExtractor{}
		u := NewExportBookUsecase(newMockBookRepository(exportableBook()), storage, archives)

		res, err := u.Execute(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, res.Existed)
		assert.Empty(t, storage.uploads)
		assert.Equal(t, 0, archives.calls)
	})
}

func TestExportBookUsecase_Errors(t *testing.T) {
	noArchive := exportableBook()
	noArchive.ArchiveName = ""
	noFile := exportableBook()
	noFile.FileName = ""

	tests := []struct {
		name       string
		book       *domain.Book
		storage    *mockFileStorage
		archiveErr error
		id         int64
		wantIs     error
		wantReason string
	}{
		{name: "missing book", book: exportableBook(), storage: &mockFileStorage{}, id: 2, wantIs: domain.ErrBookNotFound},
		{name: "no archive name", book: noArchive, storage: &mockFileStorage{}, id: 1, wantIs: domain.ErrInvalidBook, wantReason: "У книги отсутствует archive_name"},
		{name: "no file name", book: noFile, storage: &mockFileStorage{}, id: 1, wantIs: domain.ErrInvalidBook, wantReason: "У книги отсутствует file_name"},
		{
			name:    "storage down",
			book:    exportableBook(),
			storage: &mockFileStorage{existsErr: fmt.Errorf("%w: dial tcp", domain.ErrStorageUnavailable)},
			id:      1,
			wantIs:  domain.ErrStorageUnavailable,
		},
		{
			name:       "archive member missing",
			book:       exportableBook(),
			storage:    &mockFileStorage{},
			archiveErr: domain.NewInvalidBookError("Файл не найден в архиве: 1.fb2"),
			id:         1,
			wantIs:     domain.ErrInvalidBook,
			wantReason: "Файл не найден в архиве: 1.fb2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewExportBookUsecase(newMockBookRepository(tt.book), tt.storage, &mockArchiveExtractor{err: tt.archiveErr})

			_, err := u.Execute(context.Background(), tt.id)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
			if tt.wantReason != "" {
				var invalid *domain.InvalidBookError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, tt.wantReason, invalid.Reason)
			}
		})
	}
}

func TestReadBookUsecase_Execute(t *testing.T) {
	u := NewReadBookUsecase(newMockBookRepository(exportableBook()))

	book, err := u.Execute(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Азазель", book.Title)

	_, err = u.Execute(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}
