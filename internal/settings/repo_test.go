package settings_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"merchflow/backend/internal/settings"
)

func TestPostgresRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := settings.NewPostgresRepo(db)

	rows := sqlmock.NewRows([]string{"id", "gemini_api_key", "chat_model", "search_top_k"}).
		AddRow(1, "key-123", "gemini-1.5-flash", 5)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, gemini_api_key, chat_model, search_top_k FROM settings WHERE id = 1")).
		WillReturnRows(rows)

	s, err := repo.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "key-123", s.GeminiAPIKey)
	assert.Equal(t, "gemini-1.5-flash", s.ChatModel)
	assert.Equal(t, 5, s.SearchTopK)
}

func TestPostgresRepo_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := settings.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE settings")).
		WithArgs("new-key", "gemini-1.5-pro", 8).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), &settings.Settings{
		GeminiAPIKey: "new-key",
		ChatModel:    "gemini-1.5-pro",
		SearchTopK:   8,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
