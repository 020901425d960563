package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"merchflow/backend/internal/settings"
)

func newTestGenerator(repo *MockRepo) *DynamicGenerator {
	return NewDynamicGenerator(settings.NewService(repo))
}

func TestDynamicGenerator_Generate_NoKey(t *testing.T) {
	gen := newTestGenerator(&MockRepo{
		Settings: &settings.Settings{GeminiAPIKey: "", ChatModel: "gemini-1.5-flash"},
	})

	_, err := gen.Generate(context.Background(), "system", "hello")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDynamicGenerator_Generate_NoModel(t *testing.T) {
	gen := newTestGenerator(&MockRepo{
		Settings: &settings.Settings{GeminiAPIKey: "key", ChatModel: ""},
	})

	_, err := gen.Generate(context.Background(), "system", "hello")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDynamicGenerator_Generate_SettingsError(t *testing.T) {
	gen := newTestGenerator(&MockRepo{Err: errors.New("db fail")})

	_, err := gen.Generate(context.Background(), "system", "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get settings")
}

func TestDynamicGenerator_ClientSwitching(t *testing.T) {
	gen := newTestGenerator(&MockRepo{
		Settings: &settings.Settings{GeminiAPIKey: "key1", ChatModel: "gemini-1.5-flash"},
	})

	ctx := context.Background()

	client1, err := gen.getClient(ctx, "key1")
	assert.NoError(t, err)
	assert.NotNil(t, client1)

	client2, err := gen.getClient(ctx, "key1")
	assert.NoError(t, err)
	assert.Equal(t, client1, client2)

	client3, err := gen.getClient(ctx, "key2")
	assert.NoError(t, err)
	assert.NotEqual(t, client1, client3)
	assert.Equal(t, "key2", gen.currentKey)
}
