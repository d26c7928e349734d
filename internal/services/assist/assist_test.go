package assist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/storage"
)

type MockProfileProvider struct {
	mock.Mock
}

func (m *MockProfileProvider) GetStyleProfile(ctx context.Context, userID string) (*models.StyleProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StyleProfile), args.Error(1)
}

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	args := m.Called(ctx, system, user, maxTokens)
	return args.String(0), args.Error(1)
}

func proUser() *models.User {
	return &models.User{ID: "user-1", SubscriptionTier: models.TierPro}
}

func TestAssistService_Suggest(t *testing.T) {
	t.Run("без профиля стиля используется нейтральный промпт", func(t *testing.T) {
		profiles := new(MockProfileProvider)
		ai := new(MockCompleter)
		profiles.On("GetStyleProfile", mock.Anything, "user-1").Return(nil, storage.ErrNotFound)
		ai.On("Complete", mock.Anything, plainSystemPrompt,
			"Context: Глава вторая\n\nPrompt: продолжи сцену", 1000).
			Return("Подсказка", nil)

		got, err := New(profiles, ai).Suggest(context.Background(), proUser(), "продолжи сцену", "Глава вторая")
		require.NoError(t, err)
		assert.Equal(t, "Подсказка", got)
		ai.AssertExpectations(t)
	})

	t.Run("профиль стиля встраивается в системный промпт", func(t *testing.T) {
		profiles := new(MockProfileProvider)
		ai := new(MockCompleter)
		profiles.On("GetStyleProfile", mock.Anything, "user-1").Return(&models.StyleProfile{
			Tone:              "меланхоличный",
			Vocabulary:        "простая",
			SentenceStructure: "короткие фразы",
			Pacing:            "медленное",
		}, nil)
		ai.On("Complete", mock.Anything, mock.MatchedBy(func(system string) bool {
			return strings.Contains(system, "- Tone: меланхоличный") &&
				strings.Contains(system, "- Pacing: медленное")
		}), mock.Anything, 1000).Return("Стилизованная подсказка", nil)

		got, err := New(profiles, ai).Suggest(context.Background(), proUser(), "продолжи", "")
		require.NoError(t, err)
		assert.Equal(t, "Стилизованная подсказка", got)
	})

	t.Run("пустой контекст подменяется заглушкой", func(t *testing.T) {
		profiles := new(MockProfileProvider)
		ai := new(MockCompleter)
		profiles.On("GetStyleProfile", mock.Anything, "user-1").Return(nil, storage.ErrNotFound)
		ai.On("Complete", mock.Anything, mock.Anything,
			"Context: No content provided\n\nPrompt: идея названия", 1000).
			Return("ок", nil)

		_, err := New(profiles, ai).Suggest(context.Background(), proUser(), "идея названия", "")
		require.NoError(t, err)
		ai.AssertExpectations(t)
	})

	t.Run("не-Pro пользователь получает отказ", func(t *testing.T) {
		profiles := new(MockProfileProvider)
		ai := new(MockCompleter)

		for _, tier := range []string{models.TierFree, models.TierBasic} {
			_, err := New(profiles, ai).Suggest(context.Background(),
				&models.User{ID: "user-1", SubscriptionTier: tier}, "p", "")
			assert.ErrorIs(t, err, ErrProRequired)
		}
		profiles.AssertNotCalled(t, "GetStyleProfile", mock.Anything, mock.Anything)
	})

	t.Run("ошибка чтения профиля прерывает запрос", func(t *testing.T) {
		profiles := new(MockProfileProvider)
		ai := new(MockCompleter)
		profiles.On("GetStyleProfile", mock.Anything, "user-1").Return(nil, errors.New("db down"))

		_, err := New(profiles, ai).Suggest(context.Background(), proUser(), "p", "")
		assert.Error(t, err)
		ai.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
