// Package assist реализует ИИ-помощника писателя: подсказки по запросу,
// при наличии профиля стиля — выдержанные в манере автора.
package assist

import (
	"context"
	"errors"
	"fmt"

	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/storage"
)

// ErrProRequired возвращается пользователям без подписки Pro.
var ErrProRequired = errors.New("AI features are only available for Pro tier subscribers. Please upgrade to access AI writing assistance.")

// ProfileProvider отдаёт профиль стиля пользователя, если он построен.
type ProfileProvider interface {
	GetStyleProfile(ctx context.Context, userID string) (*models.StyleProfile, error)
}

// Completer — клиент языковой модели.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// AssistService реализует генерацию подсказок.
type AssistService struct {
	profiles ProfileProvider
	ai       Completer
}

// New создаёт AssistService.
func New(profiles ProfileProvider, ai Completer) *AssistService {
	return &AssistService{profiles: profiles, ai: ai}
}

const plainSystemPrompt = "You are a helpful writing assistant. " +
	"Provide concise, high-quality suggestions based on the user's prompt."

const styledSystemPrompt = `You are a helpful writing assistant. Provide concise, high-quality suggestions that match the user's unique writing style.

USER'S WRITING STYLE PROFILE:
- Tone: %s
- Vocabulary: %s
- Sentence Structure: %s
- Pacing: %s

IMPORTANT: Match this writing style in all your suggestions. Write as if you are this author, using their characteristic tone, vocabulary choices, sentence patterns, and pacing. Your suggestions should be indistinguishable from the user's own writing.`

// Suggest возвращает подсказку модели для запроса пользователя.
// Content — необязательный фрагмент текста, над которым идёт работа.
func (s *AssistService) Suggest(ctx context.Context, user *models.User, prompt, content string) (string, error) {
	const op = "assist.Suggest"

	if user.SubscriptionTier != models.TierPro {
		return "", ErrProRequired
	}

	system := plainSystemPrompt
	profile, err := s.profiles.GetStyleProfile(ctx, user.ID)
	switch {
	case err == nil:
		system = fmt.Sprintf(styledSystemPrompt,
			profile.Tone, profile.Vocabulary, profile.SentenceStructure, profile.Pacing)
	case errors.Is(err, storage.ErrNotFound):
		// профиля нет, подсказываем в нейтральной манере
	default:
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if content == "" {
		content = "No content provided"
	}
	userMsg := fmt.Sprintf("Context: %s\n\nPrompt: %s", content, prompt)

	suggestion, err := s.ai.Complete(ctx, system, userMsg, 1000)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return suggestion, nil
}
