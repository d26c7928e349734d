// Package style реализует обучение стилю письма: образцы текста
// пользователя и построенный по ним профиль стиля.
//
// Все операции пакета доступны только платным тарифам.
package style

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/novawriterhq/novawriter/internal/lib/htmltext"
	"github.com/novawriterhq/novawriter/internal/models"
)

// ErrTierRequired возвращается пользователям бесплатного тарифа.
var ErrTierRequired = errors.New("Writing style learning is only available for Basic and Pro tier subscribers.")

// ErrNoSamples возвращается при анализе без единого образца текста.
var ErrNoSamples = errors.New("No writing samples available. Please upload at least one writing sample first.")

// Repository — хранилище образцов текста и профилей стиля.
type Repository interface {
	CreateSample(ctx context.Context, userID, title, content string, wordCount int) (*models.WritingSample, error)
	ListSamples(ctx context.Context, userID string) ([]*models.WritingSample, error)
	DeleteSample(ctx context.Context, id, userID string) error
	GetStyleProfile(ctx context.Context, userID string) (*models.StyleProfile, error)
	UpsertStyleProfile(ctx context.Context, userID string, data models.StyleProfileData) (*models.StyleProfile, error)
	DeleteStyleProfile(ctx context.Context, userID string) error
}

// Completer — клиент языковой модели.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// StyleService реализует операции обучения стилю.
type StyleService struct {
	repo Repository
	ai   Completer
}

// New создаёт StyleService.
func New(repo Repository, ai Completer) *StyleService {
	return &StyleService{repo: repo, ai: ai}
}

// checkTier пропускает только платные тарифы.
func checkTier(user *models.User) error {
	if user.SubscriptionTier == models.TierFree {
		return ErrTierRequired
	}
	return nil
}

// AddSample сохраняет образец текста с посчитанным числом слов.
func (s *StyleService) AddSample(ctx context.Context, user *models.User, req models.DummySample) (*models.WritingSample, error) {
	if err := checkTier(user); err != nil {
		return nil, err
	}
	return s.repo.CreateSample(ctx, user.ID, req.Title, req.Content, htmltext.WordCount(req.Content))
}

// ListSamples возвращает образцы текста пользователя.
func (s *StyleService) ListSamples(ctx context.Context, user *models.User) ([]*models.WritingSample, error) {
	if err := checkTier(user); err != nil {
		return nil, err
	}
	return s.repo.ListSamples(ctx, user.ID)
}

// DeleteSample удаляет образец текста.
func (s *StyleService) DeleteSample(ctx context.Context, user *models.User, id string) error {
	if err := checkTier(user); err != nil {
		return err
	}
	return s.repo.DeleteSample(ctx, id, user.ID)
}

// GetProfile возвращает профиль стиля пользователя.
func (s *StyleService) GetProfile(ctx context.Context, user *models.User) (*models.StyleProfile, error) {
	if err := checkTier(user); err != nil {
		return nil, err
	}
	return s.repo.GetStyleProfile(ctx, user.ID)
}

// DeleteProfile удаляет профиль стиля пользователя.
func (s *StyleService) DeleteProfile(ctx context.Context, user *models.User) error {
	if err := checkTier(user); err != nil {
		return err
	}
	return s.repo.DeleteStyleProfile(ctx, user.ID)
}

const analyzeSystemPrompt = "You are a literary analyst specialized in identifying writing styles. " +
	"Analyze the provided writing samples and extract detailed information about the writer's style, " +
	"tone, vocabulary patterns, sentence structure, and pacing. Be specific and provide actionable insights."

const analyzeUserPrompt = `Analyze these writing samples and provide a detailed breakdown of the writing style:

%s

Provide your analysis in the following format:

TONE: [Describe the overall tone - e.g., formal, conversational, humorous, serious]

VOCABULARY: [Describe vocabulary choices - e.g., simple/complex, technical/everyday, rich metaphors]

SENTENCE STRUCTURE: [Describe sentence patterns - e.g., varied/consistent length, simple/complex, use of fragments]

PACING: [Describe the narrative pacing - e.g., fast/slow, detailed descriptions, action-focused]

STYLE SUMMARY: [A comprehensive summary of the unique writing style that can be used to guide AI writing assistance]`

// Analyze объединяет образцы пользователя, отправляет их модели
// и перезаписывает профиль стиля извлечёнными секциями ответа.
func (s *StyleService) Analyze(ctx context.Context, user *models.User) (*models.StyleProfile, error) {
	const op = "style.Analyze"

	if err := checkTier(user); err != nil {
		return nil, err
	}

	samples, err := s.repo.ListSamples(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	contents := make([]string, 0, len(samples))
	for _, sample := range samples {
		contents = append(contents, sample.Content)
	}
	combined := strings.Join(contents, "\n\n")

	analysis, err := s.ai.Complete(ctx, analyzeSystemPrompt, fmt.Sprintf(analyzeUserPrompt, combined), 1500)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data := models.StyleProfileData{
		Tone:              extractSection(analysis, "TONE"),
		Vocabulary:        extractSection(analysis, "VOCABULARY"),
		SentenceStructure: extractSection(analysis, "SENTENCE STRUCTURE"),
		Pacing:            extractSection(analysis, "PACING"),
		StyleAnalysis:     extractSection(analysis, "STYLE SUMMARY"),
	}

	profile, err := s.repo.UpsertStyleProfile(ctx, user.ID, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// extractSection вырезает содержимое секции ответа модели: текст после
// "LABEL:" до следующей заглавной метки либо конца текста.
func extractSection(text, label string) string {
	re := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(label) + `:\s*(.*?)(?:\n\n[A-Z][A-Z ]*:|\z)`)
	match := re.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}
