package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xxxsen/webnovel/internal/ai"
	"github.com/xxxsen/webnovel/internal/content"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
	"github.com/xxxsen/webnovel/internal/repo"
)

var ErrAIUnavailable = ai.ErrUnavailable

// AIService wraps the LLM provider for translation, chapter abstracts and
// key-term extraction. Results are cached keyed on the input hash; abstracts
// and key terms are persisted on the chapter.
type AIService struct {
	gen           ai.IGenerator
	chapters      *repo.ChapterRepo
	store         *content.Store
	maxInputChars int
	timeout       time.Duration
	cache         *expirable.LRU[string, string]
}

func NewAIService(gen ai.IGenerator, chapters *repo.ChapterRepo, store *content.Store, maxInputChars int, timeout time.Duration) *AIService {
	cache := expirable.NewLRU[string, string](10000, nil, 2*time.Hour)
	return &AIService{
		gen:           gen,
		chapters:      chapters,
		store:         store,
		maxInputChars: maxInputChars,
		timeout:       timeout,
		cache:         cache,
	}
}

// TranslateChapter translates the chapter's paragraphs into targetLang and
// returns the translated text. It never touches stored content.
func (s *AIService) TranslateChapter(ctx context.Context, chapterID int64, targetLang string) (string, error) {
	if targetLang == "" {
		return "", appErr.ErrInvalid
	}
	text, err := s.chapterText(ctx, chapterID)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(
		"Translate the following web novel chapter into %s. Preserve paragraph breaks. Output only the translation.\n\n%s",
		targetLang, text)
	return s.generate(ctx, "translate:"+targetLang, prompt)
}

// GenerateAbstract produces a short spoiler-light summary and persists it on
// the chapter.
func (s *AIService) GenerateAbstract(ctx context.Context, chapterID int64) (string, error) {
	text, err := s.chapterText(ctx, chapterID)
	if err != nil {
		return "", err
	}
	prompt := "Write a 2-3 sentence abstract of the following web novel chapter. Avoid spoilers for later chapters. Output only the abstract.\n\n" + text
	abstract, err := s.generate(ctx, "abstract", prompt)
	if err != nil {
		return "", err
	}
	if err := s.chapters.UpdateAbstract(ctx, chapterID, abstract, time.Now().UnixMilli()); err != nil {
		return "", err
	}
	return abstract, nil
}

// ExtractKeyTerms pulls names, places and special terms from the chapter and
// persists them as a JSON array, for translator glossaries.
func (s *AIService) ExtractKeyTerms(ctx context.Context, chapterID int64, maxTerms int) ([]string, error) {
	if maxTerms <= 0 {
		maxTerms = 20
	}
	text, err := s.chapterText(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(
		"Extract up to %d key terms (character names, places, skills, items) from the following web novel chapter. Respond with a JSON array of strings only.\n\n%s",
		maxTerms, text)
	raw, err := s.generate(ctx, "terms", prompt)
	if err != nil {
		return nil, err
	}
	terms, err := parseTermList(raw, maxTerms)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(terms)
	if err != nil {
		return nil, err
	}
	if err := s.chapters.UpdateKeyTerms(ctx, chapterID, string(data), time.Now().UnixMilli()); err != nil {
		return nil, err
	}
	return terms, nil
}

// chapterText resolves the chapter's ordered content and joins its text
// elements, clamped to the configured input limit.
func (s *AIService) chapterText(ctx context.Context, chapterID int64) (string, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return "", err
	}
	acc := content.NewAccessor(s.store, content.ChapterRef{
		BookID:     chapter.BookID,
		ChapterID:  chapter.ID,
		RawContent: chapter.RawContent,
		Style:      content.ParagraphStyle(chapter.ParagraphStyle),
	})
	paragraphs, err := acc.Paragraphs(ctx)
	if err != nil {
		return "", err
	}
	texts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		texts = append(texts, p.Content)
	}
	text := strings.TrimSpace(strings.Join(texts, "\n\n"))
	if text == "" {
		return "", appErr.ErrInvalid
	}
	if s.maxInputChars > 0 {
		runes := []rune(text)
		if len(runes) > s.maxInputChars {
			text = string(runes[:s.maxInputChars])
		}
	}
	return text, nil
}

func (s *AIService) generate(ctx context.Context, feature, prompt string) (string, error) {
	if s.gen == nil {
		return "", ErrAIUnavailable
	}
	key := s.cacheKey(feature, prompt)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	s.cache.Add(key, res)
	return res, nil
}

func (s *AIService) cacheKey(feature, text string) string {
	hash := sha256.Sum256([]byte(text))
	return feature + ":" + hex.EncodeToString(hash[:])
}

// parseTermList tolerates code fences and prose around the JSON array.
func parseTermList(raw string, maxTerms int) ([]string, error) {
	cleaned := strings.TrimSpace(raw)
	start := strings.IndexByte(cleaned, '[')
	end := strings.LastIndexByte(cleaned, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no term list in response", appErr.ErrAIUnavailable)
	}
	var terms []string
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &terms); err != nil {
		return nil, fmt.Errorf("%w: decode term list: %v", appErr.ErrAIUnavailable, err)
	}
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		out = append(out, term)
		if len(out) == maxTerms {
			break
		}
	}
	return out, nil
}
