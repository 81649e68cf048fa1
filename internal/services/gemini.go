package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/normalize"
)

// QuestionCounts is the per-difficulty batch size for one generation run.
type QuestionCounts struct {
	Easy   int
	Medium int
	Hard   int
}

func (c QuestionCounts) Total() int {
	return c.Easy + c.Medium + c.Hard
}

const questionCacheTTL = 24 * time.Hour

type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	cache    *redis.Client // nil disables caching
	rateChan chan struct{} // concurrency token bucket
}

// NewGeminiService builds the question generator. An empty API key is
// allowed: the service then produces questions with the content fallback
// generator instead of calling Gemini.
func NewGeminiService(apiKey string, concurrentReqs int, cache *redis.Client) (*GeminiService, error) {
	s := &GeminiService{cache: cache}

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}
	s.rateChan = rateChan

	if apiKey == "" {
		log.Println("GEMINI_API_KEY not set; using content fallback question generator")
		return s, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.SetTemperature(0.7)
	model.SetTopP(0.95)

	s.client = client
	s.model = model
	return s, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// acquireRate blocks until a concurrency slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// GenerateQuestions turns extracted document text into a quiz set. Batches
// are requested per difficulty so each can use a different text chunk and its
// own health impact table.
func (s *GeminiService) GenerateQuestions(ctx context.Context, text string, counts QuestionCounts) ([]models.Question, error) {
	fullText := strings.TrimSpace(text)
	if fullText == "" {
		return nil, fmt.Errorf("document text is empty")
	}

	if cached, ok := s.cachedQuestions(ctx, fullText, counts); ok {
		return cached, nil
	}

	var questions []models.Question
	var err error
	if s.model == nil {
		questions = GenerateContentFallback(fullText, counts)
	} else {
		questions, err = s.generateWithGemini(ctx, fullText, counts)
		if err != nil {
			return nil, err
		}
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("no valid questions could be generated from the document")
	}

	s.storeQuestions(ctx, fullText, counts, questions)
	return questions, nil
}

func (s *GeminiService) generateWithGemini(ctx context.Context, fullText string, counts QuestionCounts) ([]models.Question, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	// Question material comes from body content only, never the title block.
	content := contentOnlyText(fullText)
	if len(content) < 200 {
		content = fullText
	}
	chunks := chunkText(content, defaultChunkLen, defaultChunkOverlap)

	batches := []struct {
		difficulty string
		count      int
	}{
		{"easy", counts.Easy},
		{"medium", counts.Medium},
		{"hard", counts.Hard},
	}

	var questions []models.Question
	for i, batch := range batches {
		if batch.count <= 0 {
			continue
		}

		// A different chunk per difficulty keeps questions from clustering
		// on the same slice of the document.
		chunk := chunks[i%len(chunks)]
		prompt := buildQuestionPrompt(batch.difficulty, batch.count, chunk)

		resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, fmt.Errorf("Gemini API error: %w", err)
		}

		batchQuestions := parseQuestionBatch(extractText(resp), batch.difficulty)
		if len(batchQuestions) == 0 {
			return nil, fmt.Errorf("model returned no valid %s questions", batch.difficulty)
		}
		questions = append(questions, batchQuestions...)
	}

	return questions, nil
}

// parseQuestionBatch coerces a model response into graded questions. Records
// are run through the normalizer; anything without four unique options and a
// resolvable correct index is dropped.
func parseQuestionBatch(rawText, difficulty string) []models.Question {
	rawText = stripCodeFences(rawText)

	var records []map[string]any
	if err := json.Unmarshal([]byte(rawText), &records); err != nil {
		// Try to extract the JSON array from surrounding prose.
		start := strings.Index(rawText, "[")
		end := strings.LastIndex(rawText, "]")
		if start < 0 || end <= start {
			return nil
		}
		if err := json.Unmarshal([]byte(rawText[start:end+1]), &records); err != nil {
			return nil
		}
	}

	impact := models.ImpactForDifficulty(difficulty)

	var valid []models.Question
	for _, record := range records {
		q := normalize.Question(record)
		if q.Prompt == "…" || len(q.Options) != 4 || !q.Gradable() {
			continue
		}
		if !uniqueOptions(q.Options) {
			continue
		}
		q.Difficulty = difficulty
		q.HealthImpact = impact
		valid = append(valid, q)
	}
	return valid
}

func uniqueOptions(options []string) bool {
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		key := strings.ToLower(strings.TrimSpace(o))
		if key == "" || seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func buildQuestionPrompt(difficulty string, count int, content string) string {
	var b strings.Builder

	b.WriteString("You are an expert educational question writer. Generate multiple choice questions in valid JSON only.\n")
	b.WriteString("Base questions ONLY on the actual body content (definitions, steps, facts, examples). Ignore document titles, course codes, and dates.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON array. No preamble, no markdown, no backticks.\n\n")

	b.WriteString(fmt.Sprintf("Generate exactly %d %s-level questions.\n", count, difficulty))

	switch difficulty {
	case "easy":
		b.WriteString("Easy = recall definitions, key terms, explicit facts.\n")
	case "medium":
		b.WriteString("Medium = apply a concept, compare, explain.\n")
	case "hard":
		b.WriteString("Hard = synthesize, infer, or evaluate beyond what is explicitly stated.\n")
	}

	b.WriteString(`
Rules:
- Each question must ask about a SPECIFIC concept, definition, step, or fact stated in the content. No vague "what is the main topic" questions.
- Exactly 4 options per question. The 3 wrong options must be plausible distractors. All four option texts must be DIFFERENT.
- Exactly one option is correct. VARY which index is correct across questions, not always 0.

JSON schema per question:
{"question": "string", "options": ["string", "string", "string", "string"], "correctIndex": int, "explanation": "string"}
`)

	b.WriteString("\n---CONTENT---\n")
	b.WriteString(content)
	b.WriteString("\n---END---\n")

	return b.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// ──── Question set cache ────

func questionCacheKey(text string, counts QuestionCounts) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("questions:%s:%d-%d-%d",
		hex.EncodeToString(sum[:]), counts.Easy, counts.Medium, counts.Hard)
}

func (s *GeminiService) cachedQuestions(ctx context.Context, text string, counts QuestionCounts) ([]models.Question, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, questionCacheKey(text, counts)).Result()
	if err != nil {
		return nil, false
	}

	var questions []models.Question
	if err := json.Unmarshal([]byte(data), &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	log.Printf("Question cache hit (%d questions)", len(questions))
	return questions, true
}

func (s *GeminiService) storeQuestions(ctx context.Context, text string, counts QuestionCounts, questions []models.Question) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, questionCacheKey(text, counts), string(data), questionCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache question set: %v", err)
	}
}
