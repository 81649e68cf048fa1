package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/services"
)

// TextExtractor pulls plain text out of an uploaded document.
type TextExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

// QuestionGenerator produces a quiz set from document text.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, text string, counts services.QuestionCounts) ([]models.Question, error)
}

const extractedTextTTL = time.Hour

type QuestionHandler struct {
	extractor      TextExtractor
	generator      QuestionGenerator
	redis          *redis.Client // nil disables the extracted-text cache
	maxUploadBytes int64
	defaultCounts  services.QuestionCounts
}

func NewQuestionHandler(
	extractor TextExtractor,
	generator QuestionGenerator,
	redisClient *redis.Client,
	maxUploadMB int,
	defaultCounts services.QuestionCounts,
) *QuestionHandler {
	return &QuestionHandler{
		extractor:      extractor,
		generator:      generator,
		redis:          redisClient,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
		defaultCounts:  defaultCounts,
	}
}

// Upload extracts text from an uploaded document and returns a preview, so
// the frontend can confirm the file is usable before generating questions.
func (h *QuestionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	text, err := h.extractUploadText(r.Context(), filename, data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("EXTRACTION_FAILED", err.Error(), r))
		return
	}
	if len(text) < services.MinExtractedChars {
		writeJSON(w, http.StatusBadRequest, errorResp("TEXT_TOO_SHORT",
			"Document appears to be empty or could not extract sufficient text", r))
		return
	}

	preview := text
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}

	writeJSON(w, http.StatusOK, models.UploadResponse{
		Filename:    filename,
		TextLength:  len(text),
		TextPreview: preview,
	})
}

// Generate builds questions from already-extracted text.
func (h *QuestionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(req.PDFText)
	if len(text) < services.MinExtractedChars {
		writeJSON(w, http.StatusBadRequest, errorResp("TEXT_TOO_SHORT", "PDF text is too short or empty", r))
		return
	}

	counts := h.defaultCounts
	if req.NumEasy != nil {
		counts.Easy = *req.NumEasy
	}
	if req.NumMedium != nil {
		counts.Medium = *req.NumMedium
	}
	if req.NumHard != nil {
		counts.Hard = *req.NumHard
	}

	h.respondWithQuestions(w, r, text, counts)
}

// UploadAndGenerate is the combined endpoint: extract text and generate
// questions in one call.
func (h *QuestionHandler) UploadAndGenerate(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	text, err := h.extractUploadText(r.Context(), filename, data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("EXTRACTION_FAILED", err.Error(), r))
		return
	}
	if len(text) < services.MinExtractedChars {
		writeJSON(w, http.StatusBadRequest, errorResp("TEXT_TOO_SHORT",
			"Document appears to be empty or could not extract sufficient text", r))
		return
	}

	counts := services.QuestionCounts{
		Easy:   formInt(r, "num_easy", h.defaultCounts.Easy),
		Medium: formInt(r, "num_medium", h.defaultCounts.Medium),
		Hard:   formInt(r, "num_hard", h.defaultCounts.Hard),
	}

	h.respondWithQuestions(w, r, text, counts)
}

// HealthImpacts exposes the per-difficulty health deltas so the frontend can
// show them on the difficulty picker.
func (h *QuestionHandler) HealthImpacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"easy":    models.DifficultyImpacts["easy"],
		"medium":  models.DifficultyImpacts["medium"],
		"hard":    models.DifficultyImpacts["hard"],
		"default": models.DefaultHealthImpact,
	})
}

func (h *QuestionHandler) respondWithQuestions(w http.ResponseWriter, r *http.Request, text string, counts services.QuestionCounts) {
	if counts.Total() <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "At least one question must be requested", r))
		return
	}

	questions, err := h.generator.GenerateQuestions(r.Context(), text, counts)
	if err != nil {
		log.Printf("Question generation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("GENERATION_FAILED",
			"Error generating questions: "+err.Error(), r))
		return
	}

	writeJSON(w, http.StatusOK, models.QuestionResponse{
		Questions:      questions,
		TotalQuestions: len(questions),
	})
}

func (h *QuestionHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if r.ContentLength > h.maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds limit", r))
		return "", nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return "", nil, false
	}
	defer file.Close()

	if !isSupportedUpload(header.Filename) {
		writeJSON(w, http.StatusBadRequest, errorResp("UNSUPPORTED_FORMAT", "File must be a PDF, TXT, or DOCX", r))
		return "", nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read uploaded file", r))
		return "", nil, false
	}

	return header.Filename, data, true
}

// extractUploadText runs extraction, consulting the cache first so repeated
// uploads of the same file skip the parse.
func (h *QuestionHandler) extractUploadText(ctx context.Context, filename string, data []byte) (string, error) {
	key := extractedTextKey(data)

	if h.redis != nil {
		if text, err := h.redis.Get(ctx, key).Result(); err == nil && len(text) >= services.MinExtractedChars {
			return text, nil
		}
	}

	text, err := h.extractor.ExtractText(filename, data)
	if err != nil {
		return "", err
	}

	if h.redis != nil && len(text) >= services.MinExtractedChars {
		if err := h.redis.Set(ctx, key, text, extractedTextTTL).Err(); err != nil {
			log.Printf("Failed to cache extracted text: %v", err)
		}
	}
	return text, nil
}

func extractedTextKey(data []byte) string {
	sum := sha256.Sum256(data)
	return "extracted:" + hex.EncodeToString(sum[:])
}

func isSupportedUpload(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt", ".docx":
		return true
	default:
		return false
	}
}

func formInt(r *http.Request, key string, defaultVal int) int {
	val := r.FormValue(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
