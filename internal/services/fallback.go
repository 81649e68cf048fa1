package services

import (
	"fmt"

	"studybuddy-backend/internal/models"
)

// Content fallback generator: used when no Gemini API key is configured. It
// builds questions from real sentences in the document, with neighboring
// sentences as distractors, rotating the correct option across A-D so the
// answer position carries no signal.

var fallbackStems = []string{
	"Which of the following is stated in the reading?",
	"What does the text say? Pick the option that appears in the material.",
	"The material explains or states one of the options below. Which one?",
	"Which statement is found in the text?",
	"One of these is directly stated or explained in the reading. Which?",
	"Which of these does the text support?",
	"The reading includes or implies one of these. Which option?",
	"Which of the following is correct according to the material?",
}

var fallbackGenericWrong = []string{
	"This is not stated or implied in the text.",
	"The text does not say this.",
	"This contradicts or goes beyond the material.",
}

func GenerateContentFallback(text string, counts QuestionCounts) []models.Question {
	sentences := sentencesFromContent(text, 30, 40)
	if len(sentences) == 0 {
		return genericFallbackQuestions(counts)
	}

	batches := []struct {
		difficulty string
		count      int
	}{
		{"easy", counts.Easy},
		{"medium", counts.Medium},
		{"hard", counts.Hard},
	}

	var questions []models.Question
	sentenceIdx := 0
	correctPosition := 0

	for _, batch := range batches {
		impact := models.ImpactForDifficulty(batch.difficulty)
		for n := 0; n < batch.count; n++ {
			if sentenceIdx >= len(sentences) {
				sentenceIdx = 0
			}
			correctSentence := sentences[sentenceIdx]
			sentenceIdx++

			correctOption := cleanOptionText(correctSentence, 95)

			var wrong []string
			for j := 1; j <= 3; j++ {
				other := sentences[(sentenceIdx-1+j)%len(sentences)]
				if other == correctSentence {
					continue
				}
				opt := cleanOptionText(other, 90)
				if opt != correctOption && !contains(wrong, opt) {
					wrong = append(wrong, opt)
				}
			}
			for len(wrong) < 3 {
				wrong = append(wrong, fallbackGenericWrong[len(wrong)%len(fallbackGenericWrong)])
			}
			wrong = wrong[:3]

			ci := correctPosition % 4
			correctPosition++

			options := make([]string, 4)
			options[ci] = correctOption
			w := 0
			for i := range options {
				if options[i] == "" {
					options[i] = wrong[w]
					w++
				}
			}

			stem := fallbackStems[(n+correctPosition-1)%len(fallbackStems)]
			questions = append(questions, models.Question{
				ID:           fmt.Sprintf("fallback-%s-%d", batch.difficulty, n),
				Prompt:       stem,
				Difficulty:   batch.difficulty,
				Options:      options,
				CorrectIndex: ci,
				HealthImpact: impact,
			})
		}
	}

	return questions
}

// genericFallbackQuestions is the last resort when no prose sentences could
// be extracted at all.
func genericFallbackQuestions(counts QuestionCounts) []models.Question {
	stems := []string{
		"Which of these might the material cover?",
		"What kind of content does the reading likely include?",
		"Which is a plausible topic for this text?",
	}
	options := []string{
		"A key concept or definition from the material",
		"A supporting detail or example from the text",
		"An application or procedure explained in the reading",
		"A main idea or conclusion in the material",
	}

	batches := []struct {
		difficulty string
		count      int
	}{
		{"easy", counts.Easy},
		{"medium", counts.Medium},
		{"hard", counts.Hard},
	}

	var questions []models.Question
	for _, batch := range batches {
		impact := models.ImpactForDifficulty(batch.difficulty)
		for n := 0; n < batch.count; n++ {
			questions = append(questions, models.Question{
				ID:           fmt.Sprintf("generic-%s-%d", batch.difficulty, n),
				Prompt:       stems[n%len(stems)],
				Difficulty:   batch.difficulty,
				Options:      append([]string(nil), options...),
				CorrectIndex: n % 4,
				HealthImpact: impact,
			})
		}
	}
	return questions
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
