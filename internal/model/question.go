package model

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty tiers a question can carry.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// MediaKind describes attached media, independent of difficulty.
type MediaKind string

const (
	MediaKindNone  MediaKind = "none"
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// OptionLetters is the full set of valid option letters, in label order.
var OptionLetters = []string{"A", "B", "C", "D", "E", "F"}

// Question represents a multiple-choice question in the pool.
// Options A through D are mandatory; E and F are optional extras.
type Question struct {
	ID            uuid.UUID         `json:"id"`
	QuestionText  string            `json:"question_text"`
	OptionA       string            `json:"option_a"`
	OptionB       string            `json:"option_b"`
	OptionC       string            `json:"option_c"`
	OptionD       string            `json:"option_d"`
	OptionE       *string           `json:"option_e,omitempty"`
	OptionF       *string           `json:"option_f,omitempty"`
	CorrectOption string            `json:"correct_option"`
	Difficulty    Difficulty        `json:"difficulty"`
	MediaKind     MediaKind         `json:"media_kind"`
	QuestionImage string            `json:"question_image,omitempty"`
	QuestionYT    string            `json:"question_youtube,omitempty"`
	OptionImages  map[string]string `json:"option_images,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// OptionText returns the text for an original option letter.
// The bool result is false for letters the question does not define.
func (q *Question) OptionText(letter string) (string, bool) {
	switch letter {
	case "A":
		return q.OptionA, true
	case "B":
		return q.OptionB, true
	case "C":
		return q.OptionC, true
	case "D":
		return q.OptionD, true
	case "E":
		if q.OptionE != nil {
			return *q.OptionE, true
		}
	case "F":
		if q.OptionF != nil {
			return *q.OptionF, true
		}
	}
	return "", false
}

// Category derives the legacy selection category for the question.
// Media tags take precedence over the difficulty tier, image before video.
func (q *Question) Category() string {
	switch q.MediaKind {
	case MediaKindImage:
		return string(MediaKindImage)
	case MediaKindVideo:
		return string(MediaKindVideo)
	}
	if q.Difficulty == "" {
		return string(DifficultyMedium)
	}
	return string(q.Difficulty)
}

// DeriveMediaKind computes the media kind from attached media,
// prioritizing images over a YouTube link when both are present.
func DeriveMediaKind(questionImage string, optionImages map[string]string, youtube string) MediaKind {
	if questionImage != "" || len(optionImages) > 0 {
		return MediaKindImage
	}
	if youtube != "" {
		return MediaKindVideo
	}
	return MediaKindNone
}

// CreateQuestionRequest is the payload for adding a question to the pool.
type CreateQuestionRequest struct {
	QuestionText  string            `json:"question_text" binding:"required,min=1,max=2000"`
	OptionA       string            `json:"option_a" binding:"required,max=500"`
	OptionB       string            `json:"option_b" binding:"required,max=500"`
	OptionC       string            `json:"option_c" binding:"required,max=500"`
	OptionD       string            `json:"option_d" binding:"required,max=500"`
	OptionE       *string           `json:"option_e" binding:"omitempty,max=500"`
	OptionF       *string           `json:"option_f" binding:"omitempty,max=500"`
	CorrectOption string            `json:"correct_option" binding:"required,oneof=A B C D E F"`
	Difficulty    string            `json:"difficulty" binding:"required,oneof=easy medium hard"`
	QuestionImage string            `json:"question_image" binding:"omitempty,max=500"`
	QuestionYT    string            `json:"question_youtube" binding:"omitempty,max=500"`
	OptionImages  map[string]string `json:"option_images" binding:"omitempty"`
}

// UpdateQuestionRequest is the payload for editing an existing question.
// Edits never reach sessions that already snapshotted the question.
type UpdateQuestionRequest = CreateQuestionRequest
