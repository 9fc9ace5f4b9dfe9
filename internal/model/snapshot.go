package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SnapshotOption is a (letter, text) pair inside a session snapshot.
// It serializes as a two-element JSON array to match the stored format.
type SnapshotOption struct {
	Letter string
	Text   string
}

// MarshalJSON encodes the option as ["A", "text"].
func (o SnapshotOption) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{o.Letter, o.Text})
}

// UnmarshalJSON decodes a ["A", "text"] pair.
func (o *SnapshotOption) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("snapshot option: %w", err)
	}
	o.Letter = pair[0]
	o.Text = pair[1]
	return nil
}

// SnapshotQuestion is one frozen question as served to the examinee,
// with options already shuffled and relabeled.
type SnapshotQuestion struct {
	ID            uuid.UUID         `json:"id"`
	QuestionText  string            `json:"question_text"`
	Options       []SnapshotOption  `json:"options"`
	CorrectOption string            `json:"correct_option,omitempty"`
	Difficulty    string            `json:"difficulty"`
	QuestionImage string            `json:"question_image,omitempty"`
	QuestionYT    string            `json:"question_youtube,omitempty"`
	OptionImages  map[string]string `json:"option_images,omitempty"`
}

// StudentView strips the correct answer so the snapshot can be sent
// to the examinee while the session is in progress.
func (q SnapshotQuestion) StudentView() SnapshotQuestion {
	view := q
	view.CorrectOption = ""
	return view
}

// DecodeSnapshot parses a stored snapshot. An empty or unparseable
// document returns an error so callers can regenerate it.
func DecodeSnapshot(raw json.RawMessage) ([]SnapshotQuestion, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("snapshot is empty")
	}
	var questions []SnapshotQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("snapshot has no questions")
	}
	return questions, nil
}
