package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestSnapshotOptionJSON(t *testing.T) {
	opt := SnapshotOption{Letter: "B", Text: "Paris"}

	data, err := json.Marshal(opt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["B","Paris"]` {
		t.Fatalf("got %s, want [\"B\",\"Paris\"]", data)
	}

	var back SnapshotOption
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != opt {
		t.Errorf("round trip changed option: %+v", back)
	}
}

func TestSnapshotOptionUnmarshalRejectsObjects(t *testing.T) {
	var opt SnapshotOption
	if err := json.Unmarshal([]byte(`{"letter":"A","text":"x"}`), &opt); err == nil {
		t.Error("expected error for object-form option")
	}
}

func TestDecodeSnapshot(t *testing.T) {
	id := uuid.New()
	raw, err := json.Marshal([]SnapshotQuestion{{
		ID:           id,
		QuestionText: "What is 2+2?",
		Options: []SnapshotOption{
			{Letter: "A", Text: "3"},
			{Letter: "B", Text: "4"},
		},
		CorrectOption: "B",
		Difficulty:    "easy",
	}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	questions, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(questions))
	}
	q := questions[0]
	if q.ID != id || q.CorrectOption != "B" {
		t.Errorf("question mangled: %+v", q)
	}
	if len(q.Options) != 2 || q.Options[1].Text != "4" {
		t.Errorf("options mangled: %+v", q.Options)
	}
}

func TestDecodeSnapshotErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty document", ""},
		{"empty array", "[]"},
		{"not json", "{broken"},
		{"wrong shape", `{"questions":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeSnapshot(json.RawMessage(tc.raw)); err == nil {
				t.Errorf("DecodeSnapshot(%q) expected error", tc.raw)
			}
		})
	}
}

func TestStudentViewStripsCorrectOption(t *testing.T) {
	q := SnapshotQuestion{
		ID:            uuid.New(),
		QuestionText:  "What is 2+2?",
		CorrectOption: "C",
		Options:       []SnapshotOption{{Letter: "A", Text: "4"}},
	}

	view := q.StudentView()
	if view.CorrectOption != "" {
		t.Error("student view still carries the correct option")
	}
	if q.CorrectOption != "C" {
		t.Error("original question was mutated")
	}

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["correct_option"]; ok {
		t.Error("correct_option key present in serialized student view")
	}
}
