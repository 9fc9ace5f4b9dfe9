package service

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"examportal/internal/model"
)

func strptr(s string) *string { return &s }

func validQuestion() model.Question {
	return model.Question{
		ID:            uuid.New(),
		QuestionText:  "What is the capital of France?",
		OptionA:       "Paris",
		OptionB:       "London",
		OptionC:       "Berlin",
		OptionD:       "Madrid",
		CorrectOption: "A",
		Difficulty:    model.DifficultyEasy,
	}
}

func TestServable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *model.Question)
		want   bool
	}{
		{"complete question", func(q *model.Question) {}, true},
		{"empty question text", func(q *model.Question) { q.QuestionText = "" }, false},
		{"missing option b", func(q *model.Question) { q.OptionB = "" }, false},
		{"missing option d", func(q *model.Question) { q.OptionD = "" }, false},
		{"correct letter out of range", func(q *model.Question) { q.CorrectOption = "G" }, false},
		{"correct letter lowercase", func(q *model.Question) { q.CorrectOption = "a" }, false},
		{"correct points at absent option e", func(q *model.Question) { q.CorrectOption = "E" }, false},
		{"correct points at present option e", func(q *model.Question) {
			q.OptionE = strptr("Rome")
			q.CorrectOption = "E"
		}, true},
		{"six options", func(q *model.Question) {
			q.OptionE = strptr("Rome")
			q.OptionF = strptr("Lisbon")
			q.CorrectOption = "F"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			if got := servable(&q); got != tt.want {
				t.Errorf("servable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterServable(t *testing.T) {
	good := validQuestion()
	broken := validQuestion()
	broken.OptionC = ""

	got := filterServable([]model.Question{good, broken})
	if len(got) != 1 {
		t.Fatalf("expected 1 servable question, got %d", len(got))
	}
	if got[0].ID != good.ID {
		t.Errorf("wrong question survived the filter")
	}
}

func TestShuffleQuestionOptionsPreservesCorrectAnswer(t *testing.T) {
	q := validQuestion()

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		snap, ok := shuffleQuestionOptions(&q, rng)
		if !ok {
			t.Fatalf("seed %d: shuffle lost the correct option", seed)
		}

		if len(snap.Options) != 4 {
			t.Fatalf("seed %d: expected 4 options, got %d", seed, len(snap.Options))
		}

		var correctText string
		for _, opt := range snap.Options {
			if opt.Letter == snap.CorrectOption {
				correctText = opt.Text
			}
		}
		if correctText != "Paris" {
			t.Errorf("seed %d: correct letter %s points at %q, want Paris",
				seed, snap.CorrectOption, correctText)
		}
	}
}

func TestShuffleQuestionOptionsRelabelsSequentially(t *testing.T) {
	q := validQuestion()
	q.OptionE = strptr("Rome")

	rng := rand.New(rand.NewSource(7))
	snap, ok := shuffleQuestionOptions(&q, rng)
	if !ok {
		t.Fatal("shuffle lost the correct option")
	}

	want := []string{"A", "B", "C", "D", "E"}
	if len(snap.Options) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(snap.Options))
	}
	for i, opt := range snap.Options {
		if opt.Letter != want[i] {
			t.Errorf("option %d has letter %s, want %s", i, opt.Letter, want[i])
		}
	}
}

func TestShuffleQuestionOptionsDuplicateTextFirstMatch(t *testing.T) {
	q := validQuestion()
	q.OptionB = "Paris" // duplicate of the correct answer

	rng := rand.New(rand.NewSource(11))
	snap, ok := shuffleQuestionOptions(&q, rng)
	if !ok {
		t.Fatal("shuffle lost the correct option")
	}

	// The first option carrying the correct text must win the letter.
	firstParis := ""
	for _, opt := range snap.Options {
		if opt.Text == "Paris" {
			firstParis = opt.Letter
			break
		}
	}
	if snap.CorrectOption != firstParis {
		t.Errorf("correct letter %s, want first Paris occurrence %s", snap.CorrectOption, firstParis)
	}
}

func TestShuffleQuestionOptionsRekeysImages(t *testing.T) {
	q := validQuestion()
	q.OptionImages = map[string]string{
		"A": "/uploads/paris.png",
		"C": "/uploads/berlin.png",
	}

	rng := rand.New(rand.NewSource(3))
	snap, ok := shuffleQuestionOptions(&q, rng)
	if !ok {
		t.Fatal("shuffle lost the correct option")
	}

	if len(snap.OptionImages) != 2 {
		t.Fatalf("expected 2 option images, got %d", len(snap.OptionImages))
	}
	byText := make(map[string]string)
	for _, opt := range snap.Options {
		if img, ok := snap.OptionImages[opt.Letter]; ok {
			byText[opt.Text] = img
		}
	}
	if byText["Paris"] != "/uploads/paris.png" {
		t.Errorf("Paris image = %q, want /uploads/paris.png", byText["Paris"])
	}
	if byText["Berlin"] != "/uploads/berlin.png" {
		t.Errorf("Berlin image = %q, want /uploads/berlin.png", byText["Berlin"])
	}
}

func TestBuildSnapshotDropsQuestionWithLostCorrectOption(t *testing.T) {
	good := validQuestion()
	good.ID = uuid.New()

	// Correct letter pointing at an absent option slips past any caller
	// that skips the structural filter; the snapshot must still drop it.
	broken := validQuestion()
	broken.ID = uuid.New()
	broken.CorrectOption = "E"

	snapshot := buildSnapshot([]model.Question{good, broken}, rand.New(rand.NewSource(5)))

	if len(snapshot) != 1 {
		t.Fatalf("expected 1 question in snapshot, got %d", len(snapshot))
	}
	if snapshot[0].ID != good.ID {
		t.Error("wrong question survived the snapshot build")
	}
	if snapshot[0].CorrectOption == "" {
		t.Error("surviving question lost its correct option")
	}
}

func TestBuildSnapshotKeepsEveryQuestion(t *testing.T) {
	questions := make([]model.Question, 10)
	ids := make(map[uuid.UUID]bool, len(questions))
	for i := range questions {
		questions[i] = validQuestion()
		questions[i].ID = uuid.New()
		ids[questions[i].ID] = true
	}

	rng := rand.New(rand.NewSource(42))
	snapshot := buildSnapshot(questions, rng)

	if len(snapshot) != len(questions) {
		t.Fatalf("snapshot has %d questions, want %d", len(snapshot), len(questions))
	}
	for _, sq := range snapshot {
		if !ids[sq.ID] {
			t.Errorf("snapshot contains unknown question %s", sq.ID)
		}
		delete(ids, sq.ID)
	}
	if len(ids) != 0 {
		t.Errorf("%d questions missing from snapshot", len(ids))
	}
}

func TestBuildSnapshotDoesNotMutateInput(t *testing.T) {
	questions := []model.Question{validQuestion(), validQuestion(), validQuestion()}
	first := questions[0].ID

	rng := rand.New(rand.NewSource(1))
	buildSnapshot(questions, rng)

	if questions[0].ID != first {
		t.Error("input slice order changed")
	}
}
