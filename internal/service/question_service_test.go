package service

import (
	"context"
	"errors"
	"testing"

	"examportal/internal/model"
)

func questionRequest() *model.CreateQuestionRequest {
	return &model.CreateQuestionRequest{
		QuestionText:  "What is the capital of France?",
		OptionA:       "Paris",
		OptionB:       "Berlin",
		OptionC:       "Madrid",
		OptionD:       "Lisbon",
		CorrectOption: "A",
		Difficulty:    "easy",
	}
}

func TestQuestionFromRequest(t *testing.T) {
	req := questionRequest()
	req.Difficulty = ""
	req.QuestionYT = "https://youtube.com/watch?v=abc"

	q, err := questionFromRequest(req)
	if err != nil {
		t.Fatalf("questionFromRequest: %v", err)
	}
	if q.Difficulty != model.DifficultyMedium {
		t.Errorf("difficulty = %s, want default medium", q.Difficulty)
	}
	if q.MediaKind != model.MediaKindVideo {
		t.Errorf("media kind = %s, want video", q.MediaKind)
	}
	if q.OptionImages == nil {
		t.Error("option images should default to an empty map")
	}
}

func TestQuestionFromRequestRejectsAbsentCorrectOption(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.CreateQuestionRequest)
		want   error
	}{
		{
			name:   "correct letter E with no option E",
			mutate: func(r *model.CreateQuestionRequest) { r.CorrectOption = "E" },
			want:   ErrCorrectOptionMissing,
		},
		{
			name: "correct letter F with empty option F",
			mutate: func(r *model.CreateQuestionRequest) {
				r.OptionF = strptr("")
				r.CorrectOption = "F"
			},
			want: ErrCorrectOptionMissing,
		},
		{
			name: "correct letter E with option E filled",
			mutate: func(r *model.CreateQuestionRequest) {
				r.OptionE = strptr("Rome")
				r.CorrectOption = "E"
			},
			want: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := questionRequest()
			tc.mutate(req)
			_, err := questionFromRequest(req)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreateRejectsAbsentCorrectOptionBeforePersisting(t *testing.T) {
	svc := NewQuestionService(nil)

	req := questionRequest()
	req.CorrectOption = "E"

	_, err := svc.Create(context.Background(), req)
	if !errors.Is(err, ErrCorrectOptionMissing) {
		t.Fatalf("err = %v, want ErrCorrectOptionMissing", err)
	}
}
