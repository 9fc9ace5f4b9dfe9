package service

import (
	"math/rand"

	"github.com/rs/zerolog/log"

	"examportal/internal/model"
)

// servable reports whether a question can be presented to a student: it needs
// question text, all four base options, and a correct letter that points at a
// non-empty option.
func servable(q *model.Question) bool {
	if q.QuestionText == "" {
		return false
	}
	if q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" {
		return false
	}
	text, ok := q.OptionText(q.CorrectOption)
	return ok && text != ""
}

// filterServable drops questions that would render as broken on screen.
func filterServable(questions []model.Question) []model.Question {
	out := questions[:0]
	for _, q := range questions {
		if servable(&q) {
			out = append(out, q)
		}
	}
	return out
}

// shuffleQuestionOptions reorders a question's options and returns the frozen
// snapshot form. The correct answer is tracked by its text, so after the
// shuffle the stored correct letter points at the same answer the author
// marked. When two options share the same text the first occurrence wins.
// Option images are rekeyed to the letters the options land on. The second
// return is false when the correct text cannot be located after the shuffle;
// such a question must not be served.
func shuffleQuestionOptions(q *model.Question, rng *rand.Rand) (model.SnapshotQuestion, bool) {
	correctText, _ := q.OptionText(q.CorrectOption)

	var texts []string
	for _, letter := range model.OptionLetters {
		text, ok := q.OptionText(letter)
		if !ok || text == "" {
			continue
		}
		texts = append(texts, text)
	}

	// Pair each option text with the image attached to its original letter
	// before the order changes.
	type optionEntry struct {
		text  string
		image string
	}
	entries := make([]optionEntry, len(texts))
	for i, text := range texts {
		entries[i] = optionEntry{text: text}
	}
	if len(q.OptionImages) > 0 {
		idx := 0
		for _, letter := range model.OptionLetters {
			text, ok := q.OptionText(letter)
			if !ok || text == "" {
				continue
			}
			entries[idx].image = q.OptionImages[letter]
			idx++
		}
	}

	rng.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})

	snap := model.SnapshotQuestion{
		ID:            q.ID,
		QuestionText:  q.QuestionText,
		Difficulty:    string(q.Difficulty),
		QuestionImage: q.QuestionImage,
		QuestionYT:    q.QuestionYT,
	}
	images := make(map[string]string)
	for i, e := range entries {
		letter := model.OptionLetters[i]
		snap.Options = append(snap.Options, model.SnapshotOption{Letter: letter, Text: e.text})
		if snap.CorrectOption == "" && e.text == correctText {
			snap.CorrectOption = letter
		}
		if e.image != "" {
			images[letter] = e.image
		}
	}
	if len(images) > 0 {
		snap.OptionImages = images
	}
	return snap, snap.CorrectOption != ""
}

// buildSnapshot shuffles question order, then each question's options, and
// returns the per-session frozen paper. Questions whose correct answer gets
// lost in the shuffle are dropped with the same policy as the structural
// filter.
func buildSnapshot(questions []model.Question, rng *rand.Rand) []model.SnapshotQuestion {
	shuffled := make([]model.Question, len(questions))
	copy(shuffled, questions)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	snapshot := make([]model.SnapshotQuestion, 0, len(shuffled))
	for i := range shuffled {
		snap, ok := shuffleQuestionOptions(&shuffled[i], rng)
		if !ok {
			log.Warn().
				Str("question_id", shuffled[i].ID.String()).
				Msg("correct option lost during shuffle, question dropped")
			continue
		}
		snapshot = append(snapshot, snap)
	}
	return snapshot
}
