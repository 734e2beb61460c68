package evaluation

import (
	"fmt"
	"math/rand"
	"strings"
)

// fill substitutes the topic into a bank phrase; not every phrase names the
// topic.
func fill(phrase, topic string) string {
	if strings.Contains(phrase, "%s") {
		return fmt.Sprintf(phrase, topic)
	}
	return phrase
}

// Templated stems cycled by position. Enough variety that small quizzes get
// distinct texts without suffixing.
var fallbackStems = []string{
	"What is the main concept behind %s?",
	"Which statement best describes %s?",
	"In practice, what is %s primarily used for?",
	"Which of the following is a key characteristic of %s?",
	"What should you keep in mind when working with %s?",
	"Which example best illustrates %s?",
	"What is a common misconception about %s?",
	"How does %s relate to the rest of the subject?",
}

// Per-difficulty option banks. Index 0 is the correct phrasing; the other
// three are the distractors.
var fallbackBanks = map[string][4]string{
	DifficultyEasy: {
		"The fundamental idea explained in the material about %s",
		"An unrelated topic not covered by %s",
		"A detail that only appears in advanced courses",
		"None of the material mentions this",
	},
	DifficultyMedium: {
		"The concept as presented and applied in the material on %s",
		"A partially correct idea that misses the core of %s",
		"A common confusion with a neighbouring topic",
		"An outdated definition no longer used",
	},
	DifficultyHard: {
		"The precise definition, including the conditions under which %s applies",
		"A plausible generalization of %s that fails in edge cases",
		"The converse statement, which does not hold",
		"A special case mistaken for the general rule",
	},
}

// Fallback synthesizes count generic but well-formed questions for the topic.
// Texts are unique within the batch and the correct option's slot is shuffled
// per question.
func Fallback(topic, difficulty string, count int) ([]Question, string) {
	bank, ok := fallbackBanks[difficulty]
	if !ok {
		bank = fallbackBanks[DifficultyMedium]
	}
	letters := [4]string{"A", "B", "C", "D"}

	seen := map[string]bool{}
	out := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		text := fmt.Sprintf(fallbackStems[i%len(fallbackStems)], topic)
		if seen[text] {
			text = fmt.Sprintf("%s (part %d)", text, i+1)
		}
		seen[text] = true

		perm := rand.Perm(4)
		opts := make([]string, 4)
		correct := ""
		for slot, src := range perm {
			opts[slot] = fill(bank[src], topic)
			if src == 0 {
				correct = letters[slot]
			}
		}
		out = append(out, Question{Text: text, Options: opts, Correct: correct})
	}
	return out, "Keep going! Answer at your own pace and review what you miss."
}
