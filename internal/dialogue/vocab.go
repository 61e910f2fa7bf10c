package dialogue

import (
	"strconv"
	"strings"
)

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	set := make(wordSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func (w wordSet) has(text string) bool {
	_, ok := w[text]
	return ok
}

// Each set is only consulted in its own stage: "no" declines reminders in
// activate_reminders but ends the conversation in waiting_for_exit.
var (
	resetWords       = newWordSet("reset", "start over")
	affirmativeWords = newWordSet("yes", "yeah", "yup", "sure", "ok", "alright", "go ahead")
	negativeWords    = newWordSet("no", "nope", "not now", "nah", "never mind")
	exitWords        = newWordSet("ok", "okay", "fine", "thanks", "exit", "no")
)

func normalizeMessage(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}

// parseSlotChoice turns the 1-based number a patient typed into a 0-based
// index into a list of n slots.
func parseSlotChoice(text string, n int) (int, bool) {
	choice, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || choice < 1 || choice > n {
		return -1, false
	}
	return choice - 1, true
}
