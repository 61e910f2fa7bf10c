// Package intent turns a free-text chat message into a canned reply plus
// the flags the dialogue controller acts on.
package intent

import "context"

type Intent struct {
	Response string

	SuggestDoctor  bool
	Specialization string

	CheckPrescriptions bool

	// Fallback is set when nothing in the message was recognised.
	Fallback bool
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Intent, error)
}
