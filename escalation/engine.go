// Package escalation decides when a logged message warrants an automated
// dispatcher reply. The trigger is deliberately narrow and auditable: a
// substring match over a fixed vocabulary, not a learned classifier.
// False negatives are an accepted limitation.
package escalation

import (
	"strings"

	"comms-hub/domain"

	goahocorasick "github.com/anknown/ahocorasick"
)

// DefaultTriggers is the stock trigger vocabulary: a responder whose
// message contains "need" gets an automated dispatcher reply.
var DefaultTriggers = []string{"need"}

// Engine is a pure decision function over a message. No I/O, no side
// effects, safe for concurrent use once built.
type Engine struct {
	matcher *goahocorasick.Machine
}

// NewEngine builds the trigger automaton. Matching is case-insensitive;
// an empty trigger list falls back to DefaultTriggers.
func NewEngine(triggers []string) (Engine, error) {
	if len(triggers) == 0 {
		triggers = DefaultTriggers
	}
	patterns := make([][]rune, len(triggers))
	for i, t := range triggers {
		patterns[i] = []rune(strings.ToLower(t))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Engine{}, err
	}
	return Engine{matcher: m}, nil
}

// ShouldEscalate reports whether the message should receive an automated
// dispatcher reply: only responder messages qualify, and only when the
// lowercased body contains a trigger pattern.
func (e Engine) ShouldEscalate(m domain.Message) bool {
	if m.SenderType != domain.Responder {
		return false
	}
	terms := e.matcher.MultiPatternSearch([]rune(strings.ToLower(m.Body)), true)
	return len(terms) > 0
}
