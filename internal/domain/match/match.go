// Package match selects the configured action for a classified gesture.
package match

import (
	"github.com/gestured/gestured/internal/domain/gesture"
)

// Rule binds one gesture shape to a shell action. Rules carry no wildcards;
// every field must line up with the descriptor for the rule to fire.
type Rule struct {
	Kind    gesture.Kind
	Fingers int
	// Direction is DirectionNone for tap rules.
	Direction gesture.Direction
	// Action is the shell command to launch when the rule fires.
	Action string
}

// First returns the earliest rule in declaration order that matches the
// descriptor exactly. Tap rules ignore direction; swipe rules require it.
func First(rules []Rule, d gesture.Descriptor) (Rule, bool) {
	for _, r := range rules {
		if r.Kind != d.Kind || r.Fingers != d.Fingers {
			continue
		}
		if r.Kind == gesture.KindSwipe && r.Direction != d.Direction {
			continue
		}
		return r, true
	}
	return Rule{}, false
}
