package progression

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgelabs/forgelabs/internal/learner"
	"github.com/forgelabs/forgelabs/internal/store"
)

// Action is a community contribution that earns aura.
type Action string

const (
	ActionHelpPeer      Action = "help-peer"
	ActionShareSnapshot Action = "share-hardware-snapshot"
	ActionPublishCode   Action = "publish-code"
)

var actionAura = map[Action]int{
	ActionHelpPeer:      15,
	ActionShareSnapshot: 10,
	ActionPublishCode:   30,
}

// Actions lists the known actions.
func Actions() []Action {
	return []Action{ActionHelpPeer, ActionShareSnapshot, ActionPublishCode}
}

// ParseAction accepts the kebab-case name or the upper snake-case form
// (HELP_PEER).
func ParseAction(s string) (Action, error) {
	a := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if _, ok := actionAura[a]; !ok {
		return "", &InputError{Field: "action", Message: fmt.Sprintf("unknown action %q", s), Err: ErrUnknownAction}
	}
	return a, nil
}

// Aura returns the aura granted for a.
func (a Action) Aura() int { return actionAura[a] }

// ActionOutcome describes the effect of RecordAction.
type ActionOutcome struct {
	Action      Action        `json:"action"`
	AuraAwarded int           `json:"auraAwarded"`
	State       learner.State `json:"state"`
}

// RecordAction grants the aura for a. Helping a peer also counts towards
// helpCount.
func (c *Controller) RecordAction(ctx context.Context, a Action) (ActionOutcome, error) {
	aura, ok := actionAura[a]
	if !ok {
		return ActionOutcome{}, &InputError{Field: "action", Message: fmt.Sprintf("unknown action %q", a), Err: ErrUnknownAction}
	}

	st, err := c.learners.Mutate(ctx, func(st *learner.State) {
		st.Aura += aura
		if a == ActionHelpPeer {
			st.HelpCount++
		}
	})
	if err != nil {
		return ActionOutcome{Action: a, State: st}, fmt.Errorf("record action %s: %w", a, err)
	}

	c.log.Info("action recorded", "action", a, "aura", st.Aura)
	c.record(ctx, store.ActivityEventData{Kind: store.ActivityAction, Detail: string(a), Aura: aura})
	return ActionOutcome{Action: a, AuraAwarded: aura, State: st}, nil
}
