/*
   Copyright 2021 Joseph Cumines

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package domain implements the Domain/Problem bundle and the Action type
// that connects component C (logic) to component D (worldstate), plus the
// successor/predecessor caches the planner walks backwards from goals
// (spec §3 "Domain", §4.E "Successor reachability").
package domain

import (
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/joeycumines/go-ogp/fact"
	"github.com/joeycumines/go-ogp/logic"
	"github.com/joeycumines/go-ogp/ontology"
)

// EffectBundle groups the four kinds of state change an Action's execution
// can produce (spec §3 "Action").
type EffectBundle struct {
	// WorldStateModificationAtStart is applied the instant the action
	// starts (before its duration elapses).
	WorldStateModificationAtStart *logic.Effect
	// WorldStateModification is committed unconditionally when the action
	// finishes.
	WorldStateModification *logic.Effect
	// PotentialWorldStateModification is applied tentatively at the end;
	// the planner may discard it during cost lookahead if it turns out to
	// not be worth committing to.
	PotentialWorldStateModification *logic.Effect
	// GoalsToAdd queues new goals, keyed by priority, once the action
	// completes.
	GoalsToAdd map[int][]*logic.Condition
	// GoalsToAddInCurrentPriority queues goals at the same priority as the
	// goal this action is satisfying.
	GoalsToAddInCurrentPriority []*logic.Condition
}

// Action is a parameterized, preconditioned unit of plan-time change (spec
// §3 "Action").
type Action struct {
	ID string

	Parameters []ontology.Parameter

	// Precondition must hold for the action to be selected.
	Precondition *logic.Condition
	// OverAllCondition must hold throughout the action's (simulated)
	// execution window.
	OverAllCondition *logic.Condition

	Effects EffectBundle

	// Duration is the action's duration as a plain number, left at zero
	// when the domain models instantaneous actions.
	Duration float64

	// CanBeUsedByPlanner excludes the action from planning when false
	// (e.g. an action only ever invoked directly by a caller).
	CanBeUsedByPlanner bool
	// HighImportanceOfNotRepeatingIt participates in tie-breaking (spec
	// §4.E rule 1).
	HighImportanceOfNotRepeatingIt bool
	// PreferInContext is a soft, non-blocking hint distinct from
	// Precondition: it never gates selection, but its satisfied/
	// not-satisfied counts against the current world feed tie-break rules
	// 2 and 3 (spec §4.E, original's preferInContext field).
	PreferInContext []fact.Optional

	// Tick is the grounded action's actual execution logic, ticked by a
	// caller once the planner has chosen this invocation (spec §6
	// notifyActionStarted/notifyActionDone); nil for actions only ever
	// applied as pure effects during search.
	Tick bt.Tick
}

// Node wraps a.Tick as a bt.Node with no children, matching the teacher's
// action-as-leaf-node convention.
func (a *Action) Node() bt.Node {
	if a.Tick == nil {
		return nil
	}
	return bt.New(a.Tick)
}

// successionEffects returns the effects whose successor-reachability caches
// the planner walks, one per effect phase of the action (nil entries are
// skipped by callers).
func (a *Action) successionEffects() []*logic.Effect {
	return []*logic.Effect{
		a.Effects.WorldStateModificationAtStart,
		a.Effects.WorldStateModification,
		a.Effects.PotentialWorldStateModification,
	}
}
