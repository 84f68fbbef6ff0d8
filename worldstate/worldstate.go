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

// Package worldstate implements component D: the ground-fact store, plus
// the Goal/GoalStack/Event types that share its mutation path (spec §3,
// §4.D). Goal, GoalStack and Event live here rather than in a separate
// domain package: the world-state engine must drive goal-stack cleanup and
// event cascades on every mutation, and a domain package needs to both
// build Events and hand them to WorldState, so putting all three in one
// package (with domain later depending on worldstate, never the reverse)
// is the only arrangement of the three that avoids an import cycle.
package worldstate

import (
	"fmt"

	"github.com/joeycumines/go-ogp/fact"
	"github.com/joeycumines/go-ogp/logic"
	"github.com/joeycumines/go-ogp/ontology"
)

// WorldState is the mutable store of ground facts for one Problem, plus the
// observer hooks the planner and callers attach to learn about changes
// (spec §4.D "World-State Engine"). It satisfies logic.FactLookup.
type WorldState struct {
	index *fact.Index

	onFactsChanged  []func([]fact.Fact)
	onPunctualFacts []func([]fact.Fact)
	onFactsAdded    []func([]fact.Fact)
	onFactsRemoved  []func([]fact.Fact)
}

// New constructs an empty WorldState.
func New() *WorldState {
	return &WorldState{index: fact.NewIndex()}
}

// Find implements logic.FactLookup.
func (ws *WorldState) Find(pattern fact.Fact, ignoreValue bool) []fact.Fact {
	return ws.index.Find(pattern, ignoreValue)
}

// Has implements logic.FactLookup.
func (ws *WorldState) Has(g fact.Fact) bool { return ws.index.Has(g) }

// All returns every stored fact, in no particular order.
func (ws *WorldState) All() []fact.Fact { return ws.index.All() }

// Clone deep-copies ws's fact set (not its observer callbacks) for planner
// lookahead; mutating the clone never affects ws (spec §5, testable
// property 5 "Clone isolation").
func (ws *WorldState) Clone() *WorldState {
	return &WorldState{index: ws.index.Clone()}
}

// OnFactsChanged registers a callback invoked once per mutating call with
// every fact added or removed during it (punctual facts excluded).
func (ws *WorldState) OnFactsChanged(fn func([]fact.Fact)) {
	ws.onFactsChanged = append(ws.onFactsChanged, fn)
}

// OnPunctualFacts registers a callback invoked with any punctual facts
// asserted during a mutating call.
func (ws *WorldState) OnPunctualFacts(fn func([]fact.Fact)) {
	ws.onPunctualFacts = append(ws.onPunctualFacts, fn)
}

// OnFactsAdded registers a callback invoked with facts newly stored.
func (ws *WorldState) OnFactsAdded(fn func([]fact.Fact)) {
	ws.onFactsAdded = append(ws.onFactsAdded, fn)
}

// OnFactsRemoved registers a callback invoked with facts erased.
func (ws *WorldState) OnFactsRemoved(fn func([]fact.Fact)) {
	ws.onFactsRemoved = append(ws.onFactsRemoved, fn)
}

// AddTimelessFact installs f as part of the domain's immutable set: it can
// never be removed by a later mutator (spec glossary "timeless fact"). Not
// itself a mutation the regular observer hooks fire for.
func (ws *WorldState) AddTimelessFact(f fact.Fact) {
	ws.index.Add(f, true)
}

// AddFact is AddFacts for a single fact.
func (ws *WorldState) AddFact(f fact.Fact, goalStack *GoalStack, events []SetOfEvents, entities ontology.Entities) error {
	return ws.AddFacts([]fact.Fact{f}, goalStack, events, entities)
}

// AddFacts stores every non-punctual fact in facts (applying the fluent
// assignment/displacement rule per fact), collects punctual facts as
// notifications only, then runs goal-stack cleanup, the event cascade and
// the observer callbacks (spec §4.D).
func (ws *WorldState) AddFacts(facts []fact.Fact, goalStack *GoalStack, events []SetOfEvents, entities ontology.Entities) error {
	var wc whatChanged
	for _, f := range facts {
		if f.IsPunctual() {
			wc.punctualFacts = append(wc.punctualFacts, f)
			continue
		}
		if err := ws.assign(&wc, f); err != nil {
			return err
		}
	}
	return ws.finishMutation(&wc, goalStack, events, entities)
}

// RemoveFact is RemoveFacts for a single fact.
func (ws *WorldState) RemoveFact(f fact.Fact, goalStack *GoalStack, events []SetOfEvents, entities ontology.Entities) error {
	return ws.RemoveFacts([]fact.Fact{f}, goalStack, events, entities)
}

// RemoveFacts erases every fact in facts matching by call string, then runs
// goal-stack cleanup, the event cascade and the observer callbacks.
func (ws *WorldState) RemoveFacts(facts []fact.Fact, goalStack *GoalStack, events []SetOfEvents, entities ontology.Entities) error {
	var wc whatChanged
	for _, f := range facts {
		if err := ws.removeByCallString(&wc, f); err != nil {
			return err
		}
	}
	return ws.finishMutation(&wc, goalStack, events, entities)
}

// RemoveFactsHoldingEntities erases every stored fact that mentions any of
// entityValues as an argument or a fluent value, e.g. when an object is
// deleted from the problem (spec §4.D).
func (ws *WorldState) RemoveFactsHoldingEntities(entityValues []string, goalStack *GoalStack, events []SetOfEvents, entities ontology.Entities) error {
	holds := make(map[string]struct{}, len(entityValues))
	for _, v := range entityValues {
		holds[v] = struct{}{}
	}
	var toErase []fact.Fact
	for _, f := range ws.index.All() {
		erase := false
		for _, a := range f.Arguments {
			if _, ok := holds[a.Value]; ok {
				erase = true
				break
			}
		}
		if !erase && f.Value != nil {
			if _, ok := holds[f.Value.Value]; ok {
				erase = true
			}
		}
		if erase {
			toErase = append(toErase, f)
		}
	}
	var wc whatChanged
	for _, f := range toErase {
		if err := ws.removeStored(&wc, f); err != nil {
			return err
		}
	}
	return ws.finishMutation(&wc, goalStack, events, entities)
}

// Modify resolves effect (already fully bound to ground arguments) into its
// constituent fact assertions/retractions and applies them directly,
// without driving goal-stack cleanup, the event cascade or observer
// callbacks. It exists for GoalStack.RemoveSatisfiedGoals's
// effectBetweenGoals, which is itself invoked from inside goal-stack
// cleanup: re-entering cleanup or the cascade from there would recurse.
// Everything else should use ApplyEffect.
func (ws *WorldState) Modify(effect *logic.Effect, entities ontology.Entities) error {
	var wc whatChanged
	return ws.resolveAndApply(&wc, effect, entities)
}

// ApplyEffect clones effect under parameters (the action/event's resolved
// argument bindings), applies the resulting ground assertions/retractions,
// then runs goal-stack cleanup, the event cascade and observer callbacks
// (spec §4.D "applying an effect").
func (ws *WorldState) ApplyEffect(parameters map[string]ontology.Entity, effect *logic.Effect, goalStack *GoalStack, events []SetOfEvents, entities ontology.Entities) error {
	e := effect
	if len(parameters) > 0 {
		e = effect.Clone(parameters)
	}
	var wc whatChanged
	if err := ws.resolveAndApply(&wc, e, entities); err != nil {
		return err
	}
	return ws.finishMutation(&wc, goalStack, events, entities)
}

// IsOptionalFactSatisfied reports whether fo currently holds in the world.
func (ws *WorldState) IsOptionalFactSatisfied(fo fact.Optional) bool {
	found := ws.index.Has(fo.Fact)
	if fo.FactNegated {
		return !found
	}
	return found
}

// IsOptionalFactSatisfiedInASpecificContext evaluates fo as a one-leaf
// condition against bindings already established elsewhere (e.g. a
// candidate action's parameter resolution), refining those bindings.
func (ws *WorldState) IsOptionalFactSatisfiedInASpecificContext(fo fact.Optional, entities ontology.Entities, bindings logic.Bindings) (bool, error) {
	return logic.NewFact(fo).IsTrue(ws, entities, bindings, false)
}

// IsGoalSatisfied evaluates g's objective against the world.
func (ws *WorldState) IsGoalSatisfied(g *Goal, entities ontology.Entities) (bool, error) {
	return g.IsSatisfied(ws, entities)
}

func (ws *WorldState) resolveAndApply(wc *whatChanged, effect *logic.Effect, entities ontology.Entities) error {
	return effect.ForEach(ws, entities, logic.Bindings{}, func(fo fact.Optional) error {
		if fo.Fact.IsPunctual() {
			wc.punctualFacts = append(wc.punctualFacts, fo.Fact)
			return nil
		}
		if fo.FactNegated {
			return ws.removeByCallString(wc, fo.Fact)
		}
		return ws.assign(wc, fo.Fact)
	})
}

// assign stores f, applying the fluent displacement rule: a fluent
// reassigned to a different value first removes its previous value;
// reassigning to the same value, or re-asserting an already-present
// relation, is a no-op (spec §4.D "Assignment semantics for fluents").
func (ws *WorldState) assign(wc *whatChanged, f fact.Fact) error {
	existing, existed := ws.index.Get(f.CallString())
	if existed {
		switch {
		case existing.Value == nil && f.Value == nil:
			return nil
		case existing.Value != nil && f.Value != nil && existing.Value.Value == f.Value.Value:
			return nil
		default:
			if err := ws.removeStored(wc, existing); err != nil {
				return err
			}
		}
	}
	ws.index.Add(f, false)
	wc.addedFacts = append(wc.addedFacts, f)
	return nil
}

// removeByCallString erases whatever is currently stored under f's call
// string, if anything; erasing an absent fact is a no-op, not an error.
func (ws *WorldState) removeByCallString(wc *whatChanged, f fact.Fact) error {
	existing, ok := ws.index.Get(f.CallString())
	if !ok {
		return nil
	}
	return ws.removeStored(wc, existing)
}

func (ws *WorldState) removeStored(wc *whatChanged, f fact.Fact) error {
	if ws.index.IsImmutable(f) {
		return fmt.Errorf(`%w: %s`, ErrImmutableFact, f.CallString())
	}
	removed, ok := ws.index.Remove(f)
	if ok {
		wc.removedFacts = append(wc.removedFacts, removed)
	}
	return nil
}

// finishMutation runs goal-stack cleanup, the reactive-event cascade to a
// fixed point, a second goal-stack cleanup pass (events may have satisfied
// goals too) and finally the observer callbacks.
func (ws *WorldState) finishMutation(wc *whatChanged, goalStack *GoalStack, events []SetOfEvents, entities ontology.Entities) error {
	if goalStack != nil {
		goalStack.RemoveSatisfiedGoals(ws, entities)
	}
	if err := ws.cascadeEvents(wc, events, goalStack, entities); err != nil {
		return err
	}
	if goalStack != nil {
		goalStack.RemoveSatisfiedGoals(ws, entities)
	}
	ws.notify(wc)
	return nil
}

// cascadeEvents repeatedly scans events for a precondition newly made true,
// applying its effect and queuing its goals; each event fires at most once
// per cascade (spec §3 "Event" / §4.D), so a fixed point is always reached
// in at most one more full pass than there are events across all sets.
func (ws *WorldState) cascadeEvents(wc *whatChanged, events []SetOfEvents, goalStack *GoalStack, entities ontology.Entities) error {
	if len(events) == 0 {
		return nil
	}
	fired := make(map[string]bool)
	for {
		progressed := false
		for _, set := range events {
			for _, ev := range set.Events {
				key := set.ID + "\x00" + ev.ID
				if fired[key] {
					continue
				}
				ok, err := ev.Precondition.IsTrue(ws, entities, logic.Bindings{}, false)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				fired[key] = true
				progressed = true
				if ev.FactsToModify != nil {
					if err := ws.resolveAndApply(wc, ev.FactsToModify, entities); err != nil {
						return err
					}
				}
				if goalStack != nil {
					for priority, conds := range ev.GoalsToAdd {
						for _, cond := range conds {
							goalStack.AddGoal(priority, NewGoal(cond))
						}
					}
				}
			}
		}
		if !progressed {
			return nil
		}
	}
}

func (ws *WorldState) notify(wc *whatChanged) {
	if !wc.hasChanges() {
		return
	}
	if len(wc.punctualFacts) > 0 {
		for _, cb := range ws.onPunctualFacts {
			cb(wc.punctualFacts)
		}
	}
	if len(wc.addedFacts) > 0 {
		for _, cb := range ws.onFactsAdded {
			cb(wc.addedFacts)
		}
	}
	if len(wc.removedFacts) > 0 {
		for _, cb := range ws.onFactsRemoved {
			cb(wc.removedFacts)
		}
	}
	if wc.hasFactsToModifyInTheWorldForSure() {
		changed := make([]fact.Fact, 0, len(wc.addedFacts)+len(wc.removedFacts))
		changed = append(changed, wc.addedFacts...)
		changed = append(changed, wc.removedFacts...)
		for _, cb := range ws.onFactsChanged {
			cb(changed)
		}
	}
}
