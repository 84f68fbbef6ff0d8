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

package domain

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/joeycumines/go-ogp/fact"
	"github.com/joeycumines/go-ogp/logic"
	"github.com/joeycumines/go-ogp/ontology"
	"github.com/joeycumines/go-ogp/worldstate"
)

// KnownRequirements is the fixed PDDL-style requirement whitelist; anything
// else fails AddRequirement with ErrUnknownRequirement (spec §6).
var KnownRequirements = map[string]struct{}{
	`:strips`:                      {},
	`:typing`:                      {},
	`:negative-preconditions`:      {},
	`:equality`:                    {},
	`:existential-preconditions`:   {},
	`:universal-preconditions`:     {},
	`:quantified-preconditions`:    {},
	`:conditional-effects`:         {},
	`:fluents`:                     {},
	`:numeric-fluents`:             {},
	`:object-fluents`:              {},
	`:adl`:                         {},
	`:durative-actions`:            {},
	`:derived-predicates`:          {},
	`:domain-axioms`:               {},
	`:ordered-goals`:                {},
}

// Domain is the immutable-between-rebuilds bundle of ontology, actions and
// reactive event sets, plus the successor/predecessor caches the planner
// walks backwards from goals (spec §3 "Domain"). Every structural mutation
// (AddAction, RemoveAction, AddSetOfEvents, RemoveSetOfEvents, ClearEvents)
// triggers a full cache rebuild and bumps Revision, so a Problem referencing
// this Domain can detect staleness (spec testable property 4).
type Domain struct {
	Ontology *ontology.Ontology

	actions      map[string]*Action
	actionOrder  []string
	eventSets    map[string]*worldstate.SetOfEvents
	eventOrder   []string
	requirements map[string]struct{}
	timeless     []fact.Fact

	// factOptionalsToID maps a predicate name appearing in some
	// action/event precondition to the ids of every action whose
	// precondition mentions it. Keyed by predicate name rather than a full
	// optional-fact pattern: predicates are rarely overloaded across
	// differently-shaped preconditions in practice, and this keeps the
	// rebuild a single linear pass instead of a pattern-unification join.
	factOptionalsToID map[string][]string
	// eventPredicateIndex is factOptionalsToID's event-side counterpart:
	// predicate name -> set-of-events id -> event ids.
	eventPredicateIndex map[string]map[string][]string
	// actionsPredecessors is factOptionalsToID's dual: predicate name -> ids
	// of every action that can produce a fact of that predicate via one of
	// its effects. The planner walks this backward from a goal's predicate
	// set to restrict "what could possibly make this true" to the actions
	// actually capable of it, instead of grounding every action in the
	// domain (spec §4.E "actionsPredecessors").
	actionsPredecessors map[string][]string
	// eventProducerTriggers maps a predicate name some event can assert or
	// retract to the predicate names appearing in that event's own
	// precondition: the planner's backward walk hops through this when a
	// goal (or an action's precondition) can only be reached via a
	// cascading event rather than directly by an action.
	eventProducerTriggers map[string][]string

	revision string
}

// New constructs an empty Domain over ont.
func New(ont *ontology.Ontology) *Domain {
	d := &Domain{
		Ontology:     ont,
		actions:      make(map[string]*Action),
		eventSets:    make(map[string]*worldstate.SetOfEvents),
		requirements: make(map[string]struct{}),
	}
	d.rebuild()
	return d
}

// Revision is the Domain's current cache-validity UUID; it changes on every
// structural mutation.
func (d *Domain) Revision() string { return d.revision }

// AddTimelessFact registers f as part of the domain's permanent, immutable
// fact set; a Problem constructed from this Domain starts with these
// already stored and non-removable.
func (d *Domain) AddTimelessFact(f fact.Fact) { d.timeless = append(d.timeless, f) }

// TimelessFacts returns the domain's immutable fact set.
func (d *Domain) TimelessFacts() []fact.Fact { return append([]fact.Fact(nil), d.timeless...) }

// AddAction registers or replaces a by a.ID, then rebuilds the caches.
func (d *Domain) AddAction(a *Action) {
	if _, exists := d.actions[a.ID]; !exists {
		d.actionOrder = append(d.actionOrder, a.ID)
	}
	d.actions[a.ID] = a
	d.rebuild()
}

// RemoveAction erases the action with the given id, then rebuilds the caches.
func (d *Domain) RemoveAction(id string) error {
	if _, ok := d.actions[id]; !ok {
		return fmt.Errorf(`%w: %s`, ErrUnknownAction, id)
	}
	delete(d.actions, id)
	for i, cand := range d.actionOrder {
		if cand == id {
			d.actionOrder = append(d.actionOrder[:i], d.actionOrder[i+1:]...)
			break
		}
	}
	d.rebuild()
	return nil
}

// Action returns the registered action by id, or nil.
func (d *Domain) Action(id string) *Action { return d.actions[id] }

// Actions returns every registered action, in registration order.
func (d *Domain) Actions() []*Action {
	out := make([]*Action, 0, len(d.actionOrder))
	for _, id := range d.actionOrder {
		out = append(out, d.actions[id])
	}
	return out
}

// ActionsProducing returns every registered action (in registration order)
// with at least one effect that can assert or retract a fact of the given
// predicate name, i.e. the predecessors the planner walks backward from a
// goal built on that predicate (spec §4.E "actionsPredecessors").
func (d *Domain) ActionsProducing(predicate string) []*Action {
	ids := d.actionsPredecessors[predicate]
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Action, 0, len(ids))
	for _, id := range ids {
		if a := d.actions[id]; a != nil {
			out = append(out, a)
		}
	}
	return out
}

// EventTriggerPredicates returns the predicate names appearing in the
// precondition of any event capable of asserting or retracting a fact of
// the given predicate: the next hop in the planner's backward walk when a
// predicate is only reachable through a cascading event (spec §4.E, §9
// "reactive events" design note).
func (d *Domain) EventTriggerPredicates(predicate string) []string {
	return append([]string(nil), d.eventProducerTriggers[predicate]...)
}

// PredicatesIn returns the distinct predicate names appearing as fact
// leaves anywhere within c (recursing through And/Or/Imply/Not/Exists/
// Forall), sorted for determinism. Used by the planner to resolve a goal's
// objective down to the predicate set ActionsProducing is queried with.
func PredicatesIn(c *logic.Condition) []string {
	preds := map[string]bool{}
	collectConditionPredicates(c, preds)
	return sortedKeys(preds)
}

// AddSetOfEvents registers set (generating an id via uuid if set.ID is
// empty), then rebuilds the caches. Returns the id used.
func (d *Domain) AddSetOfEvents(set worldstate.SetOfEvents) string {
	if set.ID == `` {
		set.ID = uuid.NewString()
	}
	if _, exists := d.eventSets[set.ID]; !exists {
		d.eventOrder = append(d.eventOrder, set.ID)
	}
	stored := set
	d.eventSets[set.ID] = &stored
	d.rebuild()
	return set.ID
}

// RemoveSetOfEvents erases the set of events by id, then rebuilds the caches.
func (d *Domain) RemoveSetOfEvents(id string) error {
	if _, ok := d.eventSets[id]; !ok {
		return fmt.Errorf(`%w: %s`, ErrUnknownSetOfEvents, id)
	}
	delete(d.eventSets, id)
	for i, cand := range d.eventOrder {
		if cand == id {
			d.eventOrder = append(d.eventOrder[:i], d.eventOrder[i+1:]...)
			break
		}
	}
	d.rebuild()
	return nil
}

// ClearEvents erases every registered set of events, then rebuilds the caches.
func (d *Domain) ClearEvents() {
	d.eventSets = make(map[string]*worldstate.SetOfEvents)
	d.eventOrder = nil
	d.rebuild()
}

// EventSets returns every registered set of events, in registration order.
func (d *Domain) EventSets() []worldstate.SetOfEvents {
	out := make([]worldstate.SetOfEvents, 0, len(d.eventOrder))
	for _, id := range d.eventOrder {
		out = append(out, *d.eventSets[id])
	}
	return out
}

// AddRequirement registers name, failing with ErrUnknownRequirement if it
// is not in KnownRequirements (spec §6).
func (d *Domain) AddRequirement(name string) error {
	if _, ok := KnownRequirements[name]; !ok {
		return fmt.Errorf(`%w: %s`, ErrUnknownRequirement, name)
	}
	d.requirements[name] = struct{}{}
	return nil
}

// HasRequirement reports whether name was registered via AddRequirement.
func (d *Domain) HasRequirement(name string) bool {
	_, ok := d.requirements[name]
	return ok
}

// rebuild recomputes factOptionalsToID/eventPredicateIndex by scanning every
// action/event precondition, then recomputes every effect's Successions by
// scanning which actions/events those caches say could be enabled by the
// predicates that effect can produce (spec §4.C "Successor reachability",
// §9 "Back references (Domain <-> Action caches)").
func (d *Domain) rebuild() {
	predIndex := make(map[string][]string)
	eventIndex := make(map[string]map[string][]string)

	for _, id := range d.actionOrder {
		a := d.actions[id]
		preds := map[string]bool{}
		collectConditionPredicates(a.Precondition, preds)
		collectConditionPredicates(a.OverAllCondition, preds)
		names := sortedKeys(preds)
		for _, p := range names {
			predIndex[p] = append(predIndex[p], id)
		}
	}

	for _, setID := range d.eventOrder {
		set := d.eventSets[setID]
		for _, ev := range set.Events {
			preds := map[string]bool{}
			collectConditionPredicates(ev.Precondition, preds)
			for _, p := range sortedKeys(preds) {
				if eventIndex[p] == nil {
					eventIndex[p] = make(map[string][]string)
				}
				eventIndex[p][setID] = append(eventIndex[p][setID], ev.ID)
			}
		}
	}

	d.factOptionalsToID = predIndex
	d.eventPredicateIndex = eventIndex

	producers := make(map[string][]string)
	seenProducer := make(map[string]map[string]bool)
	for _, id := range d.actionOrder {
		a := d.actions[id]
		produced := map[string]bool{}
		for _, e := range a.successionEffects() {
			collectEffectPredicates(e, produced)
		}
		for _, p := range sortedKeys(produced) {
			if seenProducer[p] == nil {
				seenProducer[p] = make(map[string]bool)
			}
			if !seenProducer[p][id] {
				seenProducer[p][id] = true
				producers[p] = append(producers[p], id)
			}
		}
	}
	d.actionsPredecessors = producers

	eventTriggers := make(map[string][]string)
	seenTrigger := make(map[string]map[string]bool)
	for _, setID := range d.eventOrder {
		set := d.eventSets[setID]
		for _, ev := range set.Events {
			produced := map[string]bool{}
			collectEffectPredicates(ev.FactsToModify, produced)
			triggers := map[string]bool{}
			collectConditionPredicates(ev.Precondition, triggers)
			triggerNames := sortedKeys(triggers)
			for _, p := range sortedKeys(produced) {
				if seenTrigger[p] == nil {
					seenTrigger[p] = make(map[string]bool)
				}
				for _, t := range triggerNames {
					if !seenTrigger[p][t] {
						seenTrigger[p][t] = true
						eventTriggers[p] = append(eventTriggers[p], t)
					}
				}
			}
		}
	}
	d.eventProducerTriggers = eventTriggers

	assign := func(e *logic.Effect) {
		if e == nil {
			return
		}
		produced := map[string]bool{}
		collectEffectPredicates(e, produced)
		succ := logic.NewSuccessions()
		seenAction := map[string]bool{}
		for _, p := range sortedKeys(produced) {
			for _, aid := range predIndex[p] {
				if !seenAction[aid] {
					seenAction[aid] = true
					succ.AddAction(aid)
				}
			}
			for _, setID := range sortedKeys(toBoolMap(eventIndex[p])) {
				for _, evID := range eventIndex[p][setID] {
					succ.AddEvent(setID, evID)
				}
			}
		}
		e.Successions = succ
	}

	for _, id := range d.actionOrder {
		a := d.actions[id]
		for _, e := range a.successionEffects() {
			assign(e)
		}
	}
	for _, setID := range d.eventOrder {
		set := d.eventSets[setID]
		for i := range set.Events {
			assign(set.Events[i].FactsToModify)
		}
	}

	d.revision = uuid.NewString()
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toBoolMap(m map[string][]string) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func collectConditionPredicates(c *logic.Condition, out map[string]bool) {
	if c == nil {
		return
	}
	switch c.Kind {
	case logic.CondFact:
		out[c.FactLeaf.Fact.Predicate.Name] = true
	case logic.CondNot:
		collectConditionPredicates(c.Operand, out)
	case logic.CondNode:
		collectConditionPredicates(c.Left, out)
		collectConditionPredicates(c.Right, out)
	case logic.CondExists, logic.CondForall:
		collectConditionPredicates(c.Inner, out)
	}
}

func collectEffectPredicates(e *logic.Effect, out map[string]bool) {
	if e == nil {
		return
	}
	switch e.Kind {
	case logic.EffFact:
		out[e.FactLeaf.Fact.Predicate.Name] = true
	case logic.EffNode:
		switch e.Op {
		case logic.EffAssign, logic.EffIncrease, logic.EffDecrease, logic.EffMultiply:
			collectEffectPredicates(e.Left, out)
		case logic.EffForAll, logic.EffWhen:
			collectEffectPredicates(e.Left, out)
		default: // EffAnd
			collectEffectPredicates(e.Left, out)
			collectEffectPredicates(e.Right, out)
		}
	}
}
