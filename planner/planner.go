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

// Package planner implements component E: backward-chaining selection of
// grounded action invocations that advance a prioritized goal stack (spec
// §4.E).
//
// A goal's objective is decomposed to its predicate set (domain.
// PredicatesIn), and candidate actions are restricted to domain.Domain's
// actionsPredecessors/eventProducerTriggers caches walked backward from
// that set (candidateActionsForGoal) — never every CanBeUsedByPlanner
// action in the domain. The walk hops through an event whenever a
// predicate is only reachable via a cascade, following that event's own
// trigger predicates one level further back, until no new predicate is
// discovered.
package planner

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-ogp/domain"
	"github.com/joeycumines/go-ogp/logic"
	"github.com/joeycumines/go-ogp/ontology"
	"github.com/joeycumines/go-ogp/worldstate"
)

type config struct {
	costLookahead bool
	repeatLimit   int
	historical    domain.Historical
}

// Option configures a planning call (spec §A.4 "Configuration").
type Option func(*config) error

func defaultConfig() config { return config{repeatLimit: 10} }

// WithCostLookahead toggles the one-step PlanCost lookahead tie-break
// (spec §4.E "Cost-based override").
func WithCostLookahead(enabled bool) Option {
	return func(c *config) error { c.costLookahead = enabled; return nil }
}

// WithActionRepeatLimit overrides the default action-string repeat bound of
// 10 (spec §5, testable property 2).
func WithActionRepeatLimit(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf(`ogp: action repeat limit must be positive, got %d`, n)
		}
		c.repeatLimit = n
		return nil
	}
}

// WithHistorical overrides the Historical consulted for tie-breaking;
// absent this option, the Problem's own Historical is used, falling back
// to a fresh DefaultHistorical.
func WithHistorical(h domain.Historical) Option {
	return func(c *config) error { c.historical = h; return nil }
}

// candidate bundles a prospective ActionInvocation with the information
// its tie-break rules need.
type candidate struct {
	inv      ActionInvocation
	action   *domain.Action
	progress int

	preferSatisfied    int
	preferNotSatisfied int

	cost PlanCost
}

// PlanForMoreImportantGoalPossible drains prob's goal stack priority by
// priority, highest first: at each step it considers every currently
// active (not inactive, not yet satisfied) goal at the current priority,
// asks findFirstActionForAGoal for each goal's own best candidate action,
// and applies whichever candidate isMoreImportantThan every other — so an
// action for one goal can run ahead of another goal's own action when it
// is the more important of the two, rather than draining goals strictly
// in list order (spec §4.E "Goal selection loop", §6 second top-level
// planner entry point). prob's world-state and goal stack are never
// mutated (the search runs on a clone); the call does record dom's
// revision on prob, and it increments the Historical in use once for every
// action it plans, including actions planned inside cost lookahead.
//
// When tryOptimal is true, each candidate's PlanCost is computed by
// cloning the problem, applying the candidate, and recursively invoking
// PlanForMoreImportantGoalPossible against the clone with tryOptimal
// forced false (spec §4.E "Cost-based override"); forcing it false on the
// recursive call is what keeps the lookahead to a single step instead of
// an unbounded re-planning recursion.
func PlanForMoreImportantGoalPossible(prob *domain.Problem, dom *domain.Domain, tryOptimal bool, now time.Time, opts ...Option) ([]ActionInvocation, error) {
	cfg := defaultConfig()
	cfg.costLookahead = tryOptimal
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	historical := cfg.historical
	if historical == nil {
		historical = prob.Historical
	}
	if historical == nil {
		historical = NewDefaultHistorical()
	}

	prob.RefreshForDomain(dom)

	work := prob.Clone()
	entities := work.Entities(dom)
	work.GoalStack.RemoveSatisfiedGoals(work.WorldState, entities)

	var plan []ActionInvocation
	repeatCounts := map[string]int{}

	for _, priority := range work.GoalStack.Priorities() {
		for {
			var active []*worldstate.Goal
			for _, goal := range work.GoalStack.GoalsAt(priority) {
				if goal.IsInactive(now) {
					continue
				}
				satisfied, err := goal.IsSatisfied(work.WorldState, entities)
				if err != nil {
					return nil, err
				}
				if satisfied {
					continue
				}
				active = append(active, goal)
			}
			if len(active) == 0 {
				break
			}

			var best *candidate
			for _, goal := range active {
				cand, err := findFirstActionForAGoal(work, dom, goal, priority, historical, cfg, entities, now)
				if err != nil {
					return nil, err
				}
				if cand == nil {
					continue
				}
				if best == nil || isMoreImportantThan(*cand, *best, historical) {
					best = cand
				}
			}
			if best == nil {
				break // no action advances any remaining active goal at this priority
			}

			s := best.inv.String()
			repeatCounts[s]++
			if repeatCounts[s] > cfg.repeatLimit {
				break // termination guard, spec testable property 2
			}

			if err := applyActionEffects(work, dom, best.action, best.inv.Parameters, priority, entities); err != nil {
				return nil, err
			}
			historical.IncrementNbOfTimesActionDone(s)
			plan = append(plan, best.inv)

			work.GoalStack.RemoveSatisfiedGoals(work.WorldState, entities)
		}
	}

	return plan, nil
}

// PlanForEveryGoals is PlanForMoreImportantGoalPossible with cost
// lookahead controlled solely by WithCostLookahead (spec §6 first
// top-level planner entry point); the two share one implementation since
// spec §4.E's "goal selection loop" already drains every goal in the
// stack, not just the single most important one.
func PlanForEveryGoals(prob *domain.Problem, dom *domain.Domain, now time.Time, opts ...Option) ([]ActionInvocation, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return PlanForMoreImportantGoalPossible(prob, dom, cfg.costLookahead, now, opts...)
}

// candidateActionsForGoal walks backward from goal's predicate set through
// domain's producer caches: every action that can directly assert or
// retract a fact of one of those predicates, plus — recursively — every
// action or event reachable by also asking what could make a newly found
// action's own precondition/overall-condition true, and what could
// trigger a cascading event that in turn produces a wanted predicate
// (spec §4.E "actionsPredecessors" walk). This is what replaces grounding
// every CanBeUsedByPlanner action in the domain.
func candidateActionsForGoal(dom *domain.Domain, goal *worldstate.Goal) []*domain.Action {
	visited := map[string]bool{}
	seenAction := map[string]bool{}
	var out []*domain.Action

	queue := append([]string(nil), domain.PredicatesIn(goal.Objective)...)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if visited[p] {
			continue
		}
		visited[p] = true

		for _, a := range dom.ActionsProducing(p) {
			if !a.CanBeUsedByPlanner {
				continue
			}
			if !seenAction[a.ID] {
				seenAction[a.ID] = true
				out = append(out, a)
			}
			queue = append(queue, domain.PredicatesIn(a.Precondition)...)
			queue = append(queue, domain.PredicatesIn(a.OverAllCondition)...)
		}
		queue = append(queue, dom.EventTriggerPredicates(p)...)
	}
	return out
}

// findFirstActionForAGoal grounds every predecessor action candidateActionsForGoal
// names, keeps every grounding whose precondition currently holds (progress
// against goal's objective is scored for isMoreImportantThan, not used to
// filter — see the comment at afterSatisfied below), then returns the single
// best candidate per isMoreImportantThan (spec §4.E "First-action selection").
func findFirstActionForAGoal(prob *domain.Problem, dom *domain.Domain, goal *worldstate.Goal, priority int, historical domain.Historical, cfg config, entities ontology.Entities, now time.Time) (*candidate, error) {
	var best *candidate
	for _, action := range candidateActionsForGoal(dom, goal) {
		groundings := groundParameters(action.Parameters, entities)
		for _, params := range groundings {
			if action.Precondition != nil {
				cloned := action.Precondition.Clone(logic.CloneOptions{Substitution: params})
				ok, err := cloned.IsTrue(prob.WorldState, entities, logic.Bindings{}, false)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
			}

			sim := prob.Clone()
			if err := applyActionEffects(sim, dom, action, params, priority, entities); err != nil {
				return nil, err
			}

			afterSatisfied, _, err := countProgress(goal.Objective, sim.WorldState, entities, false)
			if err != nil {
				return nil, err
			}
			// afterSatisfied feeds isMoreImportantThan as a tie-break, not a
			// filter: candidateActionsForGoal already restricts this loop to
			// actions reachable backward from goal's own predicates, so an
			// action that doesn't itself move goal's conjuncts (an enabling
			// precondition-setter, or a necessary temporary regression such
			// as grabbing an object before it can be placed) still belongs
			// in the running, left for cost lookahead or a later planning
			// round to sort out.

			preferSatisfied, preferNotSatisfied := preferInContextStatistics(action, prob.WorldState)

			cand := candidate{
				inv:                ActionInvocation{ActionID: action.ID, Parameters: params, Goal: goal, Priority: priority},
				action:             action,
				progress:           afterSatisfied,
				preferSatisfied:    preferSatisfied,
				preferNotSatisfied: preferNotSatisfied,
			}
			if cfg.costLookahead {
				cost, err := lookaheadCost(sim, prob.GoalStack.AllGoals(), dom, now, cfg, historical)
				if err != nil {
					return nil, err
				}
				cand.cost = cost
			}

			if best == nil || isMoreImportantThan(cand, *best, historical) {
				best = &cand
			}
		}
	}
	return best, nil
}

// preferInContextStatistics counts how many of action's PreferInContext
// fact-optionals currently hold against ws versus not, honoring each
// optional's negation flag (spec §4.E tie-break rules 2/3, grounded on the
// original's _getPreferInContextStatistics). An action with no
// PreferInContext entries always returns 0, 0.
func preferInContextStatistics(action *domain.Action, ws *worldstate.WorldState) (satisfied, notSatisfied int) {
	for _, fo := range action.PreferInContext {
		if ws.IsOptionalFactSatisfied(fo) {
			satisfied++
		} else {
			notSatisfied++
		}
	}
	return satisfied, notSatisfied
}

// isMoreImportantThan orders two candidates (spec §4.E "Tie-breaking").
// Cost-lookahead dominance is consulted first and, when either candidate
// carries a successful PlanCost, decides the comparison outright — that is
// the "cost-based override" the spec names it for: a recursive replan
// outranks the raw progress count below it because it can see past a
// necessary temporary regression (e.g. grabbing an object costs the
// "currently not held" conjunct but is required before it can be placed)
// that a one-step progress count cannot. Only once cost lookahead is absent
// or tied does progress decide, followed by the spec's remaining rules:
// high-importance actions not yet used, prefer-in-context satisfied/
// not-satisfied counts, historical invocation counts, and finally
// lexicographic action id.
func isMoreImportantThan(a, b candidate, historical domain.Historical) bool {
	if a.cost.Success || b.cost.Success {
		if a.cost.dominates(b.cost) {
			return true
		}
		if b.cost.dominates(a.cost) {
			return false
		}
	}

	if a.progress != b.progress {
		return a.progress > b.progress
	}

	aHigh, bHigh := a.action.HighImportanceOfNotRepeatingIt, b.action.HighImportanceOfNotRepeatingIt
	if aHigh != bHigh {
		aCount := historicalCount(historical, a.inv)
		bCount := historicalCount(historical, b.inv)
		if aHigh && aCount == 0 {
			return true
		}
		if bHigh && bCount == 0 {
			return false
		}
	}

	if a.preferSatisfied != b.preferSatisfied {
		return a.preferSatisfied > b.preferSatisfied
	}
	if a.preferNotSatisfied != b.preferNotSatisfied {
		return a.preferNotSatisfied < b.preferNotSatisfied
	}

	aCount := historicalCount(historical, a.inv)
	bCount := historicalCount(historical, b.inv)
	if aCount != bCount {
		return aCount < bCount
	}

	return a.action.ID < b.action.ID
}

func historicalCount(historical domain.Historical, inv ActionInvocation) int {
	if historical == nil {
		return 0
	}
	return historical.NbOfTimesActionDone(inv.String())
}

// lookaheadCost computes a candidate's real PlanCost by recursively
// re-planning from the world-state that results from applying it: the
// number of goalsBefore (the goal stack as it stood before the candidate was
// applied; goals the candidate satisfies are already dropped from sim's own
// stack) that hold in that world-state feeds NbGoalsSatisfied, then
// PlanForMoreImportantGoalPossible is invoked twice more — once scoped to
// just the first goal left in sim's stack, giving CostForFirstGoal, and
// once over the whole remaining stack, giving TotalCost — both with
// tryOptimal forced false so the recursion is exactly one level deep (spec
// §4.E "Cost-based override": "_planForMoreImportantGoalPossible with
// lookahead disabled").
func lookaheadCost(sim *domain.Problem, goalsBefore []*worldstate.Goal, dom *domain.Domain, now time.Time, cfg config, historical domain.Historical) (PlanCost, error) {
	entities := sim.Entities(dom)

	var satisfiedGoals int
	for _, g := range goalsBefore {
		ok, err := g.IsSatisfied(sim.WorldState, entities)
		if err == nil && ok {
			satisfiedGoals++
		}
	}
	goals := sim.GoalStack.AllGoals()

	opts := []Option{WithActionRepeatLimit(cfg.repeatLimit), WithHistorical(historical)}

	totalPlan, err := PlanForMoreImportantGoalPossible(sim, dom, false, now, opts...)
	if err != nil {
		return PlanCost{}, err
	}

	firstGoalCost := float64(len(totalPlan))
	if len(goals) > 0 {
		firstGoalProb := sim.Clone()
		firstGoalProb.GoalStack = worldstate.NewGoalStack()
		firstGoalProb.GoalStack.AddGoal(0, goals[0])
		firstGoalPlan, err := PlanForMoreImportantGoalPossible(firstGoalProb, dom, false, now, opts...)
		if err != nil {
			return PlanCost{}, err
		}
		firstGoalCost = float64(len(firstGoalPlan))
	}

	return PlanCost{
		Success:          true,
		NbGoalsSatisfied: satisfiedGoals,
		CostForFirstGoal: firstGoalCost,
		TotalCost:        float64(len(totalPlan)),
	}, nil
}

// countProgress counts how many atomic sub-goals of c currently hold,
// decomposing only AND nodes (and Not-of-AND via De Morgan); every other
// node kind (OR, IMPLY, EQUALITY, comparisons, Exists, Forall, Fact leaves)
// is treated as a single atomic unit evaluated via IsTrue.
func countProgress(c *logic.Condition, ws logic.FactLookup, entities ontology.Entities, negated bool) (satisfied, total int, err error) {
	if c.Kind == logic.CondNot {
		return countProgress(c.Operand, ws, entities, !negated)
	}
	if op, left, right, ok := c.AsNode(); ok && op == logic.OpAnd {
		if !negated {
			ls, lt, err := countProgress(left, ws, entities, false)
			if err != nil {
				return 0, 0, err
			}
			rs, rt, err := countProgress(right, ws, entities, false)
			if err != nil {
				return 0, 0, err
			}
			return ls + rs, lt + rt, nil
		}
	}

	ok, err := c.IsTrue(ws, entities, logic.Bindings{}, negated)
	if err != nil {
		return 0, 0, err
	}
	if ok {
		return 1, 1, nil
	}
	return 0, 1, nil
}

// groundParameters returns every assignment of params to ground entities of
// their declared type (the cartesian product across parameters).
func groundParameters(params []ontology.Parameter, entities ontology.Entities) []map[string]ontology.Entity {
	if len(params) == 0 {
		return []map[string]ontology.Entity{{}}
	}
	rest := groundParameters(params[1:], entities)
	pool := entities.TypeToEntities(params[0].Type)
	out := make([]map[string]ontology.Entity, 0, len(pool)*len(rest))
	for _, e := range pool {
		for _, r := range rest {
			m := make(map[string]ontology.Entity, len(r)+1)
			m[params[0].Name] = e
			for k, v := range r {
				m[k] = v
			}
			out = append(out, m)
		}
	}
	return out
}

// applyActionEffects applies all three of action's effect phases (at-start,
// committed, potential) in order, then queues its GoalsToAdd and
// GoalsToAddInCurrentPriority (spec §3 "Action", effect bundle).
func applyActionEffects(prob *domain.Problem, dom *domain.Domain, action *domain.Action, params map[string]ontology.Entity, currentPriority int, entities ontology.Entities) error {
	events := dom.EventSets()
	for _, eff := range []*logic.Effect{
		action.Effects.WorldStateModificationAtStart,
		action.Effects.WorldStateModification,
		action.Effects.PotentialWorldStateModification,
	} {
		if eff == nil {
			continue
		}
		if err := prob.WorldState.ApplyEffect(params, eff, prob.GoalStack, events, entities); err != nil {
			return err
		}
	}
	for priority, conds := range action.Effects.GoalsToAdd {
		for _, cond := range conds {
			prob.GoalStack.AddGoal(priority, worldstate.NewGoal(cond.Clone(logic.CloneOptions{Substitution: params})))
		}
	}
	for _, cond := range action.Effects.GoalsToAddInCurrentPriority {
		prob.GoalStack.AddGoal(currentPriority, worldstate.NewGoal(cond.Clone(logic.CloneOptions{Substitution: params})))
	}
	return nil
}
