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

package planner

import (
	"testing"
	"time"

	"github.com/joeycumines/go-ogp/domain"
	"github.com/joeycumines/go-ogp/fact"
	"github.com/joeycumines/go-ogp/logic"
	"github.com/joeycumines/go-ogp/ontology"
	"github.com/joeycumines/go-ogp/worldstate"
)

// TestScenario_S1_SimplestPlan: predicates pred_a(e), pred_b; action1
// pre: pred_a(?p), eff: pred_b; world {pred_a(toto)}; goal pred_b. Expect
// plan [action1(?p->toto)] (spec §8 S1).
func TestScenario_S1_SimplestPlan(t *testing.T) {
	entityType := &ontology.Type{Name: `entity`}
	predA := &ontology.Predicate{Name: `pred_a`, Parameters: []ontology.Parameter{{Name: `?p`, Type: entityType}}}
	predB := &ontology.Predicate{Name: `pred_b`}

	ont := ontology.New()
	toto := ontology.Entity{Value: `toto`, Type: entityType}
	if err := ont.Constants.Add(toto); err != nil {
		t.Fatal(err)
	}

	action1 := &domain.Action{
		ID:                 `action1`,
		Parameters:         []ontology.Parameter{{Name: `?p`, Type: entityType}},
		CanBeUsedByPlanner: true,
		Precondition:       logic.NewFact(fact.NewOptional(mustFact(t, predA, []ontology.Entity{{Value: `?p`, Type: entityType}}, nil))),
		Effects: domain.EffectBundle{
			WorldStateModification: logic.NewEffectFact(fact.NewOptional(mustFact(t, predB, nil, nil))),
		},
	}

	dom := domain.New(ont)
	dom.AddAction(action1)

	prob := domain.NewProblem(dom)
	factA := mustFact(t, predA, []ontology.Entity{toto}, nil)
	if err := prob.WorldState.AddFact(factA, prob.GoalStack, dom.EventSets(), prob.Entities(dom)); err != nil {
		t.Fatal(err)
	}
	prob.GoalStack.AddGoal(10, newGoal(t, predB, nil, nil))

	plan, err := PlanForEveryGoals(prob, dom, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 1 || plan[0].ActionID != `action1` || plan[0].Parameters[`?p`].Value != `toto` {
		t.Fatalf(`unexpected plan: %v`, plan)
	}
}

// TestScenario_S2_TypeMismatch: same domain, but the only declared entity
// (titi) has a type incompatible with action1's parameter, so no pred_a
// fact can even be asserted against it. Expect an empty plan (spec §8 S2).
func TestScenario_S2_TypeMismatch(t *testing.T) {
	entityType := &ontology.Type{Name: `entity`}
	otherType := &ontology.Type{Name: `other`}
	predA := &ontology.Predicate{Name: `pred_a`, Parameters: []ontology.Parameter{{Name: `?p`, Type: entityType}}}
	predB := &ontology.Predicate{Name: `pred_b`}

	ont := ontology.New()
	titi := ontology.Entity{Value: `titi`, Type: otherType}
	if err := ont.Constants.Add(titi); err != nil {
		t.Fatal(err)
	}

	action1 := &domain.Action{
		ID:                 `action1`,
		Parameters:         []ontology.Parameter{{Name: `?p`, Type: entityType}},
		CanBeUsedByPlanner: true,
		Precondition:       logic.NewFact(fact.NewOptional(mustFact(t, predA, []ontology.Entity{{Value: `?p`, Type: entityType}}, nil))),
		Effects: domain.EffectBundle{
			WorldStateModification: logic.NewEffectFact(fact.NewOptional(mustFact(t, predB, nil, nil))),
		},
	}

	dom := domain.New(ont)
	dom.AddAction(action1)
	prob := domain.NewProblem(dom)
	prob.GoalStack.AddGoal(10, newGoal(t, predB, nil, nil))

	// No pred_a fact can exist: titi's type doesn't isA entityType, so
	// entityType's entity pool is empty and action1 has zero groundings
	// whose precondition can ever hold.
	plan, err := PlanForEveryGoals(prob, dom, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 0 {
		t.Fatalf(`expected empty plan, got %v`, plan)
	}
}

// TestScenario_S3_EventCascade: a quantified-event increment loop over
// numeric fluents. numberOfQuestion starts at 0, maxNumberOfQuestions is a
// fixed fluent at 3; action ask_q increases numberOfQuestion by one each
// time; an event whose precondition is numberOfQuestion = maxNumberOfQuestions
// asserts all_questions_asked(); action say_bilan, preconditioned on
// all_questions_asked(), asserts bilan_given(). The goal is bilan_given(),
// reachable only after three ask_q applications trigger the cascade and
// unblock the fourth action. Expect a plan of length 4 (spec §8 S3).
func TestScenario_S3_EventCascade(t *testing.T) {
	numberOfQuestion := &ontology.Predicate{Name: `number_of_question`, ValueType: ontology.NumberType}
	maxNumberOfQuestions := &ontology.Predicate{Name: `max_number_of_questions`, ValueType: ontology.NumberType}
	allQuestionsAsked := &ontology.Predicate{Name: `all_questions_asked`}
	bilanGiven := &ontology.Predicate{Name: `bilan_given`}

	ont := ontology.New()

	zero := ontology.Entity{Value: `0`, Type: ontology.NumberType}
	three := ontology.Entity{Value: `3`, Type: ontology.NumberType}

	// Fluent leaves used only to name which fluent a condition/effect reads
	// or writes (never read for their own value) still need a well-typed
	// placeholder value to pass fact.New's validation.
	placeholder := ontology.Entity{Value: `0`, Type: ontology.NumberType}

	askQ := &domain.Action{
		ID:                 `ask_q`,
		CanBeUsedByPlanner: true,
		Effects: domain.EffectBundle{
			WorldStateModification: logic.Increase(
				logic.NewEffectFact(fact.NewOptional(mustFact(t, numberOfQuestion, nil, &placeholder))),
				logic.NewEffectNumber(1),
			),
		},
	}
	sayBilan := &domain.Action{
		ID:                 `say_bilan`,
		CanBeUsedByPlanner: true,
		Precondition:       logic.NewFact(fact.NewOptional(mustFact(t, allQuestionsAsked, nil, nil))),
		Effects: domain.EffectBundle{
			WorldStateModification: logic.NewEffectFact(fact.NewOptional(mustFact(t, bilanGiven, nil, nil))),
		},
	}

	event := worldstate.Event{
		ID: `ev_all_questions_asked`,
		Precondition: logic.Equality(
			logic.NewFact(fact.NewOptional(mustFact(t, numberOfQuestion, nil, &placeholder))),
			logic.NewFact(fact.NewOptional(mustFact(t, maxNumberOfQuestions, nil, &placeholder))),
		),
		FactsToModify: logic.NewEffectFact(fact.NewOptional(mustFact(t, allQuestionsAsked, nil, nil))),
	}

	dom := domain.New(ont)
	dom.AddAction(askQ)
	dom.AddAction(sayBilan)
	dom.AddSetOfEvents(worldstate.SetOfEvents{ID: `set1`, Events: []worldstate.Event{event}})

	prob := domain.NewProblem(dom)
	entities := prob.Entities(dom)
	if err := prob.WorldState.AddFact(mustFact(t, numberOfQuestion, nil, &zero), prob.GoalStack, dom.EventSets(), entities); err != nil {
		t.Fatal(err)
	}
	if err := prob.WorldState.AddFact(mustFact(t, maxNumberOfQuestions, nil, &three), prob.GoalStack, dom.EventSets(), entities); err != nil {
		t.Fatal(err)
	}
	prob.GoalStack.AddGoal(10, newGoal(t, bilanGiven, nil, nil))

	plan, err := PlanForEveryGoals(prob, dom, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 4 {
		t.Fatalf(`expected a 4-action plan, got %v`, plan)
	}
	for _, inv := range plan[:3] {
		if inv.ActionID != `ask_q` {
			t.Fatalf(`expected the first three steps to be ask_q, got %v`, plan)
		}
	}
	if plan[3].ActionID != `say_bilan` {
		t.Fatalf(`expected the fourth step to be say_bilan, got %v`, plan)
	}
}

// TestScenario_S4_CostLookahead: two equal-priority goals competing for the
// same turn. goal1 is a 3-conjunct chain (a, then b once a holds, then c
// once a and b hold); goal2 is a single fact (queued) satisfied outright by
// one action (oneShot). setA advances goal1 by exactly one conjunct, so its
// raw progress count (1) ties oneShot's (1) even though oneShot finishes a
// whole goal and setA does not — a flat progress count can't tell those
// apart, only a real recursive-replan cost model (PlanCost.NbGoalsSatisfied)
// can. Expect oneShot first (cost lookahead sees it satisfies a goal
// outright), then goal1's own strictly precondition-ordered chain setA,
// setB, setC, each the only viable next step once its predecessor holds
// (spec §8 S4).
func TestScenario_S4_CostLookahead(t *testing.T) {
	aPred := &ontology.Predicate{Name: `a`}
	bPred := &ontology.Predicate{Name: `b`}
	cPred := &ontology.Predicate{Name: `c`}
	queued := &ontology.Predicate{Name: `queued`}

	ont := ontology.New()

	oneShot := &domain.Action{
		ID:                 `oneShot`,
		CanBeUsedByPlanner: true,
		Effects: domain.EffectBundle{
			WorldStateModification: logic.NewEffectFact(fact.NewOptional(mustFact(t, queued, nil, nil))),
		},
	}
	setA := &domain.Action{
		ID:                 `setA`,
		CanBeUsedByPlanner: true,
		Effects: domain.EffectBundle{
			WorldStateModification: logic.NewEffectFact(fact.NewOptional(mustFact(t, aPred, nil, nil))),
		},
	}
	setB := &domain.Action{
		ID:                 `setB`,
		Precondition:       logic.NewFact(fact.NewOptional(mustFact(t, aPred, nil, nil))),
		CanBeUsedByPlanner: true,
		Effects: domain.EffectBundle{
			WorldStateModification: logic.NewEffectFact(fact.NewOptional(mustFact(t, bPred, nil, nil))),
		},
	}
	setC := &domain.Action{
		ID: `setC`,
		Precondition: logic.And(
			logic.NewFact(fact.NewOptional(mustFact(t, aPred, nil, nil))),
			logic.NewFact(fact.NewOptional(mustFact(t, bPred, nil, nil))),
		),
		CanBeUsedByPlanner: true,
		Effects: domain.EffectBundle{
			WorldStateModification: logic.NewEffectFact(fact.NewOptional(mustFact(t, cPred, nil, nil))),
		},
	}

	dom := domain.New(ont)
	dom.AddAction(oneShot)
	dom.AddAction(setA)
	dom.AddAction(setB)
	dom.AddAction(setC)

	prob := domain.NewProblem(dom)

	goal1 := worldstate.NewGoal(logic.And(
		logic.And(
			logic.NewFact(fact.NewOptional(mustFact(t, aPred, nil, nil))),
			logic.NewFact(fact.NewOptional(mustFact(t, bPred, nil, nil))),
		),
		logic.NewFact(fact.NewOptional(mustFact(t, cPred, nil, nil))),
	))
	goal2 := newGoal(t, queued, nil, nil)
	prob.GoalStack.AddGoal(10, goal1)
	prob.GoalStack.AddGoal(10, goal2)

	plan, err := PlanForEveryGoals(prob, dom, time.Time{}, WithCostLookahead(true))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{`oneShot`, `setA`, `setB`, `setC`}
	if len(plan) != len(want) {
		t.Fatalf(`expected a %d-action plan, got %v`, len(want), plan)
	}
	for i, id := range want {
		if plan[i].ActionID != id {
			t.Fatalf(`step %d: expected %s, got %v`, i, id, plan)
		}
	}
}

// TestScenario_S5_ExistentialGoal: the goal is satisfied once self is at
// whatever location pen currently occupies, an existential over location
// rather than a literal value; action goto(?loc) is the only thing that
// can move self. World: at(pen)=livingroom. Expect
// [goto(?loc->livingroom)] (spec §8 S5).
func TestScenario_S5_ExistentialGoal(t *testing.T) {
	locationType := &ontology.Type{Name: `location`}
	entityType := &ontology.Type{Name: `thing`}

	at := &ontology.Predicate{Name: `at`, Parameters: []ontology.Parameter{{Name: `?who`, Type: entityType}}, ValueType: locationType}

	ont := ontology.New()
	livingroom := ontology.Entity{Value: `livingroom`, Type: locationType}
	if err := ont.Constants.Add(livingroom); err != nil {
		t.Fatal(err)
	}
	self := ontology.Entity{Value: `self`, Type: entityType}
	pen := ontology.Entity{Value: `pen`, Type: entityType}
	for _, e := range []ontology.Entity{self, pen} {
		if err := ont.Constants.Add(e); err != nil {
			t.Fatal(err)
		}
	}

	locParam := ontology.Parameter{Name: `?l`, Type: locationType}
	goTo := &domain.Action{
		ID:                 `goto`,
		Parameters:         []ontology.Parameter{{Name: `?loc`, Type: locationType}},
		CanBeUsedByPlanner: true,
		Effects: domain.EffectBundle{
			WorldStateModification: logic.NewEffectFact(fact.NewOptional(mustFact(t, at, []ontology.Entity{self}, &ontology.Entity{Value: `?loc`, Type: locationType}))),
		},
	}

	dom := domain.New(ont)
	dom.AddAction(goTo)

	prob := domain.NewProblem(dom)
	entities := prob.Entities(dom)
	if err := prob.WorldState.AddFact(mustFact(t, at, []ontology.Entity{pen}, &livingroom), prob.GoalStack, dom.EventSets(), entities); err != nil {
		t.Fatal(err)
	}

	goal := worldstate.NewGoal(logic.Exists(locParam, logic.Equality(
		logic.NewFact(fact.NewOptional(mustFact(t, at, []ontology.Entity{self}, &ontology.Entity{Value: `?l`, Type: locationType}))),
		logic.NewFact(fact.NewOptional(mustFact(t, at, []ontology.Entity{pen}, &ontology.Entity{Value: `?l`, Type: locationType}))),
	)))
	prob.GoalStack.AddGoal(10, goal)

	plan, err := PlanForEveryGoals(prob, dom, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 1 || plan[0].ActionID != `goto` || plan[0].Parameters[`?loc`].Value != `livingroom` {
		t.Fatalf(`unexpected plan: %v`, plan)
	}
}

// TestScenario_S6_FluentUndefinition: world {f(v)=r1}, goal f(v)=undefined,
// action "undefine" asserts f(v)=undefined directly. Expect exactly one
// action (spec §8 S6).
func TestScenario_S6_FluentUndefinition(t *testing.T) {
	valueType := &ontology.Type{Name: `value`}
	vType := &ontology.Type{Name: `v`}
	f := &ontology.Predicate{Name: `f`, Parameters: []ontology.Parameter{{Name: `?x`, Type: vType}}, ValueType: valueType}

	ont := ontology.New()
	v := ontology.Entity{Value: `v`, Type: vType}
	if err := ont.Constants.Add(v); err != nil {
		t.Fatal(err)
	}
	undefined := ontology.Entity{Value: `undefined`, Type: valueType}
	r1 := ontology.Entity{Value: `r1`, Type: valueType}

	assignAction := &domain.Action{
		ID:                 `undefine`,
		CanBeUsedByPlanner: true,
		Effects: domain.EffectBundle{
			WorldStateModification: logic.NewEffectFact(fact.NewOptional(mustFact(t, f, []ontology.Entity{v}, &undefined))),
		},
	}

	dom := domain.New(ont)
	dom.AddAction(assignAction)
	prob := domain.NewProblem(dom)

	initial := mustFact(t, f, []ontology.Entity{v}, &r1)
	if err := prob.WorldState.AddFact(initial, prob.GoalStack, dom.EventSets(), prob.Entities(dom)); err != nil {
		t.Fatal(err)
	}

	prob.GoalStack.AddGoal(10, newGoal(t, f, []ontology.Entity{v}, &undefined))

	plan, err := PlanForEveryGoals(prob, dom, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 1 {
		t.Fatalf(`expected exactly one action, got %v`, plan)
	}
}

// TestPlanForEveryGoals_UnreachableGoalLeftUnsatisfied: a goal with no
// action that can ever advance it is simply left unsatisfied rather than
// producing an error (spec §4.E "no action advances this goal").
func TestPlanForEveryGoals_UnreachableGoalLeftUnsatisfied(t *testing.T) {
	predB := &ontology.Predicate{Name: `pred_b`}
	ont := ontology.New()
	dom := domain.New(ont)
	prob := domain.NewProblem(dom)
	prob.GoalStack.AddGoal(10, newGoal(t, predB, nil, nil))

	plan, err := PlanForEveryGoals(prob, dom, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 0 {
		t.Fatalf(`expected empty plan, got %v`, plan)
	}
}

func mustFact(t *testing.T, pred *ontology.Predicate, args []ontology.Entity, value *ontology.Entity) fact.Fact {
	t.Helper()
	f, err := fact.New(pred, args, value)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func newGoal(t *testing.T, pred *ontology.Predicate, args []ontology.Entity, value *ontology.Entity) *worldstate.Goal {
	t.Helper()
	f := mustFact(t, pred, args, value)
	return worldstate.NewGoal(logic.NewFact(fact.NewOptional(f)))
}
