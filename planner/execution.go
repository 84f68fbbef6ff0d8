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
	"fmt"
	"time"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/joeycumines/go-ogp/domain"
	"github.com/joeycumines/go-ogp/logic"
	"github.com/joeycumines/go-ogp/worldstate"
)

// ActionsToDoInParallel is the prefix of a plan whose invocations can be
// started simultaneously: the first chosen invocation, plus every
// following invocation whose own action precondition already holds in the
// (unmodified) current world-state (spec §6 "actionsToDoInParallelNow").
type ActionsToDoInParallel struct {
	Invocations []ActionInvocation
}

// Node builds a bt.Node ticking every invocation's underlying
// domain.Action.Tick once per call, succeeding only once every invocation
// has reported bt.Success (spec §A.1 "Execution model"). Invocations whose
// action carries no Tick are treated as already done.
func (p ActionsToDoInParallel) Node(dom *domain.Domain) bt.Node {
	var children []bt.Node
	for _, inv := range p.Invocations {
		if a := dom.Action(inv.ActionID); a != nil {
			if n := a.Node(); n != nil {
				children = append(children, n)
			}
		}
	}
	tick := func(nodes []bt.Node) (bt.Status, error) {
		allSuccess := true
		for _, n := range nodes {
			childTick, childChildren := n()
			status, err := childTick(childChildren)
			if err != nil {
				return bt.Failure, err
			}
			if status == bt.Failure {
				return bt.Failure, nil
			}
			if status != bt.Success {
				allSuccess = false
			}
		}
		if allSuccess {
			return bt.Success, nil
		}
		return bt.Running, nil
	}
	return bt.New(tick, children...)
}

// ActionsToDoInParallelNow runs PlanForEveryGoals and groups its head: the
// first invocation, plus any following invocation immediately executable
// against prob's current (unmodified) world-state (spec §6).
func ActionsToDoInParallelNow(prob *domain.Problem, dom *domain.Domain, now time.Time, opts ...Option) (ActionsToDoInParallel, error) {
	plan, err := PlanForEveryGoals(prob, dom, now, opts...)
	if err != nil {
		return ActionsToDoInParallel{}, err
	}
	if len(plan) == 0 {
		return ActionsToDoInParallel{}, nil
	}

	entities := prob.Entities(dom)
	group := []ActionInvocation{plan[0]}
	for _, inv := range plan[1:] {
		action := dom.Action(inv.ActionID)
		if action == nil {
			break
		}
		if action.Precondition != nil {
			cloned := action.Precondition.Clone(logic.CloneOptions{Substitution: inv.Parameters})
			ok, err := cloned.IsTrue(prob.WorldState, entities, logic.Bindings{}, false)
			if err != nil {
				return ActionsToDoInParallel{}, err
			}
			if !ok {
				break
			}
		}
		group = append(group, inv)
	}
	return ActionsToDoInParallel{Invocations: group}, nil
}

// NotifyActionStarted applies inv's action's at-start effect to prob's live
// World-State (spec §6 "notifyActionStarted").
func NotifyActionStarted(prob *domain.Problem, dom *domain.Domain, inv ActionInvocation, now time.Time) error {
	action := dom.Action(inv.ActionID)
	if action == nil {
		return fmt.Errorf(`ogp: unknown action %q`, inv.ActionID)
	}
	if action.Effects.WorldStateModificationAtStart == nil {
		return nil
	}
	entities := prob.Entities(dom)
	return prob.WorldState.ApplyEffect(inv.Parameters, action.Effects.WorldStateModificationAtStart, prob.GoalStack, dom.EventSets(), entities)
}

// NotifyActionDone applies inv's action's end-of-execution effects
// (committed and potential) to prob's live World-State, queues its goals,
// and records the invocation with historical. Returns false if the
// action's OverAllCondition no longer holds (spec §6
// "notifyActionDone" / glossary "Over-all condition").
func NotifyActionDone(prob *domain.Problem, dom *domain.Domain, inv ActionInvocation, historical domain.Historical, now time.Time) (bool, error) {
	action := dom.Action(inv.ActionID)
	if action == nil {
		return false, fmt.Errorf(`ogp: unknown action %q`, inv.ActionID)
	}
	entities := prob.Entities(dom)

	if action.OverAllCondition != nil {
		cloned := action.OverAllCondition.Clone(logic.CloneOptions{Substitution: inv.Parameters})
		ok, err := cloned.IsTrue(prob.WorldState, entities, logic.Bindings{}, false)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	events := dom.EventSets()
	for _, eff := range []*logic.Effect{action.Effects.WorldStateModification, action.Effects.PotentialWorldStateModification} {
		if eff == nil {
			continue
		}
		if err := prob.WorldState.ApplyEffect(inv.Parameters, eff, prob.GoalStack, events, entities); err != nil {
			return false, err
		}
	}
	for priority, conds := range action.Effects.GoalsToAdd {
		for _, cond := range conds {
			prob.GoalStack.AddGoal(priority, worldstate.NewGoal(cond.Clone(logic.CloneOptions{Substitution: inv.Parameters})))
		}
	}
	for _, cond := range action.Effects.GoalsToAddInCurrentPriority {
		prob.GoalStack.AddGoal(inv.Priority, worldstate.NewGoal(cond.Clone(logic.CloneOptions{Substitution: inv.Parameters})))
	}

	if historical != nil {
		historical.IncrementNbOfTimesActionDone(inv.String())
	}
	return true, nil
}
