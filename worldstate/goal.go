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

package worldstate

import (
	"sort"
	"time"

	"github.com/joeycumines/go-ogp/logic"
	"github.com/joeycumines/go-ogp/ontology"
)

// Goal is a single planning objective within a GoalStack (spec §3 "Goal").
type Goal struct {
	Objective             *logic.Condition
	IsPersistentIfSkipped bool
	OneStepTowards        bool
	MaxTimeInactive       time.Duration
	GroupID               string
	LastActivityTime      time.Time
	// DeductionID is stored with the goal and copied by GoalStack.Clone; no planning
	// or goal-cleanup code reads it, so it does not restrict which actions
	// or events may satisfy the goal.
	DeductionID string
}

// NewGoal constructs a Goal with the given objective, defaulting every
// optional field.
func NewGoal(objective *logic.Condition) *Goal { return &Goal{Objective: objective} }

// IsSatisfied evaluates the goal's objective against the world.
func (g *Goal) IsSatisfied(ws *WorldState, entities ontology.Entities) (bool, error) {
	return g.Objective.IsTrue(ws, entities, logic.Bindings{}, false)
}

// IsInactive reports whether now has exceeded g.MaxTimeInactive since
// LastActivityTime (a zero MaxTimeInactive disables the check).
func (g *Goal) IsInactive(now time.Time) bool {
	if g.MaxTimeInactive <= 0 || g.LastActivityTime.IsZero() {
		return false
	}
	return now.Sub(g.LastActivityTime) > g.MaxTimeInactive
}

// GoalStack is an ordered map priority -> list-of-goals; within a priority
// list order is insertion order (spec §3 "GoalStack"). Priorities are
// iterated high to low.
type GoalStack struct {
	priorities         []int
	goals              map[int][]*Goal
	effectBetweenGoals *logic.Effect
}

// NewGoalStack constructs an empty GoalStack.
func NewGoalStack() *GoalStack {
	return &GoalStack{goals: make(map[int][]*Goal)}
}

// SetEffectBetweenGoals installs the effect applied whenever a
// higher-priority goal is dropped from the stack.
func (gs *GoalStack) SetEffectBetweenGoals(e *logic.Effect) { gs.effectBetweenGoals = e }

// AddGoal appends g to the list at priority, inserting the priority into
// the ordering if it is new.
func (gs *GoalStack) AddGoal(priority int, g *Goal) {
	if _, ok := gs.goals[priority]; !ok {
		gs.insertPriority(priority)
	}
	gs.goals[priority] = append(gs.goals[priority], g)
}

func (gs *GoalStack) insertPriority(p int) {
	i := sort.Search(len(gs.priorities), func(i int) bool { return gs.priorities[i] <= p })
	gs.priorities = append(gs.priorities, 0)
	copy(gs.priorities[i+1:], gs.priorities[i:])
	gs.priorities[i] = p
}

// Priorities returns the registered priorities, highest first.
func (gs *GoalStack) Priorities() []int { return append([]int(nil), gs.priorities...) }

// GoalsAt returns the (mutable-by-reference) goal list at priority.
func (gs *GoalStack) GoalsAt(priority int) []*Goal { return gs.goals[priority] }

// RemoveGoal removes the first occurrence of g from priority's list.
func (gs *GoalStack) RemoveGoal(priority int, g *Goal) {
	list := gs.goals[priority]
	for i, cand := range list {
		if cand == g {
			gs.goals[priority] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// RemoveSatisfiedGoals drops every goal (across all priorities) whose
// objective currently holds and which is not persistent-if-skipped,
// applying effectBetweenGoals once per such drop (spec §4.D step 1). It
// reports whether any goal was dropped.
func (gs *GoalStack) RemoveSatisfiedGoals(ws *WorldState, entities ontology.Entities) bool {
	changed := false
	for _, p := range gs.priorities {
		list := gs.goals[p]
		kept := list[:0:0]
		for _, g := range list {
			ok, err := g.IsSatisfied(ws, entities)
			if err == nil && ok && !g.IsPersistentIfSkipped {
				changed = true
				if gs.effectBetweenGoals != nil {
					_ = ws.Modify(gs.effectBetweenGoals, entities)
				}
				continue
			}
			kept = append(kept, g)
		}
		gs.goals[p] = kept
	}
	return changed
}

// Clone deep-copies gs (each Goal by value; Objective trees are shared,
// since they are never mutated in place) for planner lookahead.
func (gs *GoalStack) Clone() *GoalStack {
	clone := NewGoalStack()
	clone.priorities = append([]int(nil), gs.priorities...)
	clone.effectBetweenGoals = gs.effectBetweenGoals
	clone.goals = make(map[int][]*Goal, len(gs.goals))
	for p, list := range gs.goals {
		copied := make([]*Goal, len(list))
		for i, g := range list {
			gg := *g
			copied[i] = &gg
		}
		clone.goals[p] = copied
	}
	return clone
}

// AllGoals returns every goal across every priority, highest priority first.
func (gs *GoalStack) AllGoals() []*Goal {
	var out []*Goal
	for _, p := range gs.priorities {
		out = append(out, gs.goals[p]...)
	}
	return out
}
