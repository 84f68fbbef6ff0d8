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
	"github.com/joeycumines/go-ogp/fact"
	"github.com/joeycumines/go-ogp/logic"
	"github.com/joeycumines/go-ogp/worldstate"
)

// ProblemModification bundles a batch of world/goal changes applied
// atomically: facts to assert, facts to retract and goals to queue per
// priority. Adopted from the original C++ implementation's
// ProblemModification struct, which callers use instead of sequencing
// individual AddFact/RemoveFact/AddGoal calls one at a time.
type ProblemModification struct {
	FactsToAdd    []fact.Fact
	FactsToRemove []fact.Fact
	GoalsToAdd    map[int][]*logic.Condition
}

// ApplyProblemModification applies mod to p's WorldState and GoalStack as a
// single logical step: every fact removal and addition runs through the
// normal cascading mutation path (goal cleanup, event cascade, observer
// callbacks already folded into AddFacts/RemoveFacts), then the new goals
// are queued.
func (p *Problem) ApplyProblemModification(d *Domain, mod ProblemModification) error {
	entities := p.Entities(d)
	events := d.EventSets()

	if len(mod.FactsToRemove) > 0 {
		if err := p.WorldState.RemoveFacts(mod.FactsToRemove, p.GoalStack, events, entities); err != nil {
			return err
		}
	}
	if len(mod.FactsToAdd) > 0 {
		if err := p.WorldState.AddFacts(mod.FactsToAdd, p.GoalStack, events, entities); err != nil {
			return err
		}
	}
	for priority, conds := range mod.GoalsToAdd {
		for _, cond := range conds {
			p.GoalStack.AddGoal(priority, worldstate.NewGoal(cond))
		}
	}
	return nil
}
