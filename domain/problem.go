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
	"github.com/joeycumines/go-ogp/ontology"
	"github.com/joeycumines/go-ogp/worldstate"
)

// Problem is the mutable bundle a planner acts on: a World-State, a
// GoalStack and a problem-local object pool, referencing (never owning) a
// Domain (spec §3 "Problem"). Problem exclusively owns its WorldState and
// GoalStack; Domain exclusively owns its actions/events/timeless facts.
type Problem struct {
	WorldState *worldstate.WorldState
	GoalStack  *worldstate.GoalStack
	Objects    *ontology.EntityStore
	Historical Historical

	// domainRevision is the Domain.Revision() observed when this Problem
	// was last refreshed against it (spec testable property 4).
	domainRevision string
}

// NewProblem constructs a Problem from d: a fresh WorldState seeded with
// d's timeless facts, an empty GoalStack and an empty object pool.
func NewProblem(d *Domain) *Problem {
	ws := worldstate.New()
	for _, f := range d.TimelessFacts() {
		ws.AddTimelessFact(f)
	}
	return &Problem{
		WorldState:     ws,
		GoalStack:      worldstate.NewGoalStack(),
		Objects:        ontology.NewEntityStore(),
		domainRevision: d.Revision(),
	}
}

// Entities returns the constants ∪ objects union this Problem resolves
// parameters and Forall/Exists pools against, given d.
func (p *Problem) Entities(d *Domain) ontology.Entities {
	return ontology.Entities{Constants: d.Ontology.Constants, Objects: p.Objects}
}

// RefreshForDomain reports whether d's cache Revision changed since this
// Problem was last checked, recording the new revision either way (spec
// §4.E "Refresh goal stack if Domain UUID changed").
func (p *Problem) RefreshForDomain(d *Domain) bool {
	changed := p.domainRevision != d.Revision()
	p.domainRevision = d.Revision()
	return changed
}

// Clone deep-copies the WorldState and GoalStack (Objects is shared: the
// planner never adds/removes objects during a search, only facts and
// goals) for lookahead costing (spec §5 "Clone-on-write is mandatory").
func (p *Problem) Clone() *Problem {
	return &Problem{
		WorldState:     p.WorldState.Clone(),
		GoalStack:      p.GoalStack.Clone(),
		Objects:        p.Objects,
		Historical:     p.Historical,
		domainRevision: p.domainRevision,
	}
}
