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

package main

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/joeycumines/go-ogp/domain"
	"github.com/joeycumines/go-ogp/fact"
	"github.com/joeycumines/go-ogp/logic"
	"github.com/joeycumines/go-ogp/ontology"
	"github.com/joeycumines/go-ogp/worldstate"
)

func goalFromFact(f fact.Fact) *worldstate.Goal {
	return worldstate.NewGoal(logic.NewFact(fact.NewOptional(f)))
}

// fixture is the YAML shape a demo world/goal file is parsed into: a
// stand-in for the out-of-scope PDDL loader (spec.md §1 "Non-goals",
// SPEC_FULL.md §B).
type fixture struct {
	Objects   map[string]string `yaml:"objects"` // name -> type
	Locations []string          `yaml:"locations"`
	InitialAt map[string]string `yaml:"initial_at"` // robot -> location
	Goal      map[string]string `yaml:"goal"`        // robot -> desired location
}

// buildPickAndPlace turns fixture into an ontology, a Domain with a single
// "move" action, and a Problem seeded with the fixture's initial state and
// goals. Grounded on the teacher's pick-and-place example domain
// (examples/tcell-pick-and-place/logic/logic.go), generalized from a single
// hard-coded actor/grid to an arbitrary set of robots and named locations
// read from the fixture.
func buildPickAndPlace(raw []byte) (*domain.Domain, *domain.Problem, error) {
	var fx fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, nil, fmt.Errorf(`ogp-demo: parsing fixture: %w`, err)
	}

	ont := ontology.New()
	robotType, err := ont.AddType(`robot`, nil)
	if err != nil {
		return nil, nil, err
	}
	locationType, err := ont.AddType(`location`, nil)
	if err != nil {
		return nil, nil, err
	}

	at := &ontology.Predicate{
		Name:       `at`,
		Parameters: []ontology.Parameter{{Name: `?r`, Type: robotType}},
		ValueType:  locationType,
	}
	if err := ont.AddPredicate(at); err != nil {
		return nil, nil, err
	}

	for _, loc := range fx.Locations {
		if err := ont.Constants.Add(ontology.Entity{Value: loc, Type: locationType}); err != nil {
			return nil, nil, err
		}
	}
	for name, typeName := range fx.Objects {
		if typeName != `robot` {
			continue
		}
		if err := ont.Constants.Add(ontology.Entity{Value: name, Type: robotType}); err != nil {
			return nil, nil, err
		}
	}

	moveParam := ontology.Parameter{Name: `?r`, Type: robotType}
	destParam := ontology.Parameter{Name: `?dest`, Type: locationType}
	destValue := ontology.Entity{Value: `?dest`, Type: locationType}
	atDest, err := fact.New(at, []ontology.Entity{{Value: `?r`, Type: robotType}}, &destValue)
	if err != nil {
		return nil, nil, err
	}

	// move has no precondition: any robot can move from wherever it is.
	move := &domain.Action{
		ID:                 `move`,
		Parameters:         []ontology.Parameter{moveParam, destParam},
		CanBeUsedByPlanner: true,
		Effects: domain.EffectBundle{
			WorldStateModification: logic.NewEffectFact(fact.NewOptional(atDest)),
		},
	}

	d := domain.New(ont)
	d.AddAction(move)

	prob := domain.NewProblem(d)
	entities := prob.Entities(d)
	for robotName, locName := range fx.InitialAt {
		r, ok := entities.ByName(robotName)
		if !ok {
			return nil, nil, fmt.Errorf(`ogp-demo: unknown robot %q in initial_at`, robotName)
		}
		l, ok := entities.ByName(locName)
		if !ok {
			return nil, nil, fmt.Errorf(`ogp-demo: unknown location %q in initial_at`, locName)
		}
		f, err := fact.New(at, []ontology.Entity{r}, &l)
		if err != nil {
			return nil, nil, err
		}
		if err := prob.WorldState.AddFact(f, prob.GoalStack, d.EventSets(), entities); err != nil {
			return nil, nil, err
		}
	}

	for robotName, locName := range fx.Goal {
		r, ok := entities.ByName(robotName)
		if !ok {
			return nil, nil, fmt.Errorf(`ogp-demo: unknown robot %q in goal`, robotName)
		}
		l, ok := entities.ByName(locName)
		if !ok {
			return nil, nil, fmt.Errorf(`ogp-demo: unknown location %q in goal`, locName)
		}
		goalFact, err := fact.New(at, []ontology.Entity{r}, &l)
		if err != nil {
			return nil, nil, err
		}
		prob.GoalStack.AddGoal(10, goalFromFact(goalFact))
	}

	return d, prob, nil
}
