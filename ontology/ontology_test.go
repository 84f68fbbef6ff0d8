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

package ontology

import (
	"errors"
	"testing"
)

func TestTypeIsA(t *testing.T) {
	robot := &Type{Name: `robot`}
	humanoid := &Type{Name: `humanoid`, Parent: robot}
	robot.Children = append(robot.Children, humanoid)

	if !humanoid.IsA(robot) {
		t.Fatal(`expected humanoid isA robot`)
	}
	if !humanoid.IsA(humanoid) {
		t.Fatal(`expected a type isA itself`)
	}
	if robot.IsA(humanoid) {
		t.Fatal(`did not expect robot isA humanoid`)
	}
}

func TestEntityStoreTypeToEntitiesIncludesSubtypes(t *testing.T) {
	robot := &Type{Name: `robot`}
	humanoid := &Type{Name: `humanoid`, Parent: robot}
	robot.Children = append(robot.Children, humanoid)

	store := NewEntityStore()
	if err := store.Add(Entity{Value: `r2d2`, Type: robot}); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(Entity{Value: `c3po`, Type: humanoid}); err != nil {
		t.Fatal(err)
	}

	got := store.TypeToEntities(robot)
	if len(got) != 2 {
		t.Fatalf(`expected 2 entities under robot, got %d`, len(got))
	}

	got = store.TypeToEntities(humanoid)
	if len(got) != 1 || got[0].Value != `c3po` {
		t.Fatalf(`expected only c3po under humanoid, got %v`, got)
	}
}

func TestEntityStoreAddRejectsNonGroundAndDuplicate(t *testing.T) {
	store := NewEntityStore()
	robot := &Type{Name: `robot`}
	if err := store.Add(Entity{Value: `?p`, Type: robot}); !errors.Is(err, ErrUnknownName) {
		t.Fatalf(`expected ErrUnknownName for a parameter, got %v`, err)
	}
	if err := store.Add(Entity{Value: `r2d2`, Type: robot}); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(Entity{Value: `r2d2`, Type: robot}); err == nil {
		t.Fatal(`expected an error re-adding the same entity`)
	}
}

func TestEntityMatchesWildcardAndParameter(t *testing.T) {
	robot := &Type{Name: `robot`}
	r2d2 := Entity{Value: `r2d2`, Type: robot}
	if !AnyEntity(robot).Matches(r2d2) {
		t.Fatal(`expected the wildcard to match any ground entity`)
	}
	if !(Entity{Value: `?p`, Type: robot}).Matches(r2d2) {
		t.Fatal(`expected a parameter to match any ground entity`)
	}
	if (Entity{Value: `c3po`, Type: robot}).Matches(r2d2) {
		t.Fatal(`did not expect a mismatched ground value to match`)
	}
}

func TestPredicateIsFluentAndPunctual(t *testing.T) {
	at := &Predicate{Name: `at`, Parameters: []Parameter{{Name: `?r`, Type: &Type{Name: `robot`}}}, ValueType: &Type{Name: `location`}}
	if !at.IsFluent() {
		t.Fatal(`expected at to be a fluent`)
	}
	moved := &Predicate{Name: PunctualPrefix + `moved`}
	if !moved.IsPunctual() {
		t.Fatal(`expected the punctual prefix to be detected`)
	}
	if at.IsPunctual() {
		t.Fatal(`did not expect at to be punctual`)
	}
}

func TestOntologyPredicateLookupFallsBackToDerived(t *testing.T) {
	o := New()
	regular := &Predicate{Name: `pred_a`}
	derived := &Predicate{Name: `pred_b`}
	if err := o.AddPredicate(regular); err != nil {
		t.Fatal(err)
	}
	if err := o.AddDerivedPredicate(derived); err != nil {
		t.Fatal(err)
	}

	if _, err := o.NameToPredicate(`pred_a`); err != nil {
		t.Fatal(err)
	}
	if _, err := o.NameToPredicate(`pred_b`); err != nil {
		t.Fatal(err)
	}
	if !o.IsDerivedPredicate(`pred_b`) {
		t.Fatal(`expected pred_b to be reported as derived`)
	}
	if _, err := o.NameToPredicate(`pred_c`); !errors.Is(err, ErrUnknownName) {
		t.Fatalf(`expected ErrUnknownName, got %v`, err)
	}
}
