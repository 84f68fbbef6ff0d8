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

// Package ontology implements component A of the planning core: named
// types organised in a subtype DAG, typed predicates (relations and
// fluents) and the ground entity pool they're instantiated over.
package ontology

import "fmt"

// Ontology is the registry of named types, predicates (regular and
// derived) and domain constants.
type Ontology struct {
	types            map[string]*Type
	predicates       map[string]*Predicate
	derivedPredicates map[string]*Predicate
	Constants        *EntityStore
}

// New constructs an Ontology pre-seeded with the built-in number type.
func New() *Ontology {
	o := &Ontology{
		types:             make(map[string]*Type),
		predicates:        make(map[string]*Predicate),
		derivedPredicates: make(map[string]*Predicate),
		Constants:         NewEntityStore(),
	}
	o.types[NumberTypeName] = NumberType
	return o
}

// AddType registers a new named type, linking it under parent (nil for a
// root type).
func (o *Ontology) AddType(name string, parent *Type) (*Type, error) {
	if _, exists := o.types[name]; exists {
		return nil, fmt.Errorf(`ogp: type %q already declared`, name)
	}
	t := &Type{Name: name, Parent: parent}
	if parent != nil {
		parent.Children = append(parent.Children, t)
	}
	o.types[name] = t
	return t, nil
}

// NameToType looks a type up by name, failing with ErrUnknownName.
func (o *Ontology) NameToType(name string) (*Type, error) {
	t, ok := o.types[name]
	if !ok {
		return nil, fmt.Errorf(`%w: type %q`, ErrUnknownName, name)
	}
	return t, nil
}

// AddPredicate registers a regular predicate.
func (o *Ontology) AddPredicate(p *Predicate) error {
	if _, exists := o.predicates[p.Name]; exists {
		return fmt.Errorf(`ogp: predicate %q already declared`, p.Name)
	}
	o.predicates[p.Name] = p
	return nil
}

// AddDerivedPredicate registers a derived predicate (one whose Fact leaves
// are rewritten into a definitional Condition body by logic.Clone).
func (o *Ontology) AddDerivedPredicate(p *Predicate) error {
	if _, exists := o.derivedPredicates[p.Name]; exists {
		return fmt.Errorf(`ogp: derived predicate %q already declared`, p.Name)
	}
	o.derivedPredicates[p.Name] = p
	return nil
}

// NameToPredicate looks through regular then derived predicates.
func (o *Ontology) NameToPredicate(name string) (*Predicate, error) {
	if p, ok := o.predicates[name]; ok {
		return p, nil
	}
	if p, ok := o.derivedPredicates[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf(`%w: predicate %q`, ErrUnknownName, name)
}

// IsDerivedPredicate reports whether name is registered as a derived predicate.
func (o *Ontology) IsDerivedPredicate(name string) bool {
	_, ok := o.derivedPredicates[name]
	return ok
}
