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

// Package fact implements component B: grounded facts and the multi-way
// index used to find them by pattern without scanning the whole world.
package fact

import (
	"fmt"
	"strings"

	"github.com/joeycumines/go-ogp/ontology"
)

// Fact is (predicate, arguments, optional value, value-negated). Invariants
// are enforced by New: argument count matches the predicate's parameter
// count, each argument isA its declared parameter type, fluents carry a
// value and relations don't. value-negated is only meaningful inside
// conditions/effects (FactOptional), never for a fact stored in the world.
type Fact struct {
	Predicate    *ontology.Predicate
	Arguments    []ontology.Entity
	Value        *ontology.Entity
	ValueNegated bool
}

// New constructs and validates a Fact.
func New(pred *ontology.Predicate, args []ontology.Entity, value *ontology.Entity) (Fact, error) {
	if len(args) != len(pred.Parameters) {
		return Fact{}, fmt.Errorf(`%w: predicate %q wants %d argument(s), got %d`,
			ontology.ErrArityMismatch, pred.Name, len(pred.Parameters), len(args))
	}
	for i, a := range args {
		if a.IsGround() && a.Type != nil && !a.Type.IsA(pred.Parameters[i].Type) {
			return Fact{}, fmt.Errorf(`%w: argument %d of %q: %s is not a %s`,
				ontology.ErrTypeMismatch, i, pred.Name, a.Value, pred.Parameters[i].Type.Name)
		}
	}
	if pred.IsFluent() && value == nil {
		return Fact{}, fmt.Errorf(`%w: fluent %q requires a value`, ontology.ErrMissingValue, pred.Name)
	}
	if !pred.IsFluent() && value != nil {
		return Fact{}, fmt.Errorf(`%w: relation %q given a value`, ontology.ErrUnexpectedValue, pred.Name)
	}
	if value != nil && value.IsGround() && pred.ValueType != nil && value.Type != nil && !value.Type.IsA(pred.ValueType) {
		return Fact{}, fmt.Errorf(`%w: value of %q: %s is not a %s`,
			ontology.ErrTypeMismatch, pred.Name, value.Value, pred.ValueType.Name)
	}
	return Fact{Predicate: pred, Arguments: append([]ontology.Entity(nil), args...), Value: value}, nil
}

// IsPunctual reports whether f is a one-shot notification fact, never stored.
func (f Fact) IsPunctual() bool { return f.Predicate.IsPunctual() }

// CallString is the name+grounded-arguments identity of f, ignoring value;
// two facts with the same CallString are the same fluent/relation instance.
func (f Fact) CallString() string {
	var b strings.Builder
	b.WriteString(f.Predicate.Name)
	b.WriteByte('(')
	for i, a := range f.Arguments {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.Value)
	}
	b.WriteByte(')')
	return b.String()
}

// CallStringWithValue additionally folds in the fact's value, when present.
func (f Fact) CallStringWithValue() string {
	if f.Value == nil {
		return f.CallString()
	}
	return f.CallString() + `=` + f.Value.Value
}

// Signature is the predicate name plus each argument's declared parameter
// type name; facts sharing a signature are the candidates a pattern query
// against that predicate needs to consider.
func (f Fact) Signature() string {
	var b strings.Builder
	b.WriteString(f.Predicate.Name)
	for _, p := range f.Predicate.Parameters {
		b.WriteByte('/')
		b.WriteString(p.Type.Name)
	}
	return b.String()
}

// String renders the fact for debugging/plan text, e.g. "at(robot)=kitchen"
// or "holding(robot,box)".
func (f Fact) String() string {
	s := f.CallString()
	if f.Value != nil {
		neg := ``
		if f.ValueNegated {
			neg = `!`
		}
		s += `=` + neg + f.Value.Value
	}
	return s
}

// WithArguments returns a copy of f with Arguments replaced.
func (f Fact) WithArguments(args []ontology.Entity) Fact {
	f.Arguments = args
	return f
}

// WithValue returns a copy of f with Value replaced.
func (f Fact) WithValue(v *ontology.Entity, negated bool) Fact {
	f.Value = v
	f.ValueNegated = negated
	return f
}

// Matches reports whether f (acting as a ground fact) satisfies the pattern
// p, honoring any-entity wildcards and leaving parameters unconstrained.
// When ignoreValue is true, p's value (if any) is not compared.
func (f Fact) Matches(p Fact, ignoreValue bool) bool {
	if f.Predicate.Name != p.Predicate.Name || len(f.Arguments) != len(p.Arguments) {
		return false
	}
	for i, a := range p.Arguments {
		if !a.Matches(f.Arguments[i]) {
			return false
		}
	}
	if ignoreValue || p.Value == nil {
		return true
	}
	if f.Value == nil {
		return false
	}
	matches := p.Value.Matches(*f.Value)
	if p.ValueNegated {
		return !matches
	}
	return matches
}

// ReplaceArguments substitutes any parameter-valued argument (and value,
// when it is a parameter) per substitution (parameter name -> ground
// entity), returning a new Fact.
func (f Fact) ReplaceArguments(substitution map[string]ontology.Entity) Fact {
	args := make([]ontology.Entity, len(f.Arguments))
	for i, a := range f.Arguments {
		if a.IsParameter() {
			if v, ok := substitution[a.Value]; ok {
				args[i] = v
				continue
			}
		}
		args[i] = a
	}
	f.Arguments = args
	if f.Value != nil && f.Value.IsParameter() {
		if v, ok := substitution[f.Value.Value]; ok {
			f.Value = &v
		}
	}
	return f
}

// Parameters returns the set of parameter names (leading '?') referenced by
// f's arguments and value.
func (f Fact) Parameters() []string {
	var params []string
	seen := make(map[string]struct{})
	add := func(e ontology.Entity) {
		if e.IsParameter() {
			if _, ok := seen[e.Value]; !ok {
				seen[e.Value] = struct{}{}
				params = append(params, e.Value)
			}
		}
	}
	for _, a := range f.Arguments {
		add(a)
	}
	if f.Value != nil {
		add(*f.Value)
	}
	return params
}
