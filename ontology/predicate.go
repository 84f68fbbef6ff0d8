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

// Parameter is a named, typed formal argument of a Predicate or Action.
type Parameter struct {
	Name string
	Type *Type
}

// Predicate is (name, parameters, optional value-type). When ValueType is
// non-nil the predicate is a fluent (a function yielding a value);
// otherwise it is a relation.
type Predicate struct {
	Name       string
	Parameters []Parameter
	ValueType  *Type
}

// IsFluent reports whether p carries a value.
func (p *Predicate) IsFluent() bool { return p.ValueType != nil }

// IsNumericFluent reports whether p is a fluent whose value-type is number.
func (p *Predicate) IsNumericFluent() bool { return p.IsFluent() && p.ValueType.IsNumber() }

// PunctualPrefix marks a relation as punctual: never stored, delivered only
// as a one-shot notification.
const PunctualPrefix = `~punctual~`

// IsPunctual reports whether p names a punctual fact.
func (p *Predicate) IsPunctual() bool {
	return len(p.Name) >= len(PunctualPrefix) && p.Name[:len(PunctualPrefix)] == PunctualPrefix
}
