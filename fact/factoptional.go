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

package fact

import "github.com/joeycumines/go-ogp/ontology"

// Optional pairs a Fact with a negation flag, used throughout Condition and
// Effect leaves (spec §3 "FactOptional").
type Optional struct {
	Fact         Fact
	FactNegated  bool
}

// NewOptional wraps a Fact as a non-negated optional.
func NewOptional(f Fact) Optional { return Optional{Fact: f} }

// Negated returns a copy of o with FactNegated flipped.
func (o Optional) Negated() Optional {
	o.FactNegated = !o.FactNegated
	return o
}

// ReplaceArguments substitutes parameters in the wrapped fact.
func (o Optional) ReplaceArguments(substitution map[string]ontology.Entity) Optional {
	o.Fact = o.Fact.ReplaceArguments(substitution)
	return o
}

// IsSatisfiedBy reports whether the ground fact g (as found in the world)
// satisfies o, honoring FactNegated.
func (o Optional) IsSatisfiedBy(g Fact, found bool) bool {
	if o.FactNegated {
		return !found || !g.Matches(o.Fact, false)
	}
	return found && g.Matches(o.Fact, false)
}
