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
	"sort"
	"strings"

	"github.com/joeycumines/go-ogp/ontology"
	"github.com/joeycumines/go-ogp/worldstate"
)

// ActionInvocation is a single grounded step of a plan: an action id plus
// its resolved parameter bindings, tagged with the goal (and its priority)
// it was chosen to advance (spec §6 "ActionInvocation").
type ActionInvocation struct {
	ActionID   string
	Parameters map[string]ontology.Entity
	Goal       *worldstate.Goal
	Priority   int
}

// String renders the wire form actionId(?p1 -> v1, ?p2 -> v2), parameters
// sorted by name for determinism (spec §6).
func (a ActionInvocation) String() string {
	names := make([]string, 0, len(a.Parameters))
	for name := range a.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(a.ActionID)
	b.WriteByte('(')
	for i, name := range names {
		if i > 0 {
			b.WriteString(`, `)
		}
		b.WriteString(name)
		b.WriteString(` -> `)
		b.WriteString(a.Parameters[name].Value)
	}
	b.WriteByte(')')
	return b.String()
}
