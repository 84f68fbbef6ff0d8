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

import "github.com/joeycumines/go-ogp/logic"

// Event is a reactive rule that fires automatically inside the World-State
// engine when its precondition becomes true; it is never scheduled by the
// planner (spec §3 "Event").
type Event struct {
	ID             string
	Precondition   *logic.Condition
	FactsToModify  *logic.Effect
	GoalsToAdd     map[int][]*logic.Condition
}

// SetOfEvents is a named, ordered collection of Events sharing one id
// (spec §6 "addSetOfEvents").
type SetOfEvents struct {
	ID     string
	Events []Event
}
