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

package logic

// Successions records, for one Effect tree, every action and event whose
// precondition might be advanced by that effect (spec §4.C "Successor
// reachability"). The domain package populates this after each Domain
// (re)build, scanning its global precondition index; it is attached here
// (rather than recomputed ad hoc) because the Effect tree is the stable
// identity the planner walks backwards from.
type Successions struct {
	Actions []string
	Events  map[string][]string // SetOfEventsId -> EventId list
}

// NewSuccessions constructs an empty Successions.
func NewSuccessions() *Successions {
	return &Successions{Events: make(map[string][]string)}
}

// AddAction records actionID as a possible successor, if not already present.
func (s *Successions) AddAction(actionID string) {
	for _, id := range s.Actions {
		if id == actionID {
			return
		}
	}
	s.Actions = append(s.Actions, actionID)
}

// AddEvent records eventID (within setOfEventsID) as a possible successor.
func (s *Successions) AddEvent(setOfEventsID, eventID string) {
	for _, id := range s.Events[setOfEventsID] {
		if id == eventID {
			return
		}
	}
	s.Events[setOfEventsID] = append(s.Events[setOfEventsID], eventID)
}
