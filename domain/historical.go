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

// Historical is consulted by the planner's tie-breaking rules (spec §4.E
// rule 1, rule 4, rule 5) and is owned and reset by the caller — the spec
// leaves eviction policy unspecified and treats history as monotonically
// growing absent an explicit caller reset (spec §9 open question).
type Historical interface {
	NbOfTimesActionDone(actionString string) int
	IncrementNbOfTimesActionDone(actionString string)
}
