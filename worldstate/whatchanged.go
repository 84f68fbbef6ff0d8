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

import "github.com/joeycumines/go-ogp/fact"

// whatChanged is the per-call change record threaded through a mutator
// (spec §4.D): punctual notifications, plus the facts actually added or
// removed from the stored set.
type whatChanged struct {
	punctualFacts []fact.Fact
	addedFacts    []fact.Fact
	removedFacts  []fact.Fact
}

func (w *whatChanged) hasChanges() bool {
	return len(w.punctualFacts) > 0 || len(w.addedFacts) > 0 || len(w.removedFacts) > 0
}

// hasFactsToModifyInTheWorldForSure reports whether this change record
// actually touched the stored fact set (excludes punctual-only changes).
func (w *whatChanged) hasFactsToModifyInTheWorldForSure() bool {
	return len(w.addedFacts) > 0 || len(w.removedFacts) > 0
}
