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

// signatureIndex holds every stored fact sharing one predicate signature,
// plus per-argument-position and per-value maps so a partially-ground
// pattern can narrow its candidates instead of scanning everything.
type signatureIndex struct {
	all      []Fact
	byArg    []map[string][]int // position -> ground value -> indexes into all
	byValue  map[string][]int
	immutable map[string]bool // call string -> immutable
}

// Index is the fact store for one World-State: the set of stored facts plus
// the derived maps described in spec §4.B.
type Index struct {
	byCall      map[string]Fact
	bySignature map[string]*signatureIndex
}

// NewIndex constructs an empty Index.
func NewIndex() *Index {
	return &Index{
		byCall:      make(map[string]Fact),
		bySignature: make(map[string]*signatureIndex),
	}
}

// Add inserts or overwrites the fact under its call string. immutable
// facts (the Domain's timeless set) cannot later be removed via Remove.
func (idx *Index) Add(f Fact, immutable bool) {
	call := f.CallString()
	if _, exists := idx.byCall[call]; exists {
		idx.Remove(f) // drop the old entry from the signature index as well
	}
	idx.byCall[call] = f

	sig := f.Signature()
	si, ok := idx.bySignature[sig]
	if !ok {
		si = &signatureIndex{
			byArg:     make([]map[string][]int, len(f.Arguments)),
			byValue:   make(map[string][]int),
			immutable: make(map[string]bool),
		}
		for i := range si.byArg {
			si.byArg[i] = make(map[string][]int)
		}
		idx.bySignature[sig] = si
	}
	if immutable {
		si.immutable[call] = true
	}
	i := len(si.all)
	si.all = append(si.all, f)
	for pos, a := range f.Arguments {
		si.byArg[pos][a.Value] = append(si.byArg[pos][a.Value], i)
	}
	if f.Value != nil {
		si.byValue[f.Value.Value] = append(si.byValue[f.Value.Value], i)
	}
}

// Get returns the stored fact for the exact call string, if any.
func (idx *Index) Get(callString string) (Fact, bool) {
	f, ok := idx.byCall[callString]
	return f, ok
}

// Has reports whether g (an exact ground fact, value included unless
// g.Value is nil) is currently stored.
func (idx *Index) Has(g Fact) bool {
	stored, ok := idx.byCall[g.CallString()]
	if !ok {
		return false
	}
	if g.Value == nil {
		return true
	}
	return stored.Value != nil && stored.Value.Value == g.Value.Value
}

// Remove erases the fact matching g's call string and returns it; ok is
// false when nothing was stored under that call string. Immutability is
// not checked here: it is enforced by the caller
// (world-state engine), which consults IsImmutable first.
func (idx *Index) Remove(g Fact) (removed Fact, ok bool) {
	call := g.CallString()
	removed, ok = idx.byCall[call]
	if !ok {
		return
	}
	delete(idx.byCall, call)
	sig := removed.Signature()
	if si, exists := idx.bySignature[sig]; exists {
		delete(si.immutable, call)
		// rebuild lazily: removing from the slim positional slices isn't
		// worth the bookkeeping churn relative to the rebuild cost, since
		// removals are comparatively rare next to Find calls.
		idx.rebuildSignature(sig)
	}
	return
}

func (idx *Index) rebuildSignature(sig string) {
	old, ok := idx.bySignature[sig]
	if !ok {
		return
	}
	fresh := &signatureIndex{
		byArg:     make([]map[string][]int, len(old.byArg)),
		byValue:   make(map[string][]int),
		immutable: make(map[string]bool),
	}
	for i := range fresh.byArg {
		fresh.byArg[i] = make(map[string][]int)
	}
	idx.bySignature[sig] = fresh
	for call, f := range idx.byCall {
		if f.Signature() != sig {
			continue
		}
		i := len(fresh.all)
		fresh.all = append(fresh.all, f)
		for pos, a := range f.Arguments {
			fresh.byArg[pos][a.Value] = append(fresh.byArg[pos][a.Value], i)
		}
		if f.Value != nil {
			fresh.byValue[f.Value.Value] = append(fresh.byValue[f.Value.Value], i)
		}
		if old.immutable[call] {
			fresh.immutable[call] = true
		}
	}
}

// IsImmutable reports whether g's call string was inserted with immutable=true.
func (idx *Index) IsImmutable(g Fact) bool {
	si, ok := idx.bySignature[g.Signature()]
	if !ok {
		return false
	}
	return si.immutable[g.CallString()]
}

// Clone deep-copies idx, preserving immutability flags, for planner
// lookahead (spec §5 "Clone-on-write is mandatory for lookahead").
func (idx *Index) Clone() *Index {
	clone := NewIndex()
	for call, f := range idx.byCall {
		immutable := false
		if si, ok := idx.bySignature[f.Signature()]; ok {
			immutable = si.immutable[call]
		}
		clone.Add(f, immutable)
	}
	return clone
}

// All returns every stored fact, in no particular order.
func (idx *Index) All() []Fact {
	out := make([]Fact, 0, len(idx.byCall))
	for _, f := range idx.byCall {
		out = append(out, f)
	}
	return out
}

// Find returns every stored fact matching pattern, honoring any-entity
// wildcards and leaving pattern parameters unconstrained. When pattern has
// no parameters and no negated value it takes the O(1) exact-call path;
// otherwise it narrows via the first ground argument (or ground value),
// falling back to the signature's full candidate list only when nothing in
// the pattern is ground.
func (idx *Index) Find(pattern Fact, ignoreValue bool) []Fact {
	if isFullyGround(pattern) && !(pattern.ValueNegated && !ignoreValue) {
		if f, ok := idx.Get(pattern.CallString()); ok && f.Matches(pattern, ignoreValue) {
			return []Fact{f}
		}
		return nil
	}

	si, ok := idx.bySignature[pattern.Signature()]
	if !ok {
		return nil
	}

	candidates := idx.narrow(si, pattern)

	var out []Fact
	for _, i := range candidates {
		f := si.all[i]
		if f.Matches(pattern, ignoreValue) {
			out = append(out, f)
		}
	}
	return out
}

// narrow picks the smallest reasonable candidate set: the per-argument
// list for the first ground argument, intersected with the per-value list
// if the pattern also pins a value, falling back to everything sharing the
// signature.
func (idx *Index) narrow(si *signatureIndex, pattern Fact) []int {
	var argCandidates []int
	haveArgCandidates := false
	for pos, a := range pattern.Arguments {
		if a.IsGround() {
			argCandidates = si.byArg[pos][a.Value]
			haveArgCandidates = true
			break
		}
	}

	if pattern.Value != nil && pattern.Value.IsGround() && !pattern.ValueNegated {
		valCandidates := si.byValue[pattern.Value.Value]
		if haveArgCandidates {
			return intersect(argCandidates, valCandidates)
		}
		return valCandidates
	}

	if haveArgCandidates {
		return argCandidates
	}

	all := make([]int, len(si.all))
	for i := range all {
		all[i] = i
	}
	return all
}

func intersect(a, b []int) []int {
	set := make(map[int]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	var out []int
	for _, v := range b {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func isFullyGround(f Fact) bool {
	for _, a := range f.Arguments {
		if !a.IsGround() {
			return false
		}
	}
	return true
}

// TypePolymorphicFind is Find, but additionally filters results so that an
// argument pinned in pattern with a declared supertype matches
// any stored fact whose same-position ground entity is a subtype (or vice
// versa): spec §4.B / testable property 8.
func (idx *Index) TypePolymorphicFind(pattern Fact, argTypes []*ontology.Type, ignoreValue bool) []Fact {
	matches := idx.Find(pattern, ignoreValue)
	if argTypes == nil {
		return matches
	}
	var out []Fact
	for _, f := range matches {
		ok := true
		for i, t := range argTypes {
			if t == nil || i >= len(f.Arguments) || f.Arguments[i].Type == nil {
				continue
			}
			if !f.Arguments[i].Type.IsA(t) && !t.IsA(f.Arguments[i].Type) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, f)
		}
	}
	return out
}
