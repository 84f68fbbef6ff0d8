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

// Package logic implements component C: the tagged-variant Condition and
// Effect expression trees, their evaluation against a world, and their
// cloning under parameter substitution (spec §4.C). A sum type with an
// explicit discriminant (Kind) replaces the inheritance + dynamic_cast the
// original implementation used; As* accessors replace downcasts.
package logic

import (
	"fmt"
	"strconv"

	"github.com/joeycumines/go-ogp/fact"
	"github.com/joeycumines/go-ogp/ontology"
)

// CondOp discriminates the binary/comparison operators a Node-kind
// Condition may carry.
type CondOp int

const (
	OpAnd CondOp = iota
	OpOr
	OpImply
	OpEquality
	OpPlus
	OpMinus
	OpSuperior
	OpSuperiorOrEqual
	OpInferior
	OpInferiorOrEqual
)

// ConditionKind discriminates the variant held by a Condition.
type ConditionKind int

const (
	CondFact ConditionKind = iota
	CondNumber
	CondNot
	CondNode
	CondExists
	CondForall
)

// Condition is the tagged-variant expression tree described in spec §3.
// Exactly the fields relevant to Kind are populated; use the As* accessors
// rather than reaching into fields directly from outside the package.
type Condition struct {
	Kind ConditionKind

	FactLeaf fact.Optional // CondFact
	Num      float64       // CondNumber

	Operand *Condition // CondNot

	Op             CondOp // CondNode
	Left, Right    *Condition
	CompareNegated bool // flips OpEquality's sense; De Morgan dual of OpEquality has no named op

	Param ontology.Parameter // CondExists, CondForall
	Inner *Condition
}

// NewFact constructs a Fact-kind leaf.
func NewFact(fo fact.Optional) *Condition { return &Condition{Kind: CondFact, FactLeaf: fo} }

// NewNumber constructs a Number-kind leaf.
func NewNumber(n float64) *Condition { return &Condition{Kind: CondNumber, Num: n} }

// Not wraps c in a Not node.
func Not(c *Condition) *Condition { return &Condition{Kind: CondNot, Operand: c} }

func node(op CondOp, l, r *Condition) *Condition {
	return &Condition{Kind: CondNode, Op: op, Left: l, Right: r}
}

func And(l, r *Condition) *Condition      { return node(OpAnd, l, r) }
func Or(l, r *Condition) *Condition       { return node(OpOr, l, r) }
func Imply(l, r *Condition) *Condition    { return node(OpImply, l, r) }
func Equality(l, r *Condition) *Condition { return node(OpEquality, l, r) }
func Plus(l, r *Condition) *Condition     { return node(OpPlus, l, r) }
func Minus(l, r *Condition) *Condition    { return node(OpMinus, l, r) }
func Superior(l, r *Condition) *Condition { return node(OpSuperior, l, r) }
func SuperiorOrEqual(l, r *Condition) *Condition { return node(OpSuperiorOrEqual, l, r) }
func Inferior(l, r *Condition) *Condition { return node(OpInferior, l, r) }
func InferiorOrEqual(l, r *Condition) *Condition { return node(OpInferiorOrEqual, l, r) }

// Exists introduces param into a local binding set, succeeding if some
// instantiation makes inner true.
func Exists(param ontology.Parameter, inner *Condition) *Condition {
	return &Condition{Kind: CondExists, Param: param, Inner: inner}
}

// Forall requires inner to hold for every entity of param.Type.
func Forall(param ontology.Parameter, inner *Condition) *Condition {
	return &Condition{Kind: CondForall, Param: param, Inner: inner}
}

// AsFact returns the Fact-kind optional and true, or zero value and false.
func (c *Condition) AsFact() (fact.Optional, bool) {
	if c.Kind != CondFact {
		return fact.Optional{}, false
	}
	return c.FactLeaf, true
}

// AsNode returns the Node-kind operator and operands, or false.
func (c *Condition) AsNode() (op CondOp, left, right *Condition, ok bool) {
	if c.Kind != CondNode {
		return 0, nil, nil, false
	}
	return c.Op, c.Left, c.Right, true
}

// FactLookup is the subset of World-State queries Condition evaluation and
// Effect application need; implemented by worldstate.WorldState. Keeping
// it here (rather than importing worldstate) avoids a package cycle, since
// worldstate in turn depends on logic to apply effects.
type FactLookup interface {
	Find(pattern fact.Fact, ignoreValue bool) []fact.Fact
	Has(g fact.Fact) bool
}

// Bindings maps a parameter name to its candidate ground entities; an
// empty (nil) slice means "unconstrained so far".
type Bindings map[string][]ontology.Entity

// Refine intersects (or, if unset, seeds) the candidate pool for param.
func (b Bindings) Refine(param string, candidates []ontology.Entity) {
	existing, ok := b[param]
	if !ok || len(existing) == 0 {
		b[param] = candidates
		return
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[c.Value] = struct{}{}
	}
	var kept []ontology.Entity
	for _, e := range existing {
		if _, ok := seen[e.Value]; ok {
			kept = append(kept, e)
		}
	}
	b[param] = kept
}

// IsTrue evaluates c against the world, refining bindings for any
// parameters it touches, honoring the incoming negated flag. See spec §4.C
// for the per-kind semantics.
func (c *Condition) IsTrue(ws FactLookup, entities ontology.Entities, bindings Bindings, negated bool) (bool, error) {
	switch c.Kind {
	case CondFact:
		return c.evalFact(ws, bindings, negated)
	case CondNumber:
		return false, fmt.Errorf(`ogp: number leaf %v is not a boolean condition`, c.Num)
	case CondNot:
		return c.Operand.IsTrue(ws, entities, bindings, !negated)
	case CondNode:
		switch c.Op {
		case OpAnd:
			return c.evalAnd(ws, entities, bindings, negated)
		case OpOr:
			return c.evalOr(ws, entities, bindings, negated)
		case OpImply:
			return c.evalImply(ws, entities, bindings, negated)
		case OpEquality:
			return c.evalEquality(ws, entities, bindings, negated)
		case OpSuperior, OpSuperiorOrEqual, OpInferior, OpInferiorOrEqual:
			return c.evalComparison(ws, entities, bindings, negated)
		default:
			return false, fmt.Errorf(`ogp: arithmetic node is not a boolean condition`)
		}
	case CondExists:
		return c.evalExists(ws, entities, bindings, negated)
	case CondForall:
		return c.evalForall(ws, entities, bindings, negated)
	}
	return false, fmt.Errorf(`ogp: unknown condition kind %d`, c.Kind)
}

func (c *Condition) evalFact(ws FactLookup, bindings Bindings, negated bool) (bool, error) {
	pattern := c.FactLeaf.Fact
	combinedNegated := negated != c.FactLeaf.FactNegated

	params := pattern.Parameters()
	if len(params) == 0 {
		found := ws.Has(pattern)
		if pattern.Value != nil && found {
			// re-check value match explicitly (Has only checks presence+value equality already)
		}
		result := found
		if combinedNegated {
			result = !found
		}
		return result, nil
	}

	wildcard := pattern
	wildcard.Arguments = append([]ontology.Entity(nil), pattern.Arguments...)
	for i, a := range wildcard.Arguments {
		if a.IsParameter() {
			wildcard.Arguments[i] = ontology.AnyEntity(a.Type)
		}
	}
	matches := ws.Find(wildcard, false)

	if !combinedNegated {
		if len(matches) == 0 {
			return false, nil
		}
		for _, m := range matches {
			for i, a := range pattern.Arguments {
				if a.IsParameter() {
					bindings.Refine(a.Value, []ontology.Entity{m.Arguments[i]})
				}
			}
			if pattern.Value != nil && pattern.Value.IsParameter() && m.Value != nil {
				bindings.Refine(pattern.Value.Value, []ontology.Entity{*m.Value})
			}
		}
		return true, nil
	}
	return len(matches) == 0, nil
}

func (c *Condition) evalAnd(ws FactLookup, entities ontology.Entities, bindings Bindings, negated bool) (bool, error) {
	if !negated {
		l, err := c.Left.IsTrue(ws, entities, bindings, false)
		if err != nil || !l {
			return false, err
		}
		return c.Right.IsTrue(ws, entities, bindings, false)
	}
	l, err := c.Left.IsTrue(ws, entities, bindings, true)
	if err != nil || l {
		return true, err
	}
	return c.Right.IsTrue(ws, entities, bindings, true)
}

func (c *Condition) evalOr(ws FactLookup, entities ontology.Entities, bindings Bindings, negated bool) (bool, error) {
	if !negated {
		l, err := c.Left.IsTrue(ws, entities, bindings, false)
		if err != nil || l {
			return true, err
		}
		return c.Right.IsTrue(ws, entities, bindings, false)
	}
	l, err := c.Left.IsTrue(ws, entities, bindings, true)
	if err != nil || !l {
		return false, err
	}
	return c.Right.IsTrue(ws, entities, bindings, true)
}

func (c *Condition) evalImply(ws FactLookup, entities ontology.Entities, bindings Bindings, negated bool) (bool, error) {
	if !negated {
		l, err := c.Left.IsTrue(ws, entities, bindings, true)
		if err != nil || l {
			return true, err
		}
		return c.Right.IsTrue(ws, entities, bindings, false)
	}
	l, err := c.Left.IsTrue(ws, entities, bindings, false)
	if err != nil || !l {
		return false, err
	}
	return c.Right.IsTrue(ws, entities, bindings, true)
}

func (c *Condition) evalEquality(ws FactLookup, entities ontology.Entities, bindings Bindings, negated bool) (bool, error) {
	lv, lok := c.Left.numericOrFactValue(ws, bindings)
	rv, rok := c.Right.numericOrFactValue(ws, bindings)
	equal := lok && rok && lv == rv
	if !equal && c.Left.Kind == CondFact && c.Right.Kind == CondFact {
		// two fact leaves: compare the stored values themselves, so that
		// non-numeric (entity) values are equal when their names match
		lm := ws.Find(c.Left.FactLeaf.Fact, true)
		rm := ws.Find(c.Right.FactLeaf.Fact, true)
		equal = len(lm) > 0 && len(rm) > 0 && lm[0].Value != nil && rm[0].Value != nil &&
			lm[0].Value.Value == rm[0].Value.Value
	}
	if c.CompareNegated {
		negated = !negated
	}
	if negated {
		return !equal, nil
	}
	return equal, nil
}

func (c *Condition) evalComparison(ws FactLookup, entities ontology.Entities, bindings Bindings, negated bool) (bool, error) {
	lv, lok := c.Left.numericOrFactValue(ws, bindings)
	rv, rok := c.Right.numericOrFactValue(ws, bindings)
	if !lok || !rok {
		return false, fmt.Errorf(`ogp: comparison operands are not resolvable numeric values`)
	}
	var result bool
	switch c.Op {
	case OpSuperior:
		result = lv > rv
	case OpSuperiorOrEqual:
		result = lv >= rv
	case OpInferior:
		result = lv < rv
	case OpInferiorOrEqual:
		result = lv <= rv
	}
	if negated {
		return !result, nil
	}
	return result, nil
}

// numericOrFactValue resolves a leaf to a float64, either a literal Number,
// a stored fluent's value, or a Plus/Minus arithmetic combination.
func (c *Condition) numericOrFactValue(ws FactLookup, bindings Bindings) (float64, bool) {
	switch c.Kind {
	case CondNumber:
		return c.Num, true
	case CondFact:
		matches := ws.Find(c.FactLeaf.Fact, true)
		if len(matches) == 0 || matches[0].Value == nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(matches[0].Value.Value, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	case CondNode:
		l, lok := c.Left.numericOrFactValue(ws, bindings)
		r, rok := c.Right.numericOrFactValue(ws, bindings)
		if !lok || !rok {
			return 0, false
		}
		switch c.Op {
		case OpPlus:
			return l + r, true
		case OpMinus:
			return l - r, true
		}
	}
	return 0, false
}

func (c *Condition) evalExists(ws FactLookup, entities ontology.Entities, bindings Bindings, negated bool) (bool, error) {
	pool := entities.TypeToEntities(c.Param.Type)
	local := Bindings{}
	local[c.Param.Name] = pool
	for _, e := range pool {
		cloned := c.Inner.Clone(CloneOptions{Substitution: map[string]ontology.Entity{c.Param.Name: e}})
		ok, err := cloned.IsTrue(ws, entities, bindings, false)
		if err != nil {
			return false, err
		}
		if ok {
			return !negated, nil
		}
	}
	return negated, nil
}

func (c *Condition) evalForall(ws FactLookup, entities ontology.Entities, bindings Bindings, negated bool) (bool, error) {
	pool := entities.TypeToEntities(c.Param.Type)
	if len(pool) == 0 {
		// vacuous-true when positive, vacuous-false if negated (spec §4.C)
		return !negated, nil
	}
	for _, e := range pool {
		cloned := c.Inner.Clone(CloneOptions{Substitution: map[string]ontology.Entity{c.Param.Name: e}})
		ok, err := cloned.IsTrue(ws, entities, bindings, false)
		if err != nil {
			return false, err
		}
		if !ok {
			return negated, nil
		}
	}
	return !negated, nil
}
