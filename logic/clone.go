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

import "github.com/joeycumines/go-ogp/ontology"

// CloneOptions configures Condition.Clone / Effect.Clone (spec §4.C
// "Cloning under substitution").
type CloneOptions struct {
	// Substitution replaces parameter-typed entities in Fact leaves.
	Substitution map[string]ontology.Entity
	// Invert produces the De Morgan dual (AND<->OR, EQUALITY negated,
	// comparisons flipped, Exists<->Forall, leaves negated), used when a
	// Not wraps a composite condition so the Not can be eliminated.
	Invert bool
	// DerivedPredicates rewrites a Fact leaf whose predicate name is a key
	// into that key's definitional body, itself substituted with the
	// leaf's actual arguments bound to the body's own parameter names.
	DerivedPredicates map[string]derivedPredicate
}

// derivedPredicate is a definitional body plus the parameter names (in
// argument order) it expects to be substituted with the call-site's actual
// arguments.
type derivedPredicate struct {
	Params []string
	Body   *Condition
}

// NewDerivedPredicate packages a body for use in CloneOptions.DerivedPredicates.
func NewDerivedPredicate(params []string, body *Condition) derivedPredicate {
	return derivedPredicate{Params: params, Body: body}
}

var invertedOp = map[CondOp]CondOp{
	OpAnd:             OpOr,
	OpOr:              OpAnd,
	OpSuperior:        OpInferiorOrEqual,
	OpSuperiorOrEqual: OpInferior,
	OpInferior:        OpSuperiorOrEqual,
	OpInferiorOrEqual: OpSuperior,
}

// Clone produces a new Condition tree per opts; see CloneOptions.
func (c *Condition) Clone(opts CloneOptions) *Condition {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case CondFact:
		fo := c.FactLeaf.ReplaceArguments(opts.Substitution)
		if opts.DerivedPredicates != nil {
			if dp, ok := opts.DerivedPredicates[fo.Fact.Predicate.Name]; ok {
				sub := make(map[string]ontology.Entity, len(dp.Params))
				for i, pname := range dp.Params {
					if i < len(fo.Fact.Arguments) {
						sub[pname] = fo.Fact.Arguments[i]
					}
				}
				inner := opts
				inner.Substitution = sub
				inner.Invert = false
				body := dp.Body.Clone(inner)
				if fo.FactNegated != opts.Invert {
					// leaf asked for negation (FactNegated) xor Invert: wrap
					return Not(body)
				}
				return body
			}
		}
		if opts.Invert {
			fo = fo.Negated()
		}
		return NewFact(fo)
	case CondNumber:
		return NewNumber(c.Num)
	case CondNot:
		inner := opts
		inner.Invert = !opts.Invert
		return c.Operand.Clone(inner)
	case CondNode:
		switch c.Op {
		case OpImply:
			if !opts.Invert {
				l := c.Left.Clone(opts)
				r := c.Right.Clone(opts)
				return Imply(l, r)
			}
			// NOT(L => R) = L AND NOT R
			leftOpts := opts
			leftOpts.Invert = false
			rightOpts := opts
			rightOpts.Invert = true
			l := c.Left.Clone(leftOpts)
			r := c.Right.Clone(rightOpts)
			return And(l, r)
		case OpEquality:
			l := c.Left.Clone(CloneOptions{Substitution: opts.Substitution, DerivedPredicates: opts.DerivedPredicates})
			r := c.Right.Clone(CloneOptions{Substitution: opts.Substitution, DerivedPredicates: opts.DerivedPredicates})
			n := Equality(l, r)
			n.CompareNegated = c.CompareNegated != opts.Invert
			return n
		case OpPlus, OpMinus:
			l := c.Left.Clone(CloneOptions{Substitution: opts.Substitution, DerivedPredicates: opts.DerivedPredicates})
			r := c.Right.Clone(CloneOptions{Substitution: opts.Substitution, DerivedPredicates: opts.DerivedPredicates})
			return node(c.Op, l, r)
		default:
			op := c.Op
			if opts.Invert {
				if swapped, ok := invertedOp[op]; ok {
					op = swapped
				}
			}
			l := c.Left.Clone(opts)
			r := c.Right.Clone(opts)
			return node(op, l, r)
		}
	case CondExists:
		inner := childSubstitution(opts, c.Param.Name)
		k := CondExists
		if opts.Invert {
			k = CondForall
		}
		return &Condition{Kind: k, Param: c.Param, Inner: c.Inner.Clone(inner)}
	case CondForall:
		inner := childSubstitution(opts, c.Param.Name)
		k := CondForall
		if opts.Invert {
			k = CondExists
		}
		return &Condition{Kind: k, Param: c.Param, Inner: c.Inner.Clone(inner)}
	}
	return nil
}

// childSubstitution drops a bound parameter name from the outer
// substitution map before recursing into a quantifier's body, so an outer
// substitution never shadows the quantifier's own bound variable.
func childSubstitution(opts CloneOptions, shadowed string) CloneOptions {
	if _, ok := opts.Substitution[shadowed]; !ok {
		return opts
	}
	sub := make(map[string]ontology.Entity, len(opts.Substitution))
	for k, v := range opts.Substitution {
		if k != shadowed {
			sub[k] = v
		}
	}
	opts.Substitution = sub
	return opts
}
