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

import (
	"fmt"
	"strconv"

	"github.com/joeycumines/go-ogp/fact"
	"github.com/joeycumines/go-ogp/ontology"
)

// EffectOp discriminates the operators a Node-kind Effect may carry.
type EffectOp int

const (
	EffAnd EffectOp = iota
	EffAssign
	EffIncrease
	EffDecrease
	EffMultiply
	EffPlus
	EffMinus
	EffForAll
	EffWhen
)

// EffectKind discriminates the variant held by an Effect.
type EffectKind int

const (
	EffFact EffectKind = iota
	EffNumber
	EffNode
)

// Effect is the tagged-variant state-modification tree of spec §3/§4.C.
type Effect struct {
	Kind EffectKind

	FactLeaf fact.Optional // EffFact
	Num      float64       // EffNumber

	Op          EffectOp // EffNode
	Left, Right *Effect

	// ForAll-only: the bound parameter and an optional guard restricting
	// which entities of Param.Type are iterated.
	Param *ontology.Parameter
	Guard *Condition

	// Successions is populated by the domain package after each Domain
	// (re)build; nil until then. See Successions' doc comment.
	Successions *Successions
}

func NewEffectFact(fo fact.Optional) *Effect { return &Effect{Kind: EffFact, FactLeaf: fo} }
func NewEffectNumber(n float64) *Effect      { return &Effect{Kind: EffNumber, Num: n} }

func effNode(op EffectOp, l, r *Effect) *Effect {
	return &Effect{Kind: EffNode, Op: op, Left: l, Right: r}
}

func EffAndOf(l, r *Effect) *Effect      { return effNode(EffAnd, l, r) }
func Assign(target, value *Effect) *Effect { return effNode(EffAssign, target, value) }
func Increase(target, delta *Effect) *Effect { return effNode(EffIncrease, target, delta) }
func Decrease(target, delta *Effect) *Effect { return effNode(EffDecrease, target, delta) }
func Multiply(target, factor *Effect) *Effect { return effNode(EffMultiply, target, factor) }
func EffPlusOf(l, r *Effect) *Effect  { return effNode(EffPlus, l, r) }
func EffMinusOf(l, r *Effect) *Effect { return effNode(EffMinus, l, r) }

// ForAll iterates every entity of param.Type (optionally filtered by
// guard), applying body once per entity with param bound.
func ForAll(param ontology.Parameter, guard *Condition, body *Effect) *Effect {
	return &Effect{Kind: EffNode, Op: EffForAll, Param: &param, Guard: guard, Left: body}
}

// When applies body only if cond currently holds.
func When(cond *Condition, body *Effect) *Effect {
	return &Effect{Kind: EffNode, Op: EffWhen, Guard: cond, Left: body}
}

// Emit is called once per ground FactOptional an Effect resolves to.
type Emit func(fact.Optional) error

// ForEach enumerates every ground fact.Optional this effect would assert
// or retract (spec §4.C "forAll(callback, worldState)").
func (e *Effect) ForEach(ws FactLookup, entities ontology.Entities, bindings Bindings, emit Emit) error {
	switch e.Kind {
	case EffFact:
		return emit(e.FactLeaf)
	case EffNumber:
		return fmt.Errorf(`ogp: number leaf %v cannot be applied as a fact modification`, e.Num)
	case EffNode:
		switch e.Op {
		case EffAnd:
			if err := e.Left.ForEach(ws, entities, bindings, emit); err != nil {
				return err
			}
			return e.Right.ForEach(ws, entities, bindings, emit)
		case EffAssign:
			return e.applyAssign(ws, bindings, emit, func(cur float64, rhs float64) float64 { return rhs })
		case EffIncrease:
			return e.applyAssign(ws, bindings, emit, func(cur float64, rhs float64) float64 { return cur + rhs })
		case EffDecrease:
			return e.applyAssign(ws, bindings, emit, func(cur float64, rhs float64) float64 { return cur - rhs })
		case EffMultiply:
			return e.applyAssign(ws, bindings, emit, func(cur float64, rhs float64) float64 { return cur * rhs })
		case EffForAll:
			pool := entities.TypeToEntities(e.Param.Type)
			for _, ent := range pool {
				subst := map[string]ontology.Entity{e.Param.Name: ent}
				if e.Guard != nil {
					cloned := e.Guard.Clone(CloneOptions{Substitution: subst})
					ok, err := cloned.IsTrue(ws, entities, bindings, false)
					if err != nil {
						return err
					}
					if !ok {
						continue
					}
				}
				body := e.Left.Clone(subst)
				if err := body.ForEach(ws, entities, bindings, emit); err != nil {
					return err
				}
			}
			return nil
		case EffWhen:
			ok, err := e.Guard.IsTrue(ws, entities, bindings, false)
			if err != nil {
				return err
			}
			if ok {
				return e.Left.ForEach(ws, entities, bindings, emit)
			}
			return nil
		default:
			return fmt.Errorf(`ogp: arithmetic effect node cannot be applied directly`)
		}
	}
	return fmt.Errorf(`ogp: unknown effect kind %d`, e.Kind)
}

// applyAssign handles ASSIGN/INCREASE/DECREASE/MULTIPLY: Left must resolve
// to a fluent Fact leaf (the assignment target), Right is evaluated
// numerically and combined with the fluent's current value via combine.
func (e *Effect) applyAssign(ws FactLookup, bindings Bindings, emit Emit, combine func(cur, rhs float64) float64) error {
	if e.Left.Kind != EffFact {
		return fmt.Errorf(`ogp: assignment target must be a fact leaf`)
	}
	target := e.Left.FactLeaf.Fact

	rhs, ok := e.Right.numericValue(ws, bindings)
	if !ok {
		return fmt.Errorf(`ogp: right-hand side of assignment is not a resolvable number`)
	}

	var cur float64
	if e.Op != EffAssign {
		matches := ws.Find(target, true)
		if len(matches) == 0 || matches[0].Value == nil {
			return fmt.Errorf(`ogp: no current value for fluent %s to combine with`, target.CallString())
		}
		v, err := strconv.ParseFloat(matches[0].Value.Value, 64)
		if err != nil {
			return fmt.Errorf(`ogp: fluent %s does not hold a number: %w`, target.CallString(), err)
		}
		cur = v
	}

	result := combine(cur, rhs)
	value := ontology.Entity{Value: strconv.FormatFloat(result, 'g', -1, 64), Type: ontology.NumberType}
	return emit(fact.NewOptional(target.WithValue(&value, false)))
}

func (e *Effect) numericValue(ws FactLookup, bindings Bindings) (float64, bool) {
	switch e.Kind {
	case EffNumber:
		return e.Num, true
	case EffFact:
		matches := ws.Find(e.FactLeaf.Fact, true)
		if len(matches) == 0 || matches[0].Value == nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(matches[0].Value.Value, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	case EffNode:
		l, lok := e.Left.numericValue(ws, bindings)
		r, rok := e.Right.numericValue(ws, bindings)
		if !lok || !rok {
			return 0, false
		}
		switch e.Op {
		case EffPlus:
			return l + r, true
		case EffMinus:
			return l - r, true
		}
	}
	return 0, false
}

// Clone substitutes parameters throughout e, producing a new Effect tree.
func (e *Effect) Clone(substitution map[string]ontology.Entity) *Effect {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case EffFact:
		return &Effect{Kind: EffFact, FactLeaf: e.FactLeaf.ReplaceArguments(substitution)}
	case EffNumber:
		return &Effect{Kind: EffNumber, Num: e.Num}
	case EffNode:
		n := &Effect{Kind: EffNode, Op: e.Op}
		if e.Param != nil {
			sub := childParamSubstitution(substitution, e.Param.Name)
			p := *e.Param
			n.Param = &p
			if e.Guard != nil {
				n.Guard = e.Guard.Clone(CloneOptions{Substitution: sub})
			}
			n.Left = e.Left.Clone(sub)
			return n
		}
		if e.Op == EffWhen {
			n.Guard = e.Guard.Clone(CloneOptions{Substitution: substitution})
			n.Left = e.Left.Clone(substitution)
			return n
		}
		n.Left = e.Left.Clone(substitution)
		n.Right = e.Right.Clone(substitution)
		return n
	}
	return nil
}

func childParamSubstitution(substitution map[string]ontology.Entity, shadowed string) map[string]ontology.Entity {
	if _, ok := substitution[shadowed]; !ok {
		return substitution
	}
	sub := make(map[string]ontology.Entity, len(substitution))
	for k, v := range substitution {
		if k != shadowed {
			sub[k] = v
		}
	}
	return sub
}
