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

package ontology

// Type is a named node in a subtype DAG (in practice a tree: one parent,
// many children). isA(T, U) holds when U is reachable by walking T's
// parent links, or T == U.
type Type struct {
	Name     string
	Parent   *Type
	Children []*Type
}

// NumberTypeName is the reserved built-in numeric type.
const NumberTypeName = `number`

// NumberType is the distinguished built-in numeric type required by spec.
var NumberType = &Type{Name: NumberTypeName}

// IsA reports whether t is other, or other is reachable from t via parent links.
func (t *Type) IsA(other *Type) bool {
	if t == nil || other == nil {
		return false
	}
	for cur := t; cur != nil; cur = cur.Parent {
		if cur == other || cur.Name == other.Name {
			return true
		}
	}
	return false
}

// IsNumber reports whether t is, or derives from, the built-in number type.
func (t *Type) IsNumber() bool { return t.IsA(NumberType) }

// leaves returns t and every type reachable via Children, depth-first.
func (t *Type) leaves(out []*Type) []*Type {
	out = append(out, t)
	for _, c := range t.Children {
		out = c.leaves(out)
	}
	return out
}
