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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-ogp/ontology"
)

func testTypes() (robot, location *ontology.Type) {
	return &ontology.Type{Name: `robot`}, &ontology.Type{Name: `location`}
}

func TestNewRejectsArityAndTypeMismatch(t *testing.T) {
	robot, location := testTypes()
	at := &ontology.Predicate{Name: `at`, Parameters: []ontology.Parameter{{Name: `?r`, Type: robot}}, ValueType: location}

	_, err := New(at, nil, nil)
	require.ErrorIs(t, err, ontology.ErrArityMismatch)

	kitchen := ontology.Entity{Value: `kitchen`, Type: location}
	_, err = New(at, []ontology.Entity{{Value: `kitchen`, Type: location}}, &kitchen)
	require.ErrorIs(t, err, ontology.ErrTypeMismatch)

	r2d2 := ontology.Entity{Value: `r2d2`, Type: robot}
	_, err = New(at, []ontology.Entity{r2d2}, nil)
	require.ErrorIs(t, err, ontology.ErrMissingValue)
}

func TestNewRejectsValueOnRelation(t *testing.T) {
	robot, _ := testTypes()
	isBusy := &ontology.Predicate{Name: `is_busy`, Parameters: []ontology.Parameter{{Name: `?r`, Type: robot}}}
	r2d2 := ontology.Entity{Value: `r2d2`, Type: robot}
	v := ontology.Entity{Value: `x`, Type: robot}

	_, err := New(isBusy, []ontology.Entity{r2d2}, &v)
	require.ErrorIs(t, err, ontology.ErrUnexpectedValue)
}

func TestCallStringIgnoresValue(t *testing.T) {
	robot, location := testTypes()
	at := &ontology.Predicate{Name: `at`, Parameters: []ontology.Parameter{{Name: `?r`, Type: robot}}, ValueType: location}
	r2d2 := ontology.Entity{Value: `r2d2`, Type: robot}
	kitchen := ontology.Entity{Value: `kitchen`, Type: location}
	lab := ontology.Entity{Value: `lab`, Type: location}

	f1, err := New(at, []ontology.Entity{r2d2}, &kitchen)
	require.NoError(t, err)
	f2, err := New(at, []ontology.Entity{r2d2}, &lab)
	require.NoError(t, err)

	require.Equal(t, f1.CallString(), f2.CallString())
	require.NotEqual(t, f1.CallStringWithValue(), f2.CallStringWithValue())
}

func TestMatchesHonorsWildcardAndNegatedValue(t *testing.T) {
	robot, location := testTypes()
	at := &ontology.Predicate{Name: `at`, Parameters: []ontology.Parameter{{Name: `?r`, Type: robot}}, ValueType: location}
	r2d2 := ontology.Entity{Value: `r2d2`, Type: robot}
	kitchen := ontology.Entity{Value: `kitchen`, Type: location}
	lab := ontology.Entity{Value: `lab`, Type: location}

	stored, err := New(at, []ontology.Entity{r2d2}, &kitchen)
	require.NoError(t, err)

	wildcardPattern, err := New(at, []ontology.Entity{ontology.AnyEntity(robot)}, &kitchen)
	require.NoError(t, err)
	require.True(t, stored.Matches(wildcardPattern, false), `expected the any-entity wildcard to match`)

	negatedPattern, err := New(at, []ontology.Entity{r2d2}, &lab)
	require.NoError(t, err)
	negatedPattern.ValueNegated = true
	require.True(t, stored.Matches(negatedPattern, false), `expected a negated pattern with a different value to match`)
}

func TestReplaceArgumentsSubstitutesParametersOnly(t *testing.T) {
	robot, location := testTypes()
	at := &ontology.Predicate{Name: `at`, Parameters: []ontology.Parameter{{Name: `?r`, Type: robot}}, ValueType: location}
	param := ontology.Entity{Value: `?r`, Type: robot}
	paramVal := ontology.Entity{Value: `?loc`, Type: location}

	pattern, err := New(at, []ontology.Entity{param}, &paramVal)
	require.NoError(t, err)

	r2d2 := ontology.Entity{Value: `r2d2`, Type: robot}
	kitchen := ontology.Entity{Value: `kitchen`, Type: location}
	ground := pattern.ReplaceArguments(map[string]ontology.Entity{`?r`: r2d2, `?loc`: kitchen})
	require.Equal(t, `r2d2`, ground.Arguments[0].Value)
	require.Equal(t, `kitchen`, ground.Value.Value)
}

func TestIndexFindNarrowsBySignatureAndArgument(t *testing.T) {
	robot, location := testTypes()
	at := &ontology.Predicate{Name: `at`, Parameters: []ontology.Parameter{{Name: `?r`, Type: robot}}, ValueType: location}
	r2d2 := ontology.Entity{Value: `r2d2`, Type: robot}
	c3po := ontology.Entity{Value: `c3po`, Type: robot}
	kitchen := ontology.Entity{Value: `kitchen`, Type: location}

	idx := NewIndex()
	f1, err := New(at, []ontology.Entity{r2d2}, &kitchen)
	require.NoError(t, err)
	f2, err := New(at, []ontology.Entity{c3po}, &kitchen)
	require.NoError(t, err)
	idx.Add(f1, false)
	idx.Add(f2, false)

	pattern, err := New(at, []ontology.Entity{r2d2}, nil)
	require.NoError(t, err)
	got := idx.Find(pattern, true)
	require.Len(t, got, 1)
	require.Equal(t, `r2d2`, got[0].Arguments[0].Value)
}

func TestIndexRemoveLeavesImmutabilityToCaller(t *testing.T) {
	robot, _ := testTypes()
	isBusy := &ontology.Predicate{Name: `is_busy`, Parameters: []ontology.Parameter{{Name: `?r`, Type: robot}}}
	r2d2 := ontology.Entity{Value: `r2d2`, Type: robot}
	f, err := New(isBusy, []ontology.Entity{r2d2}, nil)
	require.NoError(t, err)

	idx := NewIndex()
	idx.Add(f, true)
	require.True(t, idx.IsImmutable(f))

	clone := idx.Clone()
	require.True(t, clone.IsImmutable(f), `expected Clone to preserve immutability`)
	require.True(t, clone.Has(f), `expected Clone to preserve stored facts`)

	_, ok := idx.Remove(f)
	require.True(t, ok, `expected Remove to report the fact as removed (immutability is caller-enforced)`)
	require.False(t, idx.Has(f), `expected the fact to be gone after Remove`)
}

func TestIndexCloneIsolatesMutation(t *testing.T) {
	robot, _ := testTypes()
	isBusy := &ontology.Predicate{Name: `is_busy`, Parameters: []ontology.Parameter{{Name: `?r`, Type: robot}}}
	r2d2 := ontology.Entity{Value: `r2d2`, Type: robot}
	f, err := New(isBusy, []ontology.Entity{r2d2}, nil)
	require.NoError(t, err)

	idx := NewIndex()
	clone := idx.Clone()
	clone.Add(f, false)

	require.True(t, clone.Has(f))
	require.False(t, idx.Has(f), `expected mutating the clone to leave the original untouched`)
}

func TestTypePolymorphicFindMatchesAcrossSubtypes(t *testing.T) {
	mobile := &ontology.Type{Name: `mobile`}
	robot := &ontology.Type{Name: `robot`, Parent: mobile}
	mobile.Children = []*ontology.Type{robot}
	_, location := testTypes()

	at := &ontology.Predicate{Name: `at`, Parameters: []ontology.Parameter{{Name: `?m`, Type: mobile}}, ValueType: location}
	r2d2 := ontology.Entity{Value: `r2d2`, Type: robot}
	kitchen := ontology.Entity{Value: `kitchen`, Type: location}

	idx := NewIndex()
	stored, err := New(at, []ontology.Entity{r2d2}, &kitchen)
	require.NoError(t, err)
	idx.Add(stored, false)

	pattern, err := New(at, []ontology.Entity{{Value: `?m`, Type: mobile}}, nil)
	require.NoError(t, err)
	got := idx.TypePolymorphicFind(pattern, []*ontology.Type{mobile}, true)
	require.Len(t, got, 1, `expected the robot-typed fact to satisfy a mobile-typed pattern`)
}
