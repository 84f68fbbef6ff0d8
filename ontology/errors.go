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

import "errors"

var (
	// ErrUnknownName is returned when a type, predicate or entity lookup fails.
	ErrUnknownName = errors.New(`ogp: unknown name`)
	// ErrTypeMismatch is returned when an entity's type is not isA the expected type.
	ErrTypeMismatch = errors.New(`ogp: type mismatch`)
	// ErrArityMismatch is returned when a fact's argument count differs from its predicate's parameter count.
	ErrArityMismatch = errors.New(`ogp: arity mismatch`)
	// ErrMissingValue is returned when a fluent fact is constructed without a value.
	ErrMissingValue = errors.New(`ogp: missing value`)
	// ErrUnexpectedValue is returned when a relation fact is given a value.
	ErrUnexpectedValue = errors.New(`ogp: unexpected value`)
)
