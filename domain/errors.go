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

import "errors"

// ErrUnknownRequirement is returned by AddRequirement for anything outside
// KnownRequirements.
var ErrUnknownRequirement = errors.New(`ogp: unknown requirement`)

// ErrMissingSuccessor is returned when a Successions cache names an
// action/event id no longer present in the Domain — a corrupt Domain.
var ErrMissingSuccessor = errors.New(`ogp: missing successor`)

// ErrUnknownAction is returned by RemoveAction and by any lookup of an
// action id not registered with the Domain.
var ErrUnknownAction = errors.New(`ogp: unknown action`)

// ErrUnknownSetOfEvents is returned by RemoveSetOfEvents for an unregistered id.
var ErrUnknownSetOfEvents = errors.New(`ogp: unknown set of events`)
