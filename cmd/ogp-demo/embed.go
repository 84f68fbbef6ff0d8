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

package main

import (
	_ "embed"
	"os"
)

//go:embed sample.yaml
var sampleFixture []byte

// loadFixture reads path, or falls back to the built-in sample fixture
// when path is empty.
func loadFixture(path string) ([]byte, error) {
	if path == `` {
		return sampleFixture, nil
	}
	return os.ReadFile(path)
}
