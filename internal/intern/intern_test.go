// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package intern_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rivet-lang/rivetc/internal/intern"
)

func TestIntern(t *testing.T) {
	t.Parallel()

	data := []string{
		"",
		"a",
		"abc",
		"?",
		"xy.z",
		"a_b_c",
		".....",
		"foo.",
		"foo.a",
		"very long",
		" ",
		"verylong",
	}

	var table intern.Table
	for i := range 3 {
		for _, s := range data {
			t.Run(fmt.Sprintf("%s/%d", s, i), func(t *testing.T) {
				t.Parallel()

				id := table.Intern(s)
				assert.Equal(t, s, table.Value(id), "id: %v", id)
			})
		}
	}
}

func TestInternEqualStringsShareID(t *testing.T) {
	var table intern.Table
	a := table.Intern("hello")
	b := table.Intern("hello")
	assert.Equal(t, a, b)

	c := table.Intern("world")
	assert.NotEqual(t, a, c)
}

func TestInternEmptyStringIsZero(t *testing.T) {
	var table intern.Table
	assert.Equal(t, intern.ID(0), table.Intern(""))
	assert.Equal(t, "", table.Value(0))
}
