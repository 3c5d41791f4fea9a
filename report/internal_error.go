// Copyright 2020-2024 Buf Technologies, Inc.
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

package report

import (
	"fmt"

	"github.com/rivet-lang/rivetc/token"
)

// InternalError marks a compiler-internal assertion failure (spec.md §7):
// a condition the front end believes can never hold in a well-formed
// resolved AST.
//
// InternalError is not itself reported to the user. [Recover] converts it
// into a normal Handler.Errorf call with a clarifying note. No other
// package in this module calls [Assertf] or [Recover]: the checker's
// struct-field and call-argument checks run without a Recover boundary, so
// a panic there is not converted into a diagnostic.
type InternalError struct {
	Message string
	Context string
}

func (e *InternalError) Error() string {
	if e.Context == "" {
		return "compiler error: " + e.Message
	}
	return fmt.Sprintf("compiler error: %s (%s)", e.Message, e.Context)
}

// Assertf panics with an *InternalError if cond is false.
func Assertf(cond bool, context string, format string, args ...any) {
	if cond {
		return
	}
	panic(&InternalError{Message: fmt.Sprintf(format, args...), Context: context})
}

// Recover must be called via `defer` at a documented assertion boundary. If
// the deferred function's goroutine is unwinding because of an
// *InternalError panic, Recover reports it to h as an error at pos with a
// clarifying note and stops the panic. Any other panic propagates
// unchanged.
func Recover(h *Handler, pos token.Position) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*InternalError)
	if !ok {
		panic(r)
	}
	h.Errorf(pos, "internal compiler error: %s", ie.Message)
	if ie.Context != "" {
		h.Notef("while %s", ie.Context)
	}
}
