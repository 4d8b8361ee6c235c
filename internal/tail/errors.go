// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tail

import "fmt"

// StateError reports an operation against a TAIL that holds no data.
type StateError struct{ Op string }

func (e *StateError) Error() string { return fmt.Sprintf("tail: %s on empty tail", e.Op) }

// CodeError reports a broken internal invariant: a stored suffix that
// ran past the end of the buffer without ever hitting its terminator.
type CodeError struct{ Invariant string }

func (e *CodeError) Error() string { return fmt.Sprintf("tail: invariant violated: %s", e.Invariant) }
