// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prologix

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrNotFound means the discovery window elapsed without a single valid
	// reply. The caller may retry with a larger time budget.
	ErrNotFound = errors.New("prologix: no controller found")
)

// ParseError reports an inbound datagram that was long enough to inspect but
// structurally invalid: shorter than a full identify reply or carrying the
// wrong magic byte. Discovery surfaces it as-is and aborts the call.
type ParseError struct {
	Length int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("prologix: parse error: %s (%d bytes)", e.Reason, e.Length)
}

// IsNotFound returns true if the error means no controllers answered
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsParseError returns true if the error is a structural parse failure
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}
