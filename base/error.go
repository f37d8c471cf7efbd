// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import "github.com/juju/errors"

var (
	// ErrShapeMismatch is returned when tensors or sparse matrices combined by an
	// operation disagree on the number of users, items or factors.
	ErrShapeMismatch = errors.NotValidf("shape")
	// ErrEmptySupport is returned when a dataset has no observed entry, so the
	// mean over the support is undefined.
	ErrEmptySupport = errors.NotFoundf("observed entry")
)

// ShapeMismatchf annotates ErrShapeMismatch with the offending dimensions.
func ShapeMismatchf(format string, args ...any) error {
	return errors.Annotatef(ErrShapeMismatch, format, args...)
}

// IsShapeMismatch reports whether err is caused by mismatched dimensions.
func IsShapeMismatch(err error) bool {
	return errors.Is(err, ErrShapeMismatch)
}

// IsEmptySupport reports whether err is caused by an empty dataset.
func IsEmptySupport(err error) bool {
	return errors.Is(err, ErrEmptySupport)
}

// Must panics if err is not nil.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
