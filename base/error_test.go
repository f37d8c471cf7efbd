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

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := errors.Trace(ShapeMismatchf("user bias has %d rows, want %d", 3, 4))
	assert.True(t, IsShapeMismatch(err))
	assert.False(t, IsEmptySupport(err))
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Contains(t, err.Error(), "user bias has 3 rows, want 4")

	err = errors.Annotate(ErrEmptySupport, "validation set")
	assert.True(t, IsEmptySupport(err))
	assert.False(t, IsShapeMismatch(err))
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestMust(t *testing.T) {
	assert.Equal(t, 1, Must(1, nil))
	assert.Panics(t, func() { Must(0, errors.New("failed")) })
}
