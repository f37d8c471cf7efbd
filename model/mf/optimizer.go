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

package mf

import (
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// Momentum updates parameters with an exponentially weighted average of
// gradients:
//
//	m = factor * m + (1 - factor) * g
//	p = p - lr * m
type Momentum struct {
	lr       float64
	factor   float64
	velocity *Embeddings
}

// NewMomentum creates a momentum optimizer whose accumulators start from a copy
// of the first gradient rather than zeros.
func NewMomentum(lr, factor float64, first *Embeddings) *Momentum {
	return &Momentum{
		lr:       lr,
		factor:   factor,
		velocity: first.Clone(),
	}
}

// Step blends grads into the accumulators and updates params in place.
func (m *Momentum) Step(params, grads *Embeddings) error {
	if err := m.velocity.checkLayout(grads); err != nil {
		return errors.Trace(err)
	}
	if err := m.velocity.checkLayout(params); err != nil {
		return errors.Trace(err)
	}
	velocity, gradients, parameters := m.velocity.tensors(), grads.tensors(), params.tensors()
	var delta mat.Dense
	for i := range velocity {
		delta.Scale(1-m.factor, gradients[i])
		velocity[i].Scale(m.factor, velocity[i])
		velocity[i].Add(velocity[i], &delta)
		delta.Reset()
		delta.Scale(m.lr, velocity[i])
		parameters[i].Sub(parameters[i], &delta)
		delta.Reset()
	}
	return nil
}

// Velocity returns the accumulators.
func (m *Momentum) Velocity() *Embeddings {
	return m.velocity
}
