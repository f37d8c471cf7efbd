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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelData  = "data"
	LabelTrain = "train"
	LabelValid = "valid"
)

var (
	FitEpochsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "biasmf",
		Subsystem: "mf",
		Name:      "fit_epochs_total",
	})
	FitEpochSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "biasmf",
		Subsystem: "mf",
		Name:      "fit_epoch_seconds",
	})
	CostVec = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "biasmf",
		Subsystem: "mf",
		Name:      "cost",
	}, []string{LabelData})
)
