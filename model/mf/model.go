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
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gorse-io/biasmf/base"
	"github.com/gorse-io/biasmf/base/log"
	"github.com/gorse-io/biasmf/base/progress"
	"github.com/gorse-io/biasmf/dataset"
	"github.com/gorse-io/biasmf/model"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/gorse-io/biasmf/model/mf"

// DefaultVerbose is the default number of epochs between two cost reports.
const DefaultVerbose = 50

type FitConfig struct {
	Jobs    int
	Verbose int
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: DefaultVerbose,
	}
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

// Report is the cost of the model after an epoch.
type Report struct {
	Epoch     int
	TrainCost float64
	ValidCost float64
	FitTime   time.Duration
	EvalTime  time.Duration
}

// RenderHistory writes reports as a table.
func RenderHistory(w io.Writer, reports []Report) error {
	table := tablewriter.NewWriter(w)
	table.Header("Epoch", "Train Cost", "Valid Cost", "Fit Time", "Eval Time")
	for _, report := range reports {
		if err := table.Append(
			strconv.Itoa(report.Epoch),
			strconv.FormatFloat(report.TrainCost, 'f', 6, 64),
			strconv.FormatFloat(report.ValidCost, 'f', 6, 64),
			report.FitTime.String(),
			report.EvalTime.String(),
		); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

// BiasedMF is matrix factorization with user and item biases. The rating of
// user u to item i is predicted by
//
//	r̂(u,i) = b_u + b_i + <U[u], V[i]>
//
// Parameters are fitted by full batch gradient descent with momentum on the L2
// regularized mean squared error over observed ratings. Hyper-parameters:
//
//	NFactors    - The number of latent factors. Default is 10.
//	NEpochs     - The number of iterations. Default is 200.
//	Lr          - The learning rate. Default is 0.05.
//	Reg         - The regularization strength of factors. Default is 0.01.
//	Momentum    - The weight of past gradients, in [0, 1). Default is 0.9.
//	RandomState - The seed of initial parameters. Default is 0.
type BiasedMF struct {
	model.BaseModel
	embeddings *Embeddings
	userIndex  *base.Index
	itemIndex  *base.Index
	history    []Report
	// Hyper parameters
	nFactors int
	nEpochs  int
	lr       float64
	reg      float64
	momentum float64
}

// NewBiasedMF creates a biased matrix factorization model.
func NewBiasedMF(params model.Params) *BiasedMF {
	m := new(BiasedMF)
	m.SetParams(params)
	return m
}

// SetParams sets hyper-parameters of the model.
func (m *BiasedMF) SetParams(params model.Params) {
	m.BaseModel.SetParams(params)
	m.nFactors = m.Params.GetInt(model.NFactors, 10)
	m.nEpochs = m.Params.GetInt(model.NEpochs, 200)
	m.lr = m.Params.GetFloat64(model.Lr, 0.05)
	m.reg = m.Params.GetFloat64(model.Reg, 0.01)
	m.momentum = m.Params.GetFloat64(model.Momentum, 0.9)
}

func (m *BiasedMF) GetParamsGrid() model.ParamsGrid {
	return model.ParamsGrid{
		model.NFactors: []interface{}{8, 16, 32},
		model.Lr:       []interface{}{0.01, 0.05, 0.1},
		model.Reg:      []interface{}{0.001, 0.01, 0.1},
		model.Momentum: []interface{}{0.5, 0.9},
	}
}

// Clear removes fitted parameters.
func (m *BiasedMF) Clear() {
	m.embeddings = nil
	m.userIndex = nil
	m.itemIndex = nil
	m.history = nil
}

// Invalid returns true if the model has not been fitted.
func (m *BiasedMF) Invalid() bool {
	return m == nil || m.embeddings == nil
}

// GetEmbeddings returns fitted parameters.
func (m *BiasedMF) GetEmbeddings() *Embeddings {
	return m.embeddings
}

func (m *BiasedMF) GetUserIndex() *base.Index {
	return m.userIndex
}

func (m *BiasedMF) GetItemIndex() *base.Index {
	return m.itemIndex
}

// History returns cost reports of the last fit.
func (m *BiasedMF) History() []Report {
	return m.history
}

// Predict returns the predicted rating of an user to an item. Zero is returned
// for unknown users or items.
func (m *BiasedMF) Predict(userId, itemId string) float64 {
	if m.Invalid() {
		log.Logger().Warn("predict with an unfitted model")
		return 0
	}
	userIndex := m.userIndex.ToNumber(userId)
	if userIndex == base.NotId {
		log.Logger().Debug("unknown user", zap.String("user_id", userId))
		return 0
	}
	itemIndex := m.itemIndex.ToNumber(itemId)
	if itemIndex == base.NotId {
		log.Logger().Debug("unknown item", zap.String("item_id", itemId))
		return 0
	}
	return m.embeddings.predict(int(userIndex), int(itemIndex))
}

// Fit trains the model on trainSet for NEpochs iterations. If valSet is not
// nil, the costs on both sets are reported every config.Verbose epochs. valSet
// must share the indexes of trainSet, see dataset.Project.
func (m *BiasedMF) Fit(ctx context.Context, trainSet, valSet *dataset.Dataset, config *FitConfig) (err error) {
	if config == nil {
		config = NewFitConfig()
	}
	valSize := 0
	if valSet != nil {
		valSize = valSet.Count()
	}
	mean, stdDev := trainSet.MeanStdDev()
	log.Logger().Info("fit biased mf",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("test_set_size", valSize),
		zap.Int("n_users", trainSet.CountUsers()),
		zap.Int("n_items", trainSet.CountItems()),
		zap.Float64("rating_mean", mean),
		zap.Float64("rating_std", stdDev),
		zap.Any("params", m.GetParams()),
		zap.Any("config", config))

	ctx, traceSpan := otel.Tracer(tracerName).Start(ctx, "BiasedMF.Fit", trace.WithAttributes(
		attribute.Int("n_factors", m.nFactors),
		attribute.Int("n_epochs", m.nEpochs)))
	defer func() {
		if err != nil {
			traceSpan.RecordError(err)
			traceSpan.SetStatus(codes.Error, err.Error())
		}
		traceSpan.End()
	}()

	if config.Verbose <= 0 {
		return errors.NotValidf("verbose period %d", config.Verbose)
	}
	y, err := trainSet.Matrix()
	if err != nil {
		return errors.Trace(err)
	}
	if y.NNZ() == 0 {
		return errors.Annotate(base.ErrEmptySupport, "train set")
	}
	if valSet != nil {
		if valSet.CountUsers() != trainSet.CountUsers() || valSet.CountItems() != trainSet.CountItems() {
			return base.ShapeMismatchf("validation set is %dx%d, train set is %dx%d",
				valSet.CountUsers(), valSet.CountItems(), trainSet.CountUsers(), trainSet.CountItems())
		}
		if valSet.Count() == 0 {
			return errors.Annotate(base.ErrEmptySupport, "validation set")
		}
	}

	m.Clear()
	e := NewEmbeddings(trainSet.CountUsers(), trainSet.CountItems(), m.nFactors, m.GetRandomState())
	if valSet != nil {
		evalStart := time.Now()
		trainCost, validCost, err := m.evaluate(ctx, trainSet, valSet, e, config.Jobs)
		if err != nil {
			return errors.Trace(err)
		}
		log.Logger().Debug(fmt.Sprintf("fit biased mf %v/%v", 0, m.nEpochs),
			zap.String("eval_time", time.Since(evalStart).String()),
			zap.Float64("train_cost", trainCost),
			zap.Float64("valid_cost", validCost))
	}

	// seed accumulators with the first gradient
	grads, err := ComputeGradients(ctx, trainSet, y, e, m.reg, config.Jobs)
	if err != nil {
		return errors.Trace(err)
	}
	optimizer := NewMomentum(m.lr, m.momentum, grads)

	fitStart := time.Now()
	ctx, span := progress.Start(ctx, "BiasedMF.Fit", m.nEpochs)
	for epoch := 1; epoch <= m.nEpochs; epoch++ {
		epochStart := time.Now()
		grads, err = ComputeGradients(ctx, trainSet, y, e, m.reg, config.Jobs)
		if err != nil {
			span.Fail(err)
			return errors.Trace(err)
		}
		if err = optimizer.Step(e, grads); err != nil {
			span.Fail(err)
			return errors.Trace(err)
		}
		fitTime := time.Since(epochStart)
		FitEpochsTotal.Inc()
		FitEpochSeconds.Set(fitTime.Seconds())

		// Cross validation
		if valSet != nil && epoch%config.Verbose == 0 {
			evalStart := time.Now()
			trainCost, validCost, err := m.evaluate(ctx, trainSet, valSet, e, config.Jobs)
			if err != nil {
				span.Fail(err)
				return errors.Trace(err)
			}
			evalTime := time.Since(evalStart)
			m.history = append(m.history, Report{
				Epoch:     epoch,
				TrainCost: trainCost,
				ValidCost: validCost,
				FitTime:   fitTime,
				EvalTime:  evalTime,
			})
			CostVec.WithLabelValues(LabelTrain).Set(trainCost)
			CostVec.WithLabelValues(LabelValid).Set(validCost)
			traceSpan.AddEvent("report", trace.WithAttributes(
				attribute.Int("epoch", epoch),
				attribute.Float64("train_cost", trainCost),
				attribute.Float64("valid_cost", validCost)))
			log.Logger().Info(fmt.Sprintf("fit biased mf %v/%v", epoch, m.nEpochs),
				zap.String("fit_time", fitTime.String()),
				zap.String("eval_time", evalTime.String()),
				zap.Float64("train_cost", trainCost),
				zap.Float64("valid_cost", validCost))
		}
		span.Add(1)
	}
	span.End()
	m.embeddings = e
	m.userIndex = trainSet.GetUserIndex()
	m.itemIndex = trainSet.GetItemIndex()
	log.Logger().Info("fit biased mf complete",
		zap.String("fit_time", time.Since(fitStart).String()),
		zap.Int("n_reports", len(m.history)))
	return nil
}

// evaluate returns the costs on the train set and the validation set. Each
// cost is averaged over the observed entries of its own set.
func (m *BiasedMF) evaluate(ctx context.Context, trainSet, valSet *dataset.Dataset, e *Embeddings, jobs int) (float64, float64, error) {
	trainCost, err := Cost(ctx, trainSet, e, jobs)
	if err != nil {
		return 0, 0, errors.Annotate(err, "train set")
	}
	validCost, err := Cost(ctx, valSet, e, jobs)
	if err != nil {
		return 0, 0, errors.Annotate(err, "validation set")
	}
	return trainCost, validCost, nil
}
