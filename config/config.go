// Copyright 2020 gorse Project Authors
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

package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gorse-io/biasmf/base/log"
	"github.com/gorse-io/biasmf/model"
	"github.com/gorse-io/biasmf/model/mf"
	"github.com/juju/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the configuration for training.
type Config struct {
	Model ModelConfig `mapstructure:"model"`
	Fit   FitConfig   `mapstructure:"fit"`
}

// ModelConfig is the configuration of hyper-parameters.
type ModelConfig struct {
	NFactors    int     `mapstructure:"n_factors" validate:"gt=0"`
	NEpochs     int     `mapstructure:"n_epochs" validate:"gt=0"`
	Lr          float64 `mapstructure:"lr" validate:"gt=0"`
	Reg         float64 `mapstructure:"reg" validate:"gte=0"`
	Momentum    float64 `mapstructure:"momentum" validate:"gte=0,lt=1"`
	RandomState int64   `mapstructure:"random_state"`
}

// GetParams converts the configuration to hyper-parameters.
func (config *ModelConfig) GetParams() model.Params {
	return model.Params{
		model.NFactors:    config.NFactors,
		model.NEpochs:     config.NEpochs,
		model.Lr:          config.Lr,
		model.Reg:         config.Reg,
		model.Momentum:    config.Momentum,
		model.RandomState: config.RandomState,
	}
}

// FitConfig is the configuration of the training loop.
type FitConfig struct {
	Jobs    int `mapstructure:"jobs" validate:"gt=0"`
	Verbose int `mapstructure:"verbose" validate:"gt=0"`
}

func (config *FitConfig) GetFitConfig() *mf.FitConfig {
	return mf.NewFitConfig().
		SetJobs(config.Jobs).
		SetVerbose(config.Verbose)
}

func GetDefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			NFactors:    10,
			NEpochs:     200,
			Lr:          0.05,
			Reg:         0.01,
			Momentum:    0.9,
			RandomState: 0,
		},
		Fit: FitConfig{
			Jobs:    1,
			Verbose: mf.DefaultVerbose,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [model]
	v.SetDefault("model.n_factors", defaultConfig.Model.NFactors)
	v.SetDefault("model.n_epochs", defaultConfig.Model.NEpochs)
	v.SetDefault("model.lr", defaultConfig.Model.Lr)
	v.SetDefault("model.reg", defaultConfig.Model.Reg)
	v.SetDefault("model.momentum", defaultConfig.Model.Momentum)
	v.SetDefault("model.random_state", defaultConfig.Model.RandomState)
	// [fit]
	v.SetDefault("fit.jobs", defaultConfig.Fit.Jobs)
	v.SetDefault("fit.verbose", defaultConfig.Fit.Verbose)
}

type configBinding struct {
	key string
	env string
}

var bindings = []configBinding{
	{"model.n_factors", "BIASMF_N_FACTORS"},
	{"model.n_epochs", "BIASMF_N_EPOCHS"},
	{"model.lr", "BIASMF_LR"},
	{"model.reg", "BIASMF_REG"},
	{"model.momentum", "BIASMF_MOMENTUM"},
	{"model.random_state", "BIASMF_RANDOM_STATE"},
	{"fit.jobs", "BIASMF_FIT_JOBS"},
	{"fit.verbose", "BIASMF_VERBOSE"},
}

// LoadConfig loads configuration from a TOML file. Missing keys take default
// values and environment variables override the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			log.Logger().Fatal("failed to bind a Viper key to a ENV variable", zap.Error(err))
		}
	}

	// check if file exist
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Trace(err)
	}

	// load config file
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}

	// unmarshal config file
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks ranges of values.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "config")
	}
	return nil
}
