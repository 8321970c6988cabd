// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.


package main

import (
	"fmt"
	"runtime"

	"github.com/shenwei356/svchain"
	"github.com/shenwei356/svchain/chain"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds settings from the config file, SVCHAIN_ environment
// variables and command line flags.
type Config struct {
	Threads  int    `mapstructure:"threads"`
	OutFile  string `mapstructure:"out-file"`
	LogLevel string `mapstructure:"log-level"`
	Progress bool   `mapstructure:"progress"`

	Chaining ChainingConfig `mapstructure:"chaining"`
}

// ChainingConfig maps to chain.ChainingOptions.
type ChainingConfig struct {
	MinTILength               int            `mapstructure:"min-ti-length"`
	TypeMinTILength           map[string]int `mapstructure:"type-min-ti-length"`
	MaxIterationsWithoutLinks int            `mapstructure:"max-iterations-without-links"`
	CopyNumberDiff            float64        `mapstructure:"copy-number-diff"`
	CopyNumberDiffPerc        float64        `mapstructure:"copy-number-diff-perc"`
	ClusterAllelePloidyMin    float64        `mapstructure:"cluster-ap-min"`
	UseAllelePloidies         bool           `mapstructure:"use-allele-ploidies"`
	ExhaustedFraction         float64        `mapstructure:"exhausted-fraction"`
	AssembledLinksOnly        bool           `mapstructure:"assembled-links-only"`
	Validate                  bool           `mapstructure:"validate"`
}

func setConfigDefaults(v *viper.Viper) {
	o := chain.DefaultChainingOptions
	v.SetDefault("threads", runtime.NumCPU())
	v.SetDefault("out-file", "-")
	v.SetDefault("log-level", "info")
	v.SetDefault("chaining.min-ti-length", o.MinTILength)
	v.SetDefault("chaining.max-iterations-without-links", o.MaxIterationsWithoutLinks)
	v.SetDefault("chaining.copy-number-diff", o.Tolerance.MaxDiff)
	v.SetDefault("chaining.copy-number-diff-perc", o.Tolerance.MaxDiffPerc)
	v.SetDefault("chaining.cluster-ap-min", o.ClusterAllelePloidyMin)
	v.SetDefault("chaining.use-allele-ploidies", o.UseAllelePloidies)
	v.SetDefault("chaining.exhausted-fraction", o.ExhaustedFraction)
	v.SetDefault("chaining.assembled-links-only", o.AssembledLinksOnly)
	v.SetDefault("chaining.validate", o.Validate)
}

// loadConfig reads the optional config file and decodes all settings.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	return &c, nil
}

// Options converts the settings into chaining options.
func (c *ChainingConfig) Options() (*chain.ChainingOptions, error) {
	o := &chain.ChainingOptions{
		MinTILength:               c.MinTILength,
		MaxIterationsWithoutLinks: c.MaxIterationsWithoutLinks,
		Tolerance: svchain.Tolerance{
			MaxDiff:     c.CopyNumberDiff,
			MaxDiffPerc: c.CopyNumberDiffPerc,
		},
		ClusterAllelePloidyMin: c.ClusterAllelePloidyMin,
		UseAllelePloidies:      c.UseAllelePloidies,
		ExhaustedFraction:      c.ExhaustedFraction,
		AssembledLinksOnly:     c.AssembledLinksOnly,
		Validate:               c.Validate,
	}
	if o.MinTILength < 0 {
		return nil, fmt.Errorf("min-ti-length should be >= 0")
	}
	if o.MaxIterationsWithoutLinks < 1 {
		return nil, fmt.Errorf("max-iterations-without-links should be > 0")
	}

	if len(c.TypeMinTILength) > 0 {
		o.TypeMinTILength = make(map[svchain.SVType]int, len(c.TypeMinTILength))
		for name, length := range c.TypeMinTILength {
			t, err := svchain.ParseSVType(name)
			if err != nil {
				return nil, err
			}
			o.TypeMinTILength[t] = length
		}
	}
	return o, nil
}

func setLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}
