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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/shenwei356/svchain"
	"github.com/shenwei356/svchain/chain"
	"github.com/shenwei356/xopen"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

var chainCmd = &cobra.Command{
	Use:   "chain [flags] <clusters.yaml> [<clusters.yaml> ...]",
	Short: "Chain SVs of clusters",
	Long: `Chain SVs of clusters

Clusters are read from YAML documents, one cluster each, optionally
compressed (.gz, .xz, .zst, .bz2). Links of all chains are written in
tab-delimited format.

Settings are taken from, in increasing priority, a YAML config file
(--config), environment variables prefixed with SVCHAIN_, and flags.
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v := viper.GetViper()

		config, err := loadConfig(v, configFile)
		checkError(err)
		checkError(setLogLevel(config.LogLevel))

		options, err := config.Chaining.Options()
		checkError(err)

		for _, file := range args {
			if _, err = os.Stat(file); errors.Is(err, os.ErrNotExist) {
				checkError(fmt.Errorf("%s", err))
			}
		}

		// go tool pprof -http=:8080 cpu.pprof
		if pfCPU {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		} else if pfMEM {
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		}

		sTime := time.Now()
		clusters := make([]*svchain.Cluster, 0, 64)
		var cs []*svchain.Cluster
		for _, file := range args {
			cs, err = svchain.NewClustersFromFile(file)
			checkError(err)
			clusters = append(clusters, cs...)
		}
		log.Infof("read %d clusters from %d files in %s", len(clusters), len(args), time.Since(sTime))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var onDone func(*chain.Result)
		var pbs *mpb.Progress
		if config.Progress {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar := pbs.AddBar(int64(len(clusters)),
				mpb.PrependDecorators(
					decor.Name("chained clusters: ", decor.WC{W: len("chained clusters: "), C: decor.DidentRight}),
					decor.CountersNoUnit("%d/%d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Percentage(decor.WC{W: 5}),
					decor.Name(" "),
					decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done"),
				),
			)
			onDone = func(*chain.Result) { bar.Increment() }
		}

		sTime = time.Now()
		chain.Threads = config.Threads
		results, err := chain.ChainClusters(ctx, clusters, options, onDone)
		if pbs != nil {
			pbs.Wait()
		}
		checkError(err)

		var nInvalid, nChains int
		for _, r := range results {
			if !r.Valid {
				nInvalid++
				continue
			}
			nChains += len(r.Chains)
		}
		log.Infof("formed %d chains from %d clusters (%d failed) in %s",
			nChains, len(results), nInvalid, time.Since(sTime))

		outfh, err := xopen.Wopen(config.OutFile)
		checkError(err)
		defer outfh.Close()

		checkError(chain.WriteResults(outfh, results))
	},
}

var configFile string
var pfCPU, pfMEM bool

func init() {
	rootCmd.AddCommand(chainCmd)

	flags := chainCmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML config file")
	flags.IntP("threads", "j", 0, "number of threads, 0 for all CPUs")
	flags.StringP("out-file", "o", "-", `out file, supports a ".gz" suffix ("-" for stdout)`)
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")
	flags.Bool("progress", false, "show progress bar")

	flags.Int("min-ti-length", chain.DefaultChainingOptions.MinTILength, "minimum templated insertion length")
	flags.Int("max-iterations-without-links", chain.DefaultChainingOptions.MaxIterationsWithoutLinks,
		"give up a cluster after this number of iterations without new links")
	flags.Bool("assembled-links-only", false, "only chain assembly links")

	flags.BoolVar(&pfCPU, "pprof-cpu", false, "pprofile CPU")
	flags.BoolVar(&pfMEM, "pprof-mem", false, "pprofile memory")

	v := viper.GetViper()
	setConfigDefaults(v)
	v.SetEnvPrefix("svchain")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for _, name := range []string{"threads", "out-file", "log-level", "progress"} {
		checkError(v.BindPFlag(name, flags.Lookup(name)))
	}
	for _, name := range []string{"min-ti-length", "max-iterations-without-links", "assembled-links-only"} {
		checkError(v.BindPFlag("chaining."+name, flags.Lookup(name)))
	}
}
