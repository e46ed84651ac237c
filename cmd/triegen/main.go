/*
 * Copyright (C) 2022 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/unitrie/pkg/config"
	"github.com/netobserv/unitrie/pkg/operational"
	"github.com/netobserv/unitrie/pkg/sink"
	"github.com/netobserv/unitrie/pkg/triegen"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	BuildVersion       string
	BuildDate          string
	cfgFile            string
	logLevel           string
	envPrefix          = "UNITRIE_GEN"
	defaultLogFileName = ".triegen"
	opts               triegen.Options
	metricsOpts        config.Metrics
)

// rootCmd represents the root command
var rootCmd = &cobra.Command{
	Use:   "triegen",
	Short: "Generate serialized code point tries from definition files",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

// initConfig use config file and ENV variables if set.
func initConfig() {
	v := viper.New()

	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		// Search config in home directory with name ".triegen" (without extension).
		v.AddConfigPath(home)
		v.SetConfigName(defaultLogFileName)
	}

	// Read environment variables that match prefix
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// If a config file is found, read it in.
	if err := v.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", v.ConfigFileUsed())
	}

	bindFlags(rootCmd, v)

	// initialize logger
	initLogger()
}

func initLogger() {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.ErrorLevel
	}
	log.SetLevel(ll)
	log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true})
}

func dumpConfig() {
	configAsJSON, _ := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(opts, "", "\t")
	log.Infof("configuration:\n%s\n", configAsJSON)
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, ".") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, ".", "_"))
			_ = v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix))
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			switch val.(type) {
			case bool, uint, string, int32, int16, int8, int, uint32, uint64, int64, float64, float32, []string, []int:
				_ = cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val))
			default:
				// sinks are given as a yaml list in the config file
				b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(&val)
				if err != nil {
					log.Fatalf("can't parse flag %s into json with value %v got error %s", f.Name, val, err)
					return
				}
				_ = cmd.Flags().Set(f.Name, string(b))
			}
		}
	})
}

func initFlags() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $HOME/%s)", defaultLogFileName))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warning, error")
	rootCmd.PersistentFlags().StringVar(&opts.SrcFolder, "srcFolder", "definitions", "folder of trie definition files (.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.Sinks, "sinks", `[{"type":"stdout"}]`, "json list of sinks receiving the serialized tries")
	rootCmd.PersistentFlags().StringVar(&opts.Width, "width", "", "value width overriding the definitions (16 or 32)")
	rootCmd.PersistentFlags().BoolVar(&opts.Verify, "verify", true, "check every code point of the frozen trie against the built one")
	rootCmd.PersistentFlags().StringVar(&opts.DumpRanges, "dumpRanges", "", "folder receiving a .ranges.json file per trie (default: disabled)")
	rootCmd.PersistentFlags().StringSliceVar(&opts.SkipWithLabels, "skipWithLabels", nil, "skip definitions with labels")
	rootCmd.PersistentFlags().StringVar(&metricsOpts.TextfilePath, "metrics.textfile", "", "file receiving the operational metrics after the run (default: disabled)")
}

func main() {
	// Initialize flags (command line parameters)
	initFlags()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() {
	// Initial log message
	fmt.Printf("Starting %s:\n=====\nBuild Version: %s\nBuild Date: %s\n\n",
		filepath.Base(os.Args[0]), BuildVersion, BuildDate)
	// Dump the configuration
	dumpConfig()

	sinkParams, err := config.ParseSinks(opts.Sinks)
	if err != nil {
		log.Errorf("error in parsing sinks: %v", err)
		os.Exit(1)
	}
	var sinks []sink.Sink
	for _, params := range sinkParams {
		s, err := sink.NewSink(params)
		if err != nil {
			log.Errorf("failed to initialize sink: %v", err)
			os.Exit(1)
		}
		sinks = append(sinks, s)
	}

	runErr := triegen.NewTrieGen(&opts, clock.New(), sinks).Run(context.Background())

	if metricsOpts.TextfilePath != "" {
		if err := operational.WriteTextfile(metricsOpts.TextfilePath); err != nil {
			log.Errorf("failed to write metrics: %v", err)
		}
	}
	if runErr != nil {
		log.Errorf("trie generation failed: %v", runErr)
		os.Exit(1)
	}
}
