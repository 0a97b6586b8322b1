// Copyright 2018 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/mydb-bench/go-ycsb/pkg/client"
	"github.com/mydb-bench/go-ycsb/pkg/measurement"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/util"
	"github.com/ngaut/log"
	"github.com/spf13/cobra"
)

var (
	threadsArg     int
	targetArg      int
	reportInterval int
)

// flagProps lists the command line flags that override a property when
// they are given explicitly.
var flagProps = []struct {
	flag  string
	prop  string
	value *int
}{
	{"threads", prop.ThreadCount, &threadsArg},
	{"target", prop.Target, &targetArg},
	{"interval", prop.LogInterval, &reportInterval},
}

func runBenchmark(cmd *cobra.Command, dbName string, phase string) {
	initialGlobal(dbName, func() {
		globalProps.Set(prop.DoTransactions, strconv.FormatBool(phase == "run"))
		globalProps.Set(prop.Command, phase)
		for _, f := range flagProps {
			if cmd.Flags().Changed(f.flag) {
				globalProps.Set(f.prop, strconv.Itoa(*f.value))
			}
		}
	})

	printProperties()

	c := client.NewClient(globalProps, globalWorkload, globalDB)
	start := time.Now()
	if err := c.Run(globalContext); err != nil {
		log.Errorf("%s against %s failed: %v", phase, dbName, err)
		exitCode = 1
		return
	}

	fmt.Printf("%s finished, takes %s\n", phase, time.Since(start))
	if err := measurement.Output(); err != nil {
		log.Errorf("output measurement failed: %v", err)
		exitCode = 1
	}
}

func printProperties() {
	keys := globalProps.Keys()
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, globalProps.GetString(k, "")})
	}
	util.RenderTable(os.Stdout, []string{"Property", "Value"}, rows)
}

func newBenchmarkCommand(phase string, short string) *cobra.Command {
	m := &cobra.Command{
		Use:   phase + " db",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runBenchmark(cmd, args[0], phase)
		},
	}

	m.Flags().StringSliceVarP(&propertyFiles, "property_file", "P", nil, "Specify a property file")
	m.Flags().StringArrayVarP(&propertyValues, "prop", "p", nil, "Specify a property value with name=value")
	m.Flags().StringVar(&tableName, "table", "", "Use the table name instead of the default \""+prop.TableNameDefault+"\"")
	m.Flags().IntVar(&threadsArg, "threads", 1, "Number of workers, each with its own connection - can also be specified as the \""+prop.ThreadCount+"\" property")
	m.Flags().IntVar(&targetArg, "target", 0, "Attempt to do n operations per second (default: unlimited) - can also be specified as the \""+prop.Target+"\" property")
	m.Flags().IntVar(&reportInterval, "interval", 10, "Interval of outputting measurements in seconds")
	return m
}

func newLoadCommand() *cobra.Command {
	return newBenchmarkCommand("load", "Insert the initial records")
}

func newRunCommand() *cobra.Command {
	return newBenchmarkCommand("run", "Run the workload's transactions")
}
