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
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/magiconair/properties"
	"github.com/ngaut/log"
	"github.com/spf13/cobra"

	"github.com/mydb-bench/go-ycsb/pkg/client"
	"github.com/mydb-bench/go-ycsb/pkg/measurement"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/util"
	// Register workload
	_ "github.com/mydb-bench/go-ycsb/pkg/workload"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"

	// Register basic database
	_ "github.com/mydb-bench/go-ycsb/db/basic"
	// Register mydb database
	_ "github.com/mydb-bench/go-ycsb/db/mydb"
)

var (
	propertyFiles  []string
	propertyValues []string
	dbName         string
	tableName      string
	logLevel       string
	exitCode       int

	globalContext context.Context
	globalCancel  context.CancelFunc

	globalDB       ycsb.DB
	globalWorkload ycsb.Workload
	globalProps    *properties.Properties
)

func initialGlobal(dbName string, onProperties func()) {
	globalProps = properties.NewProperties()
	if len(propertyFiles) > 0 {
		globalProps = properties.MustLoadFiles(propertyFiles, properties.UTF8, false)
	}

	for _, prop := range propertyValues {
		seps := strings.SplitN(prop, "=", 2)
		if len(seps) != 2 {
			util.Fatalf("bad property: `%s`, expected format `name=value`", prop)
		}
		globalProps.Set(seps[0], seps[1])
	}

	if onProperties != nil {
		onProperties()
	}

	if logLevel != "" {
		globalProps.Set(prop.LogLevel, logLevel)
	}
	log.SetLevelByString(globalProps.GetString(prop.LogLevel, prop.LogLevelDefault))

	addr := globalProps.GetString(prop.DebugPprof, prop.DebugPprofDefault)
	http.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Warnf("debug server on %s stopped: %v", addr, err)
		}
	}()

	if err := measurement.InitMeasure(globalProps); err != nil {
		util.Fatalf("init measurement failed %v", err)
	}

	if len(tableName) == 0 {
		tableName = globalProps.GetString(prop.TableName, prop.TableNameDefault)
	}

	workloadName := globalProps.GetString(prop.Workload, prop.WorkloadDefault)
	workloadCreator := ycsb.GetWorkloadCreator(workloadName)
	if workloadCreator == nil {
		util.Fatalf("workload %s is not registered", workloadName)
	}

	var err error
	if globalWorkload, err = workloadCreator.Create(globalProps); err != nil {
		util.Fatalf("create workload %s failed %v", workloadName, err)
	}

	dbCreator := ycsb.GetDBCreator(dbName)
	if dbCreator == nil {
		util.Fatalf("%s is not registered", dbName)
	}
	if globalDB, err = dbCreator.Create(globalProps); err != nil {
		util.Fatalf("create db %s failed %v", dbName, err)
	}
	globalDB = client.NewDbWrapper(globalDB)
}

func main() {
	globalContext, globalCancel = context.WithCancel(context.Background())

	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	closeDone := make(chan struct{}, 1)
	go func() {
		sig := <-sc
		fmt.Printf("\nGot signal [%v] to exit.\n", sig)
		globalCancel()

		select {
		case <-sc:
			// send signal again, return directly
			fmt.Printf("\nGot signal [%v] again to exit.\n", sig)
			os.Exit(1)
		case <-time.After(10 * time.Second):
			fmt.Print("\nWait 10s for closed, force exit\n")
			os.Exit(1)
		case <-closeDone:
			return
		}
	}()

	rootCmd := &cobra.Command{
		Use:   "go-ycsb",
		Short: "Go YCSB",
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level, overrides the \""+prop.LogLevel+"\" property")

	rootCmd.AddCommand(
		newShellCommand(),
		newLoadCommand(),
		newRunCommand(),
	)

	cobra.EnablePrefixMatching = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(rootCmd.UsageString())
		exitCode = 1
	}

	globalCancel()
	if globalDB != nil {
		globalDB.Close()
	}

	if globalWorkload != nil {
		globalWorkload.Close()
	}

	closeDone <- struct{}{}
	os.Exit(exitCode)
}
