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
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/util"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/pingcap/errors"

	"github.com/spf13/cobra"
)

func newShellCommand() *cobra.Command {
	m := &cobra.Command{
		Use:   "shell db",
		Short: "YCSB Command Line Client",
		Args:  cobra.MinimumNArgs(1),
		Run:   runShellCommandFunc,
	}
	m.Flags().StringSliceVarP(&propertyFiles, "property_file", "P", nil, "Specify a property file")
	m.Flags().StringSliceVarP(&propertyValues, "prop", "p", nil, "Specify a property value with name=value")
	m.Flags().StringVar(&tableName, "table", "", "Use the table name instead of the default \""+prop.TableNameDefault+"\"")
	return m
}

var shellContext context.Context

func runShellCommandFunc(cmd *cobra.Command, args []string) {
	dbName := args[0]
	initialGlobal(dbName, nil)

	wctx := globalWorkload.InitThread(globalContext, 0, 1)
	var err error
	shellContext, err = globalDB.InitThread(wctx, 0, 1)
	if err != nil {
		fmt.Printf("Connect to %s failed %v\n", dbName, err)
		globalWorkload.CleanupThread(wctx)
		exitCode = 1
		return
	}

	shellLoop()

	globalDB.CleanupThread(shellContext)
	globalWorkload.CleanupThread(shellContext)
}

// writeCommand builds insert and update, which share the record syntax.
func writeCommand(use, short string, write func(key string, values ycsb.Record) ycsb.Status) *cobra.Command {
	var numeric bool
	name := strings.Fields(use)[0]
	m := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			key := args[0]
			values, err := parseRecord(args[1:], numeric)
			if err != nil {
				fmt.Printf("%s %s failed %v\n", name, key, err)
				return
			}
			printStatus(name, key, write(key, values))
		},
	}
	m.Flags().BoolVarP(&numeric, "numeric", "n", false, "Send values as numbers")
	return m
}

func runShellCommand(args []string) {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "YCSB shell command",
	}

	cmd.SetArgs(args)
	cmd.ParseFlags(args)

	cmd.AddCommand(
		&cobra.Command{
			Use:                   "read key [field0 field1 field2 ...]",
			Short:                 "Read a record, a read without fields returns the numeric value",
			Args:                  cobra.MinimumNArgs(1),
			Run:                   runShellReadCommand,
			DisableFlagsInUseLine: true,
		},
		&cobra.Command{
			Use:                   "scan key recordcount [field0 field1 field2 ...]",
			Short:                 "Scan starting at key",
			Args:                  cobra.MinimumNArgs(2),
			Run:                   runShellScanCommand,
			DisableFlagsInUseLine: true,
		},
		writeCommand("insert key field0=value0 [field1=value1 ...]", "Insert a record",
			func(key string, values ycsb.Record) ycsb.Status {
				return globalDB.Insert(shellContext, tableName, key, values)
			}),
		writeCommand("update key field0=value0 [field1=value1 ...]", "Update a record",
			func(key string, values ycsb.Record) ycsb.Status {
				return globalDB.Update(shellContext, tableName, key, values)
			}),
		&cobra.Command{
			Use:                   "delete key",
			Short:                 "Delete a record",
			Args:                  cobra.MinimumNArgs(1),
			Run:                   runShellDeleteCommand,
			DisableFlagsInUseLine: true,
		},
		&cobra.Command{
			Use:                   "begin key",
			Short:                 "Start a transaction anchored at key",
			Args:                  cobra.ExactArgs(1),
			Run:                   runShellTxnCommand,
			DisableFlagsInUseLine: true,
		},
		&cobra.Command{
			Use:                   "commit key",
			Short:                 "Commit the transaction anchored at key",
			Args:                  cobra.ExactArgs(1),
			Run:                   runShellTxnCommand,
			DisableFlagsInUseLine: true,
		},
		&cobra.Command{
			Use:                   "abort key",
			Short:                 "Abort the transaction anchored at key",
			Args:                  cobra.ExactArgs(1),
			Run:                   runShellTxnCommand,
			DisableFlagsInUseLine: true,
		},
		&cobra.Command{
			Use:                   "table [tablename]",
			Short:                 "Get or [set] the name of the table",
			Args:                  cobra.MaximumNArgs(1),
			Run:                   runShellTableCommand,
			DisableFlagsInUseLine: true,
		},
	)

	if err := cmd.Execute(); err != nil {
		fmt.Println(cmd.UsageString())
	}
}

func parseRecord(args []string, numeric bool) (ycsb.Record, error) {
	values := make(ycsb.Record, len(args))
	for _, arg := range args {
		sep := strings.SplitN(arg, "=", 2)
		if len(sep) != 2 {
			return nil, errors.Errorf("bad value %q, expected field=value", arg)
		}
		if !numeric {
			values[sep[0]] = ycsb.TextValue([]byte(sep[1]))
			continue
		}
		n, err := strconv.ParseInt(sep[1], 10, 64)
		if err != nil {
			return nil, errors.Annotatef(err, "field %s", sep[0])
		}
		values[sep[0]] = ycsb.NumericValue(n)
	}
	return values, nil
}

func printStatus(op, key string, st ycsb.Status) {
	if !st.IsOK() {
		fmt.Printf("%s %s failed %v\n", op, key, st)
		return
	}
	fmt.Printf("%s %s ok\n", op, key)
}

func printRecord(row ycsb.Record) {
	for _, field := range row.Fields() {
		v := row[field]
		if n, ok := v.Int64(); ok {
			fmt.Printf("%s=%d\n", field, n)
			continue
		}
		fmt.Printf("%s=%q\n", field, v.Bytes())
	}
}

func runShellReadCommand(cmd *cobra.Command, args []string) {
	key := args[0]
	fields := args[1:]
	st, row := globalDB.Read(shellContext, tableName, key, fields)
	if !st.IsOK() {
		fmt.Printf("Read %s failed %v\n", key, st)
		return
	}

	if len(row) == 0 {
		fmt.Printf("Read empty for %s\n", key)
		return
	}

	fmt.Printf("Read %s ok\n", key)
	printRecord(row)
}

func runShellScanCommand(cmd *cobra.Command, args []string) {
	key := args[0]
	recordCount, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Printf("invalid record count %s for scan\n", args[1])
		return
	}
	fields := args[2:]

	st, rows := globalDB.Scan(shellContext, tableName, key, recordCount, fields)
	if !st.IsOK() {
		fmt.Printf("Scan from %s with %d failed %v\n", key, recordCount, st)
		return
	}

	if len(rows) == 0 {
		fmt.Println("0 records")
		return
	}

	fmt.Println("--------------------------------")
	for i, row := range rows {
		fmt.Printf("Record %d\n", i+1)
		printRecord(row)
	}
	fmt.Println("--------------------------------")
}

func runShellDeleteCommand(cmd *cobra.Command, args []string) {
	key := args[0]
	printStatus("delete", key, globalDB.Delete(shellContext, tableName, key))
}

func runShellTxnCommand(cmd *cobra.Command, args []string) {
	key := args[0]
	txn, ok := globalDB.(ycsb.TransactionalDB)
	if !ok {
		fmt.Println("database does not support transactions")
		return
	}

	var st ycsb.Status
	switch cmd.Name() {
	case "begin":
		st = txn.StartTransaction(shellContext, key)
	case "commit":
		st = txn.Commit(shellContext, key)
	default:
		st = txn.Abort(shellContext, key)
	}
	printStatus(cmd.Name(), key, st)
}

func runShellTableCommand(cmd *cobra.Command, args []string) {
	if len(args) == 1 {
		tableName = args[0]
	}
	fmt.Printf("Using table %s\n", tableName)
}

func shellLoop() {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            "\033[31m»\033[0m ",
		HistoryFile:       "/tmp/readline.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "^D",
		HistorySearchFold: true,
	})
	if err != nil {
		util.Fatal(err)
	}
	defer l.Close()

	for {
		line, err := l.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				return
			} else if err == io.EOF {
				return
			}
			continue
		}
		if line == "exit" {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		runShellCommand(args)
	}
}
