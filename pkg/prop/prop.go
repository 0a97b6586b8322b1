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

package prop

// Properties
const (
	InsertStart        = "insertstart"
	InsertCount        = "insertcount"
	InsertStartDefault = int64(0)

	OperationCount     = "operationcount"
	RecordCount        = "recordcount"
	RecordCountDefault = int64(0)
	Workload           = "workload"
	WorkloadDefault    = "transactional"
	DB                 = "db"
	ThreadCount        = "threadcount"
	ThreadCountDefault = int64(1)
	Target             = "target"
	WarmUpTime         = "warmuptime"
	DoTransactions     = "dotransactions"
	Command            = "command"

	TableName        = "table"
	TableNameDefault = "usertable1"

	FieldCount         = "fieldcount"
	FieldCountDefault  = int64(10)
	FieldLength        = "fieldlength"
	FieldLengthDefault = int64(100)
	// "constant", "uniform", "zipfian"
	FieldLengthDistribution        = "fieldlengthdistribution"
	FieldLengthDistributionDefault = "constant"
	ReadAllFields                  = "readallfields"
	ReadAllFieldsDefault           = true
	WriteAllFields                 = "writeallfields"
	WriteAllFieldsDefault          = false

	ReadProportion                   = "readproportion"
	ReadProportionDefault            = float64(0.95)
	UpdateProportion                 = "updateproportion"
	UpdateProportionDefault          = float64(0.05)
	InsertProportion                 = "insertproportion"
	InsertProportionDefault          = float64(0.0)
	ScanProportion                   = "scanproportion"
	ScanProportionDefault            = float64(0.0)
	ReadModifyWriteProportion        = "readmodifywriteproportion"
	ReadModifyWriteProportionDefault = float64(0.0)
	MaxScanLength                    = "maxscanlength"
	MaxScanLengthDefault             = int64(1000)

	// "uniform", "sequential", "zipfian", "hotspot"
	RequestDistribution        = "requestdistribution"
	RequestDistributionDefault = "uniform"
	HotspotDataFraction        = "hotspotdatafraction"
	HotspotDataFractionDefault = float64(0.2)
	HotspotOpnFraction         = "hotspotopnfraction"
	HotspotOpnFractionDefault  = float64(0.8)
	// "ordered", "hashed"
	InsertOrder        = "insertorder"
	InsertOrderDefault = "hashed"
	ZeroPadding        = "zeropadding"
	ZeroPaddingDefault = int64(1)
	KeyPrefix          = "keyprefix"
	KeyPrefixDefault   = "user"

	InsertionRetryLimit           = "core_workload_insertion_retry_limit"
	InsertionRetryLimitDefault    = int64(0)
	InsertionRetryInterval        = "core_workload_insertion_retry_interval"
	InsertionRetryIntervalDefault = int64(3)

	TransactionBatchSize        = "transaction_batch_size"
	TransactionBatchSizeDefault = int64(10)

	DebugPprof        = "debug.pprof"
	DebugPprofDefault = ":6060"

	LogLevel        = "log.level"
	LogLevelDefault = "info"

	Verbose        = "verbose"
	VerboseDefault = false
	Silence        = "silence"
	SilenceDefault = true

	LogInterval        = "measurement.interval"
	LogIntervalDefault = int64(10)

	MeasurementType          = "measurementtype"
	MeasurementTypeDefault   = "histogram"
	MeasurementRawOutputFile = "measurement.output_file"

	OutputStyle = "outputstyle"
)
