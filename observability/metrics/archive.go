// Copyright 2023 Linkall Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	moduleOfArchive = "archive"

	ArchiveOpenCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: moduleOfArchive,
		Name:      "open_count",
		Help:      "Total archives opened",
	}, []string{LabelKind, LabelRevision, LabelResult})

	ArchiveFlushCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: moduleOfArchive,
		Name:      "flush_count",
		Help:      "Total archives flushed",
	}, []string{LabelKind, LabelRevision, LabelResult})

	SubfileCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: moduleOfArchive,
		Name:      "subfile_count",
		Help:      "Total subfiles decoded by content type",
	}, []string{LabelKind, LabelType})

	InflatedByteCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: moduleOfArchive,
		Name:      "inflated_byte_count",
		Help:      "Total section bytes produced by inflate",
	}, []string{LabelKind})

	DeflatedByteCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: moduleOfArchive,
		Name:      "deflated_byte_count",
		Help:      "Total section bytes produced by deflate",
	}, []string{LabelKind})

	WarningCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: moduleOfArchive,
		Name:      "warning_count",
		Help:      "Total non-fatal findings by kind",
	}, []string{LabelWarning})

	ArchiveOpSecond = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: moduleOfArchive,
		Name:      "op_seconds",
		Help:      "Time spent opening and flushing archives",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{LabelKind, LabelOperation})
)
