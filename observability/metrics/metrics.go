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

import (
	// standard libraries.
	"sync"

	// third-party libraries.
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "mc3ds"
)

var registerOnce sync.Once

// Register adds every mc3ds collector to the default registry. It is safe to
// call more than once.
func Register() {
	registerOnce.Do(func() {
		registerGoRuntimeMetrics()
		RegisterArchiveMetrics()
		RegisterWorldMetrics()
	})
}

func RegisterArchiveMetrics() {
	prometheus.MustRegister(ArchiveOpenCounterVec)
	prometheus.MustRegister(ArchiveFlushCounterVec)
	prometheus.MustRegister(SubfileCounterVec)
	prometheus.MustRegister(InflatedByteCounterVec)
	prometheus.MustRegister(DeflatedByteCounterVec)
	prometheus.MustRegister(WarningCounterVec)
	prometheus.MustRegister(ArchiveOpSecond)
}

func RegisterWorldMetrics() {
	prometheus.MustRegister(SlotCacheCounterVec)
	prometheus.MustRegister(SlotLoadCounterVec)
}

func registerGoRuntimeMetrics() {
	prometheus.MustRegister(collectors.NewBuildInfoCollector())
}
