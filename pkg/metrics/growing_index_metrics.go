// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
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
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GrowingIndexCursor tracks, per field, the number of rows already
	// incorporated into the growing-segment ANN index.
	GrowingIndexCursor = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: milvusNamespace,
			Name:      "growing_index_cursor",
			Help:      "Row count already indexed in the growing segment ANN index",
		},
		[]string{collectionIDLabelName, fieldIDLabelName},
	)

	// GrowingIndexBuildTotal counts train-phase invocations, success and
	// failure, per field.
	GrowingIndexBuildTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: milvusNamespace,
			Name:      "growing_index_build_total",
			Help:      "Number of growing-segment index train operations",
		},
		[]string{collectionIDLabelName, fieldIDLabelName, "status"},
	)

	// GrowingIndexAppendLatency tracks append-phase latency per field.
	GrowingIndexAppendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: milvusNamespace,
			Name:      "growing_index_append_latency_seconds",
			Help:      "Latency of growing-segment index append operations",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{collectionIDLabelName, fieldIDLabelName},
	)
)

// RegisterGrowingIndexMetrics registers all growing-segment indexing
// metrics on the given registry.
func RegisterGrowingIndexMetrics(registry *prometheus.Registry) {
	registry.MustRegister(GrowingIndexCursor)
	registry.MustRegister(GrowingIndexBuildTotal)
	registry.MustRegister(GrowingIndexAppendLatency)
}
