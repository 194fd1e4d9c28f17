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

package segcore

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/milvus-io/milvus/internal/core/common"
	"github.com/milvus-io/milvus/internal/core/index"
	"github.com/milvus-io/milvus/pkg/v2/log"
)

// supportedIndexTypes lists the internal index types the growing
// segment engine knows how to build incrementally. Today there is
// exactly one: whatever origin_index_type the user asked for, the
// growing segment always trains and appends against IVF_FLAT_CC.
var supportedIndexTypes = []string{"IVF_FLAT_CC"}

// indexBuildRatio is the fraction of max_index_row_count at which the
// growing index trains, keyed by the internal index type.
var indexBuildRatio = map[string]float64{
	"IVF_FLAT_CC": 0.10,
}

// VecIndexConfig (C1) derives concrete build/search parameter maps from
// a field's user index metadata plus the collection's segcore
// configuration, and exposes the row count at which training fires.
type VecIndexConfig struct {
	maxIndexRowCount int64

	originIndexType string
	indexType       string
	metricType      string

	buildParams  index.Params
	searchParams index.Params
}

// NewVecIndexConfig derives a VecIndexConfig per spec.md §4.1 rules
// 1-8. It fails if index_type or metric_type are missing from
// fieldIndexMeta (MISSING_PARAM, §7).
func NewVecIndexConfig(maxIndexRowCount int64, fieldIndexMeta common.FieldIndexMeta, segcoreConfig SegcoreConfig) (*VecIndexConfig, error) {
	metricType, err := fieldIndexMeta.MetricType()
	if err != nil {
		return nil, err
	}
	originIndexType, err := fieldIndexMeta.IndexType()
	if err != nil {
		return nil, err
	}

	indexType := supportedIndexTypes[0]

	ssize := segcoreConfig.ChunkRows / segcoreConfig.Nlist
	if ssize < 48 {
		ssize = 48
	}

	buildParams := index.Params{
		"metric_type": metricType,
		"nlist":       strconv.FormatInt(segcoreConfig.Nlist, 10),
		"ssize":       strconv.FormatInt(ssize, 10),
	}
	searchParams := index.Params{
		"nprobe": strconv.FormatInt(segcoreConfig.Nprobe, 10),
	}

	log.Info("derived growing-segment index config",
		zap.String("originIndexType", originIndexType),
		zap.String("indexType", indexType),
		zap.String("metricType", metricType))

	return &VecIndexConfig{
		maxIndexRowCount: maxIndexRowCount,
		originIndexType:  originIndexType,
		indexType:        indexType,
		metricType:       metricType,
		buildParams:      buildParams,
		searchParams:     searchParams,
	}, nil
}

// BuildThreshold returns floor(max_index_row_count * ratio(index_type)),
// the row count at which training fires.
func (c *VecIndexConfig) BuildThreshold() int64 {
	ratio := indexBuildRatio[c.indexType]
	return int64(float64(c.maxIndexRowCount) * ratio)
}

// IndexType returns the internal index type the growing segment builds
// (currently always IVF_FLAT_CC).
func (c *VecIndexConfig) IndexType() string { return c.indexType }

// OriginIndexType returns the index type the user originally asked
// for; sealing rebuilds to this type, not IndexType().
func (c *VecIndexConfig) OriginIndexType() string { return c.originIndexType }

// MetricType returns the field's configured metric.
func (c *VecIndexConfig) MetricType() string { return c.metricType }

// BuildParams returns the concrete build parameter map (metric_type,
// nlist, ssize).
func (c *VecIndexConfig) BuildParams() index.Params { return c.buildParams }

// SearchConf returns a copy of info with metric_type and search_params
// overwritten to match the growing index; the caller's topK and
// round_decimal are preserved untouched.
func (c *VecIndexConfig) SearchConf(info SearchInfo) SearchInfo {
	out := info
	out.MetricType = c.metricType
	out.SearchParams = c.searchParams
	return out
}
