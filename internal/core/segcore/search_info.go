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

import "github.com/milvus-io/milvus/internal/core/index"

// SearchInfo is the inbound/outbound query descriptor VecIndexConfig
// rewrites in SearchConf: the caller's topK and round-decimal survive
// untouched, metric type and search params get overwritten to match
// the growing index (spec.md §4.1).
type SearchInfo struct {
	TopK         int64
	RoundDecimal int64
	MetricType   string
	SearchParams index.Params
}
