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

// Package merr defines the sentinel errors shared across the module and
// thin Wrap helpers that attach a diagnostic message to them without
// losing errors.Is/As matchability.
package merr

import "github.com/cockroachdb/errors"

var (
	// ErrSegcoreUnsupported marks a dispatch onto a data type or index
	// path the core does not implement (binary vector append, unknown
	// scalar type).
	ErrSegcoreUnsupported = errors.New("segcore: unsupported")

	// ErrServiceInternal marks an invariant violation that indicates a
	// programming error rather than bad input, e.g. a downcast mismatch.
	ErrServiceInternal = errors.New("segcore: internal error")

	// ErrParameterInvalid marks a required index/type parameter missing
	// from field metadata.
	ErrParameterInvalid = errors.New("segcore: invalid parameter")

	// ErrFieldNotFound marks a lookup against a field id the collection
	// index metadata does not carry.
	ErrFieldNotFound = errors.New("segcore: field not found")

	// ErrIndexBuildFailed wraps a failure returned by the underlying ANN
	// library's build call.
	ErrIndexBuildFailed = errors.New("segcore: index build failed")

	// ErrIndexAppendFailed wraps a failure returned by the underlying ANN
	// library's append call.
	ErrIndexAppendFailed = errors.New("segcore: index append failed")
)

// WrapErrSegcoreUnsupported annotates ErrSegcoreUnsupported with what was
// unsupported.
func WrapErrSegcoreUnsupported(what string) error {
	return errors.Wrap(ErrSegcoreUnsupported, what)
}

// WrapErrServiceInternal annotates ErrServiceInternal with a diagnostic.
func WrapErrServiceInternal(msg string) error {
	return errors.Wrap(ErrServiceInternal, msg)
}

// WrapErrParameterInvalid annotates ErrParameterInvalid naming the missing
// key and the map it was expected in.
func WrapErrParameterInvalid(where, key string) error {
	return errors.Wrapf(ErrParameterInvalid, "missing %q in %s", key, where)
}

// WrapErrFieldNotFound annotates ErrFieldNotFound with the offending id.
func WrapErrFieldNotFound(fieldID int64) error {
	return errors.Wrapf(ErrFieldNotFound, "field %d", fieldID)
}

// WrapErrIndexBuildFailed annotates ErrIndexBuildFailed with the
// underlying cause.
func WrapErrIndexBuildFailed(cause error) error {
	return errors.Mark(errors.Wrap(cause, ErrIndexBuildFailed.Error()), ErrIndexBuildFailed)
}

// WrapErrIndexAppendFailed annotates ErrIndexAppendFailed with the
// underlying cause.
func WrapErrIndexAppendFailed(cause error) error {
	return errors.Mark(errors.Wrap(cause, ErrIndexAppendFailed.Error()), ErrIndexAppendFailed)
}
