/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mxql

import (
	"io"

	"github.com/rulego/mxql/catalog"
	"github.com/rulego/mxql/logger"
)

// Option configures an Mxql instance at construction time.
type Option func(*Mxql)

// WithCatalog attaches a category metadata finder. With a catalog
// configured, referenced field names are checked against the category
// and unknown ones produce Info notes.
func WithCatalog(finder catalog.Finder) Option {
	return func(m *Mxql) {
		m.finder = finder
	}
}

// WithSampleRows sets how many fixture rows the synthesizer emits per
// request. Non-positive values keep the default.
func WithSampleRows(n int) Option {
	return func(m *Mxql) {
		if n > 0 {
			m.sampleRows = n
		}
	}
}

// WithLogger replaces the global default logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Mxql) {
		logger.SetDefault(log)
	}
}

// WithLogLevel sets the level of the global default logger.
func WithLogLevel(level logger.Level) Option {
	return func(m *Mxql) {
		logger.GetDefault().SetLevel(level)
	}
}

// WithLogOutput directs logging to the given writer at the given level.
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(m *Mxql) {
		logger.SetDefault(logger.NewLogger(level, output))
	}
}

// WithDiscardLog disables all log output.
func WithDiscardLog() Option {
	return func(m *Mxql) {
		logger.SetDefault(logger.NewDiscardLogger())
	}
}
