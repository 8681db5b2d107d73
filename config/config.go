/*
 * Tessera
 *
 * Copyright 2024 The Tessera Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package config holds the tunables a host passes to a graph when it is
opened: thread pool size, result-set cache bounds, and query timeouts.

Like the host codebase's own config package, settings live in a single
map of known keys with typed accessors, loadable from a JSON file with
missing keys filled in from DefaultConfig.
*/
package config

import (
	"fmt"
	"strconv"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/common/fileutil"
)

// DefaultConfigFile is the default config file name a host may load.
var DefaultConfigFile = "tessera.config.json"

// Known configuration keys.
const (
	// ThreadCount is the number of worker goroutines a query's operator
	// tree may fan out across (see query/ctx).
	ThreadCount = "ThreadCount"

	// CacheSize is stored and returned like every other tunable; no package
	// in this module reads it, and storage.MemoryManager keeps every entry
	// resident regardless of it.
	CacheSize = "CacheSize"

	// TimeoutDefaultMs is the deadline applied to a query when the caller
	// does not specify one.
	TimeoutDefaultMs = "TimeoutDefaultMs"

	// TimeoutMaxMs is the longest deadline a caller may request; requests
	// above it are capped, never rejected.
	TimeoutMaxMs = "TimeoutMaxMs"

	// ResultSetMaxUnstableRecords bounds how many rows an ORDER-BY-less
	// result set may return before the planner is required to impose a
	// stable order.
	ResultSetMaxUnstableRecords = "ResultSetMaxUnstableRecords"

	// NodeCreationBuffer is the number of pending node inserts a write
	// transaction accumulates before it must flush its delta matrices.
	NodeCreationBuffer = "NodeCreationBuffer"
)

// DefaultConfig is the default configuration, used whenever a key is
// missing from a loaded config file or LoadDefaultConfig is called.
var DefaultConfig = map[string]interface{}{
	ThreadCount:                 4,
	CacheSize:                   10000,
	TimeoutDefaultMs:            30000,
	TimeoutMaxMs:                300000,
	ResultSetMaxUnstableRecords: 10000,
	NodeCreationBuffer:          1000,
}

// Config is the actual configuration a host consults. Nil until one of
// LoadConfigFile or LoadDefaultConfig is called.
var Config map[string]interface{}

// LoadConfigFile loads a given config file. If the file does not exist it
// is created with the default options.
func LoadConfigFile(configfile string) error {
	var err error

	Config, err = fileutil.LoadConfig(configfile, DefaultConfig)

	return err
}

// LoadDefaultConfig loads the default configuration, ignoring any config
// file.
func LoadDefaultConfig() {
	data := make(map[string]interface{})
	for k, v := range DefaultConfig {
		data[k] = v
	}

	Config = data
}

// Str reads a config value as a string.
func Str(key string) string {
	return fmt.Sprint(Config[key])
}

// Int reads a config value as an int64.
func Int(key string) int64 {
	ret, err := strconv.ParseInt(fmt.Sprint(Config[key]), 10, 64)

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("could not parse config key %v: %v", key, err))

	return ret
}

// Bool reads a config value as a bool.
func Bool(key string) bool {
	ret, err := strconv.ParseBool(fmt.Sprint(Config[key]))

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("could not parse config key %v: %v", key, err))

	return ret
}
