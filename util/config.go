// Copyright 2016, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"os"
	"time"
)

// Environment variables
const (
	ARCHIVE_ROOT     = "PYGAARST_ARCHIVE_ROOT"
	MTL_PATTERN      = "PYGAARST_MTL_PATTERN"
	INGEST_FREQUENCY = "PYGAARST_INGEST_FREQUENCY"
)

const defaultIngestFrequency = 24 * time.Hour

// GetArchiveRoot returns a string for the PYGAARST_ARCHIVE_ROOT environment variable
func GetArchiveRoot() string {
	root, ok := os.LookupEnv(ARCHIVE_ROOT)
	if !ok {
		LogAlert(&BasicLogContext{}, "Did not get an archive root directory from the environment. Scene indexing will not be available.")
	}
	return root
}

// GetMetaPattern returns a string for the PYGAARST_MTL_PATTERN environment
// variable, or an empty string to use the parser default
func GetMetaPattern() string {
	pattern, ok := os.LookupEnv(MTL_PATTERN)
	if !ok {
		return ""
	}
	return pattern
}

// GetIngestFrequency returns the time between scheduled archive index updates,
// or a default if none is configured
func GetIngestFrequency() time.Duration {
	freqStr, ok := os.LookupEnv(INGEST_FREQUENCY)
	if !ok {
		return defaultIngestFrequency
	}
	freq, err := time.ParseDuration(freqStr)
	if err != nil {
		LogAlert(&BasicLogContext{}, "Could not parse "+INGEST_FREQUENCY+" as a duration. Using the default.")
		return defaultIngestFrequency
	}
	return freq
}
