// Copyright 2018, RadiantBlue Technologies, Inc.
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

package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io/ioutil"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/chryss/pygaarst/util"
)

const sampleMTLText = `GROUP = L1_METADATA_FILE
  GROUP = METADATA_FILE_INFO
    SPACECRAFT_ID = "LANDSAT_8"
    WRS_PATH = 69
  END_GROUP = METADATA_FILE_INFO
END_GROUP = L1_METADATA_FILE
END
`

// stubDbConnection keeps router creation away from any real database; the
// connection from sql.Open is lazy and is never dialed by these tests
func stubDbConnection() {
	getDbConnectionFunc = func(util.LogContext) (*sql.DB, error) { // Mock
		return sql.Open("postgres", "")
	}
}

func TestServe_CallsLaunchServer(t *testing.T) {
	stubDbConnection()
	success := make(chan bool)
	launchServerFunc = func(portStr string, router *mux.Router) { // Mock
		success <- true
	}
	timer := time.NewTimer(1 * time.Second)

	go serveAction(nil)

	select {
	case <-success:
	case <-timer.C:
		assert.Fail(t, "launchServer not called within 1 second of serve()")
	}
}

func TestServe_BaseHealthCheckEndpoint(t *testing.T) {
	stubDbConnection()
	success := make(chan bool)
	launchServerFunc = func(portStr string, router *mux.Router) { // Mock
		req := httptest.NewRequest("GET", "/", strings.NewReader(""))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, req)
		responseBody, _ := ioutil.ReadAll(response.Result().Body)
		success <- (string(responseBody) == "OK")
	}

	timer := time.NewTimer(1 * time.Second)

	go serveAction(nil)

	select {
	case <-success:
	case <-timer.C:
		assert.Fail(t, "launchServer not called within 1 second of serve()")
	}
}

func TestDumpMetadata_RawText(t *testing.T) {
	buf := &bytes.Buffer{}

	err := dumpMetadata(buf, sampleMTLText)

	assert.Nil(t, err)

	var parsed map[string]interface{}
	assert.Nil(t, json.Unmarshal(buf.Bytes(), &parsed))
	root, ok := parsed["L1_METADATA_FILE"].(map[string]interface{})
	assert.True(t, ok, "expected L1_METADATA_FILE object in output")
	info, ok := root["METADATA_FILE_INFO"].(map[string]interface{})
	assert.True(t, ok, "expected METADATA_FILE_INFO object in output")
	assert.Equal(t, "LANDSAT_8", info["SPACECRAFT_ID"])
	assert.Equal(t, float64(69), info["WRS_PATH"])
}

func TestDumpMetadata_File(t *testing.T) {
	dir, err := ioutil.TempDir("", "pygaarst-cmd")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)
	mtlPath := filepath.Join(dir, "LC80690142013153LGN00_MTL.txt")
	assert.Nil(t, ioutil.WriteFile(mtlPath, []byte(sampleMTLText), 0644))

	buf := &bytes.Buffer{}
	err = dumpMetadata(buf, mtlPath)

	assert.Nil(t, err)
	assert.Contains(t, buf.String(), `"SPACECRAFT_ID": "LANDSAT_8"`)
}

func TestDumpMetadata_BadLocation(t *testing.T) {
	err := dumpMetadata(&bytes.Buffer{}, "/no/such/place/anywhere")
	assert.NotNil(t, err)
}
