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

package util

import (
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
)

// Severity is a syslog-style message severity indicator
type Severity int

// Severity levels used in audit messages
const (
	ERROR Severity = 3
	WARN  Severity = 4
	INFO  Severity = 6
)

// LogContext provides the identifying information attached to every log message
type LogContext interface {
	AppName() string
	SessionID() string
	LogRootDir() string
}

// BasicLogContext is a minimal LogContext with a lazily created session ID
type BasicLogContext struct {
	sessionID string
}

// AppName returns the default application name
func (c *BasicLogContext) AppName() string {
	return "pygaarst"
}

// SessionID returns a session ID, creating one if needed
func (c *BasicLogContext) SessionID() string {
	if c.sessionID == "" {
		c.sessionID, _ = PsuUUID()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *BasicLogContext) LogRootDir() string {
	return ""
}

// LogAuditInput is the set of fields for an audit-style log message
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity Severity
}

func logMessage(ctx LogContext, severity string, message string) {
	log.Printf("[%s] %s %s: %s", severity, ctx.AppName(), ctx.SessionID(), message)
}

// LogInfo logs an informational message
func LogInfo(ctx LogContext, message string) {
	logMessage(ctx, "INFO", message)
}

// LogAlert logs a message that needs operator attention
func LogAlert(ctx LogContext, message string) {
	logMessage(ctx, "ALERT", message)
}

// LogSimpleErr logs an error with an explanatory message
func LogSimpleErr(ctx LogContext, message string, err error) {
	logMessage(ctx, "ERROR", message+fmt.Sprintf(" (%v)", err))
}

// LogAudit logs a structured audit message
func LogAudit(ctx LogContext, input LogAuditInput) {
	logMessage(ctx, "AUDIT", fmt.Sprintf("actor=%s action=%s actee=%s severity=%d: %s",
		input.Actor, input.Action, input.Actee, input.Severity, input.Message))
}

// HTTPError logs an error condition and writes it to the HTTP response
func HTTPError(r *http.Request, w http.ResponseWriter, ctx LogContext, message string, code int) {
	LogAlert(ctx, fmt.Sprintf("%d on %s %s: %s", code, r.Method, r.URL.Path, message))
	http.Error(w, message, code)
}

// PsuUUID makes a psuedo-UUID for session tracking
func PsuUUID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:]), nil
}
