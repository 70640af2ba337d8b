// Copyright 2025 go-highway Authors
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

package gsla

import "fmt"

// Status is the closed set of outcomes returned by every library call.
type Status int

const (
	Ok Status = iota
	Error
	NoAcceleration
	PlatformNotFound
	DeviceNotFound
	InvalidState
	InvalidArgument
	NoValue
	CompilationError
	// NotImplemented is reserved at a high value so future statuses can be
	// inserted above CompilationError without shifting it.
	NotImplemented Status = 1024
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "Ok"
	case Error:
		return "Error"
	case NoAcceleration:
		return "NoAcceleration"
	case PlatformNotFound:
		return "PlatformNotFound"
	case DeviceNotFound:
		return "DeviceNotFound"
	case InvalidState:
		return "InvalidState"
	case InvalidArgument:
		return "InvalidArgument"
	case NoValue:
		return "NoValue"
	case CompilationError:
		return "CompilationError"
	case NotImplemented:
		return "NotImplemented"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MessageCallback receives diagnostic events: the status, a human-readable
// message, and file/function/line parameters, which the library's own
// reports (report, Report) leave empty and 0.
type MessageCallback func(status Status, message, file, function string, line int)

// StatusError adapts a Status into an error, for call sites that prefer
// Go's error idiom over an explicit Status return value.
type StatusError struct {
	Status  Status
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return e.Status.String()
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

func newStatusError(status Status, format string, args ...any) *StatusError {
	return &StatusError{Status: status, Message: fmt.Sprintf(format, args...)}
}
