/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package errs defines the two failure classes raised by the table engine.
// All constructors wrap one of the sentinels, so callers classify failures
// with errors.Is.
package errs

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument reports a malformed argument: unknown keys, unknown
	// aggregate functions, bad selector types and similar.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange reports a row position outside [-rows, rows).
	ErrOutOfRange = errors.New("out of range")
)

// InvalidArgument returns an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// OutOfRange returns an error wrapping ErrOutOfRange.
func OutOfRange(format string, args ...interface{}) error {
	return errors.Wrapf(ErrOutOfRange, format, args...)
}

// IsInvalidArgument reports whether err was caused by an invalid argument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsOutOfRange reports whether err was caused by an out of range position.
func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}
