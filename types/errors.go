/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package types

import (
	"fmt"
	"strings"
)

// Error is the type of the sentinel errors returned by this package.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrMissingKey    = Error("missing required config value")
	ErrInvalidValue  = Error("invalid parameter value")
	ErrNotUnique     = Error("value is not unique")
	ErrUnsupported   = Error("unsupported filter combination")
	ErrEmptyTable    = Error("no entities were counted")
	ErrUnreadable    = Error("unable to read input")
	ErrMalformedFile = Error("malformed input file")
)

// ConfigError describes a fatal problem with the configuration of a named
// component, such as a missing key, an out-of-range value or a uniqueness
// violation.
type ConfigError struct {
	Component string
	Key       string
	Value     any
	Err       error
}

// NewConfigError returns a ConfigError for the given component and key. value
// may be nil when the problem is that the key is absent.
func NewConfigError(component, key string, value any, err error) *ConfigError {
	return &ConfigError{Component: component, Key: key, Value: value, Err: err}
}

func (e *ConfigError) Error() string {
	var b strings.Builder

	b.WriteString(e.Err.Error())

	if e.Key != "" {
		fmt.Fprintf(&b, " '%s'", e.Key)
	}

	if e.Value != nil {
		fmt.Fprintf(&b, " (%v)", e.Value)
	}

	fmt.Fprintf(&b, " [%s]", e.Component)

	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DataError describes a fatal problem with the data a named component was
// working on: an empty count table, or an unreadable or malformed input file.
// The underlying cause is preserved.
type DataError struct {
	Component string
	Err       error
}

// NewDataError returns a DataError for the given component wrapping err.
func NewDataError(component string, err error) *DataError {
	return &DataError{Component: component, Err: err}
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s [%s]", e.Err, e.Component)
}

func (e *DataError) Unwrap() error { return e.Err }
