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
	"errors"
	"fmt"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrors(t *testing.T) {
	Convey("ConfigErrors name the key, value and component", t, func() {
		err := NewConfigError("sel1", "min count", "abc", ErrInvalidValue)
		So(err.Error(), ShouldEqual, "invalid parameter value 'min count' (abc) [sel1]")
		So(errors.Is(err, ErrInvalidValue), ShouldBeTrue)

		err = NewConfigError("lib1", "timepoint", nil, ErrMissingKey)
		So(err.Error(), ShouldEqual, "missing required config value 'timepoint' [lib1]")

		var wrapped error = fmt.Errorf("building selection: %w", err)

		var ce *ConfigError
		So(errors.As(wrapped, &ce), ShouldBeTrue)
		So(ce.Component, ShouldEqual, "lib1")
	})

	Convey("DataErrors preserve their underlying cause", t, func() {
		_, openErr := os.Open("/non/existent/file")
		err := NewDataError("lib1", fmt.Errorf("%w: %w", ErrUnreadable, openErr))

		So(errors.Is(err, ErrUnreadable), ShouldBeTrue)
		So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		So(err.Error(), ShouldEndWith, "[lib1]")
	})
}

func TestTimepoints(t *testing.T) {
	Convey("NewTimepoints sorts and de-duplicates", t, func() {
		tps := NewTimepoints(2, 0, 1, 2, 0)
		So(tps, ShouldResemble, Timepoints{0, 1, 2})
		So(tps.Later(), ShouldResemble, Timepoints{1, 2})
		So(tps.Floats(), ShouldResemble, []float64{0, 1, 2})
		So(tps.Validate(), ShouldBeNil)
	})

	Convey("Validate requires at least 2 timepoints starting at 0", t, func() {
		So(NewTimepoints(0).Validate(), ShouldEqual, ErrTooFewTimepoints)
		So(NewTimepoints(1, 2).Validate(), ShouldEqual, ErrMissingTimepoint0)
		So(NewTimepoints(-1, 0, 2).Validate(), ShouldEqual, ErrNegativeTimepoint)
	})
}
