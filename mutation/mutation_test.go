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

package mutation

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestUngapped(t *testing.T) {
	Convey("A wild type must be valid", t, func() {
		_, err := NewUngapped(WildTypeSequence{}, 1)
		So(err, ShouldEqual, ErrNoWildType)

		_, err = NewUngapped(WildTypeSequence{Sequence: "ACGN"}, 1)
		So(err, ShouldEqual, ErrBadWildType)

		_, err = NewUngapped(WildTypeSequence{Sequence: "ACGT", Coding: true}, 1)
		So(err, ShouldEqual, ErrNotCodons)
	})

	Convey("Given a non-coding caller", t, func() {
		u, err := NewUngapped(WildTypeSequence{Sequence: "acgtacgt"}, 2)
		So(err, ShouldBeNil)

		Convey("It describes nucleotide changes", func() {
			desc, err := u.Call("ACGTACGT")
			So(err, ShouldBeNil)
			So(desc, ShouldEqual, WildType)

			desc, err = u.Call("ACTTACGA")
			So(err, ShouldBeNil)
			So(desc, ShouldEqual, "c.3G>T, c.8T>A")

			desc, err = u.Call("ANGTACGT")
			So(err, ShouldBeNil)
			So(desc, ShouldEqual, "c.2C>N")
		})

		Convey("It rejects sequences with too many mutations or the wrong length", func() {
			_, err := u.Call("TTTTACGT")
			So(err, ShouldEqual, ErrTooManyMutations)

			_, err = u.Call("ACGTACG")
			So(err, ShouldEqual, ErrTooManyMutations)
		})

		Convey("It caches calls", func() {
			for i := 0; i < 3; i++ {
				_, err := u.Call("ACTTACGT")
				So(err, ShouldBeNil)
				_, err = u.Call("TTTTACGT")
				So(err, ShouldEqual, ErrTooManyMutations)
			}

			So(u.Calls(), ShouldEqual, 2)

			u.ClearCache()
			_, err := u.Call("actTACGT")
			So(err, ShouldBeNil)
			So(u.Calls(), ShouldEqual, 3)
		})
	})

	Convey("Given a coding caller", t, func() {
		u, err := NewUngapped(WildTypeSequence{Sequence: "ATGAAATTT", Coding: true}, 3)
		So(err, ShouldBeNil)

		Convey("It describes protein changes", func() {
			desc, err := u.Call("ATGTAATTT")
			So(err, ShouldBeNil)
			So(desc, ShouldEqual, "c.4A>T (p.Lys2Ter)")

			desc, err = u.Call("ATGAAGTTA")
			So(err, ShouldBeNil)
			So(desc, ShouldEqual, "c.6A>G (p.=), c.9T>A (p.Phe3Leu)")

			desc, err = u.Call("ATGANATTT")
			So(err, ShouldBeNil)
			So(desc, ShouldEqual, "c.5A>N (p.Lys2Xaa)")
		})

		Convey("Positions are offset by the reference offset", func() {
			offset, err := NewUngapped(WildTypeSequence{Sequence: "ATGAAATTT", Coding: true, ReferenceOffset: 3}, 3)
			So(err, ShouldBeNil)

			desc, err := offset.Call("ATGTAATTT")
			So(err, ShouldBeNil)
			So(desc, ShouldEqual, "c.7A>T (p.Lys3Ter)")
		})
	})
}
