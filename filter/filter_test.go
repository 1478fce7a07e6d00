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

package filter

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFilter(t *testing.T) {
	Convey("Filters know their scope", t, func() {
		So(Recognised(ScopeLibrary), ShouldResemble, []Key{MinQuality, AvgQuality, Chastity, MaxMutations})
		So(Recognised(ScopeSelection), ShouldResemble,
			[]Key{MaxBarcodeVariation, MinCount, MinInputCount, MinRSquared})

		_, ok := Key("max frobs").Scope()
		So(ok, ShouldBeFalse)

		_, ok = Total.Scope()
		So(ok, ShouldBeFalse)
	})

	Convey("Messages fall back to the key", t, func() {
		msgs := DefaultMessages()
		So(msgs.Message(Chastity), ShouldEqual, "not chaste")
		So(msgs.Message(Key("other")), ShouldEqual, "other")
	})

	Convey("Only enabled filters are active", t, func() {
		So(Read{}.Active(false), ShouldBeNil)
		So(Read{MinQuality: 20, Chastity: true}.Active(true), ShouldResemble,
			[]Key{MinQuality, Chastity, MaxMutations})

		v := DefaultVariant()
		So(math.IsNaN(v.MaxBarcodeVariation), ShouldBeTrue)
		So(v.Active(), ShouldBeNil)

		v.MaxBarcodeVariation = 0.5
		v.MinRSquared = 0.2
		So(v.Active(), ShouldResemble, []Key{MaxBarcodeVariation, MinRSquared})
		So(v.Enabled(MaxBarcodeVariation), ShouldBeTrue)
		So(v.Enabled(MinCount), ShouldBeFalse)
	})
}

func TestStats(t *testing.T) {
	Convey("Given some read filter statistics", t, func() {
		s := NewStats(MinQuality, AvgQuality, Chastity)
		So(s.Count(Total), ShouldEqual, 0)

		s.Fail(1, MinQuality, AvgQuality)
		s.Fail(1, AvgQuality)
		s.Fail(3, Chastity)
		s.Fail(0, Chastity)

		Convey("Each failure counts once towards the total", func() {
			So(s.Count(MinQuality), ShouldEqual, 1)
			So(s.Count(AvgQuality), ShouldEqual, 2)
			So(s.Count(Chastity), ShouldEqual, 3)
			So(s.Count(Total), ShouldEqual, 5)
		})

		Convey("The report is sorted by count with total last", func() {
			var buf bytes.Buffer
			So(s.WriteReport(&buf), ShouldBeNil)
			So(buf.String(), ShouldEqual,
				"not chaste\t3\naverage quality\t2\nsingle-base quality\t1\ntotal\t5\n")
		})

		Convey("Ties are broken by declaration order", func() {
			s2 := NewStats(MinRSquared, MinCount, MaxBarcodeVariation)
			s2.Fail(2, MinRSquared)
			s2.Fail(2, MinCount)
			So(s2.SumTotal(), ShouldEqual, 4)

			lines := s2.Report()
			So(len(lines), ShouldEqual, 4)
			So(lines[0].Key, ShouldEqual, MinCount)
			So(lines[1].Key, ShouldEqual, MinRSquared)
			So(lines[2].Key, ShouldEqual, MaxBarcodeVariation)
			So(lines[3].Key, ShouldEqual, Total)
			So(lines[3].Count, ShouldEqual, 4)
		})

		Convey("Untracked filters are tracked when they fail", func() {
			s.Fail(4, MaxMutations)
			So(s.Keys(), ShouldResemble, []Key{MinQuality, AvgQuality, Chastity, MaxMutations})
			So(s.SumTotal(), ShouldEqual, 10)
		})

		Convey("The report can be written to a file", func() {
			dir := filepath.Join(t.TempDir(), "lib_1")
			path, err := s.WriteFile(dir)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, filepath.Join(dir, ReportFile))

			content, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(content), ShouldEndWith, "total\t5\n")
		})
	})

	Convey("You can supply your own messages", t, func() {
		s := NewStatsWithMessages(Messages{MinCount: "rare"}, MinCount)
		s.Fail(1, MinCount)

		lines := s.Report()
		So(lines[0].Message, ShouldEqual, "rare")
		So(lines[1].Message, ShouldEqual, "total")
	})
}
