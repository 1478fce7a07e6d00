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

package barcodemap

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/enrich/types"
)

// bz2Map is "# barcode variant\nacgt AAAN\nTTTT CCCC\n" compressed with bzip2.
var bz2Map = []byte{ //nolint:gochecknoglobals
	0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0xba, 0x95,
	0xd5, 0x4e, 0x00, 0x00, 0x04, 0xd7, 0x80, 0x40, 0x10, 0x48, 0x00, 0x28,
	0x01, 0x04, 0x00, 0x3e, 0xa1, 0x95, 0x00, 0x20, 0x00, 0x31, 0x4c, 0x26,
	0x9a, 0x03, 0x4c, 0x42, 0x14, 0xfd, 0x53, 0xd2, 0x7e, 0xa9, 0xe8, 0x26,
	0x27, 0xea, 0x50, 0x83, 0xfb, 0x03, 0x83, 0xec, 0xb4, 0xb8, 0x12, 0xf0,
	0xd9, 0xba, 0xf3, 0x09, 0x6f, 0x7d, 0xc0, 0xe9, 0x92, 0x3c, 0x17, 0x72,
	0x45, 0x38, 0x50, 0x90, 0xba, 0x95, 0xd5, 0x4e,
}

func writeMap(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoad(t *testing.T) {
	Convey("You can load a plain text barcode map", t, func() {
		path := writeMap(t, "map.txt", "# comment\n\nAAAA acgt\ncccc\tACGN\nAAAA ACGT\n")

		m, err := Load(path)
		So(err, ShouldBeNil)
		So(m.Path(), ShouldEqual, path)
		So(m.Len(), ShouldEqual, 2)
		So(m.Has("AAAA"), ShouldBeTrue)
		So(m.Has("GGGG"), ShouldBeFalse)

		v, ok := m.Variant("CCCC")
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, "ACGN")

		v, ok = m.Variant("AAAA")
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, "ACGT")

		Convey("And record barcodes against descriptors as they are counted", func() {
			So(m.Barcodes("c.1A>G"), ShouldBeEmpty)

			m.AddBarcode("c.1A>G", "AAAA")
			m.AddBarcode("c.1A>G", "CCCC")
			m.AddBarcode("c.1A>G", "AAAA")
			m.SetDescriptor("AAAA", "c.1A>G")
			m.SetDescriptor("GGGG", FilteredDescriptor)

			So(m.Barcodes("c.1A>G"), ShouldResemble, []string{"AAAA", "CCCC"})

			d, ok := m.Descriptor("GGGG")
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, FilteredDescriptor)

			_, ok = m.Descriptor("TTTT")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("A barcode mapped to two different variants is an error", t, func() {
		path := writeMap(t, "map.txt", "AAAA variant1\nAAAA variant2\n")

		_, err := Load(path)
		So(err, ShouldNotBeNil)
		So(errors.Is(err, ErrFormat), ShouldBeTrue)

		path = writeMap(t, "map.txt", "AAAA ACGT\nAAAA ACGA\n")

		_, err = Load(path)
		So(errors.Is(err, ErrFormat), ShouldBeTrue)

		var de *types.DataError
		So(errors.As(err, &de), ShouldBeTrue)
		So(de.Component, ShouldEqual, path)
		So(err.Error(), ShouldContainSubstring, "line 2")
	})

	Convey("Malformed lines are errors", t, func() {
		for _, content := range []string{
			"AAAA\n",
			"AAAA ACGT extra\n",
			"AANA ACGT\n",
			"AAAA ACXT\n",
		} {
			_, err := Load(writeMap(t, "map.txt", content))
			So(errors.Is(err, ErrFormat), ShouldBeTrue)
		}
	})

	Convey("A missing file is an unreadable DataError", t, func() {
		_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
		So(errors.Is(err, types.ErrUnreadable), ShouldBeTrue)
		So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
	})

	Convey("Compressed maps are decompressed by extension", t, func() {
		dir := t.TempDir()
		gzPath := filepath.Join(dir, "map.txt.gz")

		f, err := os.Create(gzPath)
		So(err, ShouldBeNil)

		w := pgzip.NewWriter(f)
		_, err = w.Write([]byte("GGGG TTTT\n"))
		So(err, ShouldBeNil)
		So(w.Close(), ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		m, err := Load(gzPath)
		So(err, ShouldBeNil)
		v, _ := m.Variant("GGGG")
		So(v, ShouldEqual, "TTTT")

		bz2Path := filepath.Join(dir, "map.txt.bz2")
		So(os.WriteFile(bz2Path, bz2Map, 0600), ShouldBeNil)

		m, err = Load(bz2Path)
		So(err, ShouldBeNil)
		So(m.Len(), ShouldEqual, 2)
		v, _ = m.Variant("ACGT")
		So(v, ShouldEqual, "AAAN")

		Convey("Decompressors are closed without closing the file", func() {
			for _, path := range []string{gzPath, bz2Path} {
				f, err := os.Open(path)
				So(err, ShouldBeNil)

				r, err := decompressor(path, f)
				So(err, ShouldBeNil)

				content, err := io.ReadAll(r)
				So(err, ShouldBeNil)
				So(len(content), ShouldBeGreaterThan, 0)
				So(r.Close(), ShouldBeNil)

				_, err = f.Seek(0, io.SeekStart)
				So(err, ShouldBeNil)
				So(f.Close(), ShouldBeNil)
			}
		})
	})
}
