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

// Package fastq provides the reads that libraries count, along with the
// per-read operations used to filter them.
package fastq

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoQuality = Error("read has no quality scores for every base")

	// PhredOffset is subtracted from FASTQ quality characters to give Phred
	// scores.
	PhredOffset = 33

	chastityField = 1
	filteredFlag  = "Y"
)

// Read is a single sequencing read. Qual holds Phred scores, not encoded
// characters.
type Read struct {
	Header string
	Seq    []byte
	Qual   []byte
}

// NewRead returns a Read from a header, sequence and FASTQ-encoded quality
// string.
func NewRead(header, sequence, quality string) *Read {
	qual := make([]byte, len(quality))

	for i := 0; i < len(quality); i++ {
		qual[i] = quality[i] - PhredOffset
	}

	return &Read{Header: header, Seq: []byte(sequence), Qual: qual}
}

// Sequence returns the read's sequence in upper case.
func (r *Read) Sequence() string {
	return strings.ToUpper(string(r.Seq))
}

// Chaste returns false if the read's Illumina header says it failed the
// sequencer's chastity filter, ie. the second header field looks like
// "1:Y:0:ACGT". Headers without that information are considered chaste.
func (r *Read) Chaste() bool {
	fields := strings.Fields(r.Header)
	if len(fields) <= chastityField {
		return true
	}

	parts := strings.Split(fields[chastityField], ":")

	return len(parts) < 2 || parts[1] != filteredFlag
}

// RevComp returns a new Read that is the reverse complement of this one, with
// qualities reversed to match.
func (r *Read) RevComp() *Read {
	n := len(r.Seq)
	rc := &Read{Header: r.Header, Seq: make([]byte, n), Qual: make([]byte, len(r.Qual))}

	for i, b := range r.Seq {
		rc.Seq[n-1-i] = complement(b)
	}

	for i, q := range r.Qual {
		rc.Qual[len(r.Qual)-1-i] = q
	}

	return rc
}

func complement(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'T':
		return 'A'
	case 'a':
		return 't'
	case 'c':
		return 'g'
	case 'g':
		return 'c'
	case 't':
		return 'a'
	default:
		return b
	}
}

// Trim returns a new Read holding length bases starting at the 1-based start
// position. A start below 1 is treated as 1, and a length of 0 or less, or
// that runs past the end, keeps everything to the end of the read.
func (r *Read) Trim(start, length int) *Read {
	from := max(start-1, 0)
	from = min(from, len(r.Seq))

	to := len(r.Seq)
	if length > 0 && from+length < to {
		to = from + length
	}

	t := &Read{Header: r.Header, Seq: r.Seq[from:to]}

	if len(r.Qual) >= to {
		t.Qual = r.Qual[from:to]
	}

	return t
}

// MinQuality returns the lowest Phred score in the read, or 0 for an empty
// read.
func (r *Read) MinQuality() int {
	if len(r.Qual) == 0 {
		return 0
	}

	lowest := r.Qual[0]

	for _, q := range r.Qual[1:] {
		lowest = min(lowest, q)
	}

	return int(lowest)
}

// MeanQuality returns the mean Phred score of the read, or 0 for an empty
// read.
func (r *Read) MeanQuality() float64 {
	if len(r.Qual) == 0 {
		return 0
	}

	var sum int

	for _, q := range r.Qual {
		sum += int(q)
	}

	return float64(sum) / float64(len(r.Qual))
}

// Source provides reads one at a time. Next returns io.EOF once there are no
// more reads.
type Source interface {
	Next() (*Read, error)
	Close() error
}

// fileSource reads a FASTQ file, which may be compressed.
type fileSource struct {
	path   string
	reader *fastx.Reader
}

// Open returns a Source reading the FASTQ file at path. gzip, xz and zstd
// compressed files are read transparently.
func Open(path string) (Source, error) {
	reader, err := fastx.NewReader(seq.DNAredundant, path, fastx.DefaultIDRegexp)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return &fileSource{path: path, reader: reader}, nil
}

// Next returns the next read in the file. The returned Read does not share
// memory with the underlying reader.
func (f *fileSource) Next() (*Read, error) {
	record, err := f.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	if len(record.Seq.Qual) != len(record.Seq.Seq) {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoQuality, record.Name, f.path)
	}

	read := &Read{
		Header: string(record.Name),
		Seq:    append([]byte(nil), record.Seq.Seq...),
		Qual:   make([]byte, len(record.Seq.Qual)),
	}

	for i, q := range record.Seq.Qual {
		read.Qual[i] = q - PhredOffset
	}

	return read, nil
}

func (f *fileSource) Close() error {
	f.reader.Close()

	return nil
}

type sliceSource struct {
	reads []*Read
	next  int
}

// NewSliceSource returns a Source that provides the given reads.
func NewSliceSource(reads ...*Read) Source {
	return &sliceSource{reads: reads}
}

func (s *sliceSource) Next() (*Read, error) {
	if s.next >= len(s.reads) {
		return nil, io.EOF
	}

	r := s.reads[s.next]
	s.next++

	return r, nil
}

func (s *sliceSource) Close() error { return nil }
