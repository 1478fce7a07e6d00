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

// Package mutation calls the mutations in a sequence relative to a wild type,
// giving a descriptor for each distinct variant.
package mutation

import (
	"fmt"
	"strconv"
	"strings"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrTooManyMutations = Error("too many mutations")
	ErrNoWildType       = Error("no wild type sequence")
	ErrBadWildType      = Error("wild type sequence contains unexpected characters")
	ErrNotCodons        = Error("coding wild type sequence length is not a multiple of 3")

	// WildType is the descriptor of a sequence with no mutations.
	WildType = "_wt"

	separator    = ", "
	codonLength  = 3
	wtAlphabet   = "ACGT"
	synonymous   = "p.="
	unknownAmino = "Xaa"
)

// Caller calls mutations. Call returns ErrTooManyMutations for sequences that
// should not be counted.
type Caller interface {
	Call(seq string) (string, error)
	Calls() int
}

// WildTypeSequence describes the sequence mutations are called against.
// Positions in descriptors are offset by ReferenceOffset. Coding sequences
// also get protein level descriptors.
type WildTypeSequence struct {
	Sequence        string
	Coding          bool
	ReferenceOffset int
}

// Validate checks the wild type is usable, returning the upper-cased
// sequence.
func (w WildTypeSequence) Validate() (string, error) {
	seq := strings.ToUpper(w.Sequence)

	if seq == "" {
		return "", ErrNoWildType
	}

	for _, r := range seq {
		if !strings.ContainsRune(wtAlphabet, r) {
			return "", ErrBadWildType
		}
	}

	if w.Coding && len(seq)%codonLength != 0 {
		return "", ErrNotCodons
	}

	return seq, nil
}

type result struct {
	descriptor string
	err        error
}

// Ungapped calls mutations by comparing sequences base by base to a wild type
// of the same length. Results are cached.
type Ungapped struct {
	wt           string
	coding       bool
	offset       int
	maxMutations int
	calls        int
	cache        map[string]result
}

// NewUngapped returns an Ungapped caller for the given wild type that rejects
// sequences with more than maxMutations differences.
func NewUngapped(wt WildTypeSequence, maxMutations int) (*Ungapped, error) {
	seq, err := wt.Validate()
	if err != nil {
		return nil, err
	}

	return &Ungapped{
		wt:           seq,
		coding:       wt.Coding,
		offset:       wt.ReferenceOffset,
		maxMutations: maxMutations,
		cache:        make(map[string]result),
	}, nil
}

// Call returns the descriptor for the sequence, WildType if it matches the
// wild type exactly. Sequences of a different length to the wild type, or with
// more than the maximum number of mutations, return ErrTooManyMutations.
func (u *Ungapped) Call(seq string) (string, error) {
	seq = strings.ToUpper(seq)

	if r, ok := u.cache[seq]; ok {
		return r.descriptor, r.err
	}

	u.calls++

	desc, err := u.call(seq)
	u.cache[seq] = result{descriptor: desc, err: err}

	return desc, err
}

func (u *Ungapped) call(seq string) (string, error) {
	if len(seq) != len(u.wt) {
		return "", ErrTooManyMutations
	}

	var positions []int

	for i := 0; i < len(seq); i++ {
		if seq[i] != u.wt[i] {
			positions = append(positions, i)
		}
	}

	if len(positions) == 0 {
		return WildType, nil
	}

	if len(positions) > u.maxMutations {
		return "", ErrTooManyMutations
	}

	descs := make([]string, len(positions))

	for j, i := range positions {
		descs[j] = u.describe(seq, i)
	}

	return strings.Join(descs, separator), nil
}

func (u *Ungapped) describe(seq string, i int) string {
	desc := "c." + strconv.Itoa(i+1+u.offset) + string(u.wt[i]) + ">" + string(seq[i])

	if !u.coding {
		return desc
	}

	return desc + " (" + u.protein(seq, i) + ")"
}

func (u *Ungapped) protein(seq string, i int) string {
	start := i - i%codonLength
	wtAA := translate(u.wt[start : start+codonLength])
	mutAA := translate(seq[start : start+codonLength])

	if wtAA == mutAA {
		return synonymous
	}

	return fmt.Sprintf("p.%s%d%s", wtAA, start/codonLength+1+u.offset/codonLength, mutAA)
}

// Calls returns the number of distinct sequences that have been called.
func (u *Ungapped) Calls() int { return u.calls }

// ClearCache frees the memory used by cached calls.
func (u *Ungapped) ClearCache() {
	u.cache = make(map[string]result)
}

func translate(codon string) string {
	if aa, ok := codonTable[codon]; ok {
		return aa
	}

	return unknownAmino
}
