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

package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/wtsi-hgi/enrich/types"
)

// FASTQ says which read file a library has. Exactly one of Forward and
// Reverse must be set; reverse reads are reverse complemented. Start and
// Length optionally trim barcode reads, counting bases from 1.
type FASTQ struct {
	Forward string `mapstructure:"forward"`
	Reverse string `mapstructure:"reverse"`
	Start   int    `mapstructure:"start"`
	Length  int    `mapstructure:"length"`
}

// Path returns the read file path and whether it holds reverse reads.
func (f FASTQ) Path() (string, bool) {
	if f.Reverse != "" {
		return f.Reverse, true
	}

	return f.Forward, false
}

// Barcodes holds barcode settings. MinCount only applies to libraries.
type Barcodes struct {
	MapFile  string `mapstructure:"map file"`
	MinCount int    `mapstructure:"min count"`
}

// WildType describes the sequence mutations are called against.
type WildType struct {
	Sequence        string `mapstructure:"sequence"`
	Coding          bool   `mapstructure:"coding"`
	ReferenceOffset int    `mapstructure:"reference offset"`
}

// Library is the configuration of one sequencing library. A library with
// both Barcodes and WildType is a barcode-variant library; with only one of
// them it is a barcode or variant library respectively.
type Library struct {
	Name                string         `mapstructure:"name"`
	Timepoint           *int           `mapstructure:"timepoint"`
	FASTQ               *FASTQ         `mapstructure:"fastq"`
	Filters             map[string]any `mapstructure:"filters"`
	Barcodes            *Barcodes      `mapstructure:"barcodes"`
	WildType            *WildType      `mapstructure:"wild type"`
	ReportFilteredReads bool           `mapstructure:"report filtered reads"`
	OutputDir           string         `mapstructure:"output directory"`
}

// Carryover configures nonspecific carryover correction.
type Carryover struct {
	Method   string `mapstructure:"method"`
	Position int    `mapstructure:"position"`
}

// Selection is the configuration of a time-course selection made up of
// libraries at two or more timepoints.
type Selection struct {
	Name        string         `mapstructure:"name"`
	Libraries   []*Library     `mapstructure:"libraries"`
	Barcodes    *Barcodes      `mapstructure:"barcodes"`
	Filters     map[string]any `mapstructure:"filters"`
	Carryover   *Carryover     `mapstructure:"carryover correction"`
	NormalizeWT bool           `mapstructure:"normalize wt"`
	OutputDir   string         `mapstructure:"output directory"`
}

// MapFile returns the selection-level barcode map file, if any.
func (s *Selection) MapFile() string {
	if s.Barcodes == nil {
		return ""
	}

	return s.Barcodes.MapFile
}

// LoadSelection reads a selection run file in any format viper supports
// (JSON, YAML, TOML...) and checks each library is complete.
func LoadSelection(path string) (*Selection, error) {
	var s Selection

	if err := unmarshalFile(path, &s); err != nil {
		return nil, err
	}

	if s.Name == "" {
		return nil, types.NewConfigError(path, "name", nil, types.ErrMissingKey)
	}

	if len(s.Libraries) == 0 {
		return nil, types.NewConfigError(s.Name, "libraries", nil, types.ErrMissingKey)
	}

	for i, l := range s.Libraries {
		if l == nil {
			return nil, types.NewConfigError(s.Name, "libraries", i, types.ErrInvalidValue)
		}

		if err := l.Validate(); err != nil {
			return nil, err
		}
	}

	return &s, nil
}

// LoadLibrary reads a single library run file.
func LoadLibrary(path string) (*Library, error) {
	var l Library

	if err := unmarshalFile(path, &l); err != nil {
		return nil, err
	}

	if l.Name == "" {
		return nil, types.NewConfigError(path, "name", nil, types.ErrMissingKey)
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}

	return &l, nil
}

func unmarshalFile(path string, out any) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return types.NewConfigError(path, "", nil, fmt.Errorf("%w: %w", types.ErrUnreadable, err))
	}

	if err := v.Unmarshal(out); err != nil {
		return types.NewConfigError(path, "", nil, fmt.Errorf("%w: %w", types.ErrInvalidValue, err))
	}

	return nil
}

// Validate checks the library has a name, a non-negative timepoint and
// exactly one read file.
func (l *Library) Validate() error {
	if l.Name == "" {
		return types.NewConfigError("library", "name", nil, types.ErrMissingKey)
	}

	if l.Timepoint == nil {
		return types.NewConfigError(l.Name, "timepoint", nil, types.ErrMissingKey)
	}

	if *l.Timepoint < 0 {
		return types.NewConfigError(l.Name, "timepoint", *l.Timepoint, types.ErrNegativeTimepoint)
	}

	if l.FASTQ == nil || (l.FASTQ.Forward == "" && l.FASTQ.Reverse == "") {
		return types.NewConfigError(l.Name, "fastq", nil, types.ErrMissingKey)
	}

	if l.FASTQ.Forward != "" && l.FASTQ.Reverse != "" {
		return types.NewConfigError(l.Name, "fastq", "forward and reverse", types.ErrInvalidValue)
	}

	if l.FASTQ.Start < 0 || l.FASTQ.Length < 0 {
		return types.NewConfigError(l.Name, "fastq", "negative start or length", types.ErrInvalidValue)
	}

	if l.Barcodes != nil && l.Barcodes.MinCount < 0 {
		return types.NewConfigError(l.Name, "min count", l.Barcodes.MinCount, types.ErrInvalidValue)
	}

	return nil
}

// MapFile returns the library's own barcode map file, if any.
func (l *Library) MapFile() string {
	if l.Barcodes == nil {
		return ""
	}

	return l.Barcodes.MapFile
}
