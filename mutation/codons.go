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

// codonTable is the standard genetic code, giving three letter amino acid
// abbreviations with Ter for stop codons.
var codonTable = map[string]string{ //nolint:gochecknoglobals
	"TTT": "Phe", "TTC": "Phe", "TTA": "Leu", "TTG": "Leu",
	"TCT": "Ser", "TCC": "Ser", "TCA": "Ser", "TCG": "Ser",
	"TAT": "Tyr", "TAC": "Tyr", "TAA": "Ter", "TAG": "Ter",
	"TGT": "Cys", "TGC": "Cys", "TGA": "Ter", "TGG": "Trp",
	"CTT": "Leu", "CTC": "Leu", "CTA": "Leu", "CTG": "Leu",
	"CCT": "Pro", "CCC": "Pro", "CCA": "Pro", "CCG": "Pro",
	"CAT": "His", "CAC": "His", "CAA": "Gln", "CAG": "Gln",
	"CGT": "Arg", "CGC": "Arg", "CGA": "Arg", "CGG": "Arg",
	"ATT": "Ile", "ATC": "Ile", "ATA": "Ile", "ATG": "Met",
	"ACT": "Thr", "ACC": "Thr", "ACA": "Thr", "ACG": "Thr",
	"AAT": "Asn", "AAC": "Asn", "AAA": "Lys", "AAG": "Lys",
	"AGT": "Ser", "AGC": "Ser", "AGA": "Arg", "AGG": "Arg",
	"GTT": "Val", "GTC": "Val", "GTA": "Val", "GTG": "Val",
	"GCT": "Ala", "GCC": "Ala", "GCA": "Ala", "GCG": "Ala",
	"GAT": "Asp", "GAC": "Asp", "GAA": "Glu", "GAG": "Glu",
	"GGT": "Gly", "GGC": "Gly", "GGA": "Gly", "GGG": "Gly",
}
