// Copyright 2015 The TCell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package braille holds the internal dot-bit representation shared by
// every driver: the fixed dot-number-to-bit permutation, the per-driver
// output table that reorders those bits into wire order, and the
// character-to-dots translation table.
package braille

// Dots is one braille cell: 8 dot bits in the internal bit layout.
type Dots uint8

// Internal dot bits. The permutation (1,4)->(0,1), (2,5)->(2,3),
// (3,6)->(4,5), (7,8)->(6,7) is fixed so that overlays such as the
// cursor and the attribute underline compose with a plain bitwise OR:
// dot pairs that are horizontally adjacent (same row, left and right
// column) on the physical cell occupy neighbouring bits, which keeps a pattern like "both columns of the bottom row"
// expressible as a single OR mask regardless of the rest of the cell.
const (
	Dot1 Dots = 0X01
	Dot2 Dots = 0X04
	Dot3 Dots = 0X10
	Dot4 Dots = 0X02
	Dot5 Dots = 0X08
	Dot6 Dots = 0X20
	Dot7 Dots = 0X40
	Dot8 Dots = 0X80
)

// All8 is every dot in an 8-dot cell set.
const All8 = Dot1 | Dot2 | Dot3 | Dot4 | Dot5 | Dot6 | Dot7 | Dot8

// Lower6 is the six dots of a 6-dot (grade-1/grade-2 literary braille) cell.
const Lower6 = Dot1 | Dot2 | Dot3 | Dot4 | Dot5 | Dot6

// byDotNumber indexes dot bits by their 1-based dot number, byDotNumber[0] unused.
var byDotNumber = [9]Dots{0, Dot1, Dot2, Dot3, Dot4, Dot5, Dot6, Dot7, Dot8}

// ByNumber returns the internal bit for dot number n (1..8). It returns 0
// for any n outside that range.
func ByNumber(n int) Dots {
	if n < 1 || n > 8 {
		return 0
	}
	return byDotNumber[n]
}

// OutputTable maps the internal dot representation to a device's wire bit
// order. It is a pure 256-entry lookup built once per driver from that
// driver's physical dot numbering.
type OutputTable [256]byte

// Identity is the output table for a device whose wire order matches the
// internal bit layout exactly (no translation needed).
func Identity() OutputTable {
	var t OutputTable
	for i := range t {
		t[i] = byte(i)
	}
	return t
}

// NewOutputTable builds an OutputTable from a device's physical dot bit
// assignment, given as wireBit[n-1] = the wire-order bit used for
// internal dot number n. A device with fewer than 8 dots gives 0 for
// the dots it doesn't have, so those dots contribute no wire bit.
func NewOutputTable(wireBit [8]byte) OutputTable {
	var t OutputTable
	for v := 0; v < 256; v++ {
		var out byte
		for n := 1; n <= 8; n++ {
			if Dots(v)&ByNumber(n) != 0 {
				out |= wireBit[n-1]
			}
		}
		t[v] = out
	}
	return t
}

// Translate maps one internal cell through the table.
func (t OutputTable) Translate(internal Dots) byte {
	return t[internal]
}

// CursorDots is the overlay pattern used to mark the cursor's cell. BRLTTY
// drivers traditionally use the bottom-row dots (7,8) for an underline-style
// cursor and all eight for a block-style cursor.
func CursorDots(block bool) Dots {
	if block {
		return All8
	}
	return Dot7 | Dot8
}

// UnderlineDots is the overlay pattern used for the attribute underline.
// Two patterns are supported: bottom row only, and bottom two rows, picked
// by the caller according to the attribute's color class (see
// internal/render).
func UnderlineDots(heavy bool) Dots {
	if heavy {
		return Dot3 | Dot6 | Dot7 | Dot8
	}
	return Dot7 | Dot8
}
