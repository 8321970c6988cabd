// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package svchain

import "strings"

// Arm is a chromosome arm.
type Arm uint8

const (
	ArmUnknown Arm = iota
	ArmP
	ArmQ
)

func (a Arm) String() string {
	switch a {
	case ArmP:
		return "P"
	case ArmQ:
		return "Q"
	}
	return "U"
}

// Centromeres holds GRCh37 centromere start positions.
// It's read-only and shared by all clusters.
var Centromeres = map[string]int64{
	"1":  121535434,
	"2":  92326171,
	"3":  90504854,
	"4":  49660117,
	"5":  46405641,
	"6":  58830166,
	"7":  58054331,
	"8":  43838887,
	"9":  47367679,
	"10": 39254935,
	"11": 51644205,
	"12": 34856694,
	"13": 16000000,
	"14": 16000000,
	"15": 17000000,
	"16": 35335801,
	"17": 22263006,
	"18": 15460898,
	"19": 24681782,
	"20": 26369569,
	"21": 11288129,
	"22": 13000000,
	"X":  58632012,
	"Y":  10104553,
}

// ArmOf returns the arm of a position, chromosome names with
// or without the "chr" prefix are accepted.
func ArmOf(chr string, pos int64) Arm {
	c, ok := Centromeres[strings.TrimPrefix(chr, "chr")]
	if !ok {
		return ArmUnknown
	}
	if pos < c {
		return ArmP
	}
	return ArmQ
}
