// Package entities defines the domain types shared by the planning engine:
// FDI tooth codes, edentulous spans, abutment health records, prosthesis
// option candidates, rule hits and case plans. All values are plain data;
// nothing in this package performs I/O or holds state across requests.
package entities

import (
	"fmt"
	"strconv"
)

// ToothCode is a two-digit FDI tooth code. The first digit is the quadrant
// (1-4), the second the position from the midline (1-8).
type ToothCode string

// Arch identifies one dental arch.
type Arch string

const (
	ArchMaxilla  Arch = "maxilla"
	ArchMandible Arch = "mandible"
)

// Canonical traversal order for each arch: the right quadrant from its most
// distal tooth through the midline, then the left quadrant out to its most
// distal tooth (patient perspective).
//
//	Maxilla:  18..11 21..28
//	Mandible: 48..41 31..38
var (
	UpperOrder = buildArchOrder(1, 2)
	LowerOrder = buildArchOrder(4, 3)
)

// MidlineSeamIndex is the traversal index of the right central; the midline
// seam sits between this index and the next.
const MidlineSeamIndex = 7

// ArchSlots is the number of anatomical slots per arch.
const ArchSlots = 16

func buildArchOrder(rightQuadrant, leftQuadrant int) []ToothCode {
	order := make([]ToothCode, 0, ArchSlots)
	for pos := 8; pos >= 1; pos-- {
		order = append(order, ToothCode(strconv.Itoa(rightQuadrant*10+pos)))
	}
	for pos := 1; pos <= 8; pos++ {
		order = append(order, ToothCode(strconv.Itoa(leftQuadrant*10+pos)))
	}
	return order
}

// ArchOrder returns the canonical traversal order for an arch.
func ArchOrder(a Arch) []ToothCode {
	if a == ArchMaxilla {
		return UpperOrder
	}
	return LowerOrder
}

// ParseToothCode validates a raw tooth code string and returns it as a
// ToothCode. It rejects malformed codes and out-of-range quadrant or
// position digits.
func ParseToothCode(raw string) (ToothCode, error) {
	if len(raw) != 2 {
		return "", fmt.Errorf("tooth code %q must be exactly two digits", raw)
	}
	q := int(raw[0] - '0')
	p := int(raw[1] - '0')
	if q < 1 || q > 4 {
		return "", fmt.Errorf("tooth code %q has invalid quadrant digit %c (expected 1-4)", raw, raw[0])
	}
	if p < 1 || p > 8 {
		return "", fmt.Errorf("tooth code %q has invalid position digit %c (expected 1-8)", raw, raw[1])
	}
	return ToothCode(raw), nil
}

// Quadrant returns the FDI quadrant digit (1-4).
func (t ToothCode) Quadrant() int {
	return int(t[0] - '0')
}

// Position returns the position from the midline (1-8).
func (t ToothCode) Position() int {
	return int(t[1] - '0')
}

// Arch returns the arch the tooth belongs to.
func (t ToothCode) Arch() Arch {
	if q := t.Quadrant(); q == 1 || q == 2 {
		return ArchMaxilla
	}
	return ArchMandible
}

// Side returns "R" or "L" from the patient perspective.
func (t ToothCode) Side() string {
	if q := t.Quadrant(); q == 1 || q == 4 {
		return "R"
	}
	return "L"
}

// IsAnterior reports whether the tooth is a central, lateral or canine.
func (t ToothCode) IsAnterior() bool {
	return t.Position() <= 3
}

// cantileverAbutments maps a single-tooth pontic site to the one tooth that
// may carry it as a cantilever: laterals hang from their canine, centrals
// from the paired central in the same arch.
var cantileverAbutments = map[ToothCode]ToothCode{
	"12": "13", "22": "23", "32": "33", "42": "43",
	"11": "21", "21": "11", "31": "41", "41": "31",
}

// CantileverAbutmentFor returns the designated cantilever abutment for a
// pontic site, if the site admits a cantilever design at all.
func CantileverAbutmentFor(site ToothCode) (ToothCode, bool) {
	abut, ok := cantileverAbutments[site]
	return abut, ok
}
