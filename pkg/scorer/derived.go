// Package scorer derives composite attributes and role-fit scores from parsed player attributes
package scorer

import "github.com/myusername/fm-scout/pkg/models"

// Attribute short codes read by the derived calculations
const (
	attrPace         = "Pac"
	attrAcceleration = "Acc"
	attrWorkRate     = "Wor"
	attrStamina      = "Sta"
	attrCorners      = "Cor"
	attrFreeKicks    = "Fre"
	attrPenalties    = "Pen"
	attrThrowIns     = "Thr"
)

// CalculateDerived computes speed, work rate and set-piece ability. Absent attributes count as 0.
func CalculateDerived(attrs models.RawAttributeMap) models.CalculatedAttributes {
	speed := (attrs.Get(attrPace) + attrs.Get(attrAcceleration)) / 2
	workRate := (attrs.Get(attrWorkRate) + attrs.Get(attrStamina)) / 2

	// Set pieces average only the specialisms the player actually has
	var sum float64
	var n int
	for _, key := range []string{attrCorners, attrFreeKicks, attrPenalties, attrThrowIns} {
		if v := attrs.Get(key); v > 0 {
			sum += v
			n++
		}
	}
	setPieces := 0.0
	if n > 0 {
		setPieces = sum / float64(n)
	}

	return models.CalculatedAttributes{
		Speed:     speed,
		WorkRate:  workRate,
		SetPieces: setPieces,
	}
}
