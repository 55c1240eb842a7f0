// Package vehicle adjusts travel time and emissions for the class of vehicle
// driving a route.
package vehicle

import (
	"math"
	"strings"
)

// Class is a vehicle category
type Class string

const (
	Car         Class = "car"
	Motorcycle  Class = "motorcycle"
	MediumTruck Class = "medium_truck"
	HeavyTruck  Class = "heavy_truck"
	Bus         Class = "bus"
	Tanker      Class = "tanker"
)

var multipliers = map[Class]float64{
	Car:         1.0,
	Motorcycle:  0.9,
	MediumTruck: 1.3,
	HeavyTruck:  1.5,
	Bus:         1.4,
	Tanker:      1.6,
}

// kg CO2 per km
var emissionFactors = map[Class]float64{
	Car:         0.12,
	Motorcycle:  0.08,
	MediumTruck: 0.25,
	HeavyTruck:  0.35,
	Bus:         0.30,
	Tanker:      0.40,
}

// Classes lists the known vehicle classes
func Classes() []Class {
	return []Class{Car, Motorcycle, MediumTruck, HeavyTruck, Bus, Tanker}
}

// ParseClass normalizes a class name. ok is false for unknown classes, in
// which case Car is returned.
func ParseClass(s string) (Class, bool) {
	c := Class(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := multipliers[c]; !ok {
		return Car, false
	}
	return c, true
}

// Multiplier returns the travel time factor for the class. Unknown classes
// travel like a car.
func Multiplier(c Class) float64 {
	if m, ok := multipliers[c]; ok {
		return m
	}
	return 1.0
}

// AdjustedDuration scales a base duration in seconds by the class
// multiplier. Durations that are not finite non-negative numbers are returned
// unchanged.
func AdjustedDuration(baseSeconds float64, c Class) float64 {
	if math.IsNaN(baseSeconds) || math.IsInf(baseSeconds, 0) || baseSeconds < 0 {
		return baseSeconds
	}
	return baseSeconds * Multiplier(c)
}

// CarbonFootprint estimates kg of CO2 emitted over distanceMeters
func CarbonFootprint(distanceMeters float64, c Class) float64 {
	factor, ok := emissionFactors[c]
	if !ok {
		factor = emissionFactors[Car]
	}
	return math.Max(distanceMeters, 0) / 1000 * factor
}
