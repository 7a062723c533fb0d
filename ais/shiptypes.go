package ais

import (
	"fmt"
)

// ShipTypeString maps an AIS ship type code (ITU-R M.1371) to a readable
// label.
func ShipTypeString(code int) string {
	switch {
	case code == 30:
		return "Fishing"
	case code == 31 || code == 32:
		return "Towing"
	case code == 33:
		return "Dredging"
	case code == 34:
		return "Diving"
	case code == 35:
		return "Military"
	case code == 36:
		return "Sailing"
	case code == 37:
		return "Pleasure craft"
	case code >= 40 && code <= 49:
		return "High-speed craft"
	case code == 50:
		return "Pilot"
	case code == 51:
		return "Search and rescue"
	case code == 52:
		return "Tug"
	case code == 53:
		return "Port tender"
	case code == 55:
		return "Law enforcement"
	case code == 58:
		return "Medical transport"
	case code >= 60 && code <= 69:
		return "Passenger"
	case code >= 70 && code <= 79:
		return "Cargo"
	case code >= 80 && code <= 89:
		return "Tanker"
	case code >= 90 && code <= 99:
		return "Other"
	case code == 0:
		return "Unknown"
	default:
		return fmt.Sprintf("Type %d", code)
	}
}

// ShipCategory groups ship type codes into the coarse categories the
// display filter works with. Code 0 covers buoys, base stations and other
// non-vessel AIS transmitters.
func ShipCategory(code int) string {
	switch {
	case code == 30:
		return "Fishing"
	case code >= 31 && code <= 35:
		return "Working"
	case code == 36 || code == 37:
		return "Pleasure"
	case code >= 40 && code <= 49:
		return "HighSpeed"
	case code >= 50 && code <= 59:
		return "Working"
	case code >= 60 && code <= 69:
		return "Passenger"
	case code >= 70 && code <= 79:
		return "Cargo"
	case code >= 80 && code <= 89:
		return "Tanker"
	case code >= 90 && code <= 99:
		return "Other"
	default:
		return "Unknown"
	}
}
