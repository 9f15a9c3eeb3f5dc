package model

import (
	"fmt"
	"strings"
)

// Seat identifies one of the four table positions.
type Seat string

// Seats in their fixed iteration order.
const (
	SeatEast  Seat = "E"
	SeatSouth Seat = "S"
	SeatWest  Seat = "W"
	SeatNorth Seat = "N"
)

// Seats lists every seat in iteration order E, S, W, N.
var Seats = [SeatCount]Seat{SeatEast, SeatSouth, SeatWest, SeatNorth}

// SeatCount is the number of players at the table.
const SeatCount = 4

// Wind is the prevailing wind of a round. It uses the same letters as Seat.
type Wind string

// Winds in rotation order.
const (
	WindEast  Wind = "E"
	WindSouth Wind = "S"
	WindWest  Wind = "W"
	WindNorth Wind = "N"
)

// Winds lists the prevailing winds in rotation order.
var Winds = [4]Wind{WindEast, WindSouth, WindWest, WindNorth}

// Index returns the position of the seat in iteration order, or -1.
func (s Seat) Index() int {
	switch s {
	case SeatEast:
		return 0
	case SeatSouth:
		return 1
	case SeatWest:
		return 2
	case SeatNorth:
		return 3
	default:
		return -1
	}
}

// Valid reports whether s is one of the four seats.
func (s Seat) Valid() bool {
	return s.Index() >= 0
}

// ParseSeat accepts a seat letter or its English name, case-insensitively.
func ParseSeat(value string) (Seat, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "E", "EAST":
		return SeatEast, nil
	case "S", "SOUTH":
		return SeatSouth, nil
	case "W", "WEST":
		return SeatWest, nil
	case "N", "NORTH":
		return SeatNorth, nil
	}
	return "", fmt.Errorf("unknown seat %q (use E, S, W or N)", value)
}
