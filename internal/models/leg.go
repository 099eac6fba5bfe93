package models

import (
	"encoding/json"
	"fmt"
)

// Leg is a directed hop between two location codes. It travels over the wire
// as a two element array: ["SFO", "ATL"].
type Leg struct {
	Origin      string
	Destination string
}

func (l Leg) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{l.Origin, l.Destination})
}

func (l *Leg) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("leg must be an array of strings: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("leg must have exactly 2 elements, got %d", len(pair))
	}
	l.Origin, l.Destination = pair[0], pair[1]
	return nil
}

func (l Leg) String() string {
	return l.Origin + "->" + l.Destination
}

// FlightLeg is a leg tagged with the flight it was booked on.
type FlightLeg struct {
	Leg      Leg    `json:"leg"`
	FlightID string `json:"flight_id"`
}
