package models

type Passenger struct {
	ID   string `json:"passenger_id"`
	Name string `json:"name"`
}
