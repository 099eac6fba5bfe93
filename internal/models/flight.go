package models

type Flight struct {
	ID       string `json:"flight_id"`
	FullPath []Leg  `json:"full_path"`
}

// SamePath reports whether both flights list identical legs in identical order.
func (f Flight) SamePath(other []Leg) bool {
	if len(f.FullPath) != len(other) {
		return false
	}
	for i := range f.FullPath {
		if f.FullPath[i] != other[i] {
			return false
		}
	}
	return true
}
