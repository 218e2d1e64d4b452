package model

// Vehicle is a physical bus. TypeCode is free text that encodes the
// capacity class (e.g. "VIP30", "LIMOUSINE22", "GIUONG-NAM-36"); the seat
// layout resolver interprets it by substring.
type Vehicle struct {
	ID       uint64 `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	PlateNo  string `json:"plate_no"`
	TypeCode string `json:"type_code"`
	Status   string `json:"status"`
}

// Route is a named origin/destination pair used for trip search and fares.
type Route struct {
	ID          uint64 `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DistanceKM  uint32 `json:"distance_km"`
	Status      string `json:"status"`
}

// Fare prices a route/vehicle-type combination in VND.
type Fare struct {
	ID          uint64 `json:"id"`
	Code        string `json:"code"`
	RouteCode   string `json:"route_code"`
	VehicleType string `json:"vehicle_type"`
	AmountVND   uint32 `json:"amount_vnd"`
}
