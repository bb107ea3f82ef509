package models

import "time"

// InverterStatus is the operating state reported by an inverter.
type InverterStatus string

const (
	InverterOnline      InverterStatus = "online"
	InverterOffline     InverterStatus = "offline"
	InverterFault       InverterStatus = "fault"
	InverterMaintenance InverterStatus = "maintenance"
)

// Valid reports whether s is a known inverter status.
func (s InverterStatus) Valid() bool {
	switch s {
	case InverterOnline, InverterOffline, InverterFault, InverterMaintenance:
		return true
	}
	return false
}

// PlantStatus is the rolled-up status of a plant.
type PlantStatus string

const (
	PlantOnline  PlantStatus = "online"
	PlantOffline PlantStatus = "offline"
	PlantPartial PlantStatus = "partial"
)

// Plant describes a solar plant.
type Plant struct {
	ID          string  `json:"id" bson:"_id"`
	Name        string  `json:"name" bson:"name"`
	Location    string  `json:"location" bson:"location"`
	CapacityKWp float64 `json:"capacity_kwp" bson:"capacity_kwp"`
}

// InverterReading is one telemetry sample from an inverter.
type InverterReading struct {
	ID          string         `json:"id" bson:"_id"`
	PlantID     string         `json:"plant_id" bson:"plant_id"`
	InverterID  string         `json:"inverter_id" bson:"inverter_id"`
	Timestamp   time.Time      `json:"timestamp" bson:"timestamp"`
	Power       float64        `json:"power" bson:"power"`             // kW
	Energy      float64        `json:"energy" bson:"energy"`           // kWh
	Voltage     float64        `json:"voltage" bson:"voltage"`         // V
	Current     float64        `json:"current" bson:"current"`         // A
	Frequency   float64        `json:"frequency" bson:"frequency"`     // Hz
	Temperature float64        `json:"temperature" bson:"temperature"` // °C
	Status      InverterStatus `json:"status" bson:"status"`
	Efficiency  float64        `json:"efficiency" bson:"efficiency"` // %
}

// PlantSnapshot is the plant-level rollup of the latest inverter readings.
type PlantSnapshot struct {
	Plant           Plant             `json:"plant"`
	Status          PlantStatus       `json:"status"`
	Efficiency      float64           `json:"efficiency"`
	TotalPower      float64           `json:"total_power"`
	TotalEnergy     float64           `json:"total_energy"`
	OnlineInverters int               `json:"online_inverters"`
	TotalInverters  int               `json:"total_inverters"`
	LastUpdate      time.Time         `json:"last_update"`
	Inverters       []InverterReading `json:"inverters"`
}
