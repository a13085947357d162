package dto

import "time"

type CoordinatesPayload struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type PlanRequest struct {
	Start         *CoordinatesPayload `json:"start"`
	Alpha         *float64            `json:"alpha"`
	Beta          *float64            `json:"beta"`
	Algorithm     string              `json:"algorithm"`
	ATMIDs        []string            `json:"atm_ids"`
	ATMs          []ATMPayload        `json:"atms"`
	DepartAt      *time.Time          `json:"depart_at"`
	MaxExpansions int                 `json:"max_expansions"`
}

type PlanStopResponse struct {
	ATM         ATMPayload `json:"atm"`
	LegSeconds  float64    `json:"leg_seconds"`
	ArriveAt    time.Time  `json:"arrive_at"`
	Unreachable bool       `json:"unreachable"`
}

type PlanResponse struct {
	Start                CoordinatesPayload `json:"start"`
	DepartAt             time.Time          `json:"depart_at"`
	Algorithm            string             `json:"algorithm"`
	Alpha                float64            `json:"alpha"`
	Beta                 float64            `json:"beta"`
	TotalDurationSeconds float64            `json:"total_duration_seconds"`
	TotalCost            float64            `json:"total_cost"`
	Expansions           int                `json:"expansions"`
	Truncated            bool               `json:"truncated"`
	Stops                []PlanStopResponse `json:"stops"`
	Waypoints            [][]float64        `json:"waypoints"`
	Rejected             []RejectedRecord   `json:"rejected"`
}
