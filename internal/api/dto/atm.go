package dto

type ATMPayload struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Coordinates   []float64 `json:"coordinates"`
	RemainingCash *float64  `json:"remaining_cash"`
	Denomination  *int      `json:"denomination,omitempty"`
	StartingCash  *int      `json:"starting_cash,omitempty"`
}

type ListATMsResponse struct {
	ATMs []ATMPayload `json:"atms"`
}

type UpsertATMsRequest struct {
	ATMs []ATMPayload `json:"atms"`
}

type RejectedRecord struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type UpsertATMsResponse struct {
	Accepted int              `json:"accepted"`
	Rejected []RejectedRecord `json:"rejected"`
}
