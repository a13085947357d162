package handlers

import (
	"atm-route-service/internal/api/dto"
	"atm-route-service/internal/domain"
)

func atmToPayload(a domain.ATM) dto.ATMPayload {
	cash := a.RemainingCash
	return dto.ATMPayload{
		ID:            a.ID,
		Name:          a.Name,
		Coordinates:   a.Location.CoordsToList(),
		RemainingCash: &cash,
		Denomination:  a.Denomination,
		StartingCash:  a.StartingCash,
	}
}

// payloadsToATMs converts exchange records, rejecting those with missing or
// malformed fields and repeated ids. Indexes refer to the request array.
func payloadsToATMs(payloads []dto.ATMPayload) ([]domain.ATM, []*domain.ValidationError) {
	atms := make([]domain.ATM, 0, len(payloads))
	var rejected []*domain.ValidationError
	seen := make(map[string]struct{}, len(payloads))
	for i, p := range payloads {
		a, verr := domain.ATMFromFields(i, p.ID, p.Name, p.Coordinates, p.RemainingCash, p.Denomination, p.StartingCash)
		if verr != nil {
			rejected = append(rejected, verr)
			continue
		}
		if _, ok := seen[a.ID]; ok {
			rejected = append(rejected, &domain.ValidationError{Index: i, ID: a.ID, Field: "id", Reason: "duplicate id"})
			continue
		}
		seen[a.ID] = struct{}{}
		atms = append(atms, a)
	}
	return atms, rejected
}

func rejectedToDTO(errs []*domain.ValidationError) []dto.RejectedRecord {
	out := make([]dto.RejectedRecord, 0, len(errs))
	for _, e := range errs {
		out = append(out, dto.RejectedRecord{
			Index:  e.Index,
			ID:     e.ID,
			Field:  e.Field,
			Reason: e.Reason,
		})
	}
	return out
}
