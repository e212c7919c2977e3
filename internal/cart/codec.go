package cart

import (
	"encoding/json"

	"storefront/internal/domain"
)

// Encode serializes lines as a JSON array in cart order. Each element carries the
// product fields plus "quantity".
func Encode(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return json.Marshal(lines)
}

// Decode parses a snapshot written by Encode. Lines without an id or with a quantity
// below 1 are dropped and repeated ids are merged into the first occurrence, so the
// result always satisfies the cart invariants.
func Decode(b []byte) ([]domain.CartLine, error) {
	var raw []domain.CartLine
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, line := range raw {
		if line.ID == "" || line.Quantity < 1 {
			continue
		}
		if i, ok := index[line.ID]; ok {
			lines[i].Quantity += line.Quantity
			continue
		}
		line.NormalizePrice()
		index[line.ID] = len(lines)
		lines = append(lines, line)
	}
	return lines, nil
}
