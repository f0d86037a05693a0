package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// storedItem mirrors LineItem with loose field types so older or partial
// payloads still decode. "price" is the key used before unitPrice existed.
type storedItem struct {
	ID            any    `json:"id"`
	Name          string `json:"name"`
	UnitPrice     any    `json:"unitPrice"`
	Price         any    `json:"price"`
	OriginalPrice any    `json:"originalPrice"`
	Image         string `json:"image"`
	Quantity      any    `json:"quantity"`
}

func encodeItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// decodeItems parses a persisted payload. Entries violating the line item
// invariants are dropped and duplicate ids merged; the returned count
// reports how many entries were discarded or folded.
func decodeItems(data []byte) ([]LineItem, int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []LineItem{}, 0, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var stored []storedItem
	if err := dec.Decode(&stored); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	items := make([]LineItem, 0, len(stored))
	discarded := 0
	for _, s := range stored {
		price := s.UnitPrice
		if price == nil {
			price = s.Price
		}
		n := normalize(Candidate{
			ID:            s.ID,
			Name:          s.Name,
			Price:         price,
			OriginalPrice: s.OriginalPrice,
			Image:         s.Image,
			Quantity:      s.Quantity,
		}, "")
		if n.validate() != nil {
			discarded++
			continue
		}
		if idx := indexOf(items, n.ID); idx >= 0 {
			items[idx].Quantity = addQuantity(items[idx].Quantity, n.Quantity)
			discarded++
			continue
		}
		items = append(items, n.lineItem())
	}
	return items, discarded, nil
}
