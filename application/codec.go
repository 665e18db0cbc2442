package application

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/goap/domain/planning"
)

func encodePlan(p *planning.Plan) ([]byte, error) {
	return json.Marshal(planning.NewDocument(p))
}

func decodePlan(data []byte) (*planning.Plan, error) {
	var doc planning.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptMemo, err)
	}
	p, err := doc.Plan()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptMemo, err)
	}
	return p, nil
}
