package models

import (
	"encoding/json"
	"time"
)

type discussionHeader struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Status        Status    `json:"status"`
	CurrentPrompt string    `json:"currentPrompt,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MarshalJSON flattens the answer slots next to the record's own fields,
// e.g. {"id":"f1","title":"Dark mode","description":"...","risks":[...]}.
func (d Discussion) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 6+int(fieldCount))
	for f := Field(0); f < fieldCount; f++ {
		if v := d.Answers[f]; v.Present() {
			out[f.String()] = v
		}
	}
	hdr, err := json.Marshal(discussionHeader{
		ID:            d.ID,
		Title:         d.Title,
		Status:        d.Status,
		CurrentPrompt: d.CurrentPrompt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(hdr, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// Document is the read-side view of a discussion: the record with its
// context nested under "context".
type Document struct {
	Discussion *Discussion
	Context    *Context
}

func (d Document) MarshalJSON() ([]byte, error) {
	rec, err := json.Marshal(d.Discussion)
	if err != nil {
		return nil, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(rec, &out); err != nil {
		return nil, err
	}
	ctx, err := json.Marshal(d.Context)
	if err != nil {
		return nil, err
	}
	out["context"] = ctx
	return json.Marshal(out)
}
