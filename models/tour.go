package models

import (
	"encoding/json"
	"time"
)

// Tour is a user-curated visit plan: an ordered, non-empty list of building
// keys. Keys are weak references; a tour may name buildings that no longer
// exist.
type Tour struct {
	TourID            string    `json:"_id" bson:"tourid"`
	Name              string    `json:"name" bson:"name"`
	Description       string    `json:"description" bson:"description"`
	OwnerID           string    `json:"ownerId" bson:"owner_id"`
	OwnerEmail        string    `json:"ownerEmail" bson:"owner_email"`
	BuildingKeys      []string  `json:"buildingIds" bson:"buildingIds"`
	EstimatedDuration *int      `json:"estimatedDuration" bson:"estimatedDuration"`
	Tags              []string  `json:"tags" bson:"tags"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// StopCount is derived from the sequence every time it is asked for.
func (t Tour) StopCount() int { return len(t.BuildingKeys) }

func (t Tour) Clone() Tour {
	out := t
	out.BuildingKeys = cloneStrings(t.BuildingKeys)
	out.Tags = cloneStrings(t.Tags)
	if t.EstimatedDuration != nil {
		d := *t.EstimatedDuration
		out.EstimatedDuration = &d
	}
	return out
}

// MarshalJSON adds the derived stopCount field.
func (t Tour) MarshalJSON() ([]byte, error) {
	type plain Tour
	return json.Marshal(struct {
		plain
		StopCount int `json:"stopCount"`
	}{plain(t), t.StopCount()})
}

// TourPatch is a partial update of a tour's descriptive fields and sequence.
type TourPatch struct {
	Name              Optional[string]   `json:"name"`
	Description       Optional[string]   `json:"description"`
	BuildingKeys      Optional[[]string] `json:"buildingIds"`
	EstimatedDuration Optional[*int]     `json:"estimatedDuration"`
	Tags              Optional[[]string] `json:"tags"`
}

// ResolvedStop is one tour stop joined with its building. A stop whose
// building has been deleted or renamed is Missing and carries a placeholder.
type ResolvedStop struct {
	Index    int      `json:"index"`
	Key      string   `json:"id"`
	Missing  bool     `json:"missing"`
	Building Building `json:"building"`
}
