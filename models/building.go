package models

import (
	"encoding/json"
	"time"

	"campusexplorer/errs"
)

type Category string

const (
	CategoryAcademic       Category = "Academic"
	CategoryAdministration Category = "Administration"
	CategoryStudentLife    Category = "Student Life"
	CategoryAthletics      Category = "Athletics"
	CategoryResidence      Category = "Residence"
	CategoryLandmark       Category = "Landmark"
)

// Categories lists every building category in display order.
var Categories = []Category{
	CategoryAcademic,
	CategoryAdministration,
	CategoryStudentLife,
	CategoryAthletics,
	CategoryResidence,
	CategoryLandmark,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Coordinates is a normalized map position: percentages (0-100) of the map
// width and height, origin top-left.
type Coordinates struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Building is one physical campus structure. Key is the lowercase slug the
// rest of the system refers to; it is distinct from the storage _id.
type Building struct {
	Key         string       `json:"id" bson:"id"`
	Name        string       `json:"name" bson:"name"`
	Code        string       `json:"code" bson:"code"`
	Category    Category     `json:"type" bson:"type"`
	Departments []string     `json:"departments" bson:"departments"`
	Description string       `json:"description" bson:"description"`
	Hours       string       `json:"hours" bson:"hours"`
	Capacity    string       `json:"capacity" bson:"capacity"`
	YearBuilt   string       `json:"yearBuilt" bson:"yearBuilt"`
	Floors      int          `json:"floors" bson:"floors"`
	Tags        []string     `json:"tags" bson:"tags"`
	Coordinates *Coordinates `json:"coordinates" bson:"coordinates"`
	Image       string       `json:"image" bson:"image"`
	Gallery     []string     `json:"gallery" bson:"gallery"`
	Video       *string      `json:"video" bson:"video"`
	FloorPlans  []string     `json:"floorPlans" bson:"floorPlans"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// Placed reports whether the building has a map position.
func (b Building) Placed() bool { return b.Coordinates != nil }

// Clone returns a deep copy so callers can't alias slices held by a store.
func (b Building) Clone() Building {
	out := b
	out.Departments = cloneStrings(b.Departments)
	out.Tags = cloneStrings(b.Tags)
	out.Gallery = cloneStrings(b.Gallery)
	out.FloorPlans = cloneStrings(b.FloorPlans)
	if b.Coordinates != nil {
		c := *b.Coordinates
		out.Coordinates = &c
	}
	if b.Video != nil {
		v := *b.Video
		out.Video = &v
	}
	return out
}

// BuildingFilter restricts List. Zero value matches everything.
type BuildingFilter struct {
	Category Category `json:"type,omitempty"`
	Text     string   `json:"q,omitempty"`
}

// BuildingPatch is a partial update. Only fields that are Set are applied;
// Coordinates and Video may be Set to nil to clear them.
type BuildingPatch struct {
	Name        Optional[string]       `json:"name"`
	Code        Optional[string]       `json:"code"`
	Category    Optional[Category]     `json:"type"`
	Departments Optional[[]string]     `json:"departments"`
	Description Optional[string]       `json:"description"`
	Hours       Optional[string]       `json:"hours"`
	Capacity    Optional[string]       `json:"capacity"`
	YearBuilt   Optional[string]       `json:"yearBuilt"`
	Floors      Optional[int]          `json:"floors"`
	Tags        Optional[[]string]     `json:"tags"`
	Coordinates Optional[*Coordinates] `json:"coordinates"`
	Image       Optional[string]       `json:"image"`
	Gallery     Optional[[]string]     `json:"gallery"`
	Video       Optional[*string]      `json:"video"`
	FloorPlans  Optional[[]string]     `json:"floorPlans"`
}

// Empty reports whether the patch carries no fields.
func (p BuildingPatch) Empty() bool {
	return len(p.Fields()) == 0
}

// Fields returns the stored field names and values the patch sets, keyed by
// their bson names.
func (p BuildingPatch) Fields() map[string]any {
	set := map[string]any{}
	put := func(name string, present bool, v any) {
		if present {
			set[name] = v
		}
	}
	put("name", p.Name.Set, p.Name.Value)
	put("code", p.Code.Set, p.Code.Value)
	put("type", p.Category.Set, p.Category.Value)
	put("departments", p.Departments.Set, p.Departments.Value)
	put("description", p.Description.Set, p.Description.Value)
	put("hours", p.Hours.Set, p.Hours.Value)
	put("capacity", p.Capacity.Set, p.Capacity.Value)
	put("yearBuilt", p.YearBuilt.Set, p.YearBuilt.Value)
	put("floors", p.Floors.Set, p.Floors.Value)
	put("tags", p.Tags.Set, p.Tags.Value)
	put("coordinates", p.Coordinates.Set, p.Coordinates.Value)
	put("image", p.Image.Set, p.Image.Value)
	put("gallery", p.Gallery.Set, p.Gallery.Value)
	put("video", p.Video.Set, p.Video.Value)
	put("floorPlans", p.FloorPlans.Set, p.FloorPlans.Value)
	return set
}

// Apply writes the set fields onto b.
func (p BuildingPatch) Apply(b *Building) {
	p.Name.ApplyTo(&b.Name)
	p.Code.ApplyTo(&b.Code)
	p.Category.ApplyTo(&b.Category)
	if p.Departments.Set {
		b.Departments = cloneStrings(p.Departments.Value)
	}
	p.Description.ApplyTo(&b.Description)
	p.Hours.ApplyTo(&b.Hours)
	p.Capacity.ApplyTo(&b.Capacity)
	p.YearBuilt.ApplyTo(&b.YearBuilt)
	p.Floors.ApplyTo(&b.Floors)
	if p.Tags.Set {
		b.Tags = cloneStrings(p.Tags.Value)
	}
	if p.Coordinates.Set {
		b.Coordinates = nil
		if p.Coordinates.Value != nil {
			c := *p.Coordinates.Value
			b.Coordinates = &c
		}
	}
	p.Image.ApplyTo(&b.Image)
	if p.Gallery.Set {
		b.Gallery = cloneStrings(p.Gallery.Value)
	}
	p.Video.ApplyTo(&b.Video)
	if p.FloorPlans.Set {
		b.FloorPlans = cloneStrings(p.FloorPlans.Value)
	}
}

// UnmarshalJSON requires both x and y. Clearing a position is done by sending
// "coordinates": null, which never reaches this method.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var raw struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.X == nil || raw.Y == nil {
		return errs.Validation("coordinates", "x and y must be set together")
	}
	c.X, c.Y = *raw.X, *raw.Y
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
