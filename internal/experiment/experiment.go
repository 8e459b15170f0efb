package experiment

import (
	"errors"
	"time"
)

var (
	ErrTooFewVariants = errors.New("an experiment needs at least 2 variants")
	ErrNotFound       = errors.New("not found")
	ErrNoContentStore = errors.New("no content store configured")
	ErrEmptyBaseline  = errors.New("baseline value is empty")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusStopped
}

type VariantType string

const (
	TypeTitle     VariantType = "title"
	TypeThumbnail VariantType = "thumbnail"
	TypeHashtags  VariantType = "hashtags"
	TypeTime      VariantType = "time"
)

// DefaultMetrics is the tracked metric set used when a definition names none.
var DefaultMetrics = []string{"views", "likes", "shares", "comments", "ctr"}

type Experiment struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	ContentID    string     `json:"content_id,omitempty"`
	Variants     []Variant  `json:"variants"`
	TrafficSplit []float64  `json:"traffic_split"` // percentage share per variant index
	Metrics      []string   `json:"metrics"`
	Status       Status     `json:"status"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Winner       *Variant   `json:"winner"`
	Confidence   *float64   `json:"confidence"`
}

type Variant struct {
	ID          string            `json:"id"`
	Index       int               `json:"index"`
	Name        string            `json:"name"` // display label only
	Type        VariantType       `json:"type"`
	Value       string            `json:"value"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Results     VariantResults    `json:"results"`
}

// VariantResults holds raw counters and the metrics derived from them.
type VariantResults struct {
	Impressions int `json:"impressions"`
	Views       int `json:"views"`
	Likes       int `json:"likes"`
	Shares      int `json:"shares"`
	Comments    int `json:"comments"`
	Clicks      int `json:"clicks"`

	CTR            float64 `json:"ctr"`
	Engagement     float64 `json:"engagement"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Engagements is likes + shares + comments.
func (r VariantResults) Engagements() int {
	return r.Likes + r.Shares + r.Comments
}

// VariantDefinition describes a variant to create. Results start zeroed.
type VariantDefinition struct {
	Name        string            `json:"name"`
	Type        VariantType       `json:"type"`
	Value       string            `json:"value"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Definition is the input to Engine.Create.
type Definition struct {
	Name         string
	Description  string
	ContentID    string
	Variants     []VariantDefinition
	Metrics      []string
	TrafficSplit []float64 // nil means an even split
}

// Variant returns the variant with the given id.
func (e *Experiment) Variant(id string) (*Variant, bool) {
	for i := range e.Variants {
		if e.Variants[i].ID == id {
			return &e.Variants[i], true
		}
	}
	return nil, false
}

// VariantByName returns the first variant labelled name.
func (e *Experiment) VariantByName(name string) (*Variant, bool) {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers cannot mutate engine state.
func (e *Experiment) Clone() *Experiment {
	if e == nil {
		return nil
	}
	c := *e
	c.Variants = make([]Variant, len(e.Variants))
	for i, v := range e.Variants {
		c.Variants[i] = v.clone()
	}
	c.TrafficSplit = append([]float64(nil), e.TrafficSplit...)
	c.Metrics = append([]string(nil), e.Metrics...)
	if e.EndDate != nil {
		end := *e.EndDate
		c.EndDate = &end
	}
	if e.Winner != nil {
		w := e.Winner.clone()
		c.Winner = &w
	}
	if e.Confidence != nil {
		conf := *e.Confidence
		c.Confidence = &conf
	}
	return &c
}

func (v Variant) clone() Variant {
	if v.Attributes != nil {
		attrs := make(map[string]string, len(v.Attributes))
		for k, val := range v.Attributes {
			attrs[k] = val
		}
		v.Attributes = attrs
	}
	return v
}
