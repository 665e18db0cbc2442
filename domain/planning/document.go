package planning

// StepDocument is the serialised form of a plan step.
type StepDocument struct {
	Action         string             `json:"action"`
	State          map[string]float64 `json:"state"`
	Duration       float64            `json:"duration"`
	Discontentment float64            `json:"discontentment"`
}

// StatsDocument is the serialised form of search statistics.
type StatsDocument struct {
	Expanded  int `json:"expanded"`
	Generated int `json:"generated"`
	MaxDepth  int `json:"max_depth"`
}

// Document is the serialised form of a plan.
type Document struct {
	Algorithm             string             `json:"algorithm"`
	Mode                  string             `json:"solution"`
	Initial               map[string]float64 `json:"initial"`
	InitialDiscontentment float64            `json:"initial_discontentment"`
	Steps                 []StepDocument     `json:"steps"`
	Discontentment        float64            `json:"discontentment"`
	Duration              float64            `json:"duration"`
	Complete              bool               `json:"complete"`
	Stats                 StatsDocument      `json:"stats"`
}

// NewDocument converts a plan.
func NewDocument(p *Plan) Document {
	doc := Document{
		Algorithm:             p.Algorithm.String(),
		Mode:                  p.Mode.String(),
		Initial:               p.Initial.Values(),
		InitialDiscontentment: p.InitialDiscontentment,
		Steps:                 make([]StepDocument, len(p.Steps)),
		Discontentment:        p.Discontentment(),
		Duration:              p.Duration(),
		Complete:              p.Complete,
		Stats: StatsDocument{
			Expanded:  p.Stats.Expanded,
			Generated: p.Stats.Generated,
			MaxDepth:  p.Stats.MaxDepth,
		},
	}
	for i, s := range p.Steps {
		doc.Steps[i] = StepDocument{
			Action:         s.Action,
			State:          s.State.Values(),
			Duration:       s.Duration,
			Discontentment: s.Discontentment,
		}
	}
	return doc
}

// Plan converts the document back into a plan.
func (d Document) Plan() (*Plan, error) {
	algorithm, err := ParseAlgorithm(d.Algorithm)
	if err != nil {
		return nil, err
	}
	mode, err := ParseMode(d.Mode)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		Algorithm:             algorithm,
		Mode:                  mode,
		Initial:               NewState(d.Initial),
		InitialDiscontentment: d.InitialDiscontentment,
		Steps:                 make([]Step, len(d.Steps)),
		Complete:              d.Complete,
		Stats: Stats{
			Expanded:  d.Stats.Expanded,
			Generated: d.Stats.Generated,
			MaxDepth:  d.Stats.MaxDepth,
		},
	}
	for i, s := range d.Steps {
		p.Steps[i] = Step{
			Action:         s.Action,
			State:          NewState(s.State),
			Duration:       s.Duration,
			Discontentment: s.Discontentment,
		}
	}
	return p, nil
}
