package config

import (
	"fmt"

	"github.com/felixgeelhaar/goap/domain/planning"
)

// Request converts a validated document into a planning request.
// Defaults are applied to a copy; the document is not modified.
func (d Document) Request() (planning.Request, error) {
	d.ApplyDefaults()

	alg, err := planning.ParseAlgorithm(d.Plan.Algorithm)
	if err != nil {
		return planning.Request{}, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	mode, err := planning.ParseMode(d.Plan.Solution)
	if err != nil {
		return planning.Request{}, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	goals, err := d.goalSet()
	if err != nil {
		return planning.Request{}, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	actions := make([]planning.Action, 0, len(d.Actions))
	for _, label := range sortedKeys(d.Actions) {
		ac := d.Actions[label]
		a, err := planning.NewAction(label, ac.Duration, ac.Deltas)
		if err != nil {
			return planning.Request{}, fmt.Errorf("%w: %w", ErrBuildFailed, err)
		}
		actions = append(actions, a)
	}
	catalogue, err := planning.NewCatalogue(actions...)
	if err != nil {
		return planning.Request{}, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	req := planning.Request{
		Initial:   planning.NewState(d.State),
		Goals:     goals,
		Actions:   catalogue,
		Algorithm: alg,
		Mode:      mode,
		Bound:     d.Plan.MaxDepth,
		MaxSteps:  d.Plan.MaxSteps,
	}
	if d.Plan.Hybrid != nil {
		schedule := *d.Plan.Hybrid
		req.Schedule = &schedule
	}
	if err := req.Validate(); err != nil {
		return planning.Request{}, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	return req, nil
}

// goalSet flattens the goal map in property order.
func (d Document) goalSet() (planning.GoalSet, error) {
	var goals planning.GoalSet
	for _, property := range sortedKeys(d.Goals) {
		for _, gc := range d.Goals[property] {
			kind, err := planning.LookupKind(gc.EffectiveKind())
			if err != nil {
				return nil, err
			}
			g, err := planning.NewGoal(property, gc.Target, kind, gc.EffectiveWeight())
			if err != nil {
				return nil, err
			}
			goals = append(goals, g)
		}
	}
	return goals, nil
}

// FromRequest renders a planning request as a document. Converting the
// result back with Request yields an equivalent request, with actions in
// label order.
func FromRequest(req planning.Request) Document {
	doc := Document{
		State:   req.Initial.Values(),
		Goals:   make(map[string]GoalEntries),
		Actions: make(map[string]ActionConfig, req.Actions.Len()),
		Plan: PlanConfig{
			Algorithm: req.Algorithm.String(),
			Solution:  req.Mode.String(),
			MaxDepth:  req.Bound,
			MaxSteps:  req.MaxSteps,
		},
	}
	for _, g := range req.Goals {
		weight := g.Weight
		doc.Goals[g.Property] = append(doc.Goals[g.Property], GoalConfig{
			Target: g.Target,
			Kind:   g.Kind.Name(),
			Weight: &weight,
		})
	}
	for _, a := range req.Actions.Actions() {
		doc.Actions[a.Label()] = ActionConfig{Duration: a.Duration(), Deltas: a.Deltas()}
	}
	if req.Schedule != nil {
		schedule := *req.Schedule
		doc.Plan.Hybrid = &schedule
	}
	return doc
}
