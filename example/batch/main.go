// Package main plans for a village of agents at once through a bounded
// worker pool, with a shared in-memory plan memo.
//
//	go run ./example/batch
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/felixgeelhaar/goap/application"
	"github.com/felixgeelhaar/goap/domain/planning"
	"github.com/felixgeelhaar/goap/infrastructure/logging"
	"github.com/felixgeelhaar/goap/infrastructure/storage/memory"
)

var catalogue = planning.MustNewCatalogue(
	planning.MustNewAction("rest", 8, map[string]float64{"energy": 20, "health": 15}),
	planning.MustNewAction("eat_apple", 2, map[string]float64{"num_apples": -1, "health": 20, "energy": 5}),
	planning.MustNewAction("gather", 6, map[string]float64{"num_apples": 2, "energy": -5}),
)

var goals = planning.GoalSet{
	{Property: "health", Target: 100, Kind: planning.GreaterThanOrEqualTo, Weight: 4},
	{Property: "energy", Target: 100, Kind: planning.GreaterThanOrEqualTo, Weight: 1},
}

func main() {
	logging.Init(logging.Config{Level: "info", Format: "console"})

	villagers := map[string]map[string]float64{
		"ada":   {"energy": 50, "health": 20, "num_apples": 2},
		"bo":    {"energy": 90, "health": 70},
		"cyrus": {"energy": 10, "health": 95, "num_apples": 4},
		"dana":  {"energy": 50, "health": 20, "num_apples": 2},
	}
	names := []string{"ada", "bo", "cyrus", "dana"}

	reqs := make([]planning.Request, len(names))
	for i, name := range names {
		reqs[i] = planning.Request{
			Initial:   planning.NewState(villagers[name]),
			Goals:     goals,
			Actions:   catalogue,
			Algorithm: planning.Hybrid,
			Mode:      planning.Best,
			Bound:     8,
		}
	}

	svc := application.NewService(
		application.WithCache(memory.NewCache(), 0),
		application.WithMaxConcurrent(2),
		application.WithLogger(logging.Get()),
	)
	defer func() { _ = svc.Close() }()

	for i, res := range svc.PlanBatch(context.Background(), reqs) {
		if res.Err != nil {
			log.Printf("%s: %v", names[i], res.Err)
			continue
		}
		fmt.Printf("%-6s %-40s discontentment %g\n",
			names[i], strings.Join(res.Plan.Labels(), ", "), res.Plan.Discontentment())
	}
}
