// Package main plans the survival scenario with every algorithm and mode
// and prints a summary of each plan.
//
// Run from the repository root:
//
//	go run ./example/survival
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/felixgeelhaar/goap/application"
	"github.com/felixgeelhaar/goap/domain/planning"
	"github.com/felixgeelhaar/goap/infrastructure/config"
)

func main() {
	path := "example/survival/config.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	doc, err := config.NewLoader().LoadFile(path)
	if err != nil {
		log.Fatalf("load %s: %v", path, err)
	}
	base, err := doc.Request()
	if err != nil {
		log.Fatalf("build request: %v", err)
	}

	svc := application.NewService()

	ctx := context.Background()
	for _, alg := range []planning.Algorithm{planning.Traditional, planning.EfficiencyBased, planning.Hybrid} {
		for _, mode := range []planning.Mode{planning.Best, planning.Fast} {
			req := base
			req.Algorithm = alg
			req.Mode = mode

			plan, err := svc.Plan(ctx, req)
			if errors.Is(err, planning.ErrNoImprovement) {
				fmt.Printf("%-15s %-4s no improvement within %d steps\n", alg, mode, req.Bound)
				continue
			}
			if err != nil {
				log.Fatalf("%s/%s: %v", alg, mode, err)
			}

			fmt.Printf("%-15s %-4s discontentment %-6g time %-4g %s\n",
				alg, mode, plan.Discontentment(), plan.Duration(), strings.Join(plan.Labels(), " → "))
		}
	}
}
