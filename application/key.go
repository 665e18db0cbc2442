package application

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/goap/domain/planning"
)

// keyVersion changes whenever the canonical encoding or plan format changes.
const keyVersion = "goap/v1"

// RequestKey returns the memo key of a request: the hex SHA-256 of its
// canonical encoding. Requests with equal keys always produce equal plans.
func RequestKey(req planning.Request) string {
	var b strings.Builder
	num := func(v float64) {
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}

	b.WriteString(keyVersion)
	b.WriteString("\nalgorithm=")
	b.WriteString(req.Algorithm.String())
	b.WriteString("\nmode=")
	b.WriteString(req.Mode.String())
	b.WriteString("\nbound=")
	b.WriteString(strconv.Itoa(req.Bound))
	b.WriteString("\nmax_steps=")
	b.WriteString(strconv.Itoa(req.MaxSteps))
	if req.Algorithm == planning.Hybrid {
		s := req.HybridSchedule()
		b.WriteString("\nschedule=")
		num(s.Alpha)
		b.WriteByte(',')
		num(s.Knee)
	}

	// Explicit zeros are kept: they appear in the rendered plan.
	for _, p := range req.Initial.Keys() {
		b.WriteString("\ninitial=")
		b.WriteString(strconv.Quote(p))
		b.WriteByte(':')
		num(req.Initial.Get(p))
	}

	for _, g := range req.Goals {
		b.WriteString("\ngoal=")
		b.WriteString(strconv.Quote(g.Property))
		b.WriteByte(',')
		if g.Kind != nil {
			b.WriteString(g.Kind.Name())
		}
		b.WriteByte(',')
		num(g.Target)
		b.WriteByte(',')
		num(g.Weight)
	}

	for _, a := range req.Actions.Actions() {
		b.WriteString("\naction=")
		b.WriteString(strconv.Quote(a.Label()))
		b.WriteByte(',')
		num(a.Duration())
		for _, p := range a.Properties() {
			b.WriteByte(',')
			b.WriteString(strconv.Quote(p))
			b.WriteByte(':')
			num(a.Delta(p))
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
