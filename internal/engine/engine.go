package engine

import (
	"PcapDigest/internal/core/model"
	"PcapDigest/internal/engine/aggregate"
	"PcapDigest/internal/engine/alert"
	"PcapDigest/internal/engine/classify"
	"PcapDigest/internal/engine/report"
)

// Analyze runs the full pipeline over a decoded packet sequence: classify
// each packet, fold the sequence into an aggregate in a single forward
// pass, evaluate the heuristic alerts, and build the report. The aggregate
// is private to this call and garbage once the report is returned.
//
// Analyze is total over well-formed input: an empty sequence produces a
// zeroed report, not an error.
func Analyze(packets []model.DecodedPacket) *report.Report {
	state := aggregate.NewState()
	for i := range packets {
		state.Observe(&packets[i], classify.Classify(&packets[i]))
	}
	return report.Build(state, alert.Evaluate(state))
}
