package alert

import (
	"PcapDigest/internal/core/model"
	"PcapDigest/internal/engine/aggregate"
)

// Fixed rule thresholds. These are deliberate constants, not configuration.
const (
	largeCapturePackets = 100_000
	dnsVolumeRatio      = 0.35
	dominantTalkerShare = 0.6
)

// rule evaluates one heuristic against the final aggregate. Rules fire
// independently; message order follows declaration order.
type rule struct {
	message string
	fires   func(s *aggregate.State) bool
}

var rules = []rule{
	{
		message: "Large capture: more than 100k packets.",
		fires: func(s *aggregate.State) bool {
			return s.PacketCount > largeCapturePackets
		},
	},
	{
		message: "High DNS volume relative to total traffic.",
		fires: func(s *aggregate.State) bool {
			if s.PacketCount == 0 {
				return false
			}
			dns := s.TagTotal(model.LayerDNS.String())
			return float64(dns)/float64(s.PacketCount) > dnsVolumeRatio
		},
	},
	{
		message: "Single host dominates traffic volume.",
		fires: func(s *aggregate.State) bool {
			talkers := s.Talkers()
			if len(talkers) == 0 {
				return false
			}
			var top, total uint64
			for _, t := range talkers {
				if t.Bytes > top {
					top = t.Bytes
				}
				total += t.Bytes
			}
			if total == 0 {
				return false
			}
			return float64(top)/float64(total) > dominantTalkerShare
		},
	},
}

// Evaluate applies the heuristic rules to a finished aggregate and returns
// the triggered alert messages. It never fails; no triggered rules yields
// an empty list.
func Evaluate(s *aggregate.State) []string {
	alerts := make([]string, 0)
	for _, r := range rules {
		if r.fires(s) {
			alerts = append(alerts, r.message)
		}
	}
	return alerts
}
