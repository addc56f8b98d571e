package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"PcapDigest/internal/config"
	"PcapDigest/internal/engine/report"
)

// Publisher publishes finished reports to a NATS subject so downstream
// consumers (dashboards, long-term collectors) can react to each analyzed
// capture. It implements report.Sink.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to NATS and returns a ready publisher.
func NewPublisher(cfg config.PublisherConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Store serializes the report envelope to JSON and publishes it.
func (p *Publisher) Store(_ context.Context, meta report.CaptureMeta, rpt *report.Report) error {
	envelope := struct {
		ReceivedAt string         `json:"received_at"`
		FileName   string         `json:"file_name"`
		Report     *report.Report `json:"report"`
	}{
		ReceivedAt: meta.ReceivedAt.UTC().Format(time.RFC3339),
		FileName:   meta.FileName,
		Report:     rpt,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal report envelope: %w", err)
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
