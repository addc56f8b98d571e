package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"PcapDigest/internal/config"
	"PcapDigest/internal/engine/report"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS capture_reports (
    ReceivedAt  DateTime,
    FileName    String,
    PacketCount UInt64,
    TotalBytes  UInt64,
    UniqueHosts UInt32,
    AlertCount  UInt32,
    Report      String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(ReceivedAt)
ORDER BY ReceivedAt;
`

const insertStatement = `
INSERT INTO capture_reports
    (ReceivedAt, FileName, PacketCount, TotalBytes, UniqueHosts, AlertCount, Report)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// ClickHouseWriter archives one row per analyzed capture. It implements
// report.Sink; analysis itself stays stateless per request, the archive is
// purely a boundary side-channel.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and ensures the archive table
// exists.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")

	return &ClickHouseWriter{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Store inserts the archive row for one analyzed capture.
func (w *ClickHouseWriter) Store(ctx context.Context, meta report.CaptureMeta, rpt *report.Report) error {
	body, err := json.Marshal(rpt)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	err = w.conn.Exec(ctx, insertStatement,
		meta.ReceivedAt,
		meta.FileName,
		rpt.Summary.PacketCount,
		rpt.Summary.TotalBytes,
		uint32(rpt.Summary.UniqueHosts),
		uint32(len(rpt.Summary.Alerts)),
		string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report row: %w", err)
	}
	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
