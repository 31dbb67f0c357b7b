package telemetry

import (
	"errors"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Ship-Sense/internal/config"
)

// Measurement is the InfluxDB measurement condition samples are written to.
const Measurement = "ship_condition"

// StrengthMeasurement holds the controller's derived strength conditions.
const StrengthMeasurement = "fleet_condition"

// Sample is one ship's condition at one tick.
type Sample struct {
	Tick       int64
	Ship       string
	Government string
	System     string
	Shields    float64
	Hull       float64
	Energy     float64
	Fuel       float64
	Heat       float64
	Fence      int
	Orders     string
	Target     string
}

// SamplePoint converts a sample to an InfluxDB point.
func SamplePoint(s Sample, at time.Time) *influxdb2_write.Point {
	tags := map[string]string{
		"ship":       s.Ship,
		"government": s.Government,
	}
	if s.System != "" {
		tags["system"] = s.System
	}
	fields := map[string]interface{}{
		"tick":    s.Tick,
		"shields": s.Shields,
		"hull":    s.Hull,
		"energy":  s.Energy,
		"fuel":    s.Fuel,
		"heat":    s.Heat,
		"fence":   s.Fence,
		"orders":  s.Orders,
		"target":  s.Target,
	}
	return influxdb2.NewPoint(Measurement, tags, fields, at)
}

// ConditionPoint converts one named controller condition to a point. The
// part of the name after a colon becomes the government tag.
func ConditionPoint(tick int64, name string, value int64, at time.Time) *influxdb2_write.Point {
	tags := map[string]string{"condition": name}
	if base, gov, ok := strings.Cut(name, ":"); ok {
		tags["condition"] = base
		tags["government"] = gov
	}
	fields := map[string]interface{}{
		"tick":  tick,
		"value": value,
	}
	return influxdb2.NewPoint(StrengthMeasurement, tags, fields, at)
}

// InfluxSink writes condition samples through a non-blocking write API.
type InfluxSink struct {
	client influxdb2.Client
	writer influxdb2_api.WriteAPI
	log    zerolog.Logger
	done   chan struct{}
}

// NewInfluxSink connects to the configured server. It returns an error when
// the sink is disabled.
func NewInfluxSink(cfg config.Influx, log zerolog.Logger) (*InfluxSink, error) {
	if !cfg.Enabled {
		return nil, errors.New("influx.enabled is false")
	}
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)
	s := &InfluxSink{
		client: client,
		writer: client.WriteAPI(cfg.Org, cfg.Bucket),
		log:    log,
		done:   make(chan struct{}),
	}
	go s.drainErrors()
	return s, nil
}

func (s *InfluxSink) drainErrors() {
	errs := s.writer.Errors()
	for {
		select {
		case err, ok := <-errs:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("influx write failed")
		case <-s.done:
			return
		}
	}
}

// Write queues samples stamped with at.
func (s *InfluxSink) Write(samples []Sample, at time.Time) {
	for _, sm := range samples {
		s.writer.WritePoint(SamplePoint(sm, at))
	}
}

// WriteCondition queues one controller condition stamped with at.
func (s *InfluxSink) WriteCondition(tick int64, name string, value int64, at time.Time) {
	s.writer.WritePoint(ConditionPoint(tick, name, value, at))
}

// Close flushes pending points and releases the client.
func (s *InfluxSink) Close() {
	s.writer.Flush()
	close(s.done)
	s.client.Close()
}
