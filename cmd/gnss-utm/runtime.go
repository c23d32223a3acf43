package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"gnss-base/internal/config"
	"gnss-base/internal/gnss"
	"gnss-base/internal/metrics"
	"gnss-base/internal/mqttpub"
	"gnss-base/internal/pose"
	"gnss-base/internal/record"
	"gnss-base/internal/replay"
	"gnss-base/internal/udp"
	"gnss-base/internal/utm"
)

type poseSink interface {
	Emit(ctx context.Context, s pose.Sample) error
	Close() error
}

type namedSink struct {
	name string
	poseSink
}

type runStats struct {
	Solutions  int64
	Converted  int64
	NoSolution int64
	Unusable   int64
	SinkErrors int64
}

func run(ctx context.Context, cfg config.Config, factory utm.TransformFactory, stdin io.Reader, stdout io.Writer) error {
	params := cfg.UTM.Params()
	conv, err := utm.NewConverter(factory, params)
	if err != nil {
		return err
	}
	defer conv.Close()
	log.Printf("utm zone=%d north=%t origin=(%.3f, %.3f, %.3f)", params.Zone, params.North, params.Origin.X, params.Origin.Y, params.Origin.Z)

	in := stdin
	if cfg.Input.Path != "-" {
		f, err := os.Open(cfg.Input.Path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	log.Printf("input path=%s pace=%t speed=%g", cfg.Input.Path, cfg.Input.Pace, cfg.Input.Speed)

	var pacer *replay.Pacer
	if cfg.Input.Pace {
		pacer, err = replay.NewPacer(cfg.Input.Speed, nil)
		if err != nil {
			return err
		}
	}

	sinks, err := openSinks(cfg.Output, stdout)
	if err != nil {
		return err
	}
	defer closeSinks(sinks)

	start := time.Now()
	st, err := convertAll(ctx, conv, replay.NewReader(in), pacer, sinks)
	log.Printf("processed %s solutions in %s: converted=%s no_solution=%s unusable=%s sink_errors=%s",
		humanize.Comma(st.Solutions),
		time.Since(start).Round(time.Millisecond),
		humanize.Comma(st.Converted),
		humanize.Comma(st.NoSolution),
		humanize.Comma(st.Unusable),
		humanize.Comma(st.SinkErrors),
	)

	if path := cfg.Metrics.Textfile; path != "" {
		if merr := metrics.WriteTextfile(path); merr != nil {
			log.Printf("metrics textfile write failed path=%s: %v", path, merr)
		}
	}
	return err
}

// convertAll feeds every solution from r through conv into the sinks. A sink
// error is logged and counted; it does not stop the run.
func convertAll(ctx context.Context, conv *utm.Converter, r *replay.Reader, pacer *replay.Pacer, sinks []namedSink) (runStats, error) {
	var st runStats
	for {
		if ctx.Err() != nil {
			return st, nil
		}

		sol, err := r.Next()
		if errors.Is(err, io.EOF) {
			return st, nil
		}
		if err != nil {
			return st, err
		}
		st.Solutions++

		if pacer != nil {
			if err := pacer.Wait(ctx, sol.Time); err != nil {
				if ctx.Err() != nil {
					return st, nil
				}
				return st, err
			}
		}

		out, ok := conv.Convert(sol)
		if !ok {
			if sol.PositionType == gnss.NoSolution {
				st.NoSolution++
				metrics.ObserveSolution(metrics.ResultNoSolution)
				continue
			}
			// run builds the converter once and aborts on init failure, so this
			// only counts for a converter whose reconfiguration failed.
			st.Unusable++
			metrics.ObserveSolution(metrics.ResultUnusable)
			if st.Unusable == 1 {
				log.Printf("converter unusable: %v", conv.Err())
			}
			continue
		}
		st.Converted++
		metrics.ObserveSolution(metrics.ResultConverted)
		if !out.Time.IsZero() {
			metrics.ObserveConverted(float64(out.Time.UnixNano()) / 1e9)
		}

		for _, s := range sinks {
			if err := s.Emit(ctx, out); err != nil {
				st.SinkErrors++
				metrics.ObserveSinkError(s.name)
				log.Printf("sink %s emit failed: %v", s.name, err)
			}
		}
	}
}

func openSinks(cfg config.OutputConfig, stdout io.Writer) (sinks []namedSink, err error) {
	defer func() {
		if err != nil {
			closeSinks(sinks)
			sinks = nil
		}
	}()

	switch cfg.Path {
	case "":
	case "-":
		sinks = append(sinks, namedSink{name: "stdout", poseSink: replay.NewPoseWriter(stdout)})
	default:
		pw, err := replay.CreatePoseWriter(cfg.Path)
		if err != nil {
			return sinks, fmt.Errorf("create pose output: %w", err)
		}
		sinks = append(sinks, namedSink{name: "file", poseSink: pw})
		log.Printf("pose output path=%s", cfg.Path)
	}

	if cfg.UDP.Enable {
		b, err := udp.NewBroadcaster(cfg.UDP.Dest)
		if err != nil {
			return sinks, fmt.Errorf("udp broadcaster init failed: %w", err)
		}
		sinks = append(sinks, namedSink{name: "udp", poseSink: b})
		log.Printf("udp dest=%s", cfg.UDP.Dest)
	}

	if cfg.MQTT.Enable {
		p, err := mqttpub.Connect(mqttpub.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
			QoS:      cfg.MQTT.QoS,
			Retain:   cfg.MQTT.Retain,
		})
		if err != nil {
			return sinks, err
		}
		sinks = append(sinks, namedSink{name: "mqtt", poseSink: p})
		log.Printf("mqtt broker=%s topic=%s qos=%d", cfg.MQTT.Broker, cfg.MQTT.Topic, cfg.MQTT.QoS)
	}

	if cfg.Record.Enable {
		sinks = append(sinks, namedSink{name: "record", poseSink: record.NewSqliteStore(cfg.Record.Path)})
		log.Printf("recording poses path=%s", cfg.Record.Path)
	}
	return sinks, nil
}

func closeSinks(sinks []namedSink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Printf("sink %s close failed: %v", s.name, err)
		}
	}
}
