package telemetry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig controls Pyroscope continuous profiling. CPU and heap
// profiles are always collected once enabled.
type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string
	ApplicationName   string
	ProfileGoroutines bool
	ProfileMutexes    bool
}

func (c ProfilerConfig) validate() error {
	switch {
	case c.ServerAddress == "":
		return errors.New("pyroscope server address is required")
	case c.ApplicationName == "":
		return errors.New("pyroscope application name is required")
	}
	return nil
}

// profileTypes lists what the agent uploads
func (c ProfilerConfig) profileTypes() []pyroscope.ProfileType {
	types := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocObjects, pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseObjects, pyroscope.ProfileInuseSpace,
	}
	if c.ProfileGoroutines {
		types = append(types, pyroscope.ProfileGoroutines)
	}
	if c.ProfileMutexes {
		types = append(types, pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration)
	}
	return types
}

// Profiler is the running Pyroscope agent, or a no-op when disabled
type Profiler struct {
	agent    *pyroscope.Profiler
	log      *zap.Logger
	stopOnce sync.Once
	stopErr  error
}

// NewProfiler starts the agent. Samples are tagged with the pod hostname.
func NewProfiler(cfg ProfilerConfig, log *zap.Logger) (*Profiler, error) {
	p := &Profiler{log: log}
	if !cfg.Enabled {
		log.Info("Continuous profiling disabled")
		return p, nil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	tags := map[string]string{}
	if host, ok := os.LookupEnv("HOSTNAME"); ok && host != "" {
		tags["hostname"] = host
	}
	agent, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Tags:            tags,
		ProfileTypes:    cfg.profileTypes(),
		Logger:          log.Named("pyroscope").Sugar(),
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	p.agent = agent

	log.Info("Profiling to Pyroscope",
		zap.String("server", cfg.ServerAddress),
		zap.String("application", cfg.ApplicationName))
	return p, nil
}

// IsEnabled reports whether the agent is running
func (p *Profiler) IsEnabled() bool { return p.agent != nil }

// Stop uploads the last profiles. Later calls return the first result.
func (p *Profiler) Stop() error {
	p.stopOnce.Do(func() {
		if p.agent == nil {
			return
		}
		if err := p.agent.Stop(); err != nil {
			p.stopErr = fmt.Errorf("stop pyroscope: %w", err)
			return
		}
		p.log.Info("Pyroscope agent stopped")
	})
	return p.stopErr
}
