// Package state defines shared program state.
package state

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wfp/config"
	"wfp/font"
	"wfp/mirror"
	"wfp/platform"
	"wfp/provider"
)

type envKey struct{}

// LocalEnv keeps everything the pipeline needs in a single place: the
// explicitly constructed replacement for the original's lazily-instantiated
// singleton controller. Build it once at process start and pass it by
// reference.
type LocalEnv struct {
	Cfg *config.Config
	Log *zap.Logger

	Fonts     *font.Registry
	Providers *provider.Set
	Mirror    *mirror.Mirror
	Queue     platform.StylesheetQueue

	cache         *platform.SQLiteCache
	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		Queue: &platform.MemoryQueue{},
	}
}

// InitializePipeline wires registry, providers and mirror from the loaded
// configuration. Cfg and Log must be set before calling.
func (e *LocalEnv) InitializePipeline() error {
	if e.Cfg == nil {
		return fmt.Errorf("configuration must be loaded before pipeline initialization")
	}
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}

	cache, err := platform.OpenSQLiteCache(e.Cfg.Fonts.CachePath)
	if err != nil {
		return fmt.Errorf("unable to open fonts cache: %w", err)
	}
	e.cache = cache

	fetch := platform.NewHTTPFetcher()

	e.Providers = provider.NewSet(log, provider.NewLocal(log))
	for _, rc := range e.Cfg.Providers.Remote {
		e.Providers.Register(provider.NewRemote(log, provider.RemoteConfig{
			Name:    rc.Name,
			BaseURL: rc.BaseURL,
			APIKey:  string(rc.APIKey),
			CSSTTL:  rc.CSSTTLDuration(),
			ErrTTL:  rc.NegativeTTLDuration(),
		}, cache, fetch))
	}

	// the registry must pass provider API parameters through to the providers
	var extras []string
	for _, name := range e.Providers.Names() {
		if p, ok := e.Providers.Get(name); ok {
			extras = append(extras, p.ExtraProperties()...)
		}
	}
	e.Fonts = font.NewRegistry(log, extras...)
	e.Mirror = mirror.New(log, platform.OSFS{}, fetch, cache, e.Cfg.Fonts.RootDir, e.Cfg.Fonts.PublicBase)
	return nil
}

// ClosePipeline releases resources owned by the pipeline.
func (e *LocalEnv) ClosePipeline() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
