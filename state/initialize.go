package state

import (
	"runtime"
	"time"
)

func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

// Jobs returns how many parts could be produced at the same time.
func (e *LocalEnv) Jobs() int {
	if e.Cfg == nil || e.Cfg.Splitter.Jobs <= 0 {
		return runtime.NumCPU()
	}
	return e.Cfg.Splitter.Jobs
}

// MaxSelectors returns configured selector limit for a single part.
func (e *LocalEnv) MaxSelectors() int {
	if e.Cfg == nil || e.Cfg.Splitter.MaxSelectors <= 0 {
		return defaultMaxSelectors
	}
	return e.Cfg.Splitter.MaxSelectors
}

// same as css.DefaultMaxSelectors, state must not depend on processing packages
const defaultMaxSelectors = 4095
