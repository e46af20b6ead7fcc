package app

import (
	"context"
	"fmt"
	"sort"
)

// Job is a component, that runs once to completion
type Job interface {
	Run(ctx context.Context) error
}

// Run loads configuration, initializes logging and all components from
// factories, configures them with their sections and runs the named job.
func Run(ctx context.Context, f Factories, job string) error {
	conf, err := getConfig()
	if err != nil {
		return fmt.Errorf("cannot load configuration: %w", err)
	}
	initLogging(conf["log"])
	return execute(ctx, f, conf, job)
}

func execute(ctx context.Context, f Factories, conf configuration, job string) error {
	singletons, err := f.Init()
	if err != nil {
		return err
	}
	names := []string{}
	for k := range singletons {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		c, ok := singletons[name].(configurable)
		if !ok {
			continue
		}
		err = c.Configure(conf[name])
		if err != nil {
			return fmt.Errorf("configure %s: %w", name, err)
		}
	}
	j, ok := singletons[job].(Job)
	if !ok {
		return fmt.Errorf("%s is not a job", job)
	}
	return j.Run(Log.WithStr(ctx, "job", job))
}
