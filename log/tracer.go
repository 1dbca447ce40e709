package log

import (
	"sync"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
)

var (
	tracerMu sync.Mutex
	tracers  = make(map[string]bool)
)

// AddTracer mirrors trace and warn records into <path>.trace and <path>.warn
// as JSON lines. A path is hooked at most once.
func AddTracer(path string) {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	if tracers[path] {
		return
	}
	pathMap := lfshook.PathMap{
		log.TraceLevel: path + ".trace",
		log.WarnLevel:  path + ".warn",
	}
	hook := lfshook.NewHook(
		pathMap,
		&log.JSONFormatter{
			TimestampFormat: "Jan _2 2006 15:04:05.000000",
		},
	)
	base.Hooks.Add(hook)
	tracers[path] = true
}
