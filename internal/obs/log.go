// Package obs carries the observability primitives shared by the whole
// service: the JSON line logger and the Prometheus HTTP metrics.
package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

var (
	logOnce sync.Once
	logOut  *log.Logger
)

// Logger returns the process-wide logger. Output is one JSON object per line
// on stdout, ready for a log collector.
func Logger() *log.Logger {
	logOnce.Do(func() {
		logOut = log.New(os.Stdout, "", 0)
	})
	return logOut
}

// LogRequest writes one access-log line with the given fields.
func LogRequest(fields map[string]any) {
	writeLine(fields)
}

// LogError writes an error line. The message lands in "msg", everything else
// comes from fields.
func LogError(msg string, fields map[string]any) {
	if fields == nil {
		fields = make(map[string]any, 2)
	}
	fields["level"] = "error"
	fields["msg"] = msg
	writeLine(fields)
}

func writeLine(fields map[string]any) {
	data, err := json.Marshal(fields)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}
