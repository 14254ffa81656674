// Package metrics emits the console's StatsD metrics.
package metrics

import (
	"maps"
	"time"

	obserrors "github.com/target/userdesk/internal/observability/errors"
	"github.com/target/userdesk/internal/observability/statsd"
)

// Result tags.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// UsersAPICall describes one round trip to the users API.
type UsersAPICall struct {
	Operation string
	Duration  time.Duration
	Err       error
}

// EmitUsersAPICall records users.api.call and users.api.duration.
func EmitUsersAPICall(sink statsd.Sink, in UsersAPICall) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    ResultSuccess,
	}
	if in.Err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("users.api.call", 1, tags)
	if in.Duration > 0 {
		sink.Timing("users.api.duration", in.Duration, CloneTags(tags))
	}
}

// EmitNotification records console.notification by kind.
func EmitNotification(sink statsd.Sink, kind string) {
	if sink == nil {
		return
	}
	sink.Count("console.notification", 1, map[string]string{"kind": kind})
}

// EmitListSize records the size of the last successfully loaded list.
func EmitListSize(sink statsd.Sink, n int) {
	if sink == nil {
		return
	}
	sink.Gauge("users.list.size", float64(n), nil)
}

// CloneTags copies a tag map so sinks may retain it.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
