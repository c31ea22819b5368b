package app

import (
	"github.com/five82/logcollector/internal/config"
	"github.com/five82/logcollector/internal/crash"
)

// host resolves the sink from configuration and forwards crash
// subscriptions to the process crash handler.
type host struct {
	cfg     config.Config
	crashes *crash.Handler
}

// SinkPath resolves the sink for this run. With clean set, sink files from
// earlier runs are removed first, including the one for the other mode.
func (h *host) SinkPath(colored, clean bool) (string, error) {
	if clean {
		if err := h.cfg.PurgeSinks(); err != nil {
			return "", err
		}
	}
	return h.cfg.ResolveSinkPath(colored)
}

func (h *host) Subscribe(l crash.Listener) {
	h.crashes.Subscribe(l)
}
