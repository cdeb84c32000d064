// internal/app/bootstrap/background.go
package bootstrap

import "sync"

// stopper is a background worker that BuildHandler started and Shutdown
// must stop.
type stopper interface {
	Stop()
}

var (
	bgMu      sync.Mutex
	bgWorkers []stopper
)

func runInBackground(s stopper) {
	bgMu.Lock()
	bgWorkers = append(bgWorkers, s)
	bgMu.Unlock()
}

// stopBackground stops workers in reverse start order.
func stopBackground() {
	bgMu.Lock()
	ws := bgWorkers
	bgWorkers = nil
	bgMu.Unlock()
	for i := len(ws) - 1; i >= 0; i-- {
		ws[i].Stop()
	}
}
