package loadgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	db "weakdict/debug"
)

type Req func()

type LoadGenerator struct {
	totaldur time.Duration   // Duration of load generation.
	sleepdur time.Duration   // Interval at which to fire off new requests.
	maxrps   int64           // Max number of requests per second.
	req      Req             // Request func.
	mu       sync.Mutex      // Protects lats.
	lats     []time.Duration // Latencies.
	wg       sync.WaitGroup  // Wait for request threads.
}

type Tstats struct {
	N      int
	Mean   float64 // ms
	P50    float64
	P90    float64
	P99    float64
	P999   float64
	Max    float64
	ReqSec float64
}

func (st *Tstats) String() string {
	return fmt.Sprintf("\nLatency Stats (%d reqs, %.1f req/sec):\n\nMean: %vms\n50%%: %vms\n90%%: %vms\n99%%: %vms\n99.9%%: %vms\n100%%: %vms",
		st.N, st.ReqSec, st.Mean, st.P50, st.P90, st.P99, st.P999, st.Max)
}

func NewLoadGenerator(dur time.Duration, maxrps int, req Req) *LoadGenerator {
	if maxrps < 1 {
		db.DFatalf("NewLoadGenerator: maxrps %d < 1", maxrps)
	}
	lg := &LoadGenerator{}
	lg.totaldur = dur
	lg.sleepdur = time.Second / time.Duration(maxrps)
	lg.maxrps = int64(maxrps)
	lg.req = req
	lg.lats = make([]time.Duration, 0, int64(dur.Seconds()+1)*lg.maxrps)
	return lg
}

func (lg *LoadGenerator) runReq() {
	defer lg.wg.Done()
	start := time.Now()
	lg.req()
	lat := time.Since(start)
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.lats = append(lg.lats, lat)
}

func (lg *LoadGenerator) Stats(elapsed time.Duration) (*Tstats, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	data := make([]float64, len(lg.lats))
	for i, l := range lg.lats {
		data[i] = float64(l.Microseconds()) / 1000.0
	}
	st := &Tstats{N: len(data), ReqSec: float64(len(data)) / elapsed.Seconds()}
	var err error
	if st.Mean, err = stats.Mean(data); err != nil {
		return nil, fmt.Errorf("mean: %v", err)
	}
	for _, p := range []struct {
		pct float64
		v   *float64
	}{{50, &st.P50}, {90, &st.P90}, {99, &st.P99}, {99.9, &st.P999}} {
		if *p.v, err = stats.Percentile(data, p.pct); err != nil {
			return nil, fmt.Errorf("percentile %v: %v", p.pct, err)
		}
	}
	if st.Max, err = stats.Max(data); err != nil {
		return nil, fmt.Errorf("max: %v", err)
	}
	return st, nil
}

// Run fires requests at up to maxrps for the configured duration and
// returns their latency statistics.
func (lg *LoadGenerator) Run() (*Tstats, error) {
	t := time.NewTicker(lg.sleepdur)
	defer t.Stop()
	var i int
	start := time.Now()
	for ; time.Since(start) < lg.totaldur; i++ {
		<-t.C
		lg.wg.Add(1)
		go lg.runReq()
	}
	lg.wg.Wait()
	elapsed := time.Since(start)
	db.DPrintf(db.LOADGEN, "Avg req/sec: %v", float64(i)/elapsed.Seconds())
	return lg.Stats(elapsed)
}
