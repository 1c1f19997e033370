package main

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shirou/gopsutil/process"
	"github.com/thanhpk/randstr"
	"golang.org/x/sync/errgroup"

	db "weakdict/debug"
	"weakdict/handletbl"
	"weakdict/loadgen"
	"weakdict/util/rand"
)

const (
	NREADER = 4
	NRECENT = 4096
	PATHLEN = 16
)

type object struct {
	path string
	data [16]int64
}

// Recently added handles, sampled by the readers.
type ring struct {
	mu sync.Mutex
	hs []handletbl.Thandle
	nh int
}

func newRing() *ring {
	return &ring{hs: make([]handletbl.Thandle, NRECENT)}
}

func (r *ring) record(h handletbl.Thandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hs[r.nh%len(r.hs)] = h
	r.nh += 1
}

func (r *ring) recent() (handletbl.Thandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := min(r.nh, len(r.hs))
	if n == 0 {
		return 0, false
	}
	return r.hs[rand.Int64n(int64(n))], true
}

func main() {
	if len(os.Args) < 5 {
		db.DFatalf("Usage: %v duration maxrps keep-pct nretain [params.yaml]\nArgs: %v", os.Args[0], os.Args)
	}
	dur, err := time.ParseDuration(os.Args[1])
	if err != nil {
		db.DFatalf("Error ParseDuration: %v", err)
	}
	maxrps, err := strconv.Atoi(os.Args[2])
	if err != nil || maxrps < 1 {
		db.DFatalf("Error maxrps %q: %v", os.Args[2], err)
	}
	pct, err := strconv.Atoi(os.Args[3])
	if err != nil || pct < 0 || pct > 100 {
		db.DFatalf("Error keep-pct %q: %v", os.Args[3], err)
	}
	nretain, err := strconv.Atoi(os.Args[4])
	if err != nil {
		db.DFatalf("Error nretain: %v", err)
	}
	p := handletbl.DefaultParams()
	if len(os.Args) > 5 {
		if p, err = handletbl.ReadParams(os.Args[5]); err != nil {
			db.DFatalf("Error params: %v", err)
		}
	}
	db.DPrintf(db.ALWAYS, "weakbench %v %d req/s keep %d%% retain %d params %v", dur, maxrps, pct, nretain, p)

	ht := handletbl.NewHandleTable[object](p)
	r := newRing()
	// The cache is the only strong owner of retained objects; once
	// evicted they die and their slots wait for the next sweep.
	var owner *lru.Cache[handletbl.Thandle, *object]
	if nretain > 0 {
		if owner, err = lru.New[handletbl.Thandle, *object](nretain); err != nil {
			db.DFatalf("Error lru: %v", err)
		}
	}

	lg := loadgen.NewLoadGenerator(dur, maxrps, func() {
		o := &object{path: "/" + randstr.Hex(PATHLEN)}
		h := ht.Add(o.path, o)
		if owner != nil && rand.Int64n(100) < int64(pct) {
			owner.Add(h, o)
		}
		r.record(h)
	})

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	var nhit, nmiss [NREADER]uint64
	for i := 0; i < NREADER; i++ {
		g.Go(func() error {
			for gctx.Err() == nil {
				h, ok := r.recent()
				if !ok {
					runtime.Gosched()
					continue
				}
				if _, ok := ht.TryGet(h); ok {
					nhit[i] += 1
				} else {
					nmiss[i] += 1
				}
			}
			return nil
		})
	}

	st, err := lg.Run()
	cancel()
	if err := g.Wait(); err != nil {
		db.DFatalf("Error readers: %v", err)
	}
	if err != nil {
		db.DFatalf("Error loadgen: %v", err)
	}

	var hit, miss uint64
	for i := 0; i < NREADER; i++ {
		hit += nhit[i]
		miss += nmiss[i]
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		db.DFatalf("Error NewProcess: %v", err)
	}
	mi, err := proc.MemoryInfo()
	if err != nil {
		db.DFatalf("Error MemoryInfo: %v", err)
	}
	tst := ht.Stats()
	db.DPrintf(db.ALWAYS, "Add %v", st)
	db.DPrintf(db.ALWAYS, "table len %s threshold %s sweeps %s swaps %s swept %s collisions %s",
		humanize.Comma(int64(ht.Len())), humanize.Comma(int64(ht.Threshold())),
		humanize.Comma(int64(tst.Nsweep)), humanize.Comma(int64(tst.Nswap)),
		humanize.Comma(int64(tst.Nswept)), humanize.Comma(int64(tst.Ncollision)))
	db.DPrintf(db.ALWAYS, "lookups hit %s miss %s heap %s rss %s",
		humanize.Comma(int64(hit)), humanize.Comma(int64(miss)),
		humanize.Bytes(ms.HeapAlloc), humanize.Bytes(mi.RSS))
}
