package debug

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
)

func init() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
}

//
// Debug output is controled by WEAKDICTDEBUG environment variable,
// which can be a list of selectors (e.g., "HANDLETBL;HANDLETBL_PURGE").
//

var (
	once   sync.Once
	labels map[Tselector]bool
)

func debugLabels() map[Tselector]bool {
	once.Do(func() {
		labels = make(map[Tselector]bool)
		s := os.Getenv("WEAKDICTDEBUG")
		if s == "" {
			return
		}
		for _, l := range strings.Split(s, ";") {
			labels[Tselector(l)] = true
		}
	})
	return labels
}

func IsLabelSet(label Tselector) bool {
	return label == ALWAYS || debugLabels()[label]
}

func DPrintf(label Tselector, format string, v ...interface{}) {
	if IsLabelSet(label) {
		log.Printf("%v %v", label, fmt.Sprintf(format, v...))
	}
}

// DFatalf logs the caller's location and panics.
func DFatalf(format string, v ...interface{}) {
	// Get info for the caller.
	pc, file, line, ok := runtime.Caller(1)
	fnDetails := runtime.FuncForPC(pc)
	if ok && fnDetails != nil {
		log.Panicf("FATAL %v %v:%v %v", fnDetails.Name(), file, line, fmt.Sprintf(format, v...))
	} else {
		log.Panicf("FATAL (missing details) %v", fmt.Sprintf(format, v...))
	}
}
