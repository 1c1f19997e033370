package handletbl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default tuning of the purge heuristic and the handle allocator.
var defaults = `
purge:
  base: 32
  valid_reciprocal: 4
  mu: 0.5

handle:
  max_tries: 1048576
`

type Params struct {
	Purge struct {
		// Floor and initial value of the purge threshold.
		BASE int `yaml:"base"`
		// A sweep aims for 1/VALID_RECIPROCAL of the table being live
		// when the next sweep triggers.
		VALID_RECIPROCAL int `yaml:"valid_reciprocal"`
		// Smoothing factor for threshold updates, in (0, 1].
		MU float64 `yaml:"mu"`
	} `yaml:"purge"`
	Handle struct {
		// Collision retries before Add gives up.
		MAX_TRIES int `yaml:"max_tries"`
	} `yaml:"handle"`
}

func DefaultParams() *Params {
	p := &Params{}
	if err := yaml.Unmarshal([]byte(defaults), p); err != nil {
		panic(fmt.Sprintf("defaults: %v", err))
	}
	return p
}

// ParseParams decodes b on top of the defaults.
func ParseParams(b []byte) (*Params, error) {
	p := DefaultParams()
	if err := yaml.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("ParseParams: %v", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func ReadParams(pn string) (*Params, error) {
	b, err := os.ReadFile(pn)
	if err != nil {
		return nil, fmt.Errorf("ReadParams: %v", err)
	}
	return ParseParams(b)
}

func (p *Params) Validate() error {
	if p.Purge.BASE < 1 {
		return fmt.Errorf("purge base %d < 1", p.Purge.BASE)
	}
	if p.Purge.VALID_RECIPROCAL < 1 {
		return fmt.Errorf("purge valid_reciprocal %d < 1", p.Purge.VALID_RECIPROCAL)
	}
	if p.Purge.MU <= 0 || p.Purge.MU > 1 {
		return fmt.Errorf("purge mu %v not in (0, 1]", p.Purge.MU)
	}
	if p.Handle.MAX_TRIES < 1 {
		return fmt.Errorf("handle max_tries %d < 1", p.Handle.MAX_TRIES)
	}
	return nil
}

func (p *Params) String() string {
	return fmt.Sprintf("{base %d valid_reciprocal %d mu %v max_tries %d}",
		p.Purge.BASE, p.Purge.VALID_RECIPROCAL, p.Purge.MU, p.Handle.MAX_TRIES)
}
