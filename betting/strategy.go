package betting

import "strings"

// StrategyKind identifies one of the supported money‑management systems.
type StrategyKind int

const (
	Martingale StrategyKind = iota + 1
	Paroli
	DAlembert
	Pyramid
	OscarsGrind
	Constant
)

var strategyNames = map[StrategyKind]string{
	Martingale:  "Martingale",
	Paroli:      "Paroli",
	DAlembert:   "d'Alembert",
	Pyramid:     "Pyramid",
	OscarsGrind: "Oscar's grind",
	Constant:    "Constant",
}

// lookup is keyed by the normalized canonical name.
var lookup = func() map[string]StrategyKind {
	m := make(map[string]StrategyKind, len(strategyNames))
	for k, name := range strategyNames {
		m[normalize(name)] = k
	}
	return m
}()

// String returns the canonical display name, e.g. "Oscar's grind".
func (k StrategyKind) String() string {
	if name, ok := strategyNames[k]; ok {
		return name
	}
	return "unknown"
}

// Strategies lists every supported kind in declaration order.
func Strategies() []StrategyKind {
	return []StrategyKind{Martingale, Paroli, DAlembert, Pyramid, OscarsGrind, Constant}
}

// ParseStrategy resolves a free‑form name. Matching ignores case and every
// apostrophe and space, so "OSCARS GRIND" and "oscar's grind" are the same.
func ParseStrategy(name string) (StrategyKind, error) {
	if k, ok := lookup[normalize(name)]; ok {
		return k, nil
	}
	return 0, &StrategyError{Name: name}
}

func normalize(name string) string {
	r := strings.NewReplacer("'", "", " ", "")
	return r.Replace(strings.ToLower(name))
}
