package analyzer

import (
	"strconv"
	"strings"
)

// Domain groups rules that only make sense for a framework or tool.
type Domain uint8

const (
	DomainReact Domain = iota
	DomainNext
	DomainSolid
	DomainTest
	numDomains
)

var domainNames = [...]string{"react", "next", "solid", "test"}

func (d Domain) String() string {
	if d < numDomains {
		return domainNames[d]
	}
	return "unknown"
}

// ParseDomain maps a linter.domains key to its Domain.
func ParseDomain(name string) (Domain, bool) {
	for i, n := range domainNames {
		if n == name {
			return Domain(i), true
		}
	}
	return 0, false
}

// DomainSet is a bitset over Domain.
type DomainSet uint8

func Domains(ds ...Domain) DomainSet {
	var s DomainSet
	for _, d := range ds {
		s = s.With(d)
	}
	return s
}

func (s DomainSet) Has(d Domain) bool { return s&(1<<d) != 0 }

func (s DomainSet) With(d Domain) DomainSet { return s | 1<<d }

func (s DomainSet) Empty() bool { return s == 0 }

func (s DomainSet) Intersects(o DomainSet) bool { return s&o != 0 }

// Items lists the members in declaration order.
func (s DomainSet) Items() []Domain {
	var out []Domain
	for d := Domain(0); d < numDomains; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s DomainSet) Names() []string {
	var out []string
	for _, d := range s.Items() {
		out = append(out, d.String())
	}
	return out
}

type domainDependency struct {
	name string
	// minMajor is the lowest supported major version, 0 for any.
	minMajor int
}

type domainInfo struct {
	deps    []domainDependency
	globals []string
}

var domainTable = [numDomains]domainInfo{
	DomainReact: {deps: []domainDependency{{"react", 16}}},
	DomainNext:  {deps: []domainDependency{{"next", 14}}},
	DomainSolid: {deps: []domainDependency{{"solid-js", 0}}},
	DomainTest: {
		deps: []domainDependency{{"jest", 0}, {"mocha", 0}, {"ava", 0}, {"vitest", 0}},
		globals: []string{
			"after", "afterAll", "afterEach", "before", "beforeEach", "beforeAll",
			"describe", "it", "expect", "test",
		},
	},
}

// Globals returns the names the domain declares.
func (d Domain) Globals() []string {
	if d >= numDomains {
		return nil
	}
	return domainTable[d].globals
}

// DomainsFromDependencies detects the domains enabled by manifest
// dependencies (name -> version range). Ranges without a readable major
// version ("latest", "workspace:*", git URLs) are accepted.
func DomainsFromDependencies(deps map[string]string) DomainSet {
	var out DomainSet
	for d := Domain(0); d < numDomains; d++ {
		for _, dep := range domainTable[d].deps {
			v, ok := deps[dep.name]
			if !ok {
				continue
			}
			if major, ok := majorVersion(v); !ok || major >= dep.minMajor {
				out = out.With(d)
				break
			}
		}
	}
	return out
}

// majorVersion reads the first number of a version range: "^18.2.0" -> 18,
// ">=14 <15" -> 14.
func majorVersion(v string) (int, bool) {
	v = strings.TrimSpace(v)
	v = strings.TrimLeft(v, "^~>=<v ")
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
