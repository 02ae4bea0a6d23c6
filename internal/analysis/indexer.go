package analysis

import (
	"fmt"
	"sort"

	"github.com/netstats-history/netdelta/internal/models"
)

// InterfaceOrder selects how Discover orders interface names.
type InterfaceOrder string

const (
	// OrderLexical sorts names by byte-wise string comparison.
	OrderLexical InterfaceOrder = "lexical"
	// OrderFirstSeen keeps the order in which names first appear in the log.
	OrderFirstSeen InterfaceOrder = "first_seen"
)

// ParseInterfaceOrder validates a config value. Empty means OrderLexical.
func ParseInterfaceOrder(s string) (InterfaceOrder, error) {
	switch InterfaceOrder(s) {
	case "", OrderLexical:
		return OrderLexical, nil
	case OrderFirstSeen:
		return OrderFirstSeen, nil
	default:
		return "", fmt.Errorf("unknown interface order %q", s)
	}
}

// Discover returns every distinct interface name referenced by samples.
// Every sample is scanned, since interfaces may be missing from any of them.
func Discover(samples []models.Sample, order InterfaceOrder) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, s := range samples {
		for _, ic := range s.Interfaces {
			if _, ok := seen[ic.Name]; ok {
				continue
			}
			seen[ic.Name] = struct{}{}
			names = append(names, ic.Name)
		}
	}
	if order != OrderFirstSeen {
		sort.Strings(names)
	}
	return names
}
