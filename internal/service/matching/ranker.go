package matching

import (
	"slices"

	"github.com/viagens-moz/intercity/internal/domain/driver"
)

// Rank moves priority drivers ahead of the others. Relative order within
// each group is kept. The input slice is not modified.
func Rank(drivers []*driver.Driver) []*driver.Driver {
	ranked := slices.Clone(drivers)
	if ranked == nil {
		ranked = []*driver.Driver{}
	}
	slices.SortStableFunc(ranked, func(a, b *driver.Driver) int {
		switch {
		case a.IsPriority == b.IsPriority:
			return 0
		case a.IsPriority:
			return -1
		default:
			return 1
		}
	})
	return ranked
}
