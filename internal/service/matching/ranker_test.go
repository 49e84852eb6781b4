package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viagens-moz/intercity/internal/domain/driver"
)

func named(name string, priority bool) *driver.Driver {
	d := driver.New(name, "", "84")
	d.IsPriority = priority
	return d
}

func names(drivers []*driver.Driver) []string {
	out := make([]string, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, d.Name)
	}
	return out
}

// TestRank_PriorityFirstStable tests the stable partition
func TestRank_PriorityFirstStable(t *testing.T) {
	input := []*driver.Driver{named("A", false), named("B", true), named("C", false), named("D", true)}

	ranked := Rank(input)

	assert.Equal(t, []string{"B", "D", "A", "C"}, names(ranked))
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(input), "Input must not be reordered")
}

func TestRank_Uniform(t *testing.T) {
	allNormal := []*driver.Driver{named("C", false), named("A", false), named("B", false)}
	assert.Equal(t, []string{"C", "A", "B"}, names(Rank(allNormal)))

	allPriority := []*driver.Driver{named("C", true), named("A", true)}
	assert.Equal(t, []string{"C", "A"}, names(Rank(allPriority)))
}

func TestRank_Empty(t *testing.T) {
	assert.NotNil(t, Rank(nil))
	assert.Empty(t, Rank(nil))
}
