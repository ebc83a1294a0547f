package movements

import (
	"testing"
	"time"

	"github.com/isparser/isparser/extractor/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mv(date string, amount string, description string, tags ...string) common.Movement {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	if tags == nil {
		tags = []string{}
	}
	return common.Movement{Date: d, Amount: decimal.RequireFromString(amount), Description: description, Tags: tags}
}

func descriptions(movements []common.Movement) []string {
	out := make([]string, 0, len(movements))
	for _, m := range movements {
		out = append(out, m.Description)
	}
	return out
}

func TestAddBatch_KeepsDateOrder(t *testing.T) {
	c := NewCollection()
	c.AddBatch([]common.Movement{
		mv("2024-03-10", "-1", "c"),
		mv("2024-03-01", "-1", "a"),
	})
	c.AddBatch([]common.Movement{
		mv("2024-03-05", "-1", "b"),
		mv("2024-03-20", "-1", "d"),
		mv("2024-02-28", "-1", "z"),
	})

	all := c.All()
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, []string{"z", "a", "b", "c", "d"}, descriptions(all))
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Date.Before(all[i-1].Date), "not sorted at %d", i)
	}
}

func TestAddBatch_SameDateKeepsInsertionOrder(t *testing.T) {
	c := NewCollection()
	c.AddBatch([]common.Movement{mv("2024-03-01", "-1", "first"), mv("2024-03-01", "-1", "second")})
	c.AddBatch([]common.Movement{mv("2024-03-01", "-1", "third")})

	assert.Equal(t, []string{"first", "second", "third"}, descriptions(c.All()))
}

func TestAddBatch_Empty(t *testing.T) {
	c := NewCollection()
	c.AddBatch(nil)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.All())
}

func TestAddBatch_DoesNotReorderCallerSlice(t *testing.T) {
	batch := []common.Movement{mv("2024-03-02", "-1", "b"), mv("2024-03-01", "-1", "a")}
	c := NewCollection()
	c.AddBatch(batch)

	assert.Equal(t, []string{"b", "a"}, descriptions(batch))
}

func TestSplit(t *testing.T) {
	c := NewCollection()
	c.AddBatch([]common.Movement{
		mv("2024-03-01", "150", "salary"),
		mv("2024-03-02", "-12.5", "pos"),
		mv("2024-03-03", "0", "zero"),
		mv("2024-03-04", "-3", "fee"),
	})

	income, outcome := c.Split(false)
	assert.Equal(t, []string{"salary"}, descriptions(income))
	assert.Equal(t, []string{"pos", "fee"}, descriptions(outcome))
	for _, m := range outcome {
		assert.True(t, m.Amount.IsNegative())
	}

	income, outcome = c.Split(true)
	require.Len(t, income, 1)
	assert.Equal(t, "150", income[0].Amount.String())
	require.Len(t, outcome, 2)
	assert.Equal(t, "12.5", outcome[0].Amount.String())
	assert.Equal(t, "3", outcome[1].Amount.String())

	// the collection itself is untouched
	assert.Equal(t, "-12.5", c.All()[1].Amount.String())
}

func TestSplit_EmptyViews(t *testing.T) {
	income, outcome := NewCollection().Split(true)
	assert.NotNil(t, income)
	assert.NotNil(t, outcome)
	assert.Empty(t, income)
	assert.Empty(t, outcome)
}
