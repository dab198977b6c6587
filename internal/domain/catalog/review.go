package catalog

import (
	"github.com/shopspring/decimal"
)

// ReviewStats summarizes a product's reviews
type ReviewStats struct {
	Count         int
	AverageRating decimal.Decimal // rounded to one decimal place
	Stars         int             // average rounded to the nearest whole star
	Distribution  map[int]int     // whole-star rating -> number of reviews
}

// SummarizeReviews computes review statistics. An empty list yields a zero
// average.
func SummarizeReviews(reviews []Review) ReviewStats {
	stats := ReviewStats{
		Count:         len(reviews),
		AverageRating: decimal.Zero,
		Distribution:  map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(reviews) == 0 {
		return stats
	}

	sum := decimal.Zero
	for _, r := range reviews {
		rating := decimal.NewFromFloat(r.Rating)
		sum = sum.Add(rating)
		star := int(rating.Round(0).IntPart())
		if star < 1 {
			star = 1
		}
		if star > 5 {
			star = 5
		}
		stats.Distribution[star]++
	}

	avg := sum.Div(decimal.NewFromInt(int64(len(reviews))))
	stats.AverageRating = avg.Round(1)
	stats.Stars = int(avg.Round(0).IntPart())
	return stats
}
