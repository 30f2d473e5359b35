package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppendObservation(t *testing.T) {
	tests := []struct {
		name        string
		history     []PricePoint
		today       Date
		price       int
		want        []PricePoint
		wantChanged bool
	}{
		{
			name:        "First observation is not a change",
			history:     nil,
			today:       "2024-01-01",
			price:       1000,
			want:        []PricePoint{{"2024-01-01", 1000}},
			wantChanged: false,
		},
		{
			name:        "New date same price",
			history:     []PricePoint{{"2024-01-01", 1000}},
			today:       "2024-01-02",
			price:       1000,
			want:        []PricePoint{{"2024-01-01", 1000}, {"2024-01-02", 1000}},
			wantChanged: false,
		},
		{
			name:        "New date different price",
			history:     []PricePoint{{"2024-01-01", 1000}},
			today:       "2024-01-02",
			price:       1200,
			want:        []PricePoint{{"2024-01-01", 1000}, {"2024-01-02", 1200}},
			wantChanged: true,
		},
		{
			name:        "Same day rerun with a single entry",
			history:     []PricePoint{{"2024-01-01", 1000}},
			today:       "2024-01-01",
			price:       1100,
			want:        []PricePoint{{"2024-01-01", 1100}},
			wantChanged: false,
		},
		{
			name:        "Same day rerun compares against the previous date",
			history:     []PricePoint{{"2024-01-01", 1000}, {"2024-01-02", 1200}},
			today:       "2024-01-02",
			price:       1300,
			want:        []PricePoint{{"2024-01-01", 1000}, {"2024-01-02", 1300}},
			wantChanged: true,
		},
		{
			name:        "Same day rerun back to the previous price",
			history:     []PricePoint{{"2024-01-01", 1000}, {"2024-01-02", 1200}},
			today:       "2024-01-02",
			price:       1000,
			want:        []PricePoint{{"2024-01-01", 1000}, {"2024-01-02", 1000}},
			wantChanged: false,
		},
		{
			name:        "Date earlier than the last entry keeps history sorted",
			history:     []PricePoint{{"2024-01-05", 1000}},
			today:       "2024-01-04",
			price:       900,
			want:        []PricePoint{{"2024-01-05", 1000}},
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := AppendObservation(tt.history, tt.today, tt.price)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestAppendObservation_DoesNotMutateInput(t *testing.T) {
	history := []PricePoint{{"2024-01-01", 1000}}
	_, _ = AppendObservation(history, "2024-01-01", 2000)
	assert.Equal(t, 1000, history[0].Price)
}

func TestAppendObservation_Idempotent(t *testing.T) {
	histories := [][]PricePoint{
		nil,
		{{"2024-01-01", 1000}},
		{{"2024-01-01", 1000}, {"2024-01-02", 1200}},
	}

	for _, h := range histories {
		for _, today := range []Date{"2024-01-02", "2024-01-03"} {
			for _, price := range []int{1000, 1200, 1500} {
				once, changedOnce := AppendObservation(h, today, price)
				twice, changedTwice := AppendObservation(once, today, price)
				assert.Equal(t, once, twice)
				assert.Equal(t, changedOnce, changedTwice)
			}
		}
	}
}

func TestAppendObservation_UniqueIncreasingDates(t *testing.T) {
	var history []PricePoint
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for day := 0; day < 30; day++ {
		today := DateOf(start.AddDate(0, 0, day))
		for run := 0; run < 3; run++ {
			history, _ = AppendObservation(history, today, 1000+(day%4)*100+run)
		}
	}

	assert.Len(t, history, 30)
	for i := 1; i < len(history); i++ {
		assert.Less(t, string(history[i-1].Date), string(history[i].Date))
	}
}
