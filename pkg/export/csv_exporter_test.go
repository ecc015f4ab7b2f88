package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderLaysOutGrid(t *testing.T) {
	grid := WeekGrid{
		Days: []string{"MONDAY", "TUESDAY"},
		Periods: []PeriodRow{
			{Period: 1, Time: "07:40-08:20", Cells: []string{"Mathematics (A. Perera)", "ASSEMBLY"}},
			{Period: 2, Time: "08:20-09:00", Cells: []string{"", "Science (B. Silva)"}},
		},
	}

	content, err := NewCSVExporter().Render(grid)
	require.NoError(t, err)
	assert.Equal(t,
		"Period,Time,MONDAY,TUESDAY\n"+
			"1,07:40-08:20,Mathematics (A. Perera),ASSEMBLY\n"+
			"2,08:20-09:00,,Science (B. Silva)\n",
		string(content))
}

func TestCSVRenderRejectsEmptyGrid(t *testing.T) {
	_, err := NewCSVExporter().Render(WeekGrid{})
	require.Error(t, err)
}
