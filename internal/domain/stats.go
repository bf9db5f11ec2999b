package domain

import (
	"strconv"
	"time"
)

// Sale is the date/price projection of a booking used by statistics.
type Sale struct {
	Date  time.Time
	Price float64
}

// SalesFilter narrows the sales query; both empty means every booking.
type SalesFilter struct {
	HostEmail  string
	GuestEmail string
}

// ChartRow is one [label, value] pair of a chart series.
type ChartRow [2]any

var chartHeader = ChartRow{"Day", "Sales"}

// DayLabel renders "<day>/<month>" with a 1-based month, in UTC.
func DayLabel(t time.Time) string {
	t = t.UTC()
	return strconv.Itoa(t.Day()) + "/" + strconv.Itoa(int(t.Month()))
}

// BuildChart emits the header row followed by one row per sale, in input order.
// Sales on the same day are not merged.
func BuildChart(sales []Sale) []ChartRow {
	rows := make([]ChartRow, 0, len(sales)+1)
	rows = append(rows, chartHeader)
	for _, s := range sales {
		rows = append(rows, ChartRow{DayLabel(s.Date), s.Price})
	}
	return rows
}

func TotalPrice(sales []Sale) float64 {
	var total float64
	for _, s := range sales {
		total += s.Price
	}
	return total
}

type AdminStats struct {
	TotalUsers    int64      `json:"totalUsers"`
	TotalRooms    int64      `json:"totalRooms"`
	TotalBookings int64      `json:"totalBookings"`
	TotalPrice    float64    `json:"totalPrice"`
	ChartData     []ChartRow `json:"chartData"`
}

type HostStats struct {
	TotalRooms    int64      `json:"totalRooms"`
	TotalBookings int64      `json:"totalBookings"`
	TotalPrice    float64    `json:"totalPrice"`
	HostSince     *time.Time `json:"hostSince,omitempty"`
	ChartData     []ChartRow `json:"chartData"`
}

type GuestStats struct {
	TotalBookings int64      `json:"totalBookings"`
	TotalPrice    float64    `json:"totalPrice"`
	GuestSince    *time.Time `json:"guestSince,omitempty"`
	ChartData     []ChartRow `json:"chartData"`
}
