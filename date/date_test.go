package date

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2021-09-01", want: New(2021, time.September, 1)},
		{in: "2021-9-1", want: New(2021, time.September, 1)},
		{in: "2021-13-01", wantErr: true},
		{in: "not a date", wantErr: true},
	}

	for _, tc := range testCases {
		got, err := Parse(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestDate_Add_NormalizesAcrossMonths(t *testing.T) {
	d := New(2021, time.January, 31).Add(1)
	if want := New(2021, time.February, 1); d != want {
		t.Errorf("Add(1) = %s, want %s", d, want)
	}
}

func TestDate_Sub(t *testing.T) {
	from := MustParse("2021-09-01")
	to := MustParse("2021-09-30")
	if got := to.Sub(from); got != 29 {
		t.Errorf("Sub = %d, want 29", got)
	}
}

func TestLastTradingDay(t *testing.T) {
	testCases := []struct {
		name  string
		today string
		want  string
	}{
		{name: "saturday uses friday", today: "2021-09-04", want: "2021-09-03"},
		{name: "sunday uses friday", today: "2021-09-05", want: "2021-09-03"},
		{name: "monday uses friday", today: "2021-09-06", want: "2021-09-03"},
		{name: "midweek uses yesterday", today: "2021-09-08", want: "2021-09-07"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := lastTradingDay(MustParse(tc.today))
			if got != MustParse(tc.want) {
				t.Errorf("lastTradingDay(%s) = %s, want %s", tc.today, got, tc.want)
			}
		})
	}
}
