// Package jalali переводит даты между солнечным хиджри (джалали) и григорианским календарём.
package jalali

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

const (
	MinYear = 1
	MaxYear = 3177
)

// Date - дата в календаре джалали.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Dashed - формат "YYYY-MM-DD", в котором сервер отдаёт даты доставки.
func (d Date) Dashed() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before сравнивает даты хронологически.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Valid проверяет сочетание года, месяца и дня.
func (d Date) Valid() bool {
	if d.Year < MinYear || d.Year > MaxYear {
		return false
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return d.Day <= MonthLength(d.Year, d.Month)
}

// Time возвращает григорианскую полночь этой даты в UTC.
func (d Date) Time() (time.Time, error) {
	if !d.Valid() {
		return time.Time{}, fmt.Errorf("недопустимая дата джалали %s", d)
	}
	return ptime.Date(d.Year, ptime.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).Time(), nil
}

// FromTime переводит григорианскую дату (по календарю t.Location()) в джалали.
func FromTime(t time.Time) Date {
	// полдень: перевод не зависит от часового пояса внутри дня
	noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
	p := ptime.New(noon)
	return Date{Year: p.Year(), Month: int(p.Month()), Day: p.Day()}
}

// Parse разбирает "YYYY/MM/DD" или "YYYY-MM-DD" и проверяет дату.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	sep := "/"
	if strings.Contains(s, "-") {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("неверный формат даты %q, ожидается ГГГГ/ММ/ДД", s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("неверный формат даты %q: %w", s, err)
		}
		nums[i] = n
	}

	d := Date{Year: nums[0], Month: nums[1], Day: nums[2]}
	if !d.Valid() {
		return Date{}, fmt.Errorf("недопустимое сочетание дня и месяца в дате %q", s)
	}
	return d, nil
}

// ToGregorian переводит строку джалали в григорианскую "YYYY-MM-DD".
func ToGregorian(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	t, err := d.Time()
	if err != nil {
		return "", err
	}
	return t.Format(time.DateOnly), nil
}

// FromGregorian переводит григорианскую "YYYY-MM-DD" в джалали "YYYY/MM/DD".
func FromGregorian(s string) (string, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("неверная григорианская дата %q: %w", s, err)
	}
	return FromTime(t).String(), nil
}

func IsLeap(jy int) bool {
	return ptime.Date(jy, ptime.Farvardin, 1, 12, 0, 0, 0, time.UTC).IsLeap()
}

func MonthLength(jy, jm int) int {
	switch {
	case jm <= 6:
		return 31
	case jm <= 11:
		return 30
	case IsLeap(jy):
		return 30
	default:
		return 29
	}
}
