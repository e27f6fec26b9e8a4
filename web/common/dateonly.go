package common

import (
	"fmt"
	"strconv"
	"time"

	"timetracker.com/timetracker/utils"
)

// DateOnly is a yyyy-MM-dd value in JSON bodies and query strings. The empty
// string and null both decode to the zero time.
type DateOnly struct {
	time.Time
}

func ParseDateOnly(s string) (DateOnly, error) {
	if s == "" {
		return DateOnly{}, nil
	}
	t, err := time.Parse(utils.DateLayout, s)
	if err != nil {
		return DateOnly{}, fmt.Errorf("invalid date %q, expected yyyy-MM-dd", s)
	}
	return DateOnly{t}, nil
}

func (d DateOnly) String() string {
	return utils.FormatDate(&d.Time)
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = DateOnly{}
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	return d.UnmarshalParam(s)
}

// UnmarshalParam implements gin's binding.BindUnmarshaler.
func (d *DateOnly) UnmarshalParam(s string) error {
	v, err := ParseDateOnly(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}
