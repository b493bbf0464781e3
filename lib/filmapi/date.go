package filmapi

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date (no time of day) wire type, serialized as
// YYYY-MM-DD.
type Date struct {
	Value time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Value.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(data) == 0 || s == "null" {
		return nil
	}

	s = strings.Trim(s, `"`)

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	d.Value = t

	return nil
}

func dateOrNil(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Value: *t}
}

func timeOrNil(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	v := d.Value
	return &v
}
