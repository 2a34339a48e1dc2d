package handler

import (
    "encoding/json"
    "time"
)

// jsonDate accepts "2006-01-02" or a full RFC 3339 timestamp.  Dates
// without a time are midnight UTC.
type jsonDate struct{ time.Time }

func (d *jsonDate) UnmarshalJSON(b []byte) error {
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return err
    }
    if s == "" {
        d.Time = time.Time{}
        return nil
    }
    if t, err := time.Parse(time.DateOnly, s); err == nil {
        d.Time = t
        return nil
    }
    t, err := time.Parse(time.RFC3339, s)
    if err != nil {
        return err
    }
    d.Time = t.UTC()
    return nil
}
