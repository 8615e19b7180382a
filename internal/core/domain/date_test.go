package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDate_Scan(t *testing.T) {
	want := NewDate(2099, time.January, 1)

	cases := map[string]interface{}{
		"text":           "2099-01-01",
		"bytes":          []byte("2099-01-01"),
		"sqlite stamp":   "2099-01-01 00:00:00+00:00",
		"rfc3339":        "2099-01-01T00:00:00Z",
		"utc time":       time.Date(2099, time.January, 1, 0, 0, 0, 0, time.UTC),
		"zoned midnight": time.Date(2099, time.January, 1, 0, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			var d Date

			assert.NoError(t, d.Scan(src))
			assert.True(t, d.Equal(want), d.String())
		})
	}

	t.Run("should reject unsupported types", func(t *testing.T) {
		var d Date
		assert.Error(t, d.Scan(int64(20990101)))
	})
}

func TestDate_Value(t *testing.T) {
	v, err := NewDate(2030, time.March, 5).Value()

	assert.NoError(t, err)
	assert.Equal(t, "2030-03-05", v)
}

func TestDate_JSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		Deadline *Date `json:"deadline"`
	}{})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"deadline":null}`, string(payload))

	d := NewDate(2099, time.December, 31)
	payload, err = json.Marshal(d)
	assert.NoError(t, err)
	assert.Equal(t, `"2099-12-31"`, string(payload))

	var back Date
	assert.NoError(t, json.Unmarshal(payload, &back))
	assert.True(t, back.Equal(d))
}

func TestDateOf_UsesLocalCalendarDay(t *testing.T) {
	late := time.Date(2026, time.October, 18, 23, 59, 0, 0, time.FixedZone("BRT", -3*3600))

	assert.Equal(t, "2026-10-18", DateOf(late).String())
}
