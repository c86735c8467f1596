// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jsoncodec

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// TimeOfDayEpoch is the date every parsed TimeOfDay is placed on.
var TimeOfDayEpoch = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// Layouts with an offset. Fractional seconds are accepted after the seconds
// field without being spelled out.
var zonedDateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05Z07",
}

// Layouts without an offset; parsed as UTC.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var timeOfDayLayouts = []string{
	"15:04:05Z07:00",
	"15:04Z07:00",
	"15:04:05",
	"15:04",
}

// ParseDateTime parses the timestamp formats commonly found in JSON bodies:
// RFC 3339, ISO local date-time, "yyyy-MM-dd HH:mm:ss" with optional
// fraction and offset, and a bare date. Input without an offset is UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date-time %q", s)
}

// ParseTimeOfDay parses an ISO time with optional seconds and optional
// offset. The result is placed on TimeOfDayEpoch.
func ParseTimeOfDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeOfDayLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		return time.Date(
			TimeOfDayEpoch.Year(), TimeOfDayEpoch.Month(), TimeOfDayEpoch.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location(),
		), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time of day %q", s)
}

// DateTime is a time.Time that decodes from any layout ParseDateTime
// accepts and encodes as RFC 3339.
type DateTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler. null leaves the value zero.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date-time must be a string: %w", err)
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.RFC3339Nano))
}

// TimeOfDay is a clock time on TimeOfDayEpoch. It encodes as HH:MM:SS with
// the offset when it is not UTC.
type TimeOfDay struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler. null leaves the value zero.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	layout := "15:04:05.999999999"
	if _, offset := t.Zone(); offset != 0 {
		layout += "Z07:00"
	}
	return json.Marshal(t.Format(layout))
}
