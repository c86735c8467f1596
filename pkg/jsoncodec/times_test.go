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
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	plusOne := time.FixedZone("", 3600)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-05T10:15:30Z", time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC)},
		{"2024-03-05T10:15:30.5+01:00", time.Date(2024, 3, 5, 10, 15, 30, 5e8, plusOne)},
		{"2024-03-05T10:15:30", time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC)},
		{"2024-03-05T10:15", time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC)},
		{"2024-03-05 10:15:30", time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC)},
		{"2024-03-05 10:15:30.25", time.Date(2024, 3, 5, 10, 15, 30, 25e7, time.UTC)},
		{"2024-03-05 10:15:30Z", time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC)},
		{"2024-03-05 10:15:30+01", time.Date(2024, 3, 5, 10, 15, 30, 0, plusOne)},
		{"2024-03-05 10:15:30+0100", time.Date(2024, 3, 5, 10, 15, 30, 0, plusOne)},
		{"2024-03-05 10:15:30.1+01:00", time.Date(2024, 3, 5, 10, 15, 30, 1e8, plusOne)},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDateTime(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParseDateTime_Invalid(t *testing.T) {
	for _, input := range []string{"", "yesterday", "2024-13-01", "10:15"} {
		_, err := ParseDateTime(input)
		assert.Error(t, err, input)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("10:15:30")
	require.NoError(t, err)
	assert.True(t, time.Date(2021, 1, 1, 10, 15, 30, 0, time.UTC).Equal(got))

	got, err = ParseTimeOfDay("10:15")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 15, got.Minute())
	assert.Equal(t, TimeOfDayEpoch.YearDay(), got.YearDay())

	got, err = ParseTimeOfDay("10:15:30+02:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2021, 1, 1, 8, 15, 30, 0, time.UTC).Equal(got))

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
}

type event struct {
	At    DateTime  `json:"at"`
	Opens TimeOfDay `json:"opens"`
	Maybe *DateTime `json:"maybe"`
}

func TestDateTimeJSON(t *testing.T) {
	got, err := Decode[event](New(), `{"at":"2024-03-05 10:15:30","opens":"08:30","maybe":null}`)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC).Equal(got.At.Time))
	assert.Equal(t, 8, got.Opens.Hour())
	assert.Nil(t, got.Maybe)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2024-03-05T10:15:30Z","opens":"08:30:00","maybe":null}`, string(data))

	_, err = Decode[event](New(), `{"at":12}`)
	assert.Error(t, err)
}
