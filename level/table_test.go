package level

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMapping = `{
	"-60": 0.0,
	"-20": 0.38,
	"-10": 0.56,
	"-6": 0.63,
	"-2": 0.72,
	"0": 0.76,
	"2": 0.8,
	"6": 0.88,
	"+3": 0.82,
	"05": 0.9,
	"inf": 1.0
}`

func TestParse_CanonicalKeysOnly(t *testing.T) {
	tbl, err := Parse(strings.NewReader(sampleMapping))
	require.NoError(t, err)

	assert.Equal(t, []int{-60, -20, -10, -6, -2, 0, 2, 6}, tbl.Keys())
	assert.Equal(t, []string{"+3", "05", "inf"}, tbl.Skipped())
	assert.Equal(t, 8, tbl.Len())
}

func TestMap_EveryStoredKeyIsExact(t *testing.T) {
	tbl, err := Parse(strings.NewReader(sampleMapping))
	require.NoError(t, err)

	want := map[int]float64{-60: 0.0, -20: 0.38, -10: 0.56, -6: 0.63, -2: 0.72, 0: 0.76, 2: 0.8, 6: 0.88}
	for k, v := range want {
		got, err := tbl.Map(float64(k))
		require.NoError(t, err, "key %d", k)
		assert.Equal(t, v, got, "key %d", k)
	}
}

func TestMap_RoundsHalfToEven(t *testing.T) {
	tbl := NewTable(map[int]float64{-2: 0.72, 0: 0.76, 2: 0.8})

	for _, tt := range []struct {
		db   float64
		want float64
	}{
		{0.4, 0.76},
		{0.5, 0.76},  // half goes to even 0
		{1.5, 0.8},   // half goes to even 2
		{-1.5, 0.72}, // half goes to even -2
		{-0.5, 0.76},
		{2.49, 0.8},
	} {
		got, err := tbl.Map(tt.db)
		require.NoError(t, err, "%v dB", tt.db)
		assert.Equal(t, tt.want, got, "%v dB", tt.db)
	}

	assert.Equal(t, 2, Round(2.5))
	assert.Equal(t, 4, Round(3.5))
	assert.Equal(t, -2, Round(-2.5))
}

func TestMap_MissingKeyFails(t *testing.T) {
	tbl := NewTable(map[int]float64{0: 0.76})

	for _, db := range []float64{1, -0.51, 2.5, -13, math.NaN(), math.Inf(1)} {
		_, err := tbl.Map(db)
		assert.ErrorIs(t, err, ErrMappingNotFound, "%v dB", db)
	}
}

func TestNewTable_CopiesEntries(t *testing.T) {
	src := map[int]float64{0: 0.76}
	tbl := NewTable(src)
	src[0] = 0.1

	got, err := tbl.Map(0)
	require.NoError(t, err)
	assert.Equal(t, 0.76, got)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file gives empty table", func(t *testing.T) {
		tbl, err := Load(filepath.Join(dir, "absent.json"))
		require.NoError(t, err)
		assert.Zero(t, tbl.Len())
		_, err = tbl.Map(0)
		assert.ErrorIs(t, err, ErrMappingNotFound)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(dir, "mapping.json")
		require.NoError(t, os.WriteFile(path, []byte(sampleMapping), 0o644))

		tbl, err := Load(path)
		require.NoError(t, err)
		got, err := tbl.Map(-10.2)
		require.NoError(t, err)
		assert.Equal(t, 0.56, got)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"0": `), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
