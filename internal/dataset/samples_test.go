package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-gate/internal/domain"
)

func TestReadSamples(t *testing.T) {
	in := `start,t1,return
0,2,0.01
1,3,-0.02
2,2,0.005
`
	samples, err := ReadSamples(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []domain.Sample{
		{Start: 0, End: 2, Return: 0.01},
		{Start: 1, End: 3, Return: -0.02},
		{Start: 2, End: 2, Return: 0.005},
	}, samples)
}

func TestReadSamples_EndAliasAndColumnOrder(t *testing.T) {
	in := "return,End,start\n0.5,10,4\n"
	samples, err := ReadSamples(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []domain.Sample{{Start: 4, End: 10, Return: 0.5}}, samples)
}

func TestReadSamples_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrInvalidInput},
		{"missing column", "start,return\n1,0.1\n", ErrInvalidInput},
		{"bad number", "start,t1,return\n1,2,abc\n", ErrInvalidInput},
		{"wrong field count", "start,t1,return\n1,2\n", ErrInvalidInput},
		{"start after end", "start,t1,return\n5,2,0.1\n", ErrInvalidInput},
		{"unsorted", "start,t1,return\n5,6,0.1\n4,6,0.1\n", ErrUnsorted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSamples(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadSamples_ErrorNamesLine(t *testing.T) {
	_, err := ReadSamples(strings.NewReader("start,t1,return\n1,2,0.1\n2,3,x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestLoadSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")
	require.NoError(t, os.WriteFile(path, []byte("start,t1,return\n0,1,0.1\n"), 0o600))

	samples, err := LoadSamples(path)
	require.NoError(t, err)
	assert.Len(t, samples, 1)

	_, err = LoadSamples(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestCheckOrder(t *testing.T) {
	ok := []domain.Sample{{Start: 1, End: 2}, {Start: 1, End: 3}, {Start: 2, End: 2}}
	assert.NoError(t, CheckOrder(ok))
	assert.NoError(t, CheckOrder(nil))

	err := CheckOrder([]domain.Sample{{Start: 2, End: 3}, {Start: 1, End: 3}})
	assert.ErrorIs(t, err, ErrUnsorted)

	err = CheckOrder([]domain.Sample{{Start: 3, End: 2}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
