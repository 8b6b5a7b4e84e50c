package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Field
		wantErr  bool
	}{
		{name: "numeric field", input: "pull_requests", expected: FieldPullRequests},
		{name: "categorical field", input: "language", expected: FieldLanguage},
		{name: "suffix is not accepted", input: "stars_count", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParseField(tc.input)
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownField))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, f)
		})
	}
}

func TestRecord_Value(t *testing.T) {
	r := Record{Name: "a/b", Stars: 1, Forks: 2, Issues: 3, PullRequests: 4, Contributors: 5, Language: "Go"}
	for i, f := range NumericFields {
		assert.Equal(t, float64(i+1), r.Value(f), f)
		assert.True(t, f.IsNumeric())
	}
	assert.Zero(t, r.Value(FieldLanguage))
	assert.False(t, FieldLanguage.IsNumeric())
	assert.False(t, Field("watchers").IsNumeric())
}

func TestDataset_Values(t *testing.T) {
	ds := Dataset{{Stars: 3}, {Stars: 1}, {Stars: 2}}
	assert.Equal(t, []float64{3, 1, 2}, ds.Values(FieldStars))
}

func TestLoadError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&LoadError{Path: "x.csv", Line: 4, Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "load x.csv: line 4: boom", err.Error())

	var le *LoadError
	assert.True(t, errors.As(err, &le))
}
