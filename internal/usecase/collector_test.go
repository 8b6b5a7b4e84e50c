package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/naka-gawa/github-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchRepository(ctx context.Context, owner, name string) (domain.Record, error) {
	args := m.Called(ctx, owner, name)
	return args.Get(0).(domain.Record), args.Error(1)
}

func TestParseRepositoryRef(t *testing.T) {
	testCases := []struct {
		input       string
		expected    RepositoryRef
		expectError bool
	}{
		{input: "octo/hello", expected: RepositoryRef{Owner: "octo", Name: "hello"}},
		{input: "  octo/hello\t", expected: RepositoryRef{Owner: "octo", Name: "hello"}},
		{input: "octo", expectError: true},
		{input: "/hello", expectError: true},
		{input: "octo/", expectError: true},
		{input: "octo/hello/extra", expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseRepositoryRef(tc.input)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, "octo/hello", got.String())
		})
	}
}

func TestCollector_Collect(t *testing.T) {
	a := domain.Record{Name: "octo/a", Stars: 3, Forks: 1, Language: "Go"}
	b := domain.Record{Name: "octo/b", Stars: 9, Forks: 4}
	refs := []RepositoryRef{{"octo", "a"}, {"octo", "b"}, {"octo", "a"}}

	testCases := []struct {
		name          string
		setupMock     func(m *mockFetcher)
		expected      domain.Dataset
		expectedError string
	}{
		{
			name: "happy path - input order kept, duplicates dropped",
			setupMock: func(m *mockFetcher) {
				m.On("FetchRepository", mock.Anything, "octo", "a").Return(a, nil).Twice()
				m.On("FetchRepository", mock.Anything, "octo", "b").Return(b, nil).Once()
			},
			expected: domain.Dataset{a, b},
		},
		{
			name: "error case - one repository fails",
			setupMock: func(m *mockFetcher) {
				m.On("FetchRepository", mock.Anything, "octo", "a").Return(a, nil).Maybe()
				m.On("FetchRepository", mock.Anything, "octo", "b").Return(domain.Record{}, errors.New("not found"))
			},
			expectedError: "repository octo/b: not found",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := new(mockFetcher)
			tc.setupMock(m)

			ds, err := NewCollector(m, log.New(io.Discard, "", 0), 2).Collect(context.Background(), refs)
			if tc.expectedError != "" {
				assert.EqualError(t, err, tc.expectedError)
				assert.Nil(t, ds)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ds)
			m.AssertExpectations(t)
		})
	}
}
