package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamCSV_Basic(t *testing.T) {
	input := "FIPS,County,Year\n1001,\"Autauga, Alabama\",2021\n1003,\"Baldwin, Alabama\",2021\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collect(rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"FIPS", "County", "Year"}, rows[0])
	assert.Equal(t, []string{"1001", "Autauga, Alabama", "2021"}, rows[1])
}

func TestStreamCSV_WithHeader(t *testing.T) {
	input := "FIPS,FIR\n1001,12.5\n1003,10.1\n"
	headerCh := make(chan []string, 1)

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})
	rows, err := collect(rowCh, errCh)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1001", "12.5"}, rows[0])
	assert.Equal(t, []string{"FIPS", "FIR"}, <-headerCh)
}

func TestStreamCSV_PipeDelimited(t *testing.T) {
	input := "FIPS|FIR\n1001|12.5\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{Delimiter: '|'})
	rows, err := collect(rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"FIPS", "FIR"}, {"1001", "12.5"}}, rows)
}

func TestStreamCSV_TrimSpace(t *testing.T) {
	input := " FIPS , FIR \n 1001 , 12.5 \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{TrimSpace: true})
	rows, err := collect(rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"FIPS", "FIR"}, {"1001", "12.5"}}, rows)
}

func TestStreamCSV_Empty(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	rows, err := collect(rowCh, errCh)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStreamCSV_MalformedQuotes(t *testing.T) {
	input := "FIPS,County\n1001,\"Autauga \"Alabama\"\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	_, err := collect(rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}

func TestStreamCSV_ContextCancellation(t *testing.T) {
	var sb strings.Builder
	for range 10000 {
		sb.WriteString("1001,12.5\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rowCh, errCh := StreamCSV(ctx, strings.NewReader(sb.String()), CSVOptions{})

	count := 0
	for range rowCh {
		count++
		if count == 5 {
			cancel()
			break
		}
	}
	for range rowCh {
	}

	var gotErr error
	for err := range errCh {
		gotErr = err
	}
	// The goroutine may finish before it observes cancellation.
	if gotErr != nil {
		assert.Contains(t, gotErr.Error(), "context cancelled")
	}
}
