package util

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 12.35, RoundTo(12.3456, 2))
	assert.Equal(t, 0.0, RoundTo(0.004, 2))
	assert.Equal(t, 20.0, RoundTo(20.004, 2))
	assert.Equal(t, 3.0, RoundTo(2.5, 0))
}

func TestAddTimeToDate(t *testing.T) {
	date := time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC)
	clock := time.Date(0, 1, 1, 7, 15, 30, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 6, 7, 15, 30, 0, time.UTC), AddTimeToDate(date, clock))
}

func TestInPlaceFilter(t *testing.T) {
	values := []int{1, 2, 3, 4, 5, 6}

	InPlaceFilter(&values, func(value int) bool {
		return value%2 == 0
	})

	assert.Equal(t, []int{2, 4, 6}, values)
}

func TestSerialQueueKeepsSubmissionOrder(t *testing.T) {
	queue := &SerialQueue{}

	var mutex sync.Mutex
	var ran []int
	done := make(chan struct{})

	for i := 0; i < 200; i++ {
		i := i
		queue.Submit(func() {
			mutex.Lock()
			ran = append(ran, i)
			finished := len(ran) == 200
			mutex.Unlock()

			if finished {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queue did not drain")
	}

	for i, value := range ran {
		assert.Equal(t, i, value)
	}
}

func TestLoadDotEnv(t *testing.T) {
	var output bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&output)
	t.Cleanup(func() { log.Logger = previous })

	directory := t.TempDir()

	valid := filepath.Join(directory, "valid.env")
	require.NoError(t, os.WriteFile(valid, []byte("BUSTRACKER_UTIL_TEST_VALUE=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BUSTRACKER_UTIL_TEST_VALUE") })

	malformed := filepath.Join(directory, "malformed.env")
	require.NoError(t, os.WriteFile(malformed, []byte("BAD-KEY=value\n"), 0o600))

	LoadDotEnv(filepath.Join(directory, "missing.env"), valid)
	assert.Equal(t, "loaded", GetEnvironmentVariables()["BUSTRACKER_UTIL_TEST_VALUE"])
	assert.Empty(t, output.String())

	LoadDotEnv(malformed)
	assert.Contains(t, output.String(), "Failed to load environment file")
	assert.Contains(t, output.String(), "malformed.env")
}
