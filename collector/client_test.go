package collector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-bridge/common"
)

func testPayload() common.Payload {
	return common.Payload{
		SoilMoisture: 45,
		DeviceID:     "raspberry-pi-arduino-001",
		Timestamp:    "2024-05-01T12:30:00.000000Z",
	}
}

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(Config{URL: url, Timeout: timeout})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "http://localhost:3000/api/iot/sensor-data", config.URL)
	assert.Equal(t, 10*time.Second, config.Timeout)
}

func TestSendSuccess(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t,
			`{"soilMoisture":45,"temperature":0,"humidity":0,"deviceId":"raspberry-pi-arduino-001","timestamp":"2024-05-01T12:30:00.000000Z"}`,
			string(body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Data received successfully"})
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL, time.Second).Send(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, "Data received successfully", resp.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, common.OutcomeSuccess, Classify(err))
}

func TestSendSuccessWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL, time.Second).Send(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, "Data sent", resp.Message)
}

func TestSendServerError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"Failed to process sensor data"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).Send(context.Background(), testPayload())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Contains(t, statusErr.Body, "Failed to process sensor data")
	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, common.OutcomeServerError, Classify(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "no retry")
}

func TestSendBadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).Send(context.Background(), testPayload())
	assert.Equal(t, common.OutcomeServerError, Classify(err))
}

func TestSendConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, time.Second).Send(context.Background(), testPayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, common.OutcomeConnectionError, Classify(err))
}

func TestSendTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestClient(srv.URL, 50*time.Millisecond).Send(context.Background(), testPayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, common.OutcomeTimeout, Classify(err))
}

func TestSendUnexpected(t *testing.T) {
	_, err := newTestClient("ftp://collector.invalid/api", time.Second).Send(context.Background(), testPayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpected)
	assert.Equal(t, common.OutcomeUnexpected, Classify(err))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, common.OutcomeSuccess, Classify(nil))
	assert.Equal(t, common.OutcomeServerError, Classify(&StatusError{Code: 502}))
	assert.Equal(t, common.OutcomeUnexpected, Classify(errors.New("boom")))
}
