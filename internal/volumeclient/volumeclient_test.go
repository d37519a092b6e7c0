package volumeclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemotePath_SeedScenario(t *testing.T) {
	assert.Equal(t, "/5d/41/aGVsbG8=", RemotePath("hello"))
	assert.Equal(t, "/fc/5e/aGVsbG93b3JsZA==", RemotePath("helloworld"))
}

func TestRemotePut_SuccessStatuses(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusNoContent} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		c := New(time.Second)
		err := c.RemotePut(context.Background(), srv.Listener.Addr().String(), "k", []byte("abc"))
		assert.NoError(t, err)
		srv.Close()
	}
}

func TestRemotePut_OtherStatusesAreErrors(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusAccepted, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		c := New(time.Second)
		err := c.RemotePut(context.Background(), srv.Listener.Addr().String(), "k", []byte("abc"))
		assert.Error(t, err, "status %d must be treated as a failure", status)
		srv.Close()
	}
}

func TestRemoteHead_Any2xxSucceeds(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent, http.StatusAccepted} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		c := New(time.Second)
		err := c.RemoteHead(context.Background(), srv.Listener.Addr().String(), "k")
		assert.NoError(t, err)
		srv.Close()
	}
}

func TestRemoteHead_NonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(time.Second)
	err := c.RemoteHead(context.Background(), srv.Listener.Addr().String(), "k")
	require.Error(t, err)
}
