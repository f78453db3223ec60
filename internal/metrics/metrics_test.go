package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drand/bftseq/log"
)

func TestServeExposesMetricsEndpoint(t *testing.T) {
	reg := NewRegistry()
	lis, err := Serve("127.0.0.1:0", reg, log.DefaultLogger())
	require.NoError(t, err)
	require.NotNil(t, lis)
	defer lis.Close()

	url := "http://" + lis.Addr().String() + "/metrics"
	var resp *http.Response
	for i := 0; i < 20; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeNoopOnEmptyBindAddr(t *testing.T) {
	lis, err := Serve("", NewRegistry(), log.DefaultLogger())
	require.NoError(t, err)
	require.Nil(t, lis)
}
