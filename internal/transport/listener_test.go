package transport

import (
	"testing"
	"time"

	"github.com/drand/bftseq/log"
	"github.com/stretchr/testify/require"
)

func TestListenerSenderDeliversUnicast(t *testing.T) {
	l, err := Listen("127.0.0.1:0", log.DefaultLogger(), 8)
	require.NoError(t, err)
	defer l.Close()
	go l.Serve()

	sender := NewSender([]string{l.Addr().String()}, log.DefaultLogger())
	defer sender.Close()

	sender.Send(Cast{Dest: l.Addr().String(), Payload: []byte("ping")})

	select {
	case got := <-l.Inbox():
		require.Equal(t, []byte("ping"), got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestSenderMulticastReachesAllPeers(t *testing.T) {
	var listeners []*Listener
	var addrs []string
	for i := 0; i < 3; i++ {
		l, err := Listen("127.0.0.1:0", log.DefaultLogger(), 8)
		require.NoError(t, err)
		defer l.Close()
		go l.Serve()
		listeners = append(listeners, l)
		addrs = append(addrs, l.Addr().String())
	}

	sender := NewSender(addrs, log.DefaultLogger())
	defer sender.Close()

	sender.Send(Cast{Payload: []byte("round")})

	for _, l := range listeners {
		select {
		case got := <-l.Inbox():
			require.Equal(t, []byte("round"), got)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for multicast frame")
		}
	}
}
