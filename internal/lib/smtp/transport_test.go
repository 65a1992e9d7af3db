package smtp

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/storefront/internal/config"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestTransport_Sender(t *testing.T) {
	tr := NewTransport(config.SMTP{SMTPUser: "mailer@example.com"}, newNoopLogger())
	assert.Equal(t, "mailer@example.com", tr.Sender())

	tr = NewTransport(config.SMTP{SMTPUser: "mailer", SMTPFrom: "noreply@example.com"}, newNoopLogger())
	assert.Equal(t, "noreply@example.com", tr.Sender())
}

func TestTransport_ConnectDialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, ln.Close())

	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, newNoopLogger())
	client, err := tr.Connect(context.Background())

	assert.Nil(t, client)
	assert.ErrorContains(t, err, "failed to dial SMTP server")
}

func TestTransport_ConnectWithoutStartTLS(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.WriteString(conn, "220 localhost ESMTP\r\n")
		buf := make([]byte, 512)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			line := string(buf[:n])
			switch {
			case len(line) >= 4 && line[:4] == "EHLO":
				_, _ = io.WriteString(conn, "250-localhost\r\n250 SIZE 1024\r\n")
			case len(line) >= 4 && line[:4] == "QUIT":
				_, _ = io.WriteString(conn, "221 bye\r\n")
				return
			default:
				_, _ = io.WriteString(conn, "250 ok\r\n")
			}
		}
	}()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, newNoopLogger())

	client, err := tr.Connect(context.Background())
	assert.Nil(t, client)
	assert.ErrorContains(t, err, "does not support STARTTLS")
}
