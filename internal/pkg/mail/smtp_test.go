package mail

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

// fakeRelay speaks just enough SMTP for one message and records the commands
// and the DATA payload.
type fakeRelay struct {
	ln       net.Listener
	commands chan string
	data     chan string
}

func newFakeRelay(t *testing.T) *fakeRelay {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	r := &fakeRelay{ln: ln, commands: make(chan string, 32), data: make(chan string, 1)}
	go r.serve()
	return r
}

func (r *fakeRelay) port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

func (r *fakeRelay) serve() {
	conn, err := r.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	reply := func(s string) {
		_, _ = rw.WriteString(s + "\r\n")
		_ = rw.Flush()
	}

	reply("220 relay.test ESMTP")
	for {
		line, err := rw.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		r.commands <- line

		switch verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0]); verb {
		case "EHLO", "HELO":
			reply("250 relay.test")
		case "MAIL", "RCPT":
			reply("250 OK")
		case "DATA":
			reply("354 go ahead")
			var body strings.Builder
			for {
				l, err := rw.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			r.data <- body.String()
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 unsupported")
		}
	}
}

func TestSMTP_Send(t *testing.T) {

	// Arrange
	relay := newFakeRelay(t)
	s, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: relay.port(), From: "dashboard@example.com"})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Act
	err = s.Send(ctx, Message{
		To:       []string{"ops@example.com"},
		Subject:  "Dashboard access code",
		TextBody: "Your code is 123456\nIt expires in 5 minutes.",
	})

	// Assert
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	data := <-relay.data
	for _, want := range []string{
		"From: dashboard@example.com\r\n",
		"To: ops@example.com\r\n",
		"Content-Type: text/plain; charset=UTF-8\r\n",
		"Your code is 123456\r\nIt expires in 5 minutes.\r\n",
	} {
		if !strings.Contains(data, want) {
			t.Fatalf("data missing %q:\n%s", want, data)
		}
	}

	var sawRcpt bool
	for len(relay.commands) > 0 {
		if cmd := <-relay.commands; strings.HasPrefix(cmd, "RCPT TO:<ops@example.com>") {
			sawRcpt = true
		}
	}
	if !sawRcpt {
		t.Fatal("relay never saw RCPT TO for the recipient")
	}
}

func TestSMTP_SendRejectsBadInput(t *testing.T) {

	s, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: 1})
	if err != nil {
		t.Fatalf("NewSMTP: %v", err)
	}

	tests := []struct {
		name string
		msg  Message
		want error
	}{
		{name: "no sender", msg: Message{To: []string{"ops@example.com"}}, want: ErrSMTPNoSender},
		{name: "no recipients", msg: Message{From: "a@example.com"}, want: ErrSMTPNoRecipients},
		{
			name: "subject injection",
			msg:  Message{From: "a@example.com", To: []string{"ops@example.com"}, Subject: "hi\r\nBcc: x@example.com"},
			want: ErrHeaderInjection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			// Act
			err := s.Send(context.Background(), tt.msg)

			// Assert
			if !errors.Is(err, tt.want) {
				t.Fatalf("Send() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSMTP_SendInvalidAddress(t *testing.T) {

	// Arrange
	s, _ := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "dashboard@example.com"})

	// Act
	err := s.Send(context.Background(), Message{To: []string{"not an address"}})

	// Assert
	if err == nil || !strings.Contains(err.Error(), "not an address") {
		t.Fatalf("Send() = %v, want address error", err)
	}
}

func TestNewSMTP_RequiresHostPort(t *testing.T) {

	// Act
	_, err := NewSMTP(SMTPConfig{Host: "smtp.example.com"})

	// Assert
	if !errors.Is(err, ErrSMTPHostPortRequired) {
		t.Fatalf("NewSMTP() = %v", err)
	}
}
