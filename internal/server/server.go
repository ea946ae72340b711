// Package server is a minimal HTTP/1.1 responder over raw TCP that hands every accepted
// connection to a worker pool as one job.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/yongpi/fpool"
)

//go:embed templates/*.html
var templates embed.FS

const (
	requestBufferSize = 1024
	ioTimeout         = 30 * time.Second
	acceptBackoff     = 5 * time.Millisecond
)

var (
	routeRoot  = []byte("GET / HTTP/1.1\r\n")
	routeSleep = []byte("GET /sleep HTTP/1.1\r\n")
)

// Submitter is the part of a pool the server needs.
type Submitter interface {
	Submit(job fpool.Job) error
}

type Server struct {
	pool       Submitter
	logger     fpool.Logger
	sleepDelay time.Duration
	hello      []byte
	notFound   []byte
}

func New(pool Submitter, logger fpool.Logger, sleepDelay time.Duration) (*Server, error) {
	hello, err := templates.ReadFile("templates/hello.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load hello template: %w", err)
	}
	notFound, err := templates.ReadFile("templates/404.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load 404 template: %w", err)
	}

	return &Server{
		pool:       pool,
		logger:     logger,
		sleepDelay: sleepDelay,
		hello:      hello,
		notFound:   notFound,
	}, nil
}

// Serve accepts connections on ln until ctx is done, then closes ln and returns nil.
// Connections already handed to the pool are left to it.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()

	s.logger.Debugf("[Server:Serve]: listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Errorf("[Server:Serve]: accept failed, err = %v", err)
			time.Sleep(acceptBackoff)
			continue
		}

		job := &connJob{id: uuid.NewString(), conn: conn, server: s}
		if err := s.pool.Submit(job); err != nil {
			s.logger.Errorf("[Server:Serve]: connection %s refused, err = %v", job.id, err)
			job.refuse()
		}
	}
}

type connJob struct {
	id     string
	conn   net.Conn
	server *Server
}

func (j *connJob) Run() error {
	defer j.conn.Close()
	_ = j.conn.SetDeadline(time.Now().Add(ioTimeout + j.server.sleepDelay))

	buf := make([]byte, requestBufferSize)
	n, err := j.conn.Read(buf)
	if err != nil {
		return fmt.Errorf("connection %s: read: %w", j.id, err)
	}
	request := buf[:n]

	status, body := "HTTP/1.1 200 OK", j.server.hello
	switch {
	case bytes.HasPrefix(request, routeRoot):
	case bytes.HasPrefix(request, routeSleep):
		time.Sleep(j.server.sleepDelay)
	default:
		status, body = "HTTP/1.1 404 NOT FOUND", j.server.notFound
	}

	j.server.logger.Debugf("[Server:conn]: connection %s from %s, %s", j.id, j.conn.RemoteAddr(), status)
	if err := writeResponse(j.conn, status, body); err != nil {
		return fmt.Errorf("connection %s: write: %w", j.id, err)
	}
	return nil
}

// refuse answers a connection the pool would not take and closes it.
func (j *connJob) refuse() {
	defer j.conn.Close()
	_ = j.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = writeResponse(j.conn, "HTTP/1.1 503 SERVICE UNAVAILABLE", nil)
}

func writeResponse(conn net.Conn, status string, body []byte) error {
	response := fmt.Sprintf("%s\r\nContent-Length: %d\r\n\r\n%s", status, len(body), body)
	_, err := conn.Write([]byte(response))
	return err
}
