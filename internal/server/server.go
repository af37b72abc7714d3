// Package server runs the TCP front end: it accepts connections, performs
// the greeting/login handshake, and feeds query commands to the executor.
// Every connection gets its own executor, so connections are independent;
// the index and heap layers below stay single-owner.
package server

import (
	"errors"
	"io"
	"net"

	"github.com/golang/glog"
	"github.com/segmentio/ksuid"

	"github.com/starsql/starsql/internal/query"
	"github.com/starsql/starsql/internal/srvproto"
)

// DefaultGreeting is sent to clients that connect.
const DefaultGreeting = "starsql server ready"

// Server accepts client connections and serves the command protocol.
type Server struct {
	Addr    string
	DataDir string
}

// ListenAndServe listens on the server address and serves until the
// listener fails.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	glog.Infof("listening on %s", l.Addr())
	return s.Serve(l)
}

// Serve accepts connections from l, one goroutine per connection.
func (s *Server) Serve(l net.Listener) error {
	defer l.Close()
	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	id := ksuid.New().String()
	glog.Infof("[%s] connection from %s", id, conn.RemoteAddr())

	if ok := s.handshake(id, conn); !ok {
		return
	}

	exec := query.NewExecutor(s.DataDir)
	for {
		typ, raw, err := srvproto.ReadPackage(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				glog.Warningf("[%s] read failed: %v", id, err)
			}
			return
		}
		if typ != srvproto.PkgCommand {
			glog.Warningf("[%s] unexpected package %s", id, typ)
			s.sendError(id, conn, 2, "expected a command package")
			continue
		}

		var cmd srvproto.Command
		if err := srvproto.DecodeBody(raw, &cmd); err != nil {
			s.sendError(id, conn, 5, "undecodable command")
			continue
		}

		switch cmd.Kind {
		case srvproto.CmdQuit:
			glog.Infof("[%s] quit", id)
			_ = srvproto.WritePackage(conn, srvproto.PkgOk, nil)
			return
		case srvproto.CmdPing:
			_ = srvproto.WritePackage(conn, srvproto.PkgOk, nil)
		case srvproto.CmdQuery:
			s.runQuery(id, conn, exec, cmd.Query)
		default:
			s.sendError(id, conn, 3, "unknown command")
		}
	}
}

// handshake sends the greeting and checks the login answer. Authentication
// is a placeholder: any non-empty username is accepted.
func (s *Server) handshake(id string, conn net.Conn) bool {
	greeting := srvproto.Greeting{
		ProtocolVersion: srvproto.ProtocolVersion,
		Message:         DefaultGreeting,
	}
	if err := srvproto.WritePackage(conn, srvproto.PkgGreet, greeting); err != nil {
		glog.Warningf("[%s] greeting failed: %v", id, err)
		return false
	}

	typ, raw, err := srvproto.ReadPackage(conn)
	if err != nil || typ != srvproto.PkgLogin {
		glog.Warningf("[%s] handshake aborted", id)
		_ = srvproto.WritePackage(conn, srvproto.PkgAccDenied, nil)
		return false
	}
	var login srvproto.Login
	if err := srvproto.DecodeBody(raw, &login); err != nil || login.Username == "" {
		glog.Warningf("[%s] login rejected", id)
		_ = srvproto.WritePackage(conn, srvproto.PkgAccDenied, nil)
		return false
	}

	glog.Infof("[%s] user %q logged in", id, login.Username)
	return srvproto.WritePackage(conn, srvproto.PkgAccGranted, nil) == nil
}

func (s *Server) runQuery(id string, conn net.Conn, exec *query.Executor, input string) {
	res, err := exec.Run(input)
	if err != nil {
		glog.Warningf("[%s] query failed: %v", id, err)
		s.sendError(id, conn, 1, err.Error())
		return
	}

	resp := srvproto.Response{Message: res.Message}
	if res.Rows != nil {
		for _, c := range res.Rows.Columns {
			resp.Columns = append(resp.Columns, c.Name)
		}
		for _, row := range res.Rows.Data {
			rendered := make([]string, 0, len(row.Values))
			for _, v := range row.Values {
				rendered = append(rendered, v.String())
			}
			resp.Rows = append(resp.Rows, rendered)
		}
	}
	if err := srvproto.WritePackage(conn, srvproto.PkgResponse, resp); err != nil {
		glog.Warningf("[%s] response failed: %v", id, err)
	}
}

func (s *Server) sendError(id string, conn net.Conn, code uint16, msg string) {
	pkg := srvproto.ClientErrMsg{Code: code, Msg: msg}
	if err := srvproto.WritePackage(conn, srvproto.PkgError, pkg); err != nil {
		glog.Warningf("[%s] error package failed: %v", id, err)
	}
}
