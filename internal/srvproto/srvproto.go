// Package srvproto defines the handshake/command wire protocol between
// server and client: a one-byte package type, a big-endian length, and a
// msgpack-encoded body.
package srvproto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// ProtocolVersion is sent in the greeting; client and server must agree.
const ProtocolVersion byte = 1

// maxBodySize bounds a package body so a broken peer cannot make the
// server allocate arbitrarily.
const maxBodySize = 1 << 20

// ErrBodyTooLarge is returned for packages above maxBodySize.
var ErrBodyTooLarge = errors.New("package body too large")

// PkgType is the numeric package code sent as the first byte.
type PkgType byte

const (
	PkgGreet PkgType = iota
	PkgLogin
	PkgCommand
	PkgError
	PkgOk
	PkgResponse
	PkgAccDenied
	PkgAccGranted
)

func (p PkgType) String() string {
	switch p {
	case PkgGreet:
		return "greet"
	case PkgLogin:
		return "login"
	case PkgCommand:
		return "command"
	case PkgError:
		return "error"
	case PkgOk:
		return "ok"
	case PkgResponse:
		return "response"
	case PkgAccDenied:
		return "access-denied"
	case PkgAccGranted:
		return "access-granted"
	default:
		return fmt.Sprintf("pkgtype(%d)", byte(p))
	}
}

// Greeting is the first package sent by the server after the TCP
// connection is established.
type Greeting struct {
	ProtocolVersion byte   `msgpack:"protocol_version"`
	Message         string `msgpack:"message"`
}

// Login is the client's answer to a greeting, finishing the handshake.
type Login struct {
	Username string `msgpack:"username"`
	Password string `msgpack:"password"`
}

// CommandKind discriminates the Command union.
type CommandKind byte

const (
	CmdQuit CommandKind = iota
	CmdPing
	CmdQuery
)

// Command is sent by the client. Most commands are queries; Quit and Ping
// are special-cased.
type Command struct {
	Kind  CommandKind `msgpack:"kind"`
	Query string      `msgpack:"query"`
}

// ClientErrMsg carries an error code and message to the client.
type ClientErrMsg struct {
	Code uint16 `msgpack:"code"`
	Msg  string `msgpack:"msg"`
}

// Response is the result of a query: a message for definition statements,
// rows rendered as strings for selects.
type Response struct {
	Message string     `msgpack:"message"`
	Columns []string   `msgpack:"columns"`
	Rows    [][]string `msgpack:"rows"`
}

// WritePackage frames and writes one package: type byte, body length,
// msgpack body. A nil body writes a zero-length package.
func WritePackage(w io.Writer, t PkgType, body interface{}) error {
	var raw []byte
	if body != nil {
		var err error
		if raw, err = msgpack.Marshal(body); err != nil {
			return err
		}
	}
	if len(raw) > maxBodySize {
		return ErrBodyTooLarge
	}

	head := make([]byte, 5)
	head[0] = byte(t)
	binary.BigEndian.PutUint32(head[1:], uint32(len(raw)))
	if _, err := w.Write(head); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	_, err := w.Write(raw)
	return err
}

// ReadPackage reads one framed package and returns its type and raw body.
func ReadPackage(r io.Reader) (PkgType, []byte, error) {
	head := make([]byte, 5)
	if _, err := io.ReadFull(r, head); err != nil {
		return 0, nil, err
	}
	size := binary.BigEndian.Uint32(head[1:])
	if size > maxBodySize {
		return 0, nil, ErrBodyTooLarge
	}
	if size == 0 {
		return PkgType(head[0]), nil, nil
	}

	raw := make([]byte, size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return 0, nil, err
	}
	return PkgType(head[0]), raw, nil
}

// DecodeBody unmarshals a raw package body into v.
func DecodeBody(raw []byte, v interface{}) error {
	return msgpack.Unmarshal(raw, v)
}
