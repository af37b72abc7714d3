// Command starsql-server runs the TCP front end of the database.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/starsql/starsql/internal/server"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4242", "address to listen on")
	dataDir := flag.String("data-dir", "data", "directory the databases live in")
	flag.Parse()
	defer glog.Flush()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		glog.Errorf("creating data dir: %v", err)
		os.Exit(1)
	}

	srv := &server.Server{Addr: *addr, DataDir: *dataDir}
	if err := srv.ListenAndServe(); err != nil {
		glog.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
