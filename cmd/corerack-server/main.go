package main

/*------------------------------------------------------------------
 *
 * Purpose:	A thin TCP control-plane front door: accepts line-delimited
 *		text commands against a running engine and advertises itself
 *		over mDNS so a patch-editor client can find it on the LAN,
 *		the same discovery role dnssd plays for the teacher's
 *		APRS-IS / IGate services.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/corerack/corerack/corerack"
)

func main() {
	var (
		addr       = flag.StringP("listen", "l", ":6970", "TCP listen address")
		configPath = flag.StringP("config", "f", "", "path to an engine.yaml config file")
		noAdvertise = flag.Bool("no-advertise", false, "disable mDNS advertisement")
		verbose    = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Parse()

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg := corerack.DefaultEngineConfig()
	if *configPath != "" {
		loaded, err := corerack.LoadEngineConfig(*configPath)
		if err != nil {
			logger.Fatal("loading config", "err", err)
		}
		cfg = loaded
	}

	engine, err := corerack.NewEngineFromConfig(cfg)
	if err != nil {
		logger.Fatal("building engine", "err", err)
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal("listening", "err", err)
	}
	defer ln.Close()
	logger.Info("control plane listening", "addr", ln.Addr())

	ctx := context.Background()
	if !*noAdvertise {
		go advertise(ctx, logger, ln.Addr().(*net.TCPAddr).Port)
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Error("accept", "err", err)
			continue
		}
		go handleConn(conn, engine, logger)
	}
}

// advertise publishes "_corerack._tcp" on the local network so remote
// patch editors can discover this instance without a configured address.
func advertise(ctx context.Context, logger *log.Logger, port int) {
	responder, err := dnssd.NewResponder()
	if err != nil {
		logger.Error("dnssd responder", "err", err)
		return
	}
	service, err := dnssd.NewService(dnssd.Config{
		Name: "corerack",
		Type: "_corerack._tcp",
		Port: port,
	})
	if err != nil {
		logger.Error("dnssd service config", "err", err)
		return
	}
	if _, err := responder.Add(service); err != nil {
		logger.Error("dnssd add", "err", err)
		return
	}
	if err := responder.Respond(ctx); err != nil {
		logger.Error("dnssd respond", "err", err)
	}
}

// handleConn serves one client connection: each line is a command of the
// form "verb arg1 arg2 ...", and the reply is "ok ..." or "err ...".
func handleConn(conn net.Conn, e *corerack.Engine, logger *log.Logger) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		reply := dispatch(e, strings.Fields(scanner.Text()))
		fmt.Fprintln(conn, reply)
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("connection read", "err", err)
	}
}

func dispatch(e *corerack.Engine, fields []string) string {
	if len(fields) == 0 {
		return "err empty command"
	}
	switch fields[0] {
	case "add":
		if len(fields) != 3 {
			return "err usage: add <type_id> <name>"
		}
		if err := e.AddModule(fields[1], fields[2]); err != nil {
			return "err " + err.Error()
		}
		return "ok"
	case "connect":
		if len(fields) != 3 {
			return "err usage: connect <from> <to>"
		}
		if _, err := e.Connect(fields[1], fields[2], corerack.CableOpts{}); err != nil {
			return "err " + err.Error()
		}
		return "ok"
	case "output":
		if len(fields) != 2 {
			return "err usage: output <name>"
		}
		if err := e.SetOutput(fields[1]); err != nil {
			return "err " + err.Error()
		}
		return "ok"
	case "compile":
		if err := e.Compile(); err != nil {
			return "err " + err.Error()
		}
		return "ok"
	case "set":
		if len(fields) != 4 {
			return "err usage: set <name> <param> <value>"
		}
		v, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return "err " + err.Error()
		}
		if err := e.SetParam(fields[1], fields[2], v); err != nil {
			return "err " + err.Error()
		}
		return "ok"
	case "catalog":
		var names []string
		for _, m := range e.Catalog().Modules {
			names = append(names, m.TypeID)
		}
		return "ok " + strings.Join(names, ",")
	default:
		return "err unknown command " + fields[0]
	}
}
