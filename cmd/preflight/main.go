// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	apiAddr := strings.TrimSpace(os.Getenv("ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	allowed := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))
	interval := strings.TrimSpace(os.Getenv("CHECK_INTERVAL"))
	timeout := strings.TrimSpace(os.Getenv("PROBE_TIMEOUT"))

	if apiAddr == "" {
		warn("ADDR is empty; default 127.0.0.1:8080 will be used.")
	} else {
		ok("ADDR=" + apiAddr)
	}

	if db == "" {
		warn("DATABASE_URL empty — API will use the in-memory store; history is lost on restart.")
	} else if !strings.HasPrefix(db, "postgres://") && !strings.HasPrefix(db, "postgresql://") {
		fail("DATABASE_URL must be a postgres:// URL.")
	} else {
		ok("DATABASE_URL present")
	}

	if allowed == "" {
		warn("ALLOWED_ORIGINS empty — CORS allows all origins.")
	} else {
		ok("ALLOWED_ORIGINS=" + allowed)
	}

	if interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			fail("CHECK_INTERVAL is not a duration (use e.g. 5m): " + err.Error())
		}
		if d < time.Minute {
			warn("CHECK_INTERVAL under 1m will hammer the monitored services.")
		}
		ok("CHECK_INTERVAL=" + interval)
	}

	if timeout != "" {
		if _, err := time.ParseDuration(timeout); err != nil {
			fail("PROBE_TIMEOUT is not a duration (use e.g. 10s): " + err.Error())
		}
		ok("PROBE_TIMEOUT=" + timeout)
	}

	ok("preflight passed")
}
