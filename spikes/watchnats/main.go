package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"
	"github.com/nsyszr/flowpilot/pkg/transport"
)

func main() {
	url := flag.String("url", nats.DefaultURL, "nats server url")
	flag.Parse()

	nc, err := nats.Connect(*url)
	if err != nil {
		log.Fatal(err)
	}
	defer nc.Close()

	// Subscribe
	if _, err := nc.Subscribe(transport.SubjectStoredPrefix+">", func(m *nats.Msg) {
		ev := transport.StoredEvent{}
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			fmt.Printf("subject: %s, invalid message: %s\n", m.Subject, string(m.Data))
			return
		}
		fmt.Printf("subject: %s, id: %d, case: %s, activity: %s\n", m.Subject, ev.ID, ev.CaseID, ev.Activity)
	}); err != nil {
		log.Fatal(err)
	}

	// Wait for interrupt signal to gracefully shutdown the server
	quitCh := make(chan os.Signal, 1)
	signal.Notify(quitCh, os.Interrupt)
	<-quitCh
}
