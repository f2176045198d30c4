// Package events publishes dispatch domain events to NATS for downstream
// consumers (reporting, archival). It is not a client notification channel.
package events

import (
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	SubjectTripStarted   = "dispatch.trip.started"
	SubjectTripEnded     = "dispatch.trip.ended"
	SubjectQueueEnqueued = "dispatch.queue.enqueued"
	SubjectQueueDeparted = "dispatch.queue.departed"
)

type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("bus-dispatch"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logrus.WithError(err).Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logrus.WithField("url", c.ConnectedUrl()).Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logrus.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc}, nil
}

// Publish marshals payload as JSON and sends it on subject.
func (p *NATSPublisher) Publish(subject string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.nc.Publish(subjectToken(subject), b)
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

func subjectToken(s string) string {
	// NATS subjects cannot contain whitespace or wildcards.
	repl := strings.NewReplacer(" ", "_", ">", "_", "*", "_", "\t", "_")
	return repl.Replace(strings.TrimSpace(s))
}
