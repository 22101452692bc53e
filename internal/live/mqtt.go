// Package live consumes the realtime MQTT feed published by the bins and the backend.
package live

import (
	"fmt"
	"strings"
	"time"

	"ecobins/internal/model"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

const (
	PointsTopic    = "ui/usuarios/+/puntos"
	ContainerTopic = "ui/contenedores/+"

	qos            = 1
	connectTimeout = 10 * time.Second
)

type PointsSink interface {
	Apply(ev model.PointsEvent) (model.PointsTotal, error)
}

type ContainerSink interface {
	ApplyContainerUpdate(u model.ContainerUpdate) bool
}

// Subscriber routes MQTT messages to the points and container sinks
type Subscriber struct {
	broker     string
	clientID   string
	points     PointsSink
	containers ContainerSink
	client     mqtt.Client
}

func NewSubscriber(broker, clientID string, points PointsSink, containers ContainerSink) *Subscriber {
	return &Subscriber{
		broker:     broker,
		clientID:   clientID,
		points:     points,
		containers: containers,
	}
}

// Start connects and subscribes. Subscriptions are renewed on every reconnect.
func (s *Subscriber) Start() error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.broker).
		SetClientID(s.clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warnf("MQTT connection lost: %v", err)
		})

	s.client = mqtt.NewClient(opts)
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		// ConnectRetry keeps trying in the background
		log.Warnf("MQTT broker %s not reachable yet, retrying in background", s.broker)
		return nil
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", s.broker, err)
	}
	return nil
}

func (s *Subscriber) onConnect(c mqtt.Client) {
	log.Infof("Connected to MQTT broker %s", s.broker)

	filters := map[string]byte{PointsTopic: qos, ContainerTopic: qos}
	token := c.SubscribeMultiple(filters, func(_ mqtt.Client, msg mqtt.Message) {
		if err := s.handle(msg.Topic(), msg.Payload()); err != nil {
			log.WithField("topic", msg.Topic()).Warnf("Dropping live message: %v", err)
		}
	})
	if token.WaitTimeout(connectTimeout) && token.Error() != nil {
		log.Errorf("MQTT subscribe failed: %v", token.Error())
	}
}

// Stop disconnects, waiting up to 250ms for in-flight work
func (s *Subscriber) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
		log.Info("MQTT subscriber stopped")
	}
}

func (s *Subscriber) handle(topic string, payload []byte) error {
	parts := strings.Split(topic, "/")

	switch {
	case len(parts) == 4 && parts[0] == "ui" && parts[1] == "usuarios" && parts[3] == "puntos":
		userID, err := model.ParseID(parts[2])
		if err != nil {
			return err
		}
		ev, err := model.DecodePointsEvent(userID, payload)
		if err != nil {
			return err
		}
		total, err := s.points.Apply(ev)
		if err != nil {
			return err
		}
		log.WithField("user", userID).Debugf("Points +%d, total %d", ev.Points, total.Points)
		return nil

	case len(parts) == 3 && parts[0] == "ui" && parts[1] == "contenedores":
		id, err := model.ParseID(parts[2])
		if err != nil {
			return err
		}
		u, err := model.DecodeContainerUpdate(id, payload)
		if err != nil {
			return err
		}
		if !s.containers.ApplyContainerUpdate(u) {
			log.WithField("container", id).Debug("Update for unknown container, waiting for next refresh")
		}
		return nil

	default:
		return fmt.Errorf("unexpected topic %q", topic)
	}
}
