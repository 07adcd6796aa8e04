package app

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// connectMQTT connects a client to broker and waits for the result.
func connectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	log.WithFields(log.Fields{"broker": broker, "client_id": clientID}).Info("connected to MQTT broker")
	return client, nil
}

// subscribeJSON subscribes to topic and hands every payload that decodes
// as T to handle. Undecodable payloads are logged and dropped.
func subscribeJSON[T any](client mqtt.Client, topic string, handle func(T)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.WithField("topic", msg.Topic()).Warnf("MQTT payload unmarshal error: %v", err)
			return
		}
		handle(v)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", topic, token.Error())
	}
	log.WithField("topic", topic).Info("subscribed to MQTT topic")
	return nil
}

// publishRetained publishes payload with QoS 0 and the retain flag set.
func publishRetained(client mqtt.Client, topic string, payload []byte) error {
	token := client.Publish(topic, 0, true, payload)
	token.Wait()
	return token.Error()
}
